// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

// Config defines the configuration of a logger
type Config struct {
	// LogLevel is the level written to log files.
	LogLevel Level `json:"logLevel"`
	// DisplayLevel is the level written to stdout.
	DisplayLevel Level `json:"displayLevel"`

	// Directory to write log files to. If empty, no log files are written.
	Directory string `json:"logDirectory"`
	// MaxSize is the maximum size of a log file before rotation, in MiB.
	MaxSize int `json:"logMaxSize"`
	// MaxFiles is the maximum number of rotated files to retain.
	MaxFiles int `json:"logMaxFiles"`
	// MaxAge is the maximum number of days to retain rotated files.
	MaxAge int `json:"logMaxAge"`
	// Compress indicates whether rotated files are gzipped.
	Compress bool `json:"logCompress"`

	MsgPrefix  string `json:"-"`
	LoggerName string `json:"-"`
}

// DefaultConfig writes INFO to stdout and, once a directory is set, DEBUG to
// rotated files.
func DefaultConfig() Config {
	return Config{
		LogLevel:     Debug,
		DisplayLevel: Info,
		MaxSize:      8,
		MaxFiles:     7,
		MaxAge:       0,
	}
}
