// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package batch implements the batch sampling engine: epoch after epoch it
// selects a weighted subset of subjects, draws unused sequences from each
// under a global size budget, and yields batches of subject-relative ids. No
// sequence is handed out twice within an epoch.
//
// The engine never loads sequence content. Consumers feed each yielded
// (subject, relative ids) pair to their own materialization step.
package batch

// SubjectBatch is one subject's contribution to a batch. RelativeIDs are
// 0-based indices local to the subject's slice of the pool.
type SubjectBatch struct {
	Subject     int   `json:"subject"`
	RelativeIDs []int `json:"relativeIds"`
}

// Batch is the ordered set of per-subject contributions yielded in one
// iteration step. Subjects with an empty contribution are omitted.
type Batch []SubjectBatch

// NumSequences returns the total number of sequence ids in the batch.
func (b Batch) NumSequences() int {
	n := 0
	for _, sb := range b {
		n += len(sb.RelativeIDs)
	}
	return n
}
