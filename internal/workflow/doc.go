// Package workflow advances discussions through the review pipeline.
//
// The Manager runs a periodic tick over the record store: it flags items
// stuck in transcription, ingests new recordings from the inbox, runs
// transcription for uploaded items, and advances mapped items into review
// once their preconditions hold. Reviewer-triggered actions (grade entry,
// feedback generation, send-approved) are separate services layered on the
// same state machine; the tick must tolerate finding a discussion already
// advanced by one of them and simply skip it.
//
// Failures are localized to the discussion that raised them: the item moves
// to the error status with an appended error log entry and the tick carries
// on with the remaining items. Recovery is a reviewer-issued retry, which
// re-enters the failed step on the next pass.
package workflow
