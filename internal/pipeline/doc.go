// Package pipeline orchestrates document discovery, the bounded parallel
// batch run, and the read-only validate pass.
//
// [Run] assigns every discovered document an output location (see
// naming.Layout), submits one processor job per document to a worker pool
// and aggregates results in completion order. A failing document never
// aborts the batch. [Validate] walks the same documents and locations
// sequentially with the change detector only, so the two modes always agree
// on which documents are current.
package pipeline
