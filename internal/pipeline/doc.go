// Package pipeline runs the generator over a set of headers.
//
// A run has two phases. Phase 1 reads, strips, parses and models every header
// in parallel; the per-file rename rules are then merged in input order so
// that every render sees the same rule list. Phase 2 renders in parallel and
// splices the results into the destination files.
//
// A file that fails is reported and skipped; the rest of the run continues.
package pipeline
