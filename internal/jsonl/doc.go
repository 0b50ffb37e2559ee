// Package jsonl provides locked, line-atomic appends and tolerant reads for
// newline-delimited JSON files.
//
// Every append takes an exclusive advisory lock on the target file for the
// duration of a single write, so concurrent processes appending to the same
// file never interleave partial lines. Readers never take the lock; a torn or
// malformed line is skipped and counted rather than failing the whole read.
package jsonl
