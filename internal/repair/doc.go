// Package repair drives the per-file repair state machine: quarantine the
// original, re-encode it with an external encoder, verify the stream
// parameters of the result, and either replace the original or roll back.
// Each job owns exactly one file and its quarantine path; jobs never observe
// each other.
package repair
