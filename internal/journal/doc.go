// Package journal persists run outcomes to SQLite. Each invocation of the
// CLI records one run plus a row per processed file, so interrupted repair
// runs stay auditable and `flackit status` can report what happened last.
// The journal records outcomes only; fingerprints are recomputed every run.
package journal
