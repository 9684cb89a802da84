// Package encoder wraps the external FLAC tooling the repair pipeline shells
// out to.
//
// Re-encoding prefers the reference `flac` binary and falls back to `ffmpeg`
// when it is absent; both satisfy the same contract of "read source, write a
// lossless FLAC at the destination, exit zero on success". Decoding (for
// audio-signature computation and verification) streams raw samples out of
// `flac -d` and never touches the input file. All invocations are bounded by
// a caller-supplied context plus a per-call timeout.
package encoder
