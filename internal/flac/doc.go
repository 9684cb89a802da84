// Package flac reads the metadata-block structure of FLAC containers without
// decoding audio.
//
// The parser walks the block chain after the "fLaC" stream marker, captures
// each block's header and raw payload, and eagerly decodes the kinds the
// validator cares about (STREAMINFO, SEEKTABLE, VORBIS_COMMENT, PICTURE).
// Padding, application, and cuesheet payloads are kept raw. The audio region
// is never decoded here; only frame sync boundaries are scanned so callers
// can cross-check declared sample counts.
//
// Parsing is failure tolerant: a truncated or malformed file yields a
// FormatError alongside whatever blocks were recovered, so analysis can still
// report on partially readable containers.
package flac
