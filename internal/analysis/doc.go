// Package analysis turns parsed containers into findings, a health status,
// and repair suggestions.
//
// The validator applies a fixed-order rule catalog; each check is independent
// and skips itself when the data it needs was not recovered. Findings are
// immutable once emitted and carry a stable rule identifier so reports and
// the suggestion table can key on them. Classification is a pure function
// over the accumulated findings: any ERROR makes the file INVALID, otherwise
// any WARNING downgrades it to VALID_WITH_WARNINGS.
package analysis
