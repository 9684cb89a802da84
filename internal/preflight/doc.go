// Package preflight provides readiness checks for the filesystem paths and
// external binaries flackit depends on.
//
// These checks run in two contexts:
//   - The repair command calls RunAll before touching any file. If a check
//     fails, the run aborts instead of quarantining originals it cannot
//     re-encode.
//   - The CLI "flackit status" command displays the same results alongside
//     the journal's last run.
package preflight
