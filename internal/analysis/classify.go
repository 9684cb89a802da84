package analysis

// FileStatus is the aggregate health of one file.
type FileStatus string

const (
	StatusValid             FileStatus = "VALID"
	StatusValidWithWarnings FileStatus = "VALID_WITH_WARNINGS"
	StatusInvalid           FileStatus = "INVALID"
)

// Classify derives the file status from the accumulated findings: INVALID on
// any ERROR, else VALID_WITH_WARNINGS on any WARNING, else VALID.
func Classify(findings []Finding) FileStatus {
	status := StatusValid
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			return StatusInvalid
		case SeverityWarning:
			status = StatusValidWithWarnings
		}
	}
	return status
}
