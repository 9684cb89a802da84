// Package deps inventories the external binaries flackit shells out to and
// reports their availability.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency flackit relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external tools used for repair and decode-based
// fingerprinting. At least one of the two encoders must be present for
// repair to run; analysis and dedupe of signed files need neither.
func Requirements() []Requirement {
	return []Requirement{
		{
			Name:        "flac",
			Command:     "flac",
			Description: "Reference encoder, used for re-encoding and raw decode",
		},
		{
			Name:        "ffmpeg",
			Command:     "ffmpeg",
			Description: "Fallback encoder when flac is unavailable",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
