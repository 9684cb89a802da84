package repair

import "fmt"

// RepairFailedError reports a failed encode or verification after the
// original was already quarantined. It always triggers a rollback attempt.
type RepairFailedError struct {
	State State
	Err   error
}

func (e *RepairFailedError) Error() string {
	return fmt.Sprintf("repair failed in %s: %v", e.State, e.Err)
}

func (e *RepairFailedError) Unwrap() error { return e.Err }

// FilesystemError reports a failed quarantine move, restore, or delete. It
// aborts the affected file's job only.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }
