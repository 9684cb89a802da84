package repair

// State is a repair job's position in the state machine.
type State string

const (
	StateAnalyzed         State = "ANALYZED"
	StateSkipped          State = "SKIPPED"
	StateQuarantining     State = "QUARANTINING"
	StateQuarantineFailed State = "QUARANTINE_FAILED"
	StateReencoding       State = "REENCODING"
	StateReencodeFailed   State = "REENCODE_FAILED"
	StateVerifying        State = "VERIFYING"
	StateVerifyFailed     State = "VERIFY_FAILED"
	StateReplaced         State = "REPLACED"
	StateRolledBack       State = "ROLLED_BACK"
)

// Terminal reports whether the state ends a job.
func (s State) Terminal() bool {
	switch s {
	case StateSkipped, StateQuarantineFailed, StateReplaced, StateRolledBack:
		return true
	}
	return false
}

// Outcome is the user-visible bucket every job ends in. Exactly one applies
// per file.
type Outcome string

const (
	OutcomeSkipped       Outcome = "skipped"
	OutcomeReplaced      Outcome = "replaced"
	OutcomeRolledBack    Outcome = "rolled-back"
	OutcomeUnrecoverable Outcome = "unrecoverable"
)
