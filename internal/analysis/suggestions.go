package analysis

// Action names a repair the orchestrator or the user can take.
type Action string

const (
	ActionReencode           Action = "reencode"
	ActionStripPadding       Action = "strip-padding"
	ActionRename             Action = "rename"
	ActionRecomputeSignature Action = "recompute-signature"
)

// Suggestion pairs an action with the reason it applies.
type Suggestion struct {
	Action Action `json:"action"`
	Reason string `json:"reason"`
}

// suggestionTable maps rule identifiers to their repair action. Rules absent
// from the table fall back to re-encoding when they are errors.
var suggestionTable = map[string]Suggestion{
	RuleStreamInfoMissing: {ActionReencode, "STREAMINFO missing; re-encode from scratch"},
	RulePaddingOversized:  {ActionStripPadding, "strip oversized padding and re-encode"},
	RuleSignatureUnset:    {ActionRecomputeSignature, "audio signature unset; recompute from decoded audio"},
	RuleSignatureMismatch: {ActionReencode, "declared audio signature disagrees with decoded audio"},
	RuleFilenameCompat:    {ActionRename, "filename is not portable across platforms"},
}

// Suggest maps findings to de-duplicated repair suggestions, preserving the
// catalog order of the findings that produced them. INFO findings never
// produce suggestions.
func Suggest(findings []Finding) []Suggestion {
	var out []Suggestion
	seen := map[Action]bool{}
	add := func(s Suggestion) {
		if !seen[s.Action] {
			seen[s.Action] = true
			out = append(out, s)
		}
	}
	for _, f := range findings {
		if f.Severity == SeverityInfo {
			continue
		}
		if s, ok := suggestionTable[f.Rule]; ok {
			add(s)
			continue
		}
		if f.Severity == SeverityError {
			add(Suggestion{ActionReencode, "structural corruption detected"})
		}
	}
	return out
}
