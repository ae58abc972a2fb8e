// Package diagnostics is the message shape pushed to /diag and /control clients.
package diagnostics

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// FromError wraps err as an Err diagnostic, or returns an Info one with
// okSummary when err is nil.
func FromError(code, okSummary string, err error) Diagnostic {
	if err != nil {
		return Diagnostic{Severity: Err, Code: code, Summary: err.Error()}
	}
	return Diagnostic{Severity: Info, Code: code, Summary: okSummary}
}
