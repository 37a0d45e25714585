// Package flow builds invocations of the Flow type checker and parses its
// output into structured diagnostics. Both operations are pure functions over
// in-memory data; process spawning lives in internal/runner.
package flow

// Severity indicates the severity level of a diagnostic.
type Severity string

// Severity levels.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one reported issue at a specific source location.
// Line and Column are 1-based.
type Diagnostic struct {
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}
