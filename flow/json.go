package flow

import (
	"encoding/json"
	"strings"
)

// The wire structures below mirror Flow's own error model (flowResult in the
// Flow repo): an error carries a chain of Blame/Comment messages, an optional
// operation, and optionally nested extra context.

type jsonResult struct {
	Passed bool        `json:"passed"`
	Errors []jsonError `json:"errors"`
}

type jsonError struct {
	Kind      string      `json:"kind"`
	Level     string      `json:"level"`
	Message   []jsonBlame `json:"message"`
	Operation *jsonBlame  `json:"operation"`
	Extra     []jsonExtra `json:"extra"`
}

type jsonBlame struct {
	Descr   string   `json:"descr"`
	Type    string   `json:"type"` // "Blame" or "Comment"
	Context *string  `json:"context"`
	Loc     *jsonLoc `json:"loc"`
}

type jsonExtra struct {
	Message  []jsonBlame `json:"message"`
	Children []jsonExtra `json:"children"`
}

type jsonLoc struct {
	Source string  `json:"source"`
	Start  jsonPos `json:"start"`
	End    jsonPos `json:"end"`
}

type jsonPos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// ParseJSON converts a `flow ... --json` result into diagnostics. Malformed
// input yields an empty result; running Flow without a .flowconfig makes it
// print a plain error message where JSON was requested, and that case must
// read as "no diagnostics", not a failure.
func ParseJSON(raw []byte) []Diagnostic {
	var result jsonResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}

	var diags []Diagnostic
	for _, e := range result.Errors {
		d, ok := errorToDiagnostic(e)
		if !ok {
			continue
		}
		diags = append(diags, d)
	}
	return diags
}

func errorToDiagnostic(e jsonError) (Diagnostic, bool) {
	loc := primaryLoc(e)
	if loc == nil {
		return Diagnostic{}, false
	}

	severity := SeverityError
	if e.Level == "warning" {
		severity = SeverityWarning
	}

	parts := make([]string, 0, len(e.Message))
	for _, m := range e.Message {
		if s := formatBlame(m); s != "" {
			parts = append(parts, s)
		}
	}

	return Diagnostic{
		File:     loc.Source,
		Line:     loc.Start.Line,
		Column:   loc.Start.Column,
		Severity: severity,
		Message:  strings.TrimSpace(strings.Join(parts, " ")),
	}, true
}

// primaryLoc picks the location for an error: the operation when present,
// otherwise the first located message, otherwise the first located entry in
// the extra tree.
func primaryLoc(e jsonError) *jsonLoc {
	if e.Operation != nil && e.Operation.Loc != nil {
		return e.Operation.Loc
	}
	for _, m := range e.Message {
		if m.Loc != nil {
			return m.Loc
		}
	}
	for _, m := range flattenExtra(e.Extra) {
		if m.Loc != nil {
			return m.Loc
		}
	}
	return nil
}

func flattenExtra(extra []jsonExtra) []jsonBlame {
	var out []jsonBlame
	for _, x := range extra {
		out = append(out, x.Message...)
		out = append(out, flattenExtra(x.Children)...)
	}
	return out
}

// formatBlame renders one message of an error chain. Comments contribute
// their description; Blame entries contribute the offending code snippet,
// reduced to `snippet (descr)` so a one-line status message reads like
// "foo (string) This type is incompatible with bar (number)".
func formatBlame(m jsonBlame) string {
	if m.Type == "Comment" {
		return strings.TrimSpace(m.Descr)
	}

	if m.Context == nil {
		return ""
	}
	snippet := *m.Context

	if m.Loc != nil {
		start := m.Loc.Start.Column - 1
		end := m.Loc.End.Column
		if start < 0 {
			start = 0
		}
		if end > len(snippet) {
			end = len(snippet)
		}
		if start < end {
			descr := strings.TrimSpace(m.Descr)
			cut := snippet[start:end]
			if cut != descr && descr != "" {
				snippet = cut + " (" + descr + ")"
			} else {
				snippet = cut
			}
		}
	}
	return strings.TrimSpace(snippet)
}

type jsonCoverage struct {
	Expressions struct {
		UncoveredLocs []jsonLoc `json:"uncovered_locs"`
		EmptyLocs     []jsonLoc `json:"empty_locs"`
	} `json:"expressions"`
}

// dittoMark stands in for a coverage message already reported on that line.
const dittoMark = "〃"

// ParseCoverageJSON converts a `flow coverage --json` result into warning
// diagnostics, one per uncovered expression. Repeated findings on the same
// line collapse to a ditto mark so a dense line does not repeat the full
// message per expression.
func ParseCoverageJSON(raw []byte) []Diagnostic {
	var cov jsonCoverage
	if err := json.Unmarshal(raw, &cov); err != nil {
		return nil
	}

	var diags []Diagnostic
	diags = appendCoverage(diags, cov.Expressions.UncoveredLocs, "Code is not covered by Flow (any type)")
	diags = appendCoverage(diags, cov.Expressions.EmptyLocs, "Code is not covered by Flow (empty type)")
	return diags
}

func appendCoverage(diags []Diagnostic, locs []jsonLoc, message string) []Diagnostic {
	seen := make(map[int]bool, len(locs))
	for _, loc := range locs {
		msg := message
		if seen[loc.Start.Line] {
			msg = dittoMark
		}
		seen[loc.Start.Line] = true
		diags = append(diags, Diagnostic{
			File:     loc.Source,
			Line:     loc.Start.Line,
			Column:   loc.Start.Column,
			Severity: SeverityWarning,
			Message:  msg,
		})
	}
	return diags
}

// parseCombined handles the historical two-element [check, coverage] blob.
func parseCombined(raw []byte) []Diagnostic {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) != 2 {
		return nil
	}
	diags := ParseJSON(parts[0])
	return append(diags, ParseCoverageJSON(parts[1])...)
}
