package flow

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dkoosis/flowlint/internal/detect"
)

// diagLineRe matches one diagnostic line of Flow's text output:
//
//	path/to/file.js:LINE:COL: message
//	path/to/file.js:LINE:COL,ENDCOL: message
//
// The column range end, when present, is ignored; the contract exposes only
// the start position.
var diagLineRe = regexp.MustCompile(`^(.+?):(\d+):(\d+)(?:,\d+)?:\s*(.*)$`)

// Parse converts one checker invocation's captured output into diagnostics.
// It sniffs the payload format (plain text, Flow's --json object, or the
// combined [check, coverage] array) and dispatches to the matching parser.
// Unrecognized input falls back to the lenient text parser, so the result is
// always well-defined and never an error.
func Parse(raw []byte) []Diagnostic {
	switch detect.Sniff(raw) {
	case detect.JSON:
		return ParseJSON(raw)
	case detect.Combined:
		return parseCombined(raw)
	default:
		return ParseOutput(string(raw))
	}
}

// ParseOutput scans Flow's line-oriented text output for diagnostics.
//
// Lines that do not match the diagnostic format (server preamble, "Found N
// errors" summaries, blank separators) are skipped silently: the text format
// is not contractually stable across Flow releases and strict parsing would
// make the wrapper brittle. Empty input yields an empty result, which is the
// no-issues case, not an error.
func ParseOutput(raw string) []Diagnostic {
	if raw == "" {
		return nil
	}

	lines := strings.Split(raw, "\n")
	var diags []Diagnostic
	for i := 0; i < len(lines); i++ {
		m := diagLineRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}

		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		msg := m[4]

		// Indented follow-up lines are continuation text for this
		// diagnostic, not independent records.
		for i+1 < len(lines) && isContinuation(lines[i+1]) {
			i++
			msg = msg + " " + strings.TrimSpace(lines[i])
		}

		severity, msg := splitSeverity(msg)
		diags = append(diags, Diagnostic{
			File:     m[1],
			Line:     line,
			Column:   col,
			Severity: severity,
			Message:  msg,
		})
	}
	return diags
}

func isContinuation(line string) bool {
	if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
		return false
	}
	return strings.TrimSpace(line) != ""
}

// splitSeverity infers a severity from the message's leading keyword and
// strips the label. Flow prefixes lint findings with "Warning:"; everything
// unlabeled is an error.
func splitSeverity(msg string) (Severity, string) {
	trimmed := strings.TrimSpace(msg)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "warning:"):
		return SeverityWarning, strings.TrimSpace(trimmed[len("warning:"):])
	case strings.HasPrefix(lower, "error:"):
		return SeverityError, strings.TrimSpace(trimmed[len("error:"):])
	}
	return SeverityError, trimmed
}
