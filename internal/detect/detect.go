// Package detect sniffs checker output to determine the payload format.
package detect

import (
	"bytes"
	"encoding/json"
)

// Format represents a recognized checker output format.
type Format int

const (
	Text     Format = iota // line-oriented diagnostic text
	JSON                   // flow --json result object
	Combined               // [check, coverage] two-element array
)

// Sniff examines the first bytes of output to determine its format.
// Anything that is not recognizably JSON is treated as text; the text parser
// is the lenient fallback for every Flow release we cannot identify.
func Sniff(data []byte) Format {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Text
	}

	switch data[0] {
	case '{':
		if isResultObject(data) {
			return JSON
		}
	case '[':
		if isCombinedArray(data) {
			return Combined
		}
	}
	return Text
}

// isResultObject probes for the fields every flow --json result carries.
func isResultObject(data []byte) bool {
	var probe struct {
		Passed  *bool             `json:"passed"`
		Errors  []json.RawMessage `json:"errors"`
		Version string            `json:"flowVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Passed != nil || probe.Errors != nil || probe.Version != ""
}

// isCombinedArray probes for the historical [check, coverage] blob produced
// when a check result and a coverage result are concatenated.
func isCombinedArray(data []byte) bool {
	var probe []json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return len(probe) == 2
}
