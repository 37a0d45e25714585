package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOutput_When_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ParseOutput(""))
}

func TestParseOutput_When_NoiseOnly(t *testing.T) {
	t.Parallel()

	raw := `Launching Flow server for /project
Spawned flow server (pid=1234)
Logs will go to /tmp/flow/project.log

Found 0 errors
`
	assert.Empty(t, ParseOutput(raw))
}

func TestParseOutput_When_SingleDiagnostic(t *testing.T) {
	t.Parallel()

	raw := "foo.js:10:5,9: Cannot resolve name `bar`\n"

	diags := ParseOutput(raw)

	assert.Len(t, diags, 1)
	assert.Equal(t, Diagnostic{
		File:     "foo.js",
		Line:     10,
		Column:   5,
		Severity: SeverityError,
		Message:  "Cannot resolve name `bar`",
	}, diags[0])
}

func TestParseOutput_When_NoColumnRange(t *testing.T) {
	t.Parallel()

	diags := ParseOutput("src/app.js:3:7: unexpected token")

	assert.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Line)
	assert.Equal(t, 7, diags[0].Column)
	assert.Equal(t, "unexpected token", diags[0].Message)
}

func TestParseOutput_When_ErrorAndWarning(t *testing.T) {
	t.Parallel()

	raw := "a.js:1:1,5: Error: something broke\n" +
		"b.js:2:3,8: Warning: something is iffy\n"

	diags := ParseOutput(raw)

	assert.Len(t, diags, 2)
	assert.Equal(t, "a.js", diags[0].File)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, "something broke", diags[0].Message)
	assert.Equal(t, "b.js", diags[1].File)
	assert.Equal(t, SeverityWarning, diags[1].Severity)
	assert.Equal(t, "something is iffy", diags[1].Message)
}

func TestParseOutput_When_ContinuationLine(t *testing.T) {
	t.Parallel()

	raw := "foo.js:10:21,23: number\n" +
		"  This type is incompatible with string\n" +
		"\n" +
		"Found 1 error\n"

	diags := ParseOutput(raw)

	assert.Len(t, diags, 1)
	assert.Equal(t, "number This type is incompatible with string", diags[0].Message)
}

func TestParseOutput_When_MalformedFragments(t *testing.T) {
	t.Parallel()

	raw := "not a diagnostic\n" +
		"foo.js:banana:5: not a line number\n" +
		"foo.js:12:8: real one\n" +
		"::::\n"

	diags := ParseOutput(raw)

	assert.Len(t, diags, 1)
	assert.Equal(t, 12, diags[0].Line)
}

func TestParseOutput_IsIdempotentOnNonMatches(t *testing.T) {
	t.Parallel()

	raw := "summary text only\nno diagnostics here\n"

	assert.Empty(t, ParseOutput(raw))
	assert.Empty(t, ParseOutput(raw))
}

func TestParse_When_TextInput(t *testing.T) {
	t.Parallel()

	diags := Parse([]byte("foo.js:1:2: boom"))

	assert.Len(t, diags, 1)
	assert.Equal(t, "boom", diags[0].Message)
}

func TestParse_When_JSONInput(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"passed":false,"errors":[{"kind":"infer","level":"error","message":[
		{"descr":"bad","type":"Comment","loc":{"source":"foo.js","start":{"line":4,"column":2,"offset":30},"end":{"line":4,"column":6,"offset":34}}}
	]}]}`)

	diags := Parse(raw)

	assert.Len(t, diags, 1)
	assert.Equal(t, "foo.js", diags[0].File)
	assert.Equal(t, 4, diags[0].Line)
}

func TestParse_When_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Parse(nil))
	assert.Empty(t, Parse([]byte("")))
}
