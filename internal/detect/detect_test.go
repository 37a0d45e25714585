package detect

import "testing"

func TestSniff_Empty(t *testing.T) {
	if got := Sniff(nil); got != Text {
		t.Errorf("Sniff(nil) = %v, want Text", got)
	}
	if got := Sniff([]byte("  \n\t")); got != Text {
		t.Errorf("Sniff(whitespace) = %v, want Text", got)
	}
}

func TestSniff_TextDiagnostics(t *testing.T) {
	input := []byte("foo.js:10:5,9: Cannot resolve name `bar`\n\nFound 1 error\n")
	if got := Sniff(input); got != Text {
		t.Errorf("got %v, want Text", got)
	}
}

func TestSniff_ResultObject(t *testing.T) {
	cases := [][]byte{
		[]byte(`{"passed":true,"errors":[]}`),
		[]byte(`{"flowVersion":"0.27.0","errors":[]}`),
		[]byte(`{"passed":false}`),
	}
	for _, input := range cases {
		if got := Sniff(input); got != JSON {
			t.Errorf("Sniff(%s) = %v, want JSON", input, got)
		}
	}
}

func TestSniff_NonResultObject(t *testing.T) {
	// JSON, but not a flow result: fall back to text.
	if got := Sniff([]byte(`{"version":"2.1.0"}`)); got != Text {
		t.Errorf("got %v, want Text", got)
	}
}

func TestSniff_CombinedArray(t *testing.T) {
	input := []byte(`[{"passed":true,"errors":[]},{"expressions":{}}]`)
	if got := Sniff(input); got != Combined {
		t.Errorf("got %v, want Combined", got)
	}
}

func TestSniff_WrongLengthArray(t *testing.T) {
	if got := Sniff([]byte(`[1]`)); got != Text {
		t.Errorf("got %v, want Text", got)
	}
	if got := Sniff([]byte(`[1,2,3]`)); got != Text {
		t.Errorf("got %v, want Text", got)
	}
}

func TestSniff_MalformedJSON(t *testing.T) {
	if got := Sniff([]byte(`{"passed":`)); got != Text {
		t.Errorf("got %v, want Text", got)
	}
}
