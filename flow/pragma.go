package flow

import "regexp"

// pragmaRe matches the @flow opt-in marker. Flow itself only honors the
// pragma inside the first docblock, but the historical plugin behavior is a
// plain substring search over the file, which we keep for compatibility.
var pragmaRe = regexp.MustCompile(`@flow`)

// HasPragma reports whether src carries the @flow opt-in marker. Files
// without it are skipped unless Config.All is set.
func HasPragma(src []byte) bool {
	return pragmaRe.Match(src)
}
