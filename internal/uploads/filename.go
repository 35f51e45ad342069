package uploads

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Anything outside this set is dropped from uploaded filenames
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	// Runs of whitespace become a single underscore
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// SanitizeFilename reduces a client supplied filename to a flat ASCII name
// that is safe to join onto a directory. Path separators are treated as
// spaces, so "../../etc/passwd" becomes "etc_passwd". The result may be
// empty.
func SanitizeFilename(filename string) string {
	filename = norm.NFKD.String(filename)
	filename = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, filename)

	filename = strings.NewReplacer("/", " ", "\\", " ").Replace(filename)
	filename = whitespaceRuns.ReplaceAllString(strings.TrimSpace(filename), "_")
	filename = unsafeFilenameChars.ReplaceAllString(filename, "")

	return strings.Trim(filename, "._")
}
