package platform

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kennygrant/sanitize"
)

// Filename limits
const (
	MaxFileNameBytes = 200
	DefaultFileName  = "untitled"
)

// Names Windows refuses regardless of extension
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

var doubleSpace = regexp.MustCompile(`[ ]{2,}`)

// NameCleaner turns media titles into safe file names
type NameCleaner struct {
	repl     *strings.Replacer
	restrict bool
}

// RegularNameCleaner keeps Unicode and drops characters illegal on common filesystems
var RegularNameCleaner = NewNameCleaner(false)

// RestrictedNameCleaner produces ASCII-only names
var RestrictedNameCleaner = NewNameCleaner(true)

// NewNameCleaner returns a cleaner; restrict limits output to ASCII letters, digits and dashes
func NewNameCleaner(restrict bool) *NameCleaner {
	return &NameCleaner{
		// illegal chars in windows filename  / \ : * < > ? " |
		repl: strings.NewReplacer(
			"/", "-",
			"\\", "-",
			":", " -",
			"*", "-",
			"|", "-",
			"?", "",
			"<", "",
			">", "",
			"\"", "'",
		),
		restrict: restrict,
	}
}

// CleanerFor returns the cleaner matching the restrict-filenames option
func CleanerFor(restrict bool) *NameCleaner {
	if restrict {
		return RestrictedNameCleaner
	}
	return RegularNameCleaner
}

// Clean removes forbidden chars, control chars, multiple and trailing spaces.
// The result is never empty.
func (n NameCleaner) Clean(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	if n.restrict {
		s = strings.Trim(sanitize.BaseName(s), "-")
	} else {
		s = n.repl.Replace(s)
		s = doubleSpace.ReplaceAllString(s, " ")
	}

	s = strings.TrimRight(strings.TrimSpace(s), ". ")
	s = truncateBytes(s, MaxFileNameBytes)
	s = strings.TrimSpace(s)

	if s == "" || s == "." || s == ".." {
		return DefaultFileName
	}
	if windowsReservedNames[strings.ToUpper(s)] {
		return "_" + s
	}
	return s
}

// truncateBytes cuts s to at most max bytes without splitting a rune
func truncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
