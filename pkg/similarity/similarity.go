// Package similarity provides normalized name similarity scoring used by the
// import identity matcher.
package similarity

import (
	"math"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// nameSuffixes are generational suffixes stripped before comparison.
var nameSuffixes = map[string]struct{}{
	"jr":  {},
	"sr":  {},
	"ii":  {},
	"iii": {},
	"iv":  {},
}

// Normalize lowercases, trims, strips punctuation, collapses internal
// whitespace, and drops common name suffixes (Jr, Sr, II, III, IV).
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, f := range fields {
		if _, ok := nameSuffixes[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// Percent returns a 0-100 similarity between two normalized strings:
// round(100 × (maxLen − editDistance) / maxLen). Identical strings, including
// two empty strings, score 100.
func Percent(a, b string) int {
	if a == b {
		return 100
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * float64(maxLen-dist) / float64(maxLen)))
}

// NamePercent normalizes both inputs then scores them.
func NamePercent(a, b string) int {
	return Percent(Normalize(a), Normalize(b))
}
