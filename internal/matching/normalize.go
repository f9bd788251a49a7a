// Package matching reconciles free-text names from external training reports
// with internal courses and employees.
package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// noise words carry no signal when comparing course titles.
var noise = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "of": true, "for": true, "in": true,
	"course": true, "training": true, "class": true,
	"certification": true, "certificate": true, "cert": true,
}

func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func tokens(s string) []string {
	s = strings.ToLower(fold(s))
	s = strings.ReplaceAll(s, "&", " and ")
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Tokens returns the significant lower-case tokens of a course title.
func Tokens(s string) []string {
	all := tokens(s)
	out := all[:0]
	for _, tok := range all {
		if !noise[tok] {
			out = append(out, tok)
		}
	}
	return out
}

// Normalize folds a course title to a comparison key: accents removed, lower
// case, punctuation and noise words dropped.
func Normalize(s string) string {
	return strings.Join(Tokens(s), " ")
}

// NormalizeName folds a person name. "Last, First" is reordered to
// "first last" and single-letter tokens (middle initials) are dropped.
func NormalizeName(s string) string {
	if last, first, ok := strings.Cut(s, ","); ok {
		s = first + " " + last
	}
	var kept []string
	for _, tok := range tokens(s) {
		if len([]rune(tok)) > 1 {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// NormalizeNumber strips whitespace and leading zeros from an employee number.
func NormalizeNumber(s string) string {
	s = strings.ToUpper(strings.Join(strings.Fields(s), ""))
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" && s != "" {
		return "0"
	}
	return trimmed
}
