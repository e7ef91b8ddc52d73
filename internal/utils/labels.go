package utils

import (
	"strings"
	"unicode"
)

// CanonicalLabel folds a free-form label such as "Granite Countertops" or
// "walk-in closet" into lower snake_case
func CanonicalLabel(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// FuzzyMatch reports whether term names the same thing as label: equal canonical
// forms, or term appearing in label as whole underscore-separated words
func FuzzyMatch(term, label string) bool {
	t, l := CanonicalLabel(term), CanonicalLabel(label)
	if t == "" || l == "" {
		return false
	}
	if t == l {
		return true
	}
	return strings.Contains("_"+l+"_", "_"+t+"_")
}

// Humanize turns "walk_in_closet" into "walk in closet"
func Humanize(label string) string {
	return strings.ReplaceAll(CanonicalLabel(label), "_", " ")
}
