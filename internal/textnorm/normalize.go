// Package textnorm builds case- and accent-insensitive keys for ordering
// participant names and group identifiers.
package textnorm

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key lowercases s and strips combining marks after NFKD decomposition,
// so "Ángel Peña" and "angel pena" share a key.
func Key(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		// transform only fails on invalid chains; fall back to plain folding
		out = s
	}
	return strings.ToLower(out)
}

// Compare orders a and b by Key, falling back to the raw strings so that
// distinct inputs with the same key still sort deterministically.
func Compare(a, b string) int {
	ka, kb := Key(a), Key(b)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func Less(a, b string) bool { return Compare(a, b) < 0 }

// SortStrings sorts ss in place by normalized key.
func SortStrings(ss []string) {
	sort.SliceStable(ss, func(i, j int) bool { return Less(ss[i], ss[j]) })
}
