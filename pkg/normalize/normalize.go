// Package normalize canonicalizes entity names extracted from chapter text.
//
// Provider output for the same name can differ in Unicode composition
// (especially for CJK compatibility characters) and surrounding whitespace.
// The glossary keys on the canonical form so that the same name observed in
// two chapters maps to one entity row.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Name returns the canonical form of an entity name: NFC-normalized with
// surrounding whitespace removed. Returns "" for names that are empty after
// trimming.
func Name(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// Names canonicalizes a list of names, dropping empties and duplicates while
// preserving first-occurrence order.
func Names(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, r := range raw {
		n := Name(r)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// IsBlank reports whether a string is empty or whitespace-only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
