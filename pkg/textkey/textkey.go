// Package textkey builds comparison keys for free-text identifiers such as
// registration numbers and owner names. Keys are NFC-normalized and Unicode
// case-folded so "Åsa" and "åsa" compare equal even when one of them was
// stored in decomposed form.
package textkey

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the case-insensitive comparison key for s.
// A Caser is stateful, so one is created per call.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Blank reports whether s is empty or only whitespace
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ContainsAny reports whether the folded form of s contains any of the
// already folded needles as a substring
func ContainsAny(s string, foldedNeedles []string) bool {
	if s == "" {
		return false
	}
	folded := Fold(s)
	for _, n := range foldedNeedles {
		if n != "" && strings.Contains(folded, n) {
			return true
		}
	}
	return false
}

// FoldAll folds every entry and drops blanks
func FoldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if Blank(s) {
			continue
		}
		out = append(out, Fold(strings.TrimSpace(s)))
	}
	return out
}
