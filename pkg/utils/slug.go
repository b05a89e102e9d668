package utils

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const quoteChars = "'\"`‘’“”"

// Slugify derives a URL-safe identifier from free text. Inputs differing only
// in case, punctuation or accents produce the same slug.
func Slugify(text string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastDash := false
	for _, ch := range strings.ToLower(folded) {
		if strings.ContainsRune(quoteChars, ch) {
			continue
		}
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// EnsureUnique returns base if no existing slug matches it, otherwise the first
// of base-2, base-3, ... that is free. Comparison ignores case.
func EnsureUnique(base string, existing []string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[strings.ToLower(s)] = struct{}{}
	}
	if _, ok := taken[strings.ToLower(base)]; !ok {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, ok := taken[strings.ToLower(candidate)]; !ok {
			return candidate
		}
	}
}
