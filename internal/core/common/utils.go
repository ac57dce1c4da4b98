package common

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize lower-cases text and splits it on every rune that is neither a
// letter nor a digit. Tokens shorter than two runes are dropped, as are
// duplicates; the first occurrence keeps its position.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

// Overlaps reports whether any token and keyword contain one another.
func Overlaps(tokens []string, keyword string) bool {
	for _, t := range tokens {
		if strings.Contains(t, keyword) || strings.Contains(keyword, t) {
			return true
		}
	}
	return false
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
