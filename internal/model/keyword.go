package model

import (
	"math"
	"strings"
	"unicode"
)

// ExtractKeyword derives the learning keyword for a transaction description:
// lower-case, strip non-alphanumeric characters, keep words longer than
// three characters, join the first two with a space. Deterministic; shared
// by rule learning and memory lookup, so both sides derive the same key.
func ExtractKeyword(description string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(description) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	words := make([]string, 0, 2)
	for _, w := range strings.Fields(b.String()) {
		if len(w) > 3 {
			words = append(words, w)
		}
		if len(words) == 2 {
			break
		}
	}
	return strings.Join(words, " ")
}

// AmountBucket groups an amount into a $50-wide range and returns its
// inclusive bounds, e.g. 42.10 -> (0, 49), 120 -> (100, 149).
func AmountBucket(amount float64) (rangeMin, rangeMax float64) {
	rangeMin = math.Floor(amount/50) * 50
	return rangeMin, rangeMin + 49
}
