package similarity

import (
	"math"
	"strings"
	"unicode"
)

// Words that carry no signal when comparing story narratives: connective
// verbs plus the persona nouns that open nearly every narrative.
var stopWords = map[string]struct{}{
	"want":   {},
	"like":   {},
	"that":   {},
	"this":   {},
	"with":   {},
	"from":   {},
	"have":   {},
	"been":   {},
	"being":  {},
	"would":  {},
	"could":  {},
	"should": {},
	"member": {},
	"admin":  {},
	"staff":  {},
	"user":   {},
}

// QuickScore returns a 0-100 similarity score between two texts: Jaccard
// similarity over their significant token sets. Pure and symmetric; no I/O.
// Two texts with identical significant tokens score 100, texts with no
// significant tokens at all score 0.
func QuickScore(a, b string) int {
	setA := significantTokens(a)
	setB := significantTokens(b)

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return int(math.Round(100 * float64(intersection) / float64(union)))
}

// significantTokens lowercases, strips non-alphanumeric characters, and
// keeps tokens longer than 3 characters that are not stop words.
func significantTokens(text string) map[string]struct{} {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		if len(tok) <= 3 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}
