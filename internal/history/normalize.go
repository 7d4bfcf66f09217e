package history

import (
	"regexp"
	"strings"
)

var (
	// nonWordRegex matches anything that is not a word character or whitespace.
	nonWordRegex = regexp.MustCompile(`[^\w\s]`)
	// whitespaceRegex matches one or more whitespace characters
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Normalize lowercases s, turns punctuation into spaces and collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = nonWordRegex.ReplaceAllString(s, " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Jaccard returns the intersection-over-union of the whitespace-separated
// word sets of a and b. Two empty inputs score 0.
func Jaccard(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	fields := strings.Fields(s)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
