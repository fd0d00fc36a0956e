// Package normalize provides the canonical text forms used across the food
// catalog, match index, and event log.
package normalize

import (
	"regexp"
	"strings"
)

// synonymDelimRe matches any run of characters that are neither Unicode
// letters nor spaces. Those runs separate individual synonyms inside a
// catalog synonym cell ("green apple, granny smith; GrannySmith").
var synonymDelimRe = regexp.MustCompile(`[^\p{L} ]+`)

// Name returns the display-normalized form of text: trimmed and lower-cased,
// spaces preserved. Used for food names, categories, synonyms, and the
// consumed-name recorded on events.
func Name(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Key returns the comparison-normalized form of text: trimmed, lower-cased,
// with all spaces removed, so that "green apple" and "greenapple" compare
// equal. Used exclusively to build and query the match index.
func Key(text string) string {
	return strings.ReplaceAll(Name(text), " ", "")
}

// SplitSynonyms splits a raw synonym cell into individual display-normalized
// synonyms. Empty pieces are discarded.
func SplitSynonyms(text string) []string {
	var out []string
	for _, piece := range synonymDelimRe.Split(text, -1) {
		if n := Name(piece); n != "" {
			out = append(out, n)
		}
	}
	return out
}
