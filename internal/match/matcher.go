package match

import (
	"strings"

	"github.com/mjashby/forage/internal/normalize"
)

// ProcessText scans text for known aliases and returns every hit in
// discovery order of the longest-first scan (not order of appearance in the
// text). Each matched alias consumes all of its occurrences from the working
// text, so a shorter alias cannot re-match characters already claimed and
// the same alias never matches twice in one utterance.
//
// The scan is fully deterministic given the index and input; empty or
// unrecognizable text yields no matches.
func (ix *Index) ProcessText(text string) []Alias {
	working := normalize.Key(text)
	if working == "" {
		return nil
	}

	var matches []Alias
	for _, a := range ix.byLength {
		if a.Normalized == "" {
			continue
		}
		if strings.Contains(working, a.Normalized) {
			matches = append(matches, a)
			working = strings.ReplaceAll(working, a.Normalized, "")
		}
	}
	return matches
}
