// Package match turns free-form text into structured food references via a
// longest-alias-first substring scan over the catalog's alias index.
package match

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mjashby/forage/internal/catalog"
	"github.com/mjashby/forage/internal/normalize"
)

// Alias is one literal string (a food's name or one of its synonyms) that can
// be recognized in free text. Many aliases may reference the same food.
type Alias struct {
	Original   string        `json:"alias"`
	Normalized string        `json:"-"`
	Food       *catalog.Food `json:"food"`
}

// Index holds the catalog's alias records in the two orderings the
// application needs: by descending comparison-key length for the greedy
// matcher, and alphabetically for the manual picker. Rebuilt wholesale on
// each catalog import.
type Index struct {
	byLength []Alias
	byName   []Alias
	byKey    map[string]Alias // first-seen alias wins
}

// NewIndex builds the alias index from a catalog: one record per food name
// plus one per synonym.
func NewIndex(c *catalog.Catalog) *Index {
	var aliases []Alias
	add := func(text string, f *catalog.Food) {
		aliases = append(aliases, Alias{
			Original:   normalize.Name(text),
			Normalized: normalize.Key(text),
			Food:       f,
		})
	}
	for _, f := range c.Foods() {
		add(f.Name, f)
		for _, syn := range f.Synonyms {
			add(syn, f)
		}
	}

	ix := &Index{
		byLength: aliases,
		byName:   append([]Alias(nil), aliases...),
		byKey:    make(map[string]Alias, len(aliases)),
	}

	// The descending-length order is load-bearing: without it a short alias
	// ("pea") could pre-empt a longer one ("peanut") that contains it.
	// Stable sort keeps insertion order for equal lengths.
	sort.SliceStable(ix.byLength, func(i, j int) bool {
		return len(ix.byLength[i].Normalized) > len(ix.byLength[j].Normalized)
	})

	coll := collate.New(language.English)
	sort.SliceStable(ix.byName, func(i, j int) bool {
		return coll.CompareString(ix.byName[i].Original, ix.byName[j].Original) < 0
	})

	for _, a := range aliases {
		if _, ok := ix.byKey[a.Normalized]; !ok {
			ix.byKey[a.Normalized] = a
		}
	}

	return ix
}

// ByName returns all alias records sorted ascending by their display form.
// The returned slice must not be modified.
func (ix *Index) ByName() []Alias {
	return ix.byName
}

// Lookup resolves a single alias string to its record by exact
// comparison-key equality.
func (ix *Index) Lookup(alias string) (Alias, bool) {
	a, ok := ix.byKey[normalize.Key(alias)]
	return a, ok
}

// Len returns the number of alias records.
func (ix *Index) Len() int {
	return len(ix.byLength)
}
