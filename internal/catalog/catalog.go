// Package catalog holds the canonical food entries the matcher recognizes,
// built wholesale from imported tabular rows.
package catalog

import (
	"log/slog"

	"github.com/mjashby/forage/internal/normalize"
)

// Food is one canonical catalog entry. Immutable after import.
type Food struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Synonyms []string `json:"synonyms,omitempty"`
}

// Catalog is an insertion-ordered collection of foods. It is replaced
// wholesale on each import, never mutated incrementally.
type Catalog struct {
	foods  []*Food
	byName map[string]*Food // first-seen entry wins
}

// ImportStats summarizes one import pass.
type ImportStats struct {
	Imported   int
	Skipped    int
	Duplicates int
}

// Import builds a new catalog from rows of string cells:
// cell[0] = name, cell[1] = category, cell[2] (optional) = synonym list.
// Rows with fewer than two cells are dropped with a warning. A row whose
// name already exists is appended anyway with a warning; name lookups keep
// resolving to the first-seen entry.
func Import(rows [][]string, logger *slog.Logger) (*Catalog, ImportStats) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Catalog{byName: make(map[string]*Food, len(rows))}
	var stats ImportStats

	for i, row := range rows {
		if len(row) < 2 {
			logger.Warn("catalog: dropping malformed row",
				slog.Int("row", i),
				slog.Int("cells", len(row)))
			stats.Skipped++
			continue
		}

		f := &Food{
			Name:     normalize.Name(row[0]),
			Category: normalize.Name(row[1]),
		}
		if len(row) > 2 {
			f.Synonyms = normalize.SplitSynonyms(row[2])
		}

		if _, dup := c.byName[f.Name]; dup {
			logger.Warn("catalog: duplicate food name",
				slog.Int("row", i),
				slog.String("name", f.Name))
			stats.Duplicates++
		} else {
			c.byName[f.Name] = f
		}
		c.foods = append(c.foods, f)
		stats.Imported++
	}

	return c, stats
}

// FindForName returns the first-seen food with the given display-normalized
// name.
func (c *Catalog) FindForName(name string) (*Food, bool) {
	f, ok := c.byName[normalize.Name(name)]
	return f, ok
}

// Foods returns all entries in import order. The returned slice must not be
// modified.
func (c *Catalog) Foods() []*Food {
	return c.foods
}

// Len returns the number of entries, duplicates included.
func (c *Catalog) Len() int {
	return len(c.foods)
}
