// Package testutil provides shared test helpers for setting up stores and
// catalogs.
package testutil

import (
	"os"
	"testing"

	"github.com/mjashby/forage/internal/catalog"
	"github.com/mjashby/forage/internal/kv"
	"github.com/mjashby/forage/internal/match"
)

// TestStore creates a temporary SQLite key-value store that is automatically
// cleaned up.
func TestStore(t *testing.T) *kv.DB {
	t.Helper()
	f, err := os.CreateTemp("", "forage-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := kv.Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestCatalog imports a small standard catalog and returns it with its alias
// index.
func TestCatalog(t *testing.T) (*catalog.Catalog, *match.Index) {
	t.Helper()
	c, _ := catalog.Import([][]string{
		{"apple", "fruit", "green apple, granny smith"},
		{"banana", "fruit", ""},
		{"pea", "vegetables"},
		{"peanut butter", "spreads", "peanut"},
	}, nil)
	return c, match.NewIndex(c)
}
