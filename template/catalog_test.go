package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog() *Catalog {
	return &Catalog{
		Version: "1.2.0",
		Templates: map[string]CatalogEntry{
			"github": {
				Name: "github", Version: "1.0.0",
				Description: "GitHub repositories and issues",
				Tags:        []string{"development"},
				Category:    "development",
				Path:        "templates/github.json",
			},
			"sqlite": {
				Name: "sqlite", Version: "2.0.0",
				Description: "Query SQLite database files",
				Tags:        []string{"database", "sql"},
				Category:    "database",
				Path:        "templates/sqlite.json",
			},
			"brave-search": {
				Name: "brave-search", Version: "1.1.0",
				Description: "Web search",
				Tags:        []string{"search"},
				Category:    "search",
				Path:        "templates/brave-search.json",
			},
		},
	}
}

func TestCatalogNamesSorted(t *testing.T) {
	assert.Equal(t, []string{"brave-search", "github", "sqlite"}, sampleCatalog().Names())
}

func TestCatalogFind(t *testing.T) {
	cat := sampleCatalog()
	e, ok := cat.Find("sqlite")
	require.True(t, ok)
	assert.Equal(t, "templates/sqlite.json", e.Path)

	_, ok = cat.Find("nope")
	assert.False(t, ok)
}

// TestCatalogSearch verifies matching over name, description, category
// and tags, case-insensitively.
func TestCatalogSearch(t *testing.T) {
	cat := sampleCatalog()

	names := func(es []CatalogEntry) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.Name
		}
		return out
	}

	assert.Equal(t, []string{"sqlite"}, names(cat.Search("SQLite")))
	assert.Equal(t, []string{"sqlite"}, names(cat.Search("sql")))
	assert.Equal(t, []string{"github"}, names(cat.Search("issues")))
	assert.Equal(t, []string{"github"}, names(cat.Search("development")))
	assert.Empty(t, cat.Search("jellyfish"))

	// empty query returns everything in name order
	assert.Equal(t, []string{"brave-search", "github", "sqlite"}, names(cat.Search("")))
	assert.Equal(t, []string{"brave-search", "github", "sqlite"}, names(cat.Search("  ")))
}
