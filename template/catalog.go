package template

import (
	"sort"
	"strings"
	"time"
)

// CatalogEntry is the catalog's summary of one template: enough to
// list and search without fetching the full definition. Path locates
// the definition file relative to the repository root.
type CatalogEntry struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	Category    string   `json:"category,omitempty"`
	Path        string   `json:"path"`
}

// Catalog is the index of available templates, keyed by name.
type Catalog struct {
	Version     string                  `json:"version"`
	LastUpdated time.Time               `json:"last_updated,omitzero"`
	Templates   map[string]CatalogEntry `json:"templates"`
}

// Names returns the template names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Templates))
	for name := range c.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Find returns the entry for name.
func (c *Catalog) Find(name string) (CatalogEntry, bool) {
	e, ok := c.Templates[name]
	return e, ok
}

// Search returns entries whose name, description, category or tags
// contain query, case-insensitively, sorted by name. An empty query
// matches everything.
func (c *Catalog) Search(query string) []CatalogEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []CatalogEntry
	for _, name := range c.Names() {
		e := c.Templates[name]
		if query == "" || entryMatches(e, query) {
			out = append(out, e)
		}
	}
	return out
}

func entryMatches(e CatalogEntry, query string) bool {
	if strings.Contains(strings.ToLower(e.Name), query) ||
		strings.Contains(strings.ToLower(e.Description), query) ||
		strings.Contains(strings.ToLower(e.Category), query) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
