package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joshuapare/mcpkit/internal/writer"
	"github.com/joshuapare/mcpkit/pkg/types"
	"github.com/joshuapare/mcpkit/template"
)

const (
	metadataFile = "metadata.json"
	catalogFile  = "catalog.json"
	templatesDir = "templates"
)

// DefaultTTL is how long cached catalog data stays fresh.
const DefaultTTL = 30 * 24 * time.Hour

// Metadata records when the cache was last filled and the catalog's
// ETag for conditional refreshes.
type Metadata struct {
	LastRefresh time.Time `json:"last_refresh"`
	ExpiresAt   time.Time `json:"expires_at"`
	CatalogETag string    `json:"catalog_etag,omitempty"`
}

// Cache stores catalog data on disk.
type Cache struct {
	// Dir is the cache directory. Created on first save.
	Dir string

	// TTL overrides DefaultTTL when positive.
	TTL time.Duration

	// Now returns the current time. Nil means time.Now. Tests
	// inject a fixed clock here.
	Now func() time.Time
}

// NewCache returns a cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{Dir: dir}
}

func (c *Cache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Cache) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return DefaultTTL
}

// Metadata reads the cache bookkeeping. A missing file returns the
// zero value without error; Expired treats that as stale.
func (c *Cache) Metadata() (Metadata, error) {
	data, err := os.ReadFile(filepath.Join(c.Dir, metadataFile))
	if os.IsNotExist(err) {
		return Metadata{}, nil
	}
	if err != nil {
		return Metadata{}, &types.Error{Kind: types.ErrKindIo, Msg: "read cache metadata", Err: err}
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, &types.Error{Kind: types.ErrKindFormat, Msg: "decode cache metadata", Err: err}
	}
	return meta, nil
}

// Expired reports whether the cache needs a refresh. An empty or
// unreadable cache counts as expired.
func (c *Cache) Expired() bool {
	meta, err := c.Metadata()
	if err != nil || meta.ExpiresAt.IsZero() {
		return true
	}
	return c.now().After(meta.ExpiresAt)
}

// Catalog loads the cached index.
func (c *Cache) Catalog() (*template.Catalog, error) {
	data, err := os.ReadFile(filepath.Join(c.Dir, catalogFile))
	if os.IsNotExist(err) {
		return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: "no cached catalog"}
	}
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindIo, Msg: "read cached catalog", Err: err}
	}
	var cat template.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, &types.Error{Kind: types.ErrKindFormat, Msg: "decode cached catalog", Err: err}
	}
	return &cat, nil
}

// SaveCatalog writes the index and stamps fresh metadata. etag may be
// empty when the server sent none.
func (c *Cache) SaveCatalog(cat *template.Catalog, etag string) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("create cache directory %s", c.Dir), Err: err}
	}
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: "encode catalog", Err: err}
	}
	w := &writer.FileWriter{Path: filepath.Join(c.Dir, catalogFile)}
	if err := w.WriteConfig(data); err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: "write cached catalog", Err: err}
	}
	now := c.now().UTC()
	return c.writeMetadata(Metadata{
		LastRefresh: now,
		ExpiresAt:   now.Add(c.ttl()),
		CatalogETag: etag,
	})
}

// Template loads one cached template definition by name.
func (c *Cache) Template(name string) (*template.Template, error) {
	if !nameRe.MatchString(name) {
		return nil, &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("invalid template name %q", name)}
	}
	data, err := os.ReadFile(c.templatePath(name))
	if os.IsNotExist(err) {
		return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("template %q is not cached", name)}
	}
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("read cached template %q", name), Err: err}
	}
	var t template.Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, &types.Error{Kind: types.ErrKindFormat, Msg: fmt.Sprintf("decode cached template %q", name), Err: err}
	}
	return &t, nil
}

// SaveTemplate writes one template definition into the cache. The
// template's name picks the file, so it must pass the same check as
// lookups; this keeps a hostile catalog from writing outside the
// cache.
func (c *Cache) SaveTemplate(t *template.Template) error {
	if !nameRe.MatchString(t.Name) {
		return &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("invalid template name %q", t.Name)}
	}
	dir := filepath.Join(c.Dir, templatesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("create cache directory %s", dir), Err: err}
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("encode template %q", t.Name), Err: err}
	}
	w := &writer.FileWriter{Path: c.templatePath(t.Name)}
	if err := w.WriteConfig(data); err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("write cached template %q", t.Name), Err: err}
	}
	return nil
}

// Clear removes all cached data. A missing cache directory is not an
// error.
func (c *Cache) Clear() error {
	if err := os.RemoveAll(c.Dir); err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("clear cache %s", c.Dir), Err: err}
	}
	return nil
}

func (c *Cache) writeMetadata(meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: "encode cache metadata", Err: err}
	}
	w := &writer.FileWriter{Path: filepath.Join(c.Dir, metadataFile)}
	if err := w.WriteConfig(data); err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: "write cache metadata", Err: err}
	}
	return nil
}

func (c *Cache) templatePath(name string) string {
	return filepath.Join(c.Dir, templatesDir, name+".json")
}
