package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/joshuapare/mcpkit/pkg/types"
	"github.com/joshuapare/mcpkit/template"
)

// nameRe bounds template names so a catalog lookup can never escape
// the cache directory.
var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Manager resolves templates through the cache, the network and the
// builtin set, in that order of preference.
type Manager struct {
	Cache  *Cache
	Client *Client

	// Offline disables network access entirely. Cached and builtin
	// templates still resolve.
	Offline bool
}

// NewManager returns a manager caching under dir and fetching from the
// default repository.
func NewManager(dir string) *Manager {
	return &Manager{Cache: NewCache(dir), Client: NewClient()}
}

// Refresh fetches the catalog index and stores it in the cache. When
// force is false the request carries the cached ETag, so an unchanged
// catalog costs one conditional request and just extends the expiry.
func (m *Manager) Refresh(ctx context.Context, force bool) error {
	if m.Offline {
		return &types.Error{Kind: types.ErrKindState, Msg: "cannot refresh catalog in offline mode"}
	}
	etag := ""
	if !force {
		if meta, err := m.Cache.Metadata(); err == nil {
			etag = meta.CatalogETag
		}
	}
	cat, newTag, err := m.Client.FetchCatalog(ctx, etag)
	if errors.Is(err, ErrNotModified) {
		cached, cerr := m.Cache.Catalog()
		if cerr != nil {
			// Metadata said we had a copy but the file is gone.
			// Re-fetch unconditionally.
			cat, newTag, err = m.Client.FetchCatalog(ctx, "")
			if err != nil {
				return err
			}
			return m.Cache.SaveCatalog(cat, newTag)
		}
		return m.Cache.SaveCatalog(cached, newTag)
	}
	if err != nil {
		return err
	}
	return m.Cache.SaveCatalog(cat, newTag)
}

// Catalog returns the effective template index: the remote catalog
// merged over the builtin set, with remote entries winning name
// collisions. Network failures degrade to the cached copy (even a
// stale one) and then to the builtins alone; cancellation propagates.
func (m *Manager) Catalog(ctx context.Context) (*template.Catalog, error) {
	if !m.Offline && m.Cache.Expired() {
		if err := m.Refresh(ctx, false); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
		}
	}
	cached, err := m.Cache.Catalog()
	if err != nil {
		return template.BuiltinCatalog(), nil
	}
	return merge(cached), nil
}

// Resolve returns the named template: fresh cache first, then the
// network, then a stale cached copy, then the builtin set.
func (m *Manager) Resolve(ctx context.Context, name string) (*template.Template, error) {
	if !nameRe.MatchString(name) {
		return nil, &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("invalid template name %q", name)}
	}

	if !m.Cache.Expired() {
		if t, err := m.Cache.Template(name); err == nil {
			if verr := t.Validate(); verr == nil {
				return t, nil
			}
		}
	}

	if !m.Offline {
		t, err := m.fetch(ctx, name)
		if err == nil {
			return t, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		// Degradation is for availability failures only. A template
		// that arrived but is malformed or lies about its name is a
		// hard stop.
		if types.IsKind(err, types.ErrKindFormat) {
			return nil, err
		}
	}

	// Offline or unreachable: stale cache beats nothing.
	if t, err := m.Cache.Template(name); err == nil {
		if verr := t.Validate(); verr == nil {
			return t, nil
		}
	}
	if t, ok := template.Builtin(name); ok {
		return t, nil
	}
	return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("template %q not found", name)}
}

// fetch downloads one template, resolving its repository path through
// the catalog, and caches the result.
func (m *Manager) fetch(ctx context.Context, name string) (*template.Template, error) {
	cat, err := m.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := cat.Find(name)
	if !ok {
		return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("template %q not found in catalog", name)}
	}
	t, err := m.Client.FetchTemplate(ctx, entry.Path)
	if err != nil {
		return nil, err
	}
	if t.Name != name {
		return nil, &types.Error{Kind: types.ErrKindFormat, Msg: fmt.Sprintf("template file for %q declares name %q", name, t.Name)}
	}
	if err := m.Cache.SaveTemplate(t); err != nil {
		// The template itself is good; a cache write failure only
		// costs the next lookup a refetch.
		return t, nil
	}
	return t, nil
}

// merge overlays remote on top of the builtin catalog.
func merge(remote *template.Catalog) *template.Catalog {
	out := template.BuiltinCatalog()
	if remote == nil {
		return out
	}
	if remote.Version != "" {
		out.Version = remote.Version
	}
	if !remote.LastUpdated.IsZero() {
		out.LastUpdated = remote.LastUpdated
	}
	for name, e := range remote.Templates {
		out.Templates[name] = e
	}
	return out
}
