package catalog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joshuapare/mcpkit/pkg/types"
	"github.com/joshuapare/mcpkit/template"
)

const (
	defaultAPIBase = "https://api.github.com"
	defaultOwner   = "mcp-forge"
	defaultRepo    = "templates"
	defaultBranch  = "main"
	defaultTimeout = 30 * time.Second

	// CatalogPath is the index file's path inside the repository.
	CatalogPath = "catalog.json"
)

// ErrNotModified reports that the remote file still matches the ETag
// the caller presented. The cached copy remains valid.
var ErrNotModified = errors.New("catalog: not modified")

// Repository locates a template repository on GitHub.
type Repository struct {
	Owner  string
	Repo   string
	Branch string
}

// DefaultRepository is the upstream template repository.
func DefaultRepository() Repository {
	return Repository{Owner: defaultOwner, Repo: defaultRepo, Branch: defaultBranch}
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Repo
}

// Client fetches catalog and template files through the GitHub
// contents API. The zero value is not usable; construct with
// NewClient.
type Client struct {
	// Repo is the repository to read from.
	Repo Repository

	// BaseURL is the API root, overridable for tests.
	BaseURL string

	// Token optionally authenticates requests, which raises the
	// rate limit. Never required.
	Token string

	// HTTP is the underlying client. NewClient installs one with a
	// 30 second timeout.
	HTTP *http.Client
}

// NewClient returns a client for the default template repository.
func NewClient() *Client {
	return &Client{
		Repo:    DefaultRepository(),
		BaseURL: defaultAPIBase,
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

// fileResponse is the contents-API shape for a single file.
type fileResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// FetchCatalog downloads and decodes the catalog index. Pass the
// previously seen ETag (or "") ; if the remote copy is unchanged the
// error is ErrNotModified and the returned ETag is the one passed in.
func (c *Client) FetchCatalog(ctx context.Context, etag string) (*template.Catalog, string, error) {
	data, newTag, err := c.fetchFile(ctx, CatalogPath, etag)
	if err != nil {
		return nil, etag, err
	}
	var cat template.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, newTag, &types.Error{Kind: types.ErrKindFormat, Msg: "decode catalog", Err: err}
	}
	return &cat, newTag, nil
}

// FetchTemplate downloads and decodes one template definition by its
// catalog path (e.g. "templates/github.json").
func (c *Client) FetchTemplate(ctx context.Context, path string) (*template.Template, error) {
	data, _, err := c.fetchFile(ctx, path, "")
	if err != nil {
		return nil, err
	}
	var t template.Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, &types.Error{Kind: types.ErrKindFormat, Msg: fmt.Sprintf("decode template %s", path), Err: err}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// CheckRepository verifies the template repository exists and is
// reachable.
func (c *Client) CheckRepository(ctx context.Context) error {
	url := fmt.Sprintf("%s/repos/%s/%s", c.BaseURL, c.Repo.Owner, c.Repo.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: "build repository request", Err: err}
	}
	c.decorate(req, "")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("reach %s", c.Repo), Err: err}
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("template repository %s not found", c.Repo)}
	default:
		return c.statusError(resp, "repository check")
	}
}

// fetchFile reads one file via the contents API and returns its
// decoded bytes plus the response ETag.
func (c *Client) fetchFile(ctx context.Context, path, etag string) ([]byte, string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.BaseURL, c.Repo.Owner, c.Repo.Repo, path, c.Repo.Branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("build request for %s", path), Err: err}
	}
	c.decorate(req, etag)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, "", &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("fetch %s from %s", path, c.Repo), Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotModified:
		return nil, etag, ErrNotModified
	case http.StatusNotFound:
		return nil, "", &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("%s not found in %s", path, c.Repo)}
	default:
		return nil, "", c.statusError(resp, "fetch "+path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, "", &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("read %s", path), Err: err}
	}
	var file fileResponse
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, "", &types.Error{Kind: types.ErrKindFormat, Msg: fmt.Sprintf("decode contents response for %s", path), Err: err}
	}
	if file.Encoding != "base64" {
		return nil, "", &types.Error{Kind: types.ErrKindFormat, Msg: fmt.Sprintf("unexpected content encoding %q for %s", file.Encoding, path)}
	}
	// The API wraps base64 at 60 columns; strip the newlines first.
	raw, err := base64.StdEncoding.DecodeString(stripWhitespace(file.Content))
	if err != nil {
		return nil, "", &types.Error{Kind: types.ErrKindFormat, Msg: fmt.Sprintf("decode base64 content for %s", path), Err: err}
	}
	return raw, resp.Header.Get("ETag"), nil
}

func (c *Client) decorate(req *http.Request, etag string) {
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "mcpkit")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
}

// statusError maps an unexpected HTTP status to a typed error. Rate
// limiting gets its own message since it is the common failure for
// unauthenticated clients.
func (c *Client) statusError(resp *http.Response, what string) error {
	if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
		return &types.Error{Kind: types.ErrKindIo, Msg: "GitHub API rate limit exceeded; try again later or set a token"}
	}
	if resp.StatusCode == http.StatusForbidden {
		return &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("%s: access denied (HTTP 403)", what)}
	}
	return &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("%s: unexpected status %s", what, resp.Status)}
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)
}
