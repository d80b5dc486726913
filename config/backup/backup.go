package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/sjson"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/internal/writer"
	"github.com/joshuapare/mcpkit/pkg/types"
)

const (
	filePrefix = "config_backup_"
	fileExt    = ".json"
	stampForm  = "20060102_150405"
)

// Metadata describes one snapshot.
type Metadata struct {
	// Name is the file stem, unique within the store.
	Name string `json:"name"`

	// CreatedAt is the snapshot creation time in UTC.
	CreatedAt time.Time `json:"created_at"`

	// ServerCount is the number of entries the snapshot holds.
	ServerCount int `json:"servers_count"`

	// Label is the optional caller-supplied tag.
	Label string `json:"description,omitempty"`

	// GitBranch and GitCommit record the repository state at snapshot
	// time when capture is enabled and a repository is present.
	GitBranch string `json:"git_branch,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
}

// Entry is one stored snapshot: its metadata plus the file it lives in.
type Entry struct {
	Metadata Metadata
	Path     string
}

// envelope is the on-disk shape. Config stays raw so the snapshot
// preserves the document byte for byte.
type envelope struct {
	Metadata Metadata        `json:"metadata"`
	Config   json.RawMessage `json:"config"`
}

// Store manages snapshots under one directory.
type Store struct {
	// Dir is the snapshot directory. It is created on first write.
	Dir string

	// Now supplies timestamps; nil means time.Now. Tests override it.
	Now func() time.Time

	// CaptureGit records the current git branch and commit in snapshot
	// metadata. Off by default because it shells out.
	CaptureGit bool
}

// NewStore returns a store over dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create writes a snapshot of doc and returns its entry. The label is
// optional; it becomes part of the file name after sanitization. Any
// failure is reported as a backup error so callers can fail closed.
func (s *Store) Create(doc *config.Document, label string) (Entry, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return Entry{}, &types.Error{Kind: types.ErrKindBackup, Msg: fmt.Sprintf("create backup directory %s", s.Dir), Err: err}
	}

	created := s.now().UTC()
	name := filePrefix + created.Format(stampForm)
	if cleaned := SanitizeLabel(label); cleaned != "" {
		name += "_" + cleaned
	}

	// Same-second snapshots get a numeric suffix instead of clobbering
	// the previous one.
	path := filepath.Join(s.Dir, name+fileExt)
	for i := 2; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(s.Dir, fmt.Sprintf("%s_%d%s", name, i, fileExt))
	}
	name = strings.TrimSuffix(filepath.Base(path), fileExt)

	meta := Metadata{
		Name:        name,
		CreatedAt:   created,
		ServerCount: doc.Len(),
		Label:       label,
	}
	if s.CaptureGit {
		meta.GitBranch, meta.GitCommit = gitInfo()
	}

	// Metadata marshals normally; the document bytes are spliced in
	// verbatim afterwards, since encoding/json would re-indent a
	// RawMessage and lose the snapshot's byte fidelity.
	buf, err := json.MarshalIndent(envelope{Metadata: meta}, "", "  ")
	if err != nil {
		return Entry{}, &types.Error{Kind: types.ErrKindBackup, Msg: "encode snapshot", Err: err}
	}
	buf, err = sjson.SetRawBytes(buf, "config", doc.Raw())
	if err != nil {
		return Entry{}, &types.Error{Kind: types.ErrKindBackup, Msg: "encode snapshot", Err: err}
	}
	fw := writer.FileWriter{Path: path}
	if err := fw.WriteConfig(append(buf, '\n')); err != nil {
		return Entry{}, &types.Error{Kind: types.ErrKindBackup, Msg: fmt.Sprintf("write snapshot %s", path), Err: err}
	}
	return Entry{Metadata: meta, Path: path}, nil
}

// List returns every readable snapshot, newest first. A missing store
// directory is an empty list, not an error.
func (s *Store) List() ([]Entry, error) {
	dirents, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &types.Error{Kind: types.ErrKindBackup, Msg: fmt.Sprintf("read backup directory %s", s.Dir), Err: err}
	}

	var out []Entry
	for _, de := range dirents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), fileExt) {
			continue
		}
		path := filepath.Join(s.Dir, de.Name())
		meta, ok := readMetadata(path)
		if !ok {
			continue
		}
		out = append(out, Entry{Metadata: meta, Path: path})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Metadata.CreatedAt.After(out[j].Metadata.CreatedAt)
	})
	return out, nil
}

// Find resolves a snapshot by exact name first, then by substring. A
// substring that matches more than one snapshot is ambiguous and reported
// as such rather than silently picking one.
func (s *Store) Find(name string) (Entry, error) {
	entries, err := s.List()
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Metadata.Name == name {
			return e, nil
		}
	}
	var hits []Entry
	for _, e := range entries {
		if strings.Contains(e.Metadata.Name, name) {
			hits = append(hits, e)
		}
	}
	switch len(hits) {
	case 0:
		return Entry{}, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("backup %q not found", name)}
	case 1:
		return hits[0], nil
	default:
		names := make([]string, len(hits))
		for i, e := range hits {
			names[i] = e.Metadata.Name
		}
		return Entry{}, &types.Error{Kind: types.ErrKindBackup, Msg: fmt.Sprintf("backup %q is ambiguous: matches %s", name, strings.Join(names, ", "))}
	}
}

// Load reads the snapshot's configuration back into a document.
func (s *Store) Load(e Entry) (*config.Document, error) {
	buf, err := os.ReadFile(e.Path)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindBackup, Msg: fmt.Sprintf("read snapshot %s", e.Path), Err: err}
	}
	var env envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		return nil, &types.Error{Kind: types.ErrKindBackup, Msg: fmt.Sprintf("decode snapshot %s", e.Path), Err: err}
	}
	doc, err := config.Parse(env.Config)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", e.Path, err)
	}
	return doc, nil
}

// readMetadata extracts the metadata block, reporting false for anything
// that is not a snapshot envelope.
func readMetadata(path string) (Metadata, bool) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, false
	}
	var env envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		return Metadata{}, false
	}
	if env.Metadata.Name == "" || env.Config == nil {
		return Metadata{}, false
	}
	return env.Metadata, true
}

// SanitizeLabel maps path and shell metacharacters to underscores so a
// label always yields a safe file name component.
func SanitizeLabel(label string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(label))
}
