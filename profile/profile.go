package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/internal/paths"
	"github.com/joshuapare/mcpkit/internal/writer"
	"github.com/joshuapare/mcpkit/pkg/types"
)

// DefaultName names the implicit profile stored in the primary
// configuration file.
const DefaultName = "default"

const maxNameLen = 50

var profileNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// reservedNames cannot be created; "default" is implicit and the rest
// collide with paths or flags people reach for.
var reservedNames = map[string]bool{
	DefaultName: true,
	"main":      true,
	"config":    true,
	"global":    true,
}

// Info describes one saved profile.
type Info struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastUsed    time.Time `json:"last_used,omitzero"`
	ServerCount int       `json:"server_count"`
}

// State is the registry persisted as profiles.json. Current is empty
// while the default profile is active.
type State struct {
	Current  string          `json:"current_profile,omitempty"`
	Profiles map[string]Info `json:"profiles"`
}

// Manager reads and mutates the profile registry and parks documents.
// Methods re-read the registry on every call; the struct carries no
// cached state and is cheap to construct.
type Manager struct {
	// Dir is the application config directory holding the live
	// document, the registry and the parked profiles.
	Dir string

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// NewManager returns a manager over the given config directory.
func NewManager(dir string) *Manager {
	return &Manager{Dir: dir}
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Manager) statePath() string {
	return filepath.Join(m.Dir, paths.ProfileStateFileName)
}

func (m *Manager) configPath() string {
	return filepath.Join(m.Dir, paths.ConfigFileName)
}

func (m *Manager) profilePath(name string) string {
	return filepath.Join(m.Dir, "profile_"+name+".json")
}

// ValidateName checks a candidate profile name: non-empty, at most 50
// characters, letters/digits/hyphen/underscore only, not reserved.
func ValidateName(name string) error {
	if name == "" {
		return &types.Error{Kind: types.ErrKindValidation, Msg: "profile name must not be empty"}
	}
	if len(name) > maxNameLen {
		return &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("profile name must be at most %d characters", maxNameLen)}
	}
	if !profileNameRe.MatchString(name) {
		return &types.Error{Kind: types.ErrKindValidation, Msg: "profile name may only contain letters, digits, hyphens and underscores"}
	}
	if reservedNames[strings.ToLower(name)] {
		return &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("%q is a reserved profile name", name)}
	}
	return nil
}

// Load reads the registry. A missing file is an empty registry, not an
// error.
func (m *Manager) Load() (*State, error) {
	data, err := os.ReadFile(m.statePath())
	if os.IsNotExist(err) {
		return &State{Profiles: map[string]Info{}}, nil
	}
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindIo, Msg: "read profile registry", Err: err}
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, &types.Error{Kind: types.ErrKindFormat, Msg: "decode profile registry", Err: err}
	}
	if st.Profiles == nil {
		st.Profiles = map[string]Info{}
	}
	return &st, nil
}

func (m *Manager) save(st *State) error {
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("create config directory %s", m.Dir), Err: err}
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: "encode profile registry", Err: err}
	}
	w := &writer.FileWriter{Path: m.statePath()}
	if err := w.WriteConfig(append(data, '\n')); err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: "write profile registry", Err: err}
	}
	return nil
}

// Current returns the active profile's name; DefaultName when no named
// profile is active.
func (m *Manager) Current() (string, error) {
	st, err := m.Load()
	if err != nil {
		return "", err
	}
	if st.Current == "" {
		return DefaultName, nil
	}
	return st.Current, nil
}

// List returns registered profiles sorted by name, plus the active
// profile's name.
func (m *Manager) List() ([]Info, string, error) {
	st, err := m.Load()
	if err != nil {
		return nil, "", err
	}
	infos := make([]Info, 0, len(st.Profiles))
	for _, info := range st.Profiles {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	current := st.Current
	if current == "" {
		current = DefaultName
	}
	return infos, current, nil
}

// Create registers a new profile with an empty parked document.
func (m *Manager) Create(name, description string) (Info, error) {
	if err := ValidateName(name); err != nil {
		return Info{}, err
	}
	st, err := m.Load()
	if err != nil {
		return Info{}, err
	}
	if _, ok := st.Profiles[name]; ok {
		return Info{}, &types.Error{Kind: types.ErrKindExists, Msg: fmt.Sprintf("profile %q already exists", name)}
	}

	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return Info{}, &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("create config directory %s", m.Dir), Err: err}
	}
	w := &writer.FileWriter{Path: m.profilePath(name)}
	if err := w.WriteConfig(config.New().Bytes()); err != nil {
		return Info{}, &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("write profile %q", name), Err: err}
	}

	info := Info{Name: name, Description: description, CreatedAt: m.now().UTC()}
	st.Profiles[name] = info
	if err := m.save(st); err != nil {
		return Info{}, err
	}
	return info, nil
}

// Switch activates the named profile: the live document is parked
// under the outgoing profile's name and the incoming document replaces
// it. Switching to DefaultName restores the primary document. The
// incoming profile's last-used stamp and server count are refreshed.
func (m *Manager) Switch(name string) error {
	st, err := m.Load()
	if err != nil {
		return err
	}
	if name != DefaultName {
		if _, ok := st.Profiles[name]; !ok {
			return &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("profile %q does not exist", name)}
		}
	}

	outgoing := st.Current
	if outgoing == "" {
		outgoing = DefaultName
	}
	if name == outgoing {
		// Already active; just refresh the stamp.
		return m.touch(st, name)
	}

	// Park the live document first so a crash between the two writes
	// leaves both documents on disk.
	live, err := m.readDocument(m.configPath())
	if err != nil {
		return err
	}
	if err := m.writeDocument(m.profilePath(outgoing), live); err != nil {
		return err
	}

	incoming, err := m.readDocument(m.profilePath(name))
	if err != nil {
		return err
	}
	if err := m.writeDocument(m.configPath(), incoming); err != nil {
		return err
	}

	if name == DefaultName {
		st.Current = ""
	} else {
		st.Current = name
	}
	m.recount(st, outgoing, live)
	m.recount(st, name, incoming)
	return m.touch(st, name)
}

// Delete removes a profile and its parked document. The active profile
// can only be deleted with force, which switches back to the default
// first.
func (m *Manager) Delete(name string, force bool) error {
	if name == DefaultName {
		return &types.Error{Kind: types.ErrKindState, Msg: "the default profile cannot be deleted"}
	}
	st, err := m.Load()
	if err != nil {
		return err
	}
	if _, ok := st.Profiles[name]; !ok {
		return &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("profile %q does not exist", name)}
	}
	if st.Current == name {
		if !force {
			return &types.Error{Kind: types.ErrKindState, Msg: fmt.Sprintf("profile %q is active; switch away first or force deletion", name)}
		}
		if err := m.Switch(DefaultName); err != nil {
			return err
		}
		st, err = m.Load()
		if err != nil {
			return err
		}
	}

	delete(st.Profiles, name)
	if err := m.save(st); err != nil {
		return err
	}
	if err := os.Remove(m.profilePath(name)); err != nil && !os.IsNotExist(err) {
		return &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("remove profile %q", name), Err: err}
	}
	return nil
}

// DocumentPath returns the file holding the named profile's document:
// the live configuration file when the profile is active, its parked
// file otherwise.
func (m *Manager) DocumentPath(name string) (string, error) {
	current, err := m.Current()
	if err != nil {
		return "", err
	}
	if name == "" || name == current {
		return m.configPath(), nil
	}
	if name == DefaultName {
		return m.profilePath(DefaultName), nil
	}
	st, err := m.Load()
	if err != nil {
		return "", err
	}
	if _, ok := st.Profiles[name]; !ok {
		return "", &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("profile %q does not exist", name)}
	}
	return m.profilePath(name), nil
}

// Refresh recomputes every registered profile's server count from its
// document on disk.
func (m *Manager) Refresh() error {
	st, err := m.Load()
	if err != nil {
		return err
	}
	changed := false
	for name, info := range st.Profiles {
		path := m.profilePath(name)
		if st.Current == name {
			path = m.configPath()
		}
		doc, err := m.readDocument(path)
		if err != nil {
			continue
		}
		if n := doc.Len(); n != info.ServerCount {
			info.ServerCount = n
			st.Profiles[name] = info
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return m.save(st)
}

// touch updates last-used for name (when registered) and saves.
func (m *Manager) touch(st *State, name string) error {
	if info, ok := st.Profiles[name]; ok {
		info.LastUsed = m.now().UTC()
		st.Profiles[name] = info
	}
	return m.save(st)
}

// recount updates the stored server count from a document.
func (m *Manager) recount(st *State, name string, doc *config.Document) {
	if info, ok := st.Profiles[name]; ok {
		info.ServerCount = doc.Len()
		st.Profiles[name] = info
	}
}

// readDocument parses the document at path; a missing file is an empty
// document.
func (m *Manager) readDocument(path string) (*config.Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config.New(), nil
	}
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("read %s", path), Err: err}
	}
	doc, err := config.Parse(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (m *Manager) writeDocument(path string, doc *config.Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("create directory for %s", path), Err: err}
	}
	w := &writer.FileWriter{Path: path}
	if err := w.WriteConfig(doc.Bytes()); err != nil {
		return &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("write %s", path), Err: err}
	}
	return nil
}
