package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/joshuapare/mcpkit/pkg/types"
)

// ServersKey is the top-level key holding the entry map.
const ServersKey = "mcpServers"

// Server is a single named entry: the command to launch, its arguments, and
// the environment handed to the process.
type Server struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// Clone returns a deep copy of the server.
func (s Server) Clone() Server {
	out := Server{Command: s.Command}
	if s.Args != nil {
		out.Args = slices.Clone(s.Args)
	}
	if s.Env != nil {
		out.Env = maps.Clone(s.Env)
	}
	return out
}

// Equal reports whether two servers are identical field for field. Nil and
// empty args/env compare equal.
func (s Server) Equal(o Server) bool {
	return s.Command == o.Command &&
		slices.Equal(s.Args, o.Args) &&
		maps.Equal(s.Env, o.Env)
}

// Document is a configuration document: an ordered set of named servers plus
// whatever other fields the desktop application keeps in the same file.
type Document struct {
	raw   []byte
	path  string
	stamp Stamp
}

// New returns an empty document containing only the entry map.
func New() *Document {
	return &Document{raw: []byte(`{"` + ServersKey + `": {}}`)}
}

// Parse builds a document from raw JSON bytes. The payload must be a single
// top-level JSON object with nothing trailing.
func Parse(data []byte) (*Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(), nil
	}
	if !gjson.ValidBytes(data) {
		return nil, &types.Error{Kind: types.ErrKindFormat, Msg: "configuration is not valid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, types.ErrNotConfig
	}
	if srv := root.Get(ServersKey); srv.Exists() && !srv.IsObject() {
		return nil, &types.Error{Kind: types.ErrKindFormat, Msg: fmt.Sprintf("%q must be an object", ServersKey)}
	}
	return &Document{raw: slices.Clone(data)}, nil
}

// Path returns the file the document was loaded from, or "" when the
// document did not come from disk.
func (d *Document) Path() string { return d.path }

// Stamp returns the on-disk stamp captured at load time. Zero when the
// document did not come from disk or the file did not exist.
func (d *Document) Stamp() Stamp { return d.stamp }

// Raw returns the document's current raw JSON bytes. Callers must treat the
// returned slice as read-only.
func (d *Document) Raw() []byte { return d.raw }

// Bytes returns the canonical serialized form written to disk:
// pretty-printed, entry order preserved, trailing newline.
func (d *Document) Bytes() []byte {
	out := pretty.Pretty(d.raw)
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out
}

// Len returns the number of entries. Duplicate keys in hand-edited JSON are
// counted as-is so validation can flag them.
func (d *Document) Len() int {
	n := 0
	gjson.GetBytes(d.raw, ServersKey).ForEach(func(_, _ gjson.Result) bool {
		n++
		return true
	})
	return n
}

// Names returns entry names in document declaration order, never sorted.
func (d *Document) Names() []string {
	var names []string
	gjson.GetBytes(d.raw, ServersKey).ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})
	return names
}

// Has reports whether an entry with the given name exists.
func (d *Document) Has(name string) bool {
	return gjson.GetBytes(d.raw, serverPath(name)).Exists()
}

// Get returns the named entry.
func (d *Document) Get(name string) (Server, bool) {
	res := gjson.GetBytes(d.raw, serverPath(name))
	if !res.Exists() {
		return Server{}, false
	}
	return decodeServer(res), true
}

// Each walks entries in declaration order. Return false from fn to stop.
func (d *Document) Each(fn func(name string, s Server) bool) {
	gjson.GetBytes(d.raw, ServersKey).ForEach(func(key, value gjson.Result) bool {
		return fn(key.String(), decodeServer(value))
	})
}

// Set creates or replaces the named entry. For an existing entry only the
// command/args/env fields are spliced, so unmodeled fields on the entry
// survive. A new entry is appended after the existing ones.
func (d *Document) Set(name string, s Server) error {
	args := s.Args
	if args == nil {
		args = []string{}
	}
	p := serverPath(name)

	if !d.Has(name) {
		raw, err := sjson.SetBytes(d.raw, p, Server{Command: s.Command, Args: args, Env: s.Env})
		if err != nil {
			return fmt.Errorf("set entry %q: %w", name, err)
		}
		d.raw = raw
		return nil
	}

	raw, err := sjson.SetBytes(d.raw, p+".command", s.Command)
	if err == nil {
		raw, err = sjson.SetBytes(raw, p+".args", args)
	}
	if err == nil {
		if len(s.Env) > 0 {
			raw, err = sjson.SetBytes(raw, p+".env", s.Env)
		} else {
			raw, err = sjson.DeleteBytes(raw, p+".env")
		}
	}
	if err != nil {
		return fmt.Errorf("set entry %q: %w", name, err)
	}
	d.raw = raw
	return nil
}

// Remove deletes the named entry. Removing an absent name reports false
// without error.
func (d *Document) Remove(name string) (bool, error) {
	if !d.Has(name) {
		return false, nil
	}
	raw, err := sjson.DeleteBytes(d.raw, serverPath(name))
	if err != nil {
		return false, fmt.Errorf("remove entry %q: %w", name, err)
	}
	d.raw = raw
	return true, nil
}

// Reorder rebuilds the entry map in the given declaration order. Every
// listed name must exist; entries not listed keep their relative order
// after the listed block. Per-entry bytes are carried verbatim, so
// unmodeled entry fields survive the rebuild.
func (d *Document) Reorder(names []string) error {
	if len(names) == 0 {
		return nil
	}
	servers := gjson.GetBytes(d.raw, ServersKey)
	listed := make(map[string]bool, len(names))
	out := []byte(`{}`)
	for _, name := range names {
		res := servers.Get(escapeName(name))
		if !res.Exists() {
			return &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("entry %q not found", name)}
		}
		listed[name] = true
		raw, err := sjson.SetRawBytes(out, escapeName(name), []byte(res.Raw))
		if err != nil {
			return fmt.Errorf("reorder entry %q: %w", name, err)
		}
		out = raw
	}
	var walkErr error
	servers.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if listed[name] {
			return true
		}
		raw, err := sjson.SetRawBytes(out, escapeName(name), []byte(value.Raw))
		if err != nil {
			walkErr = fmt.Errorf("reorder entry %q: %w", name, err)
			return false
		}
		out = raw
		return true
	})
	if walkErr != nil {
		return walkErr
	}
	raw, err := sjson.SetRawBytes(d.raw, ServersKey, out)
	if err != nil {
		return fmt.Errorf("reorder entries: %w", err)
	}
	d.raw = raw
	return nil
}

// Clone returns an independent deep copy sharing no state with d.
func (d *Document) Clone() *Document {
	return &Document{raw: slices.Clone(d.raw), path: d.path, stamp: d.stamp}
}

// Subset returns a new document holding only the named entries, copied
// raw so unmodeled per-entry fields survive. Every name must exist.
func (d *Document) Subset(names ...string) (*Document, error) {
	out := New()
	for _, name := range names {
		res := gjson.GetBytes(d.raw, serverPath(name))
		if !res.Exists() {
			return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("entry %q not found", name)}
		}
		raw, err := sjson.SetRawBytes(out.raw, serverPath(name), []byte(res.Raw))
		if err != nil {
			return nil, fmt.Errorf("copy entry %q: %w", name, err)
		}
		out.raw = raw
	}
	return out, nil
}

// serverPath returns the gjson/sjson path of a named entry, escaping path
// metacharacters so a name like "my.server" addresses a single key.
func serverPath(name string) string {
	return ServersKey + "." + escapeName(name)
}

func escapeName(name string) string {
	if !strings.ContainsAny(name, `\.*?|#@`) {
		return name
	}
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '\\', '.', '*', '?', '|', '#', '@':
			b.WriteByte('\\')
		}
		b.WriteByte(name[i])
	}
	return b.String()
}

func decodeServer(res gjson.Result) Server {
	s := Server{Command: res.Get("command").String()}
	if args := res.Get("args"); args.IsArray() {
		arr := args.Array()
		s.Args = make([]string, 0, len(arr))
		for _, a := range arr {
			s.Args = append(s.Args, a.String())
		}
	}
	if env := res.Get("env"); env.IsObject() {
		s.Env = make(map[string]string)
		env.ForEach(func(k, v gjson.Result) bool {
			s.Env[k.String()] = v.String()
			return true
		})
	}
	return s
}
