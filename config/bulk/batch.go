package bulk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/mcpkit/pkg/types"
)

// BatchEntry describes one server to create from a batch file: either a
// template to instantiate with variable values, or a literal command
// with arguments and environment. Exactly one of the two forms applies.
type BatchEntry struct {
	Name     string            `json:"name" yaml:"name"`
	Template string            `json:"template,omitempty" yaml:"template,omitempty"`
	Vars     map[string]string `json:"vars,omitempty" yaml:"vars,omitempty"`

	Command string            `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// Literal reports whether the entry spells out its command directly
// instead of going through a template.
func (e BatchEntry) Literal() bool {
	return e.Template == ""
}

// BatchFile is the parsed batch document.
type BatchFile struct {
	Servers []BatchEntry `json:"servers" yaml:"servers"`
}

// LoadBatchFile reads a batch document. The format follows the file
// extension; anything that is not clearly JSON or YAML is tried as JSON
// first, then YAML.
func LoadBatchFile(path string) (*BatchFile, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("read batch file %s", path), Err: err}
	}

	var bf BatchFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(buf, &bf)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(buf, &bf)
	default:
		if err = json.Unmarshal(buf, &bf); err != nil {
			err = yaml.Unmarshal(buf, &bf)
		}
	}
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindFormat, Msg: fmt.Sprintf("parse batch file %s", path), Err: err}
	}

	for i, e := range bf.Servers {
		if strings.TrimSpace(e.Name) == "" {
			return nil, &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("batch entry %d has no name", i)}
		}
		switch {
		case e.Template == "" && strings.TrimSpace(e.Command) == "":
			return nil, &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("batch entry %q needs a template or a command", e.Name)}
		case e.Template != "" && e.Command != "":
			return nil, &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("batch entry %q sets both a template and a command", e.Name)}
		}
	}
	return &bf, nil
}

// ParseEnvAssignments parses KEY=VALUE pairs as used by bulk update
// flags. The value may contain further '=' characters.
func ParseEnvAssignments(assignments []string) (map[string]string, error) {
	out := make(map[string]string, len(assignments))
	for _, a := range assignments {
		key, value, ok := strings.Cut(a, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid environment assignment %q (use KEY=VALUE)", a)
		}
		out[key] = value
	}
	return out, nil
}
