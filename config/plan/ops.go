package plan

import (
	"fmt"

	"github.com/joshuapare/mcpkit/config"
)

// OpKind identifies the kind of mutation an Operation requests.
type OpKind uint8

const (
	// OpAdd creates one entry that must not already exist.
	OpAdd OpKind = iota

	// OpUpdate mutates one entry that must already exist.
	OpUpdate

	// OpRemoveMany removes every entry matching a selector.
	OpRemoveMany

	// OpUpdateMany mutates every entry matching a selector.
	OpUpdateMany

	// OpRemove removes one entry that must already exist.
	OpRemove
)

// String returns a human-readable representation of the operation kind.
func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpUpdate:
		return "update"
	case OpRemoveMany:
		return "remove-many"
	case OpUpdateMany:
		return "update-many"
	case OpRemove:
		return "remove"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Mutator transforms an entry into its proposed replacement. The server
// passed in is a deep copy of the current entry, so implementations may
// modify it in place and return it.
type Mutator func(name string, s config.Server) (config.Server, error)

// Operation describes one requested mutation against a document. Use the
// constructor functions rather than filling the struct by hand.
type Operation struct {
	// Kind selects which of the remaining fields are meaningful.
	Kind OpKind

	// Name is the target entry for OpAdd and OpUpdate.
	Name string

	// Server is the new entry payload for OpAdd.
	Server config.Server

	// Selector is the pattern resolved against entry names for
	// OpRemoveMany and OpUpdateMany.
	Selector string

	// Mutate produces the replacement entry for OpUpdate and
	// OpUpdateMany.
	Mutate Mutator
}

// AddOne returns an operation that creates the named entry.
func AddOne(name string, s config.Server) Operation {
	return Operation{Kind: OpAdd, Name: name, Server: s}
}

// UpdateOne returns an operation that applies m to the named entry.
func UpdateOne(name string, m Mutator) Operation {
	return Operation{Kind: OpUpdate, Name: name, Mutate: m}
}

// RemoveOne returns an operation that deletes the named entry.
func RemoveOne(name string) Operation {
	return Operation{Kind: OpRemove, Name: name}
}

// RemoveMany returns an operation that removes every entry matching the
// selector pattern.
func RemoveMany(selector string) Operation {
	return Operation{Kind: OpRemoveMany, Selector: selector}
}

// UpdateMany returns an operation that applies m to every entry matching
// the selector pattern.
func UpdateMany(selector string, m Mutator) Operation {
	return Operation{Kind: OpUpdateMany, Selector: selector, Mutate: m}
}

// SetCommand returns a mutator that replaces the entry command.
func SetCommand(command string) Mutator {
	return func(_ string, s config.Server) (config.Server, error) {
		s.Command = command
		return s, nil
	}
}

// SetArgs returns a mutator that replaces the argument list.
func SetArgs(args ...string) Mutator {
	return func(_ string, s config.Server) (config.Server, error) {
		s.Args = append([]string(nil), args...)
		return s, nil
	}
}

// AppendArgs returns a mutator that appends to the argument list.
func AppendArgs(args ...string) Mutator {
	return func(_ string, s config.Server) (config.Server, error) {
		s.Args = append(s.Args, args...)
		return s, nil
	}
}

// SetEnv returns a mutator that sets one environment value, creating the
// env map if the entry has none.
func SetEnv(key, value string) Mutator {
	return func(_ string, s config.Server) (config.Server, error) {
		if s.Env == nil {
			s.Env = make(map[string]string, 1)
		}
		s.Env[key] = value
		return s, nil
	}
}

// UnsetEnv returns a mutator that removes one environment key. Removing a
// key that is not present is not an error.
func UnsetEnv(key string) Mutator {
	return func(_ string, s config.Server) (config.Server, error) {
		delete(s.Env, key)
		return s, nil
	}
}

// Replace returns a mutator that discards the current entry and
// substitutes s wholesale.
func Replace(s config.Server) Mutator {
	return func(string, config.Server) (config.Server, error) {
		return s.Clone(), nil
	}
}

// Chain returns a mutator that applies each given mutator in order,
// stopping at the first error.
func Chain(ms ...Mutator) Mutator {
	return func(name string, s config.Server) (config.Server, error) {
		var err error
		for _, m := range ms {
			s, err = m(name, s)
			if err != nil {
				return config.Server{}, err
			}
		}
		return s, nil
	}
}
