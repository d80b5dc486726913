package mcp

import (
	"fmt"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/selector"
	"github.com/joshuapare/mcpkit/config/verify"
	"github.com/joshuapare/mcpkit/pkg/types"
)

// Entry pairs a server with its name, in document declaration order.
type Entry struct {
	Name   string
	Server config.Server
}

// List returns every entry in the document, in declaration order.
func List(path string) ([]Entry, error) {
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, doc.Len())
	doc.Each(func(name string, s config.Server) bool {
		entries = append(entries, Entry{Name: name, Server: s})
		return true
	})
	return entries, nil
}

// Get returns the named entry.
func Get(path, name string) (config.Server, error) {
	doc, err := config.Load(path)
	if err != nil {
		return config.Server{}, err
	}
	s, ok := doc.Get(name)
	if !ok {
		return config.Server{}, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("entry %q not found", name)}
	}
	return s, nil
}

// Search returns the entries whose names match the selector pattern,
// in declaration order.
func Search(path, pattern string) ([]Entry, error) {
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	sel, err := selector.Compile(pattern)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	doc.Each(func(name string, s config.Server) bool {
		if sel.Match(name) {
			entries = append(entries, Entry{Name: name, Server: s})
		}
		return true
	})
	return entries, nil
}

// Validate checks the whole document and returns the accumulated
// issues. Deep enables the slower environmental checks.
func Validate(path string, deep bool) (verify.Result, error) {
	doc, err := config.Load(path)
	if err != nil {
		return verify.Result{}, err
	}
	return verify.CheckDocument(doc, verify.Options{Deep: deep}), nil
}
