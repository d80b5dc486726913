package mcp

import (
	"context"
	"strings"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/plan"
	"github.com/joshuapare/mcpkit/config/verify"
	"github.com/joshuapare/mcpkit/pkg/types"
)

// ImportMode selects what Import does with the incoming entries.
type ImportMode int

const (
	// ImportMerge adds new entries and keeps existing ones untouched.
	ImportMerge ImportMode = iota

	// ImportOverwrite adds new entries and replaces existing ones.
	ImportOverwrite

	// ImportReplace makes the document hold exactly the incoming set.
	ImportReplace
)

// String returns a human-readable representation of the import mode.
func (m ImportMode) String() string {
	switch m {
	case ImportMerge:
		return "merge"
	case ImportOverwrite:
		return "overwrite"
	case ImportReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Export serializes the document, or just the named entries, as pretty
// JSON. With no names the output is the complete file including fields
// this tool does not model.
func Export(path string, names ...string) ([]byte, error) {
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return doc.Bytes(), nil
	}
	sub, err := doc.Subset(names...)
	if err != nil {
		return nil, err
	}
	return sub.Bytes(), nil
}

// Import brings entries from externally produced JSON into the
// document. The payload may carry a UTF-8 or UTF-16 byte-order mark.
// It is structurally validated (duplicate names are an error) before
// any plan is computed; entry content is validated like any other
// proposed change. The result's plan reports what was (or would be)
// changed.
func Import(ctx context.Context, path string, data []byte, mode ImportMode, opts *Options) (*Result, error) {
	opts = opts.orDefaults()

	incoming, err := config.ParseExternal(data)
	if err != nil {
		return nil, err
	}
	if structural := checkImport(incoming); !structural.OK() {
		return nil, &types.Error{
			Kind: types.ErrKindValidation,
			Msg:  "imported document is not usable: " + issueSummary(structural),
		}
	}

	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	planner := plan.NewPlanner(doc, opts.Verify)
	var p *plan.Plan
	switch mode {
	case ImportReplace:
		p, err = planner.PlanReplace(incoming)
	case ImportOverwrite:
		p, err = planner.PlanMerge(incoming, plan.MergeOverwrite)
	default:
		p, err = planner.PlanMerge(incoming, plan.MergeSkip)
	}
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		return &Result{Plan: p}, nil
	}
	p.Approve()
	txRes, err := opts.executor(path).Apply(ctx, doc, p)
	return &Result{Plan: p, Tx: txRes}, err
}

// checkImport runs the structural checks that only matter when a
// document is rebuilt from external data: duplicate or empty names.
// Entry content is judged later, per diff.
func checkImport(incoming *config.Document) verify.Result {
	var r verify.Result
	seen := make(map[string]bool)
	for _, name := range incoming.Names() {
		if name == "" {
			r.AddError("", "entry name must not be empty")
			continue
		}
		if seen[name] {
			r.AddError(name, "duplicate entry name")
		}
		seen[name] = true
	}
	return r
}

func issueSummary(r verify.Result) string {
	parts := make([]string, 0, len(r.Issues))
	for _, is := range r.Issues {
		parts = append(parts, is.String())
	}
	return strings.Join(parts, "; ")
}
