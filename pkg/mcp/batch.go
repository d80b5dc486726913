package mcp

import (
	"context"
	"fmt"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/bulk"
	"github.com/joshuapare/mcpkit/config/plan"
	"github.com/joshuapare/mcpkit/pkg/types"
	"github.com/joshuapare/mcpkit/template"
)

// TemplateResolver maps a template name to its definition. Wire a
// catalog manager's Resolve here; nil falls back to the built-in set.
type TemplateResolver func(ctx context.Context, name string) (*template.Template, error)

func builtinResolver(_ context.Context, name string) (*template.Template, error) {
	t, ok := template.Builtin(name)
	if !ok {
		return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("template %q not found", name)}
	}
	return t, nil
}

// ApplyBatch creates every server a batch file describes, in file
// order, each in its own transaction. Template entries are resolved
// and rendered first, so a broken entry surfaces before the first
// write. Entries whose names already exist fail individually; the
// ContinueOnError and DryRun options behave as in the bulk runner.
//
// Example:
//
//	bf, err := bulk.LoadBatchFile("team-servers.yaml")
//	if err != nil {
//	    return err
//	}
//	res, err := mcp.ApplyBatch(ctx, path, bf, mgr.Resolve,
//	    &mcp.Options{ContinueOnError: true})
func ApplyBatch(ctx context.Context, path string, bf *bulk.BatchFile, resolve TemplateResolver, opts *Options) (*bulk.Result, error) {
	opts = opts.orDefaults()
	if resolve == nil {
		resolve = builtinResolver
	}
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	res := &bulk.Result{}
	if len(bf.Servers) == 0 {
		res.Issues.AddWarning("batch", "batch file lists no servers")
		return res, nil
	}

	type slot struct {
		name   string
		server config.Server
		err    error
	}
	slots := make([]slot, len(bf.Servers))
	for i, e := range bf.Servers {
		slots[i].name = e.Name
		slots[i].server, slots[i].err = renderBatchEntry(ctx, e, resolve)
	}

	report := func(name string, outcome bulk.Outcome, rerr error) {
		if opts.Progress != nil {
			opts.Progress(name, outcome, rerr)
		}
	}

	if opts.DryRun {
		// Later entries plan against a preview that includes earlier
		// ones, so duplicate names inside the file show up here too.
		preview := doc.Clone()
		res.Plans = make([]*plan.Plan, len(slots))
		for i, sl := range slots {
			if sl.err == nil {
				res.Plans[i], sl.err = plan.NewPlanner(preview, opts.Verify).Plan(plan.AddOne(sl.name, sl.server))
			}
			if sl.err != nil {
				res.Failed = append(res.Failed, bulk.Failure{Name: sl.name, Err: sl.err})
				report(sl.name, bulk.OutcomeFailed, sl.err)
				continue
			}
			if err := preview.Set(sl.name, sl.server); err != nil {
				return nil, err
			}
			report(sl.name, bulk.OutcomePlanned, nil)
		}
		return res, nil
	}

	exec := opts.executor(path)
	current := doc
	stopped := false
	for i, sl := range slots {
		if stopped {
			res.Skipped = append(res.Skipped, sl.name)
			report(sl.name, bulk.OutcomeSkipped, nil)
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Skipped = append(res.Skipped, sl.name)
			report(sl.name, bulk.OutcomeSkipped, nil)
			for _, rest := range slots[i+1:] {
				res.Skipped = append(res.Skipped, rest.name)
				report(rest.name, bulk.OutcomeSkipped, nil)
			}
			return res, err
		}

		fail := func(ferr error) {
			res.Failed = append(res.Failed, bulk.Failure{Name: sl.name, Err: ferr})
			report(sl.name, bulk.OutcomeFailed, ferr)
			if !opts.ContinueOnError {
				stopped = true
			}
		}

		if sl.err != nil {
			fail(sl.err)
			continue
		}
		p, perr := plan.NewPlanner(current, opts.Verify).Plan(plan.AddOne(sl.name, sl.server))
		if perr != nil {
			fail(perr)
			continue
		}
		p.Approve()

		txRes, applyErr := exec.Apply(ctx, current, p)
		if applyErr != nil {
			fail(applyErr)
			continue
		}
		if txRes.Document != nil {
			current = txRes.Document
		}
		res.Applied = append(res.Applied, sl.name)
		report(sl.name, bulk.OutcomeApplied, nil)
	}
	return res, nil
}

// renderBatchEntry turns one batch entry into the server it describes.
func renderBatchEntry(ctx context.Context, e bulk.BatchEntry, resolve TemplateResolver) (config.Server, error) {
	if e.Literal() {
		return config.Server{Command: e.Command, Args: e.Args, Env: e.Env}, nil
	}
	t, err := resolve(ctx, e.Template)
	if err != nil {
		return config.Server{}, err
	}
	vars := make(map[string]any, len(e.Vars))
	for k, v := range e.Vars {
		vars[k] = v
	}
	return template.Render(t, vars)
}
