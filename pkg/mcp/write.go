package mcp

import (
	"context"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/bulk"
	"github.com/joshuapare/mcpkit/config/plan"
)

// Add creates a new entry. The name must not exist yet.
//
// Example:
//
//	res, err := mcp.Add(ctx, path, "sqlite", config.Server{
//	    Command: "uvx",
//	    Args:    []string{"mcp-server-sqlite", "--db-path", dbPath},
//	}, nil)
func Add(ctx context.Context, path, name string, server config.Server, opts *Options) (*Result, error) {
	return single(ctx, path, plan.AddOne(name, server), opts)
}

// Update rewrites one existing entry through a mutator. Compose
// mutators with plan.Chain.
//
// Example:
//
//	res, err := mcp.Update(ctx, path, "github",
//	    plan.Chain(plan.SetCommand("npx"), plan.UnsetEnv("DEBUG")), nil)
func Update(ctx context.Context, path, name string, mutate plan.Mutator, opts *Options) (*Result, error) {
	return single(ctx, path, plan.UpdateOne(name, mutate), opts)
}

// Remove deletes one entry by exact name.
func Remove(ctx context.Context, path, name string, opts *Options) (*Result, error) {
	return single(ctx, path, plan.RemoveOne(name), opts)
}

// single runs the plan-approve-apply cycle for one-entry operations.
func single(ctx context.Context, path string, op plan.Operation, opts *Options) (*Result, error) {
	opts = opts.orDefaults()
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	p, err := plan.NewPlanner(doc, opts.Verify).Plan(op)
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

// UpdateMatching rewrites every entry matching the selector, each in
// its own transaction, reported in match order.
//
// Example:
//
//	res, err := mcp.UpdateMatching(ctx, path, "api-*",
//	    plan.SetEnv("TIMEOUT", "30"), &mcp.Options{ContinueOnError: true})
func UpdateMatching(ctx context.Context, path, pattern string, mutate plan.Mutator, opts *Options) (*bulk.Result, error) {
	opts = opts.orDefaults()
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return opts.runner(path).Run(ctx, doc, pattern, bulk.UpdateOp(mutate), opts.policy())
}

// RemoveMatching deletes every entry matching the selector, each in
// its own transaction, reported in match order. A pattern that matches
// nothing succeeds with a warning in the result.
func RemoveMatching(ctx context.Context, path, pattern string, opts *Options) (*bulk.Result, error) {
	opts = opts.orDefaults()
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return opts.runner(path).Run(ctx, doc, pattern, bulk.RemoveOp(), opts.policy())
}
