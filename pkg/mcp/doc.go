/*
Package mcp is the high-level, path-based API for configuration
changes. Each function loads the document, plans the change, and
carries it through a full transaction: snapshot, apply to a copy,
validate, conflict check, atomic replace.

# Quick Start

Add a server to the live configuration:

	res, err := mcp.Add(ctx, path, "sqlite", config.Server{
	    Command: "uvx",
	    Args:    []string{"mcp-server-sqlite", "--db-path", "/tmp/app.db"},
	}, nil)

# Basic Usage

Read operations never write anything:

	entries, err := mcp.List(path)
	server, err := mcp.Get(path, "github")
	matches, err := mcp.Search(path, "api-*")
	issues, err := mcp.Validate(path, false)

Write operations take an Options value (nil means defaults: backups
on, wet run, fail fast):

	res, err := mcp.Remove(ctx, path, "old-server", nil)
	res, err := mcp.Update(ctx, path, "github",
	    plan.SetEnv("GITHUB_PERSONAL_ACCESS_TOKEN", token), nil)

# Bulk Operations

Selector-based operations change every matching entry, each in its own
transaction, reported in match order:

	res, err := mcp.UpdateMatching(ctx, path, "api-*",
	    plan.SetEnv("TIMEOUT", "30"), &mcp.Options{ContinueOnError: true})
	for _, name := range res.Applied {
	    fmt.Println("updated", name)
	}

# Dry Runs

DryRun computes plans without locking or writing. The plan's preview
masks sensitive values:

	res, err := mcp.Add(ctx, path, "github", server, &mcp.Options{DryRun: true})
	for _, line := range res.Plan.Preview() {
	    fmt.Println(line)
	}

# Backups and Restore

Every wet transaction snapshots the document first. Restore brings a
snapshot back through the same transaction machinery, so restoring is
itself backed up:

	res, err := mcp.Restore(ctx, path, "20250309", nil)
	res, err := mcp.RestoreEntry(ctx, path, "20250309", "github", nil)

# Error Handling

Failures carry a types.ErrKind so callers can branch without string
matching:

	if types.IsKind(err, types.ErrKindConflict) {
	    // the file changed underneath us; reload and retry
	}
*/
package mcp
