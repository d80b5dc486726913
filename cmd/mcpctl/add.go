package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/bulk"
	"github.com/joshuapare/mcpkit/pkg/mcp"
	"github.com/joshuapare/mcpkit/template"
)

var (
	addCommand  string
	addArgs     []string
	addEnv      []string
	addTemplate string
	addVars     []string
	addDryRun   bool
	addYes      bool
	addNoBackup bool
	addOffline  bool
)

func init() {
	cmd := newAddCmd()
	cmd.Flags().StringVar(&addCommand, "command", "", "Executable the server runs")
	cmd.Flags().StringArrayVar(&addArgs, "arg", nil, "Command argument (repeatable, in order)")
	cmd.Flags().StringArrayVar(&addEnv, "env", nil, "Environment variable KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&addTemplate, "template", "", "Create from a catalog template instead of --command")
	cmd.Flags().StringArrayVar(&addVars, "var", nil, "Template variable KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&addDryRun, "dry-run", false, "Show the change without writing it")
	cmd.Flags().BoolVarP(&addYes, "yes", "y", false, "Apply without asking for confirmation")
	cmd.Flags().BoolVar(&addNoBackup, "no-backup", false, "Skip the pre-change snapshot")
	cmd.Flags().BoolVar(&addOffline, "offline", false, "Resolve templates without network access")
	rootCmd.AddCommand(cmd)
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a server entry",
		Long: `The add command creates a new server entry, either from an explicit
command line or from a catalog template. The name must not exist yet.

A snapshot of the current document is taken before the change is written;
disable it with --no-backup.

Example:
  mcpctl add sqlite --command uvx --arg mcp-server-sqlite --arg --db-path --arg /tmp/app.db
  mcpctl add github --template github --var token=ghp_xxxx
  mcpctl add search --command npx --arg server-search --env API_KEY=secret --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(args)
		},
	}
	return cmd
}

func runAdd(args []string) error {
	name := args[0]

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	printVerbose("Loading configuration: %s\n", path)

	server, err := buildAddServer(context.Background())
	if err != nil {
		return err
	}

	opts := &mcp.Options{NoBackup: addNoBackup, DryRun: true}
	preview, err := mcp.Add(context.Background(), path, name, server, opts)
	if err != nil {
		return err
	}

	if jsonOut && addDryRun {
		return printJSON(map[string]any{
			"name":    name,
			"dry_run": true,
			"preview": preview.Plan.Preview(),
		})
	}

	printInfo("\nPlanned change to %s:\n", path)
	printPreview(preview.Plan)

	if addDryRun {
		printInfo("\nDry run: nothing written.\n")
		return nil
	}

	if err := confirm(addYes, "Apply this change to %s?", path); err != nil {
		return err
	}

	opts.DryRun = false
	res, err := mcp.Add(context.Background(), path, name, server, opts)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"name":    name,
			"applied": res.Applied(),
			"backup":  res.Tx.Backup.Metadata.Name,
		})
	}

	printInfo("\n%s Added %q\n", styled(successStyle, "✓"), name)
	if res.Tx.Backup.Path != "" {
		printVerbose("Backup: %s\n", res.Tx.Backup.Path)
	}
	return nil
}

// buildAddServer turns the add flags into the server to create: either
// the literal --command form or a rendered template.
func buildAddServer(ctx context.Context) (config.Server, error) {
	switch {
	case addTemplate != "" && addCommand != "":
		return config.Server{}, fmt.Errorf("--template and --command are mutually exclusive")
	case addTemplate == "" && addCommand == "":
		return config.Server{}, fmt.Errorf("either --command or --template is required")
	}

	if addCommand != "" {
		env, err := bulk.ParseEnvAssignments(addEnv)
		if err != nil {
			return config.Server{}, err
		}
		return config.Server{Command: addCommand, Args: addArgs, Env: env}, nil
	}

	mgr, err := catalogManager(addOffline)
	if err != nil {
		return config.Server{}, err
	}
	tpl, err := mgr.Resolve(ctx, addTemplate)
	if err != nil {
		return config.Server{}, err
	}
	assigned, err := bulk.ParseEnvAssignments(addVars)
	if err != nil {
		return config.Server{}, err
	}
	vars := make(map[string]any, len(assigned))
	for k, v := range assigned {
		vars[k] = v
	}
	printVerbose("Rendering template %q (version %s)\n", tpl.Name, tpl.Version)
	return template.Render(tpl, vars)
}
