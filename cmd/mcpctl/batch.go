package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/config/bulk"
	"github.com/joshuapare/mcpkit/pkg/mcp"
)

var (
	batchDryRun    bool
	batchYes       bool
	batchNoBackup  bool
	batchKeepGoing bool
	batchOffline   bool
)

func init() {
	cmd := newBatchCmd()

	applyCmd := newBatchApplyCmd()
	applyCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "Show the changes without writing them")
	applyCmd.Flags().BoolVarP(&batchYes, "yes", "y", false, "Apply without asking for confirmation")
	applyCmd.Flags().BoolVar(&batchNoBackup, "no-backup", false, "Skip the pre-change snapshots")
	applyCmd.Flags().BoolVar(&batchKeepGoing, "continue-on-error", false, "Keep going past per-entry failures")
	applyCmd.Flags().BoolVar(&batchOffline, "offline", false, "Resolve templates without network access")
	cmd.AddCommand(applyCmd)

	rootCmd.AddCommand(cmd)
}

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Apply batch files of server definitions",
	}
}

func newBatchApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <file>",
		Short: "Create every server a batch file describes",
		Long: `Batch apply reads a YAML or JSON file listing servers and creates each
one, in file order, each in its own transaction. An entry either names a
template with variable values or spells out the command directly:

  servers:
    - name: db
      template: sqlite
      vars:
        db_path: /tmp/app.db
    - name: echo
      command: /bin/echo
      args: ["hello"]

Example:
  mcpctl batch apply team-servers.yaml --dry-run
  mcpctl batch apply team-servers.yaml --continue-on-error --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatchApply(args)
		},
	}
}

func runBatchApply(args []string) error {
	file := args[0]

	bf, err := bulk.LoadBatchFile(file)
	if err != nil {
		return err
	}
	printVerbose("Batch file lists %d server(s)\n", len(bf.Servers))

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	printVerbose("Loading configuration: %s\n", path)

	mgr, err := catalogManager(batchOffline)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if batchDryRun {
		res, err := mcp.ApplyBatch(ctx, path, bf, mgr.Resolve, &mcp.Options{DryRun: true})
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(bulkJSON(res))
		}
		printInfo("\nPlanned changes to %s:\n", path)
		for _, p := range res.Plans {
			if p != nil {
				printPreview(p)
			}
		}
		for _, f := range res.Failed {
			printInfo("  %s %s: %v\n", styled(errorStyle, "✗"), f.Name, f.Err)
		}
		printInfo("\nDry run: nothing written.\n")
		return bulkError(res)
	}

	if err := confirm(batchYes, "Add %s from %s to %s?",
		pluralize(len(bf.Servers), "server", "servers"), file, path); err != nil {
		return err
	}

	opts := &mcp.Options{
		NoBackup:        batchNoBackup,
		ContinueOnError: batchKeepGoing,
	}
	if !jsonOut {
		opts.Progress = bulkProgress
	}
	res, err := mcp.ApplyBatch(ctx, path, bf, mgr.Resolve, opts)
	if err != nil {
		return err
	}

	if jsonOut {
		if err := printJSON(bulkJSON(res)); err != nil {
			return err
		}
		return bulkError(res)
	}
	bulkSummary(res)
	return bulkError(res)
}
