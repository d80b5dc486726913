package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/pkg/mcp"
)

var (
	removeDryRun    bool
	removeYes       bool
	removeNoBackup  bool
	removeKeepGoing bool
	removeParallel  int
)

func init() {
	cmd := newRemoveCmd()
	cmd.Flags().BoolVar(&removeDryRun, "dry-run", false, "Show what would be removed without writing")
	cmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Remove without asking for confirmation")
	cmd.Flags().BoolVar(&removeNoBackup, "no-backup", false, "Skip the pre-change snapshot")
	cmd.Flags().BoolVar(&removeKeepGoing, "continue-on-error", false, "Keep going past per-entry failures")
	cmd.Flags().IntVar(&removeParallel, "parallel", 0, "Bound concurrent plan computation (0 = serial)")
	rootCmd.AddCommand(cmd)
}

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <selector>",
		Short: "Remove servers matching a selector",
		Long: `The remove command deletes every server whose name matches the selector,
each in its own transaction, in declaration order. A selector matching
nothing is a warning, not an error.

Quote selectors so the shell does not expand them.

Example:
  mcpctl remove old-server
  mcpctl remove 'api-*' --dry-run
  mcpctl remove 'test-{a,b}' --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(args)
		},
	}
	return cmd
}

func runRemove(args []string) error {
	selector := args[0]

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	printVerbose("Loading configuration: %s\n", path)

	// Plan first so the user confirms against the actual matches.
	planOpts := &mcp.Options{DryRun: true, Parallelism: removeParallel}
	planned, err := mcp.RemoveMatching(context.Background(), path, selector, planOpts)
	if err != nil {
		return err
	}
	if len(planned.Plans) == 0 && len(planned.Failed) == 0 {
		if jsonOut {
			return printJSON(bulkJSON(planned))
		}
		printInfo("%s No servers match %q.\n", styled(warnStyle, "!"), selector)
		return nil
	}

	if jsonOut && removeDryRun {
		return printJSON(bulkJSON(planned))
	}

	printInfo("\nPlanned removal from %s:\n", path)
	for _, p := range planned.Plans {
		if p != nil {
			printPreview(p)
		}
	}

	if removeDryRun {
		printInfo("\nDry run: nothing written.\n")
		return bulkError(planned)
	}

	if err := confirm(removeYes, "Remove %s from %s?",
		pluralize(len(planned.Plans), "server", "servers"), path); err != nil {
		return err
	}

	opts := &mcp.Options{
		NoBackup:        removeNoBackup,
		ContinueOnError: removeKeepGoing,
		Parallelism:     removeParallel,
	}
	if !jsonOut {
		opts.Progress = bulkProgress
	}
	res, err := mcp.RemoveMatching(context.Background(), path, selector, opts)
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
