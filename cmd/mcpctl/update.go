package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/config/plan"
	"github.com/joshuapare/mcpkit/pkg/mcp"
)

var (
	updateCommand    string
	updateArgs       []string
	updateAppendArgs []string
	updateSetEnv     []string
	updateUnsetEnv   []string
	updateDryRun     bool
	updateYes        bool
	updateNoBackup   bool
	updateKeepGoing  bool
	updateParallel   int
)

func init() {
	cmd := newUpdateCmd()
	cmd.Flags().StringVar(&updateCommand, "command", "", "Replace the executable")
	cmd.Flags().StringArrayVar(&updateArgs, "arg", nil, "Replace the argument list (repeatable, in order)")
	cmd.Flags().StringArrayVar(&updateAppendArgs, "append-arg", nil, "Append to the argument list (repeatable)")
	cmd.Flags().StringArrayVar(&updateSetEnv, "set-env", nil, "Set environment variable KEY=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&updateUnsetEnv, "unset-env", nil, "Remove environment variable KEY (repeatable)")
	cmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "Show the changes without writing them")
	cmd.Flags().BoolVarP(&updateYes, "yes", "y", false, "Apply without asking for confirmation")
	cmd.Flags().BoolVar(&updateNoBackup, "no-backup", false, "Skip the pre-change snapshot")
	cmd.Flags().BoolVar(&updateKeepGoing, "continue-on-error", false, "Keep going past per-entry failures")
	cmd.Flags().IntVar(&updateParallel, "parallel", 0, "Bound concurrent plan computation (0 = serial)")
	rootCmd.AddCommand(cmd)
}

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <selector>",
		Short: "Update servers matching a selector",
		Long: `The update command rewrites every server whose name matches the selector,
each in its own transaction, in declaration order. Mutation flags compose:
--set-env and --unset-env edit single variables, --arg replaces the whole
argument list, --append-arg extends it.

Example:
  mcpctl update github --set-env DEBUG=1
  mcpctl update 'api-*' --set-env TIMEOUT=30 --continue-on-error
  mcpctl update worker --command npx --arg server-worker --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(args)
		},
	}
	return cmd
}

func runUpdate(args []string) error {
	selector := args[0]

	mutate, err := buildMutator()
	if err != nil {
		return err
	}

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	printVerbose("Loading configuration: %s\n", path)

	planOpts := &mcp.Options{DryRun: true, Parallelism: updateParallel}
	planned, err := mcp.UpdateMatching(context.Background(), path, selector, mutate, planOpts)
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

	if jsonOut && updateDryRun {
		return printJSON(bulkJSON(planned))
	}

	printInfo("\nPlanned changes to %s:\n", path)
	for _, p := range planned.Plans {
		if p != nil {
			printPreview(p)
		}
	}

	if updateDryRun {
		printInfo("\nDry run: nothing written.\n")
		return bulkError(planned)
	}

	if err := confirm(updateYes, "Update %s in %s?",
		pluralize(len(planned.Plans), "server", "servers"), path); err != nil {
		return err
	}

	opts := &mcp.Options{
		NoBackup:        updateNoBackup,
		ContinueOnError: updateKeepGoing,
		Parallelism:     updateParallel,
	}
	if !jsonOut {
		opts.Progress = bulkProgress
	}
	res, err := mcp.UpdateMatching(context.Background(), path, selector, mutate, opts)
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

// buildMutator composes the update flags into a single mutator.
func buildMutator() (plan.Mutator, error) {
	var ms []plan.Mutator
	if updateCommand != "" {
		ms = append(ms, plan.SetCommand(updateCommand))
	}
	if len(updateArgs) > 0 {
		ms = append(ms, plan.SetArgs(updateArgs...))
	}
	if len(updateAppendArgs) > 0 {
		ms = append(ms, plan.AppendArgs(updateAppendArgs...))
	}
	for _, a := range updateSetEnv {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid environment assignment %q (use KEY=VALUE)", a)
		}
		ms = append(ms, plan.SetEnv(k, v))
	}
	for _, k := range updateUnsetEnv {
		ms = append(ms, plan.UnsetEnv(k))
	}
	if len(ms) == 0 {
		return nil, fmt.Errorf("nothing to change: pass at least one of --command, --arg, --append-arg, --set-env, --unset-env")
	}
	return plan.Chain(ms...), nil
}
