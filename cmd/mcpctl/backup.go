package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/backup"
	"github.com/joshuapare/mcpkit/pkg/mcp"
)

var (
	restoreServer   string
	restoreDryRun   bool
	restoreYes      bool
	restoreNoBackup bool

	pruneKeep      int
	pruneOlderThan string
	pruneYes       bool
)

func init() {
	cmd := newBackupCmd()
	cmd.AddCommand(newBackupCreateCmd())
	cmd.AddCommand(newBackupListCmd())

	restoreCmd := newBackupRestoreCmd()
	restoreCmd.Flags().StringVar(&restoreServer, "server", "", "Restore only the named server entry")
	restoreCmd.Flags().BoolVar(&restoreDryRun, "dry-run", false, "Show the changes without writing them")
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "Restore without asking for confirmation")
	restoreCmd.Flags().BoolVar(&restoreNoBackup, "no-backup", false, "Skip the pre-restore snapshot")
	cmd.AddCommand(restoreCmd)

	pruneCmd := newBackupPruneCmd()
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", 0, "Keep only the newest N snapshots")
	pruneCmd.Flags().StringVar(&pruneOlderThan, "older-than", "", "Remove snapshots older than AGE (e.g. 30d, 1w, 24h)")
	pruneCmd.Flags().BoolVarP(&pruneYes, "yes", "y", false, "Prune without asking for confirmation")
	cmd.AddCommand(pruneCmd)

	rootCmd.AddCommand(cmd)
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Create, list, restore and prune configuration snapshots",
		Long: `The backup command manages the snapshot store next to the configuration
document. Every mutating command snapshots automatically; backup create
takes one on demand, restore brings a snapshot back as a transaction of
its own, and prune trims old snapshots.

Example:
  mcpctl backup create before-experiment
  mcpctl backup list
  mcpctl backup restore before-experiment
  mcpctl backup prune --older-than 30d`,
	}
}

func newBackupCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [label]",
		Short: "Snapshot the current configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackupCreate(args)
		},
	}
}

func runBackupCreate(args []string) error {
	label := ""
	if len(args) == 1 {
		label = args[0]
	}

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	printVerbose("Loading configuration: %s\n", path)

	doc, err := config.Load(path)
	if err != nil {
		return err
	}
	entry, err := mcp.Backups(path, nil).Create(doc, label)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(entry.Metadata)
	}
	printInfo("%s Created snapshot %s (%d servers)\n",
		styled(successStyle, "✓"), entry.Metadata.Name, entry.Metadata.ServerCount)
	printVerbose("Path: %s\n", entry.Path)
	return nil
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackupList()
		},
	}
}

func runBackupList() error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	entries, err := mcp.Backups(path, nil).List()
	if err != nil {
		return err
	}

	if jsonOut {
		metas := make([]backup.Metadata, 0, len(entries))
		for _, e := range entries {
			metas = append(metas, e.Metadata)
		}
		return printJSON(metas)
	}

	if len(entries) == 0 {
		printInfo("No snapshots stored.\n")
		return nil
	}
	now := time.Now()
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow && !noColor {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("NAME", "AGE", "SERVERS", "LABEL")
	for _, e := range entries {
		tbl.Row(e.Metadata.Name,
			backup.AgeString(e.Metadata.CreatedAt, now),
			fmt.Sprintf("%d", e.Metadata.ServerCount),
			e.Metadata.Label)
	}
	printInfo("%s\n", tbl)
	return nil
}

func newBackupRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot>",
		Short: "Restore a snapshot",
		Long: `Restore replaces the current server entries with a snapshot's, as a
normal transaction: the pre-restore state is snapshotted first and the
restore itself is validated before commit. The snapshot is matched by
exact name first, then by unique substring.

With --server only the named entry is brought back from the snapshot.

Example:
  mcpctl backup restore config_backup_20250117_090000
  mcpctl backup restore before-experiment --server github
  mcpctl backup restore before-experiment --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackupRestore(args)
		},
	}
}

func runBackupRestore(args []string) error {
	ref := args[0]

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	printVerbose("Loading configuration: %s\n", path)

	ctx := context.Background()
	previewOpts := &mcp.Options{DryRun: true}
	var preview *mcp.Result
	if restoreServer != "" {
		preview, err = mcp.RestoreEntry(ctx, path, ref, restoreServer, previewOpts)
	} else {
		preview, err = mcp.Restore(ctx, path, ref, previewOpts)
	}
	if err != nil {
		return err
	}

	if preview.Plan.IsEmpty() {
		printInfo("Nothing to restore: the document already matches the snapshot.\n")
		return nil
	}

	if jsonOut && restoreDryRun {
		return printJSON(map[string]any{
			"snapshot": ref,
			"dry_run":  true,
			"preview":  preview.Plan.Preview(),
		})
	}

	printInfo("\nRestoring would change %s:\n", path)
	printPreview(preview.Plan)

	if restoreDryRun {
		printInfo("\nDry run: nothing written.\n")
		return nil
	}

	if err := confirm(restoreYes, "Apply %s to %s?",
		pluralize(preview.Plan.Size(), "change", "changes"), path); err != nil {
		return err
	}

	opts := &mcp.Options{NoBackup: restoreNoBackup}
	var res *mcp.Result
	if restoreServer != "" {
		res, err = mcp.RestoreEntry(ctx, path, ref, restoreServer, opts)
	} else {
		res, err = mcp.Restore(ctx, path, ref, opts)
	}
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"snapshot": ref,
			"applied":  res.Applied(),
			"changes":  res.Plan.Size(),
		})
	}
	printInfo("\n%s Restored %s (%s)\n", styled(successStyle, "✓"), ref,
		pluralize(res.Plan.Size(), "change", "changes"))
	return nil
}

func newBackupPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove old snapshots",
		Long: `Prune removes snapshots either beyond a count (--keep) or beyond an age
(--older-than). Exactly one of the two must be given; nothing is pruned
implicitly.

Age strings: 60m, 24h, 7d, 4w.

Example:
  mcpctl backup prune --keep 10
  mcpctl backup prune --older-than 30d --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackupPrune()
		},
	}
}

func runBackupPrune() error {
	if (pruneKeep > 0) == (pruneOlderThan != "") {
		return fmt.Errorf("pass exactly one of --keep or --older-than")
	}

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	store := mcp.Backups(path, nil)

	what := fmt.Sprintf("snapshots older than %s", pruneOlderThan)
	if pruneKeep > 0 {
		what = fmt.Sprintf("all but the newest %d snapshots", pruneKeep)
	}
	if err := confirm(pruneYes, "Remove %s?", what); err != nil {
		return err
	}

	var removed []backup.Entry
	if pruneKeep > 0 {
		removed, err = store.PruneKeep(pruneKeep)
	} else {
		var age time.Duration
		age, err = backup.ParseAge(pruneOlderThan)
		if err != nil {
			return err
		}
		removed, err = store.PruneOlderThan(age)
	}
	if err != nil {
		return err
	}

	if jsonOut {
		names := make([]string, 0, len(removed))
		for _, e := range removed {
			names = append(names, e.Metadata.Name)
		}
		return printJSON(map[string]any{"removed": names})
	}

	if len(removed) == 0 {
		printInfo("Nothing to prune.\n")
		return nil
	}
	for _, e := range removed {
		printInfo("  %s %s\n", styled(mutedStyle, "-"), e.Metadata.Name)
	}
	printInfo("%s Removed %s\n", styled(successStyle, "✓"),
		pluralize(len(removed), "snapshot", "snapshots"))
	return nil
}
