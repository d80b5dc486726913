package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/config/backup"
)

var (
	profileDescription string
	profileForce       bool
	profileSyncDryRun  bool
	profileSyncYes     bool
)

func init() {
	cmd := newProfileCmd()

	createCmd := newProfileCreateCmd()
	createCmd.Flags().StringVar(&profileDescription, "description", "", "Human-readable profile description")
	cmd.AddCommand(createCmd)

	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileSwitchCmd())

	deleteCmd := newProfileDeleteCmd()
	deleteCmd.Flags().BoolVar(&profileForce, "force", false, "Delete even the active profile (switches to default first)")
	cmd.AddCommand(deleteCmd)

	cmd.AddCommand(newProfileCurrentCmd())

	syncCmd := newProfileSyncCmd()
	syncCmd.Flags().BoolVar(&profileSyncDryRun, "dry-run", false, "Show what sync would change without writing")
	syncCmd.Flags().BoolVarP(&profileSyncYes, "yes", "y", false, "Sync without asking for confirmation")
	cmd.AddCommand(syncCmd)

	rootCmd.AddCommand(cmd)
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Manage configuration profiles",
		Long: `The profile command keeps several configurations side by side. Switching
parks the live document under the outgoing profile's name and moves the
incoming one into place; the default profile is the primary document
itself.

Example:
  mcpctl profile create work --description "Work servers"
  mcpctl profile switch work
  mcpctl profile sync work default`,
	}
}

func newProfileCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile with an empty document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileCreate(args)
		},
	}
}

func runProfileCreate(args []string) error {
	mgr, err := profileManager()
	if err != nil {
		return err
	}
	info, err := mgr.Create(args[0], profileDescription)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(info)
	}
	printInfo("%s Created profile %q\n", styled(successStyle, "✓"), info.Name)
	return nil
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileList()
		},
	}
}

func runProfileList() error {
	mgr, err := profileManager()
	if err != nil {
		return err
	}
	infos, current, err := mgr.List()
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"current":  current,
			"profiles": infos,
		})
	}

	printInfo("Active profile: %s\n", styled(headerStyle, current))
	if len(infos) == 0 {
		printInfo("No named profiles. Create one with: mcpctl profile create <name>\n")
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
		Headers("", "NAME", "SERVERS", "LAST USED", "DESCRIPTION")
	for _, info := range infos {
		marker := ""
		if info.Name == current {
			marker = styled(successStyle, "*")
		}
		lastUsed := "never"
		if !info.LastUsed.IsZero() {
			lastUsed = backup.AgeString(info.LastUsed, now) + " ago"
		}
		tbl.Row(marker, info.Name, fmt.Sprintf("%d", info.ServerCount), lastUsed,
			truncate(info.Description, 40))
	}
	printInfo("%s\n", tbl)
	return nil
}

func newProfileSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <name>",
		Short: "Activate a profile",
		Long: `Switch parks the live document under the current profile and moves the
named profile's document into place. Use "default" to return to the
primary configuration.

Example:
  mcpctl profile switch work
  mcpctl profile switch default`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileSwitch(args)
		},
	}
}

func runProfileSwitch(args []string) error {
	mgr, err := profileManager()
	if err != nil {
		return err
	}
	if err := mgr.Switch(args[0]); err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]any{"current": args[0]})
	}
	printInfo("%s Switched to profile %q\n", styled(successStyle, "✓"), args[0])
	printInfo("Restart the desktop application to pick up the change.\n")
	return nil
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a profile and its parked document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileDelete(args)
		},
	}
}

func runProfileDelete(args []string) error {
	mgr, err := profileManager()
	if err != nil {
		return err
	}
	if err := mgr.Delete(args[0], profileForce); err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]any{"deleted": args[0]})
	}
	printInfo("%s Deleted profile %q\n", styled(successStyle, "✓"), args[0])
	return nil
}

func newProfileCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the active profile's name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileCurrent()
		},
	}
}

func runProfileCurrent() error {
	mgr, err := profileManager()
	if err != nil {
		return err
	}
	current, err := mgr.Current()
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]any{"current": current})
	}
	printInfo("%s\n", current)
	return nil
}

func newProfileSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <from> <to>",
		Short: "Copy one profile's servers over another's",
		Long: `Sync replaces the target profile's document with the source profile's.
Entries only in the target are removed; use --dry-run to see the effect
first.

Example:
  mcpctl profile sync work default --dry-run
  mcpctl profile sync default staging --yes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileSync(args)
		},
	}
}

func runProfileSync(args []string) error {
	from, to := args[0], args[1]

	mgr, err := profileManager()
	if err != nil {
		return err
	}

	report, err := mgr.PreviewSync(from, to)
	if err != nil {
		return err
	}

	if jsonOut && profileSyncDryRun {
		return printJSON(report)
	}

	printInfo("Syncing %s -> %s:\n", from, to)
	for _, name := range report.Added {
		printInfo("  %s\n", styled(diffAddedStyle, "+ "+name))
	}
	for _, name := range report.Overwritten {
		printInfo("  %s\n", styled(diffModifiedStyle, "~ "+name))
	}
	for _, name := range report.Removed {
		printInfo("  %s\n", styled(diffRemovedStyle, "- "+name))
	}
	if len(report.Added)+len(report.Overwritten)+len(report.Removed) == 0 {
		printInfo("  (no differences)\n")
	}

	if profileSyncDryRun {
		printInfo("\nDry run: nothing written.\n")
		return nil
	}

	if err := confirm(profileSyncYes, "Replace profile %q with %q?", to, from); err != nil {
		return err
	}

	if _, err := mgr.Sync(from, to); err != nil {
		return err
	}
	if jsonOut {
		return printJSON(report)
	}
	printInfo("%s Synced %s -> %s\n", styled(successStyle, "✓"), from, to)
	return nil
}
