package main

import (
	"context"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/config/bulk"
	"github.com/joshuapare/mcpkit/pkg/mcp"
	"github.com/joshuapare/mcpkit/template"
)

var (
	templateOffline bool
	templateRefresh bool

	tplApplyName     string
	tplApplyVars     []string
	tplApplyDryRun   bool
	tplApplyYes      bool
	tplApplyNoBackup bool
)

func init() {
	cmd := newTemplateCmd()

	listCmd := newTemplateListCmd()
	listCmd.Flags().BoolVar(&templateRefresh, "refresh", false, "Re-fetch the catalog index before listing")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(newTemplateInfoCmd())

	applyCmd := newTemplateApplyCmd()
	applyCmd.Flags().StringVar(&tplApplyName, "name", "", "Entry name to create (default: the template name)")
	applyCmd.Flags().StringArrayVar(&tplApplyVars, "var", nil, "Template variable KEY=VALUE (repeatable)")
	applyCmd.Flags().BoolVar(&tplApplyDryRun, "dry-run", false, "Show the change without writing it")
	applyCmd.Flags().BoolVarP(&tplApplyYes, "yes", "y", false, "Apply without asking for confirmation")
	applyCmd.Flags().BoolVar(&tplApplyNoBackup, "no-backup", false, "Skip the pre-change snapshot")
	cmd.AddCommand(applyCmd)

	cmd.PersistentFlags().BoolVar(&templateOffline, "offline", false, "Use only cached and built-in templates")
	rootCmd.AddCommand(cmd)
}

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Browse and apply server templates",
		Long: `The template command works with the server template catalog: the set
compiled into the binary plus the remote catalog, cached on disk.

Example:
  mcpctl template list
  mcpctl template info sqlite
  mcpctl template apply sqlite --var db_path=/tmp/app.db`,
	}
}

func newTemplateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List available templates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplateList(args)
		},
	}
}

func runTemplateList(args []string) error {
	mgr, err := catalogManager(templateOffline)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if templateRefresh {
		printVerbose("Refreshing catalog index\n")
		if err := mgr.Refresh(ctx, true); err != nil {
			return err
		}
	}

	cat, err := mgr.Catalog(ctx)
	if err != nil {
		return err
	}

	entries := cat.Names()
	var selected []template.CatalogEntry
	if len(args) == 1 {
		selected = cat.Search(args[0])
	} else {
		for _, name := range entries {
			if e, ok := cat.Find(name); ok {
				selected = append(selected, e)
			}
		}
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].Name < selected[j].Name })

	if jsonOut {
		return printJSON(selected)
	}

	if len(selected) == 0 {
		printInfo("No templates found.\n")
		return nil
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow && !noColor {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("NAME", "VERSION", "CATEGORY", "DESCRIPTION")
	for _, e := range selected {
		tbl.Row(e.Name, e.Version, e.Category, truncate(e.Description, 56))
	}
	printInfo("%s\n", tbl)
	return nil
}

func newTemplateInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <template>",
		Short: "Show a template's variables and requirements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplateInfo(args)
		},
	}
}

func runTemplateInfo(args []string) error {
	mgr, err := catalogManager(templateOffline)
	if err != nil {
		return err
	}
	tpl, err := mgr.Resolve(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(tpl)
	}

	printInfo("%s %s\n", styled(headerStyle, tpl.Name), styled(mutedStyle, tpl.Version))
	if tpl.Description != "" {
		printInfo("  %s\n", tpl.Description)
	}
	if tpl.Author != "" {
		printInfo("  Author: %s\n", tpl.Author)
	}
	if len(tpl.Platforms) > 0 {
		printInfo("  Platforms: %s\n", strings.Join(tpl.Platforms, ", "))
	}
	if tpl.Config.Command != "" {
		printInfo("  Command: %s %s\n", tpl.Config.Command, strings.Join(tpl.Config.Args, " "))
	}
	if tpl.Config.URL != "" {
		printInfo("  URL: %s\n", tpl.Config.URL)
	}

	if len(tpl.Variables) > 0 {
		printInfo("\nVariables:\n")
		names := make([]string, 0, len(tpl.Variables))
		for name := range tpl.Variables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v := tpl.Variables[name]
			line := "  " + name + " (" + string(v.Type)
			if v.Required {
				line += ", required"
			}
			line += ")"
			if v.Description != "" {
				line += ": " + v.Description
			}
			printInfo("%s\n", line)
			if len(v.Options) > 0 {
				printInfo("    options: %s\n", strings.Join(v.Options, ", "))
			}
		}
	}

	if len(tpl.Requirements) > 0 {
		printInfo("\nRequirements:\n")
		reqs := make([]string, 0, len(tpl.Requirements))
		for tool := range tpl.Requirements {
			reqs = append(reqs, tool)
		}
		sort.Strings(reqs)
		for _, tool := range reqs {
			printInfo("  %s %s\n", tool, tpl.Requirements[tool])
		}
	}

	if tpl.SetupInstructions != "" {
		printInfo("\n%s\n", tpl.SetupInstructions)
	}
	return nil
}

func newTemplateApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <template>",
		Short: "Create a server entry from a template",
		Long: `Apply resolves a template, substitutes the provided variables and adds
the rendered server to the configuration.

Example:
  mcpctl template apply sqlite --var db_path=/tmp/app.db
  mcpctl template apply github --name work-github --var token=ghp_xxx --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplateApply(args)
		},
	}
}

func runTemplateApply(args []string) error {
	mgr, err := catalogManager(templateOffline)
	if err != nil {
		return err
	}
	ctx := context.Background()

	tpl, err := mgr.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	assigned, err := bulk.ParseEnvAssignments(tplApplyVars)
	if err != nil {
		return err
	}
	vars := make(map[string]any, len(assigned))
	for k, v := range assigned {
		vars[k] = v
	}
	server, err := template.Render(tpl, vars)
	if err != nil {
		return err
	}

	name := tplApplyName
	if name == "" {
		name = tpl.Name
	}

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	printVerbose("Loading configuration: %s\n", path)

	opts := &mcp.Options{NoBackup: tplApplyNoBackup, DryRun: true}
	preview, err := mcp.Add(ctx, path, name, server, opts)
	if err != nil {
		return err
	}

	if jsonOut && tplApplyDryRun {
		return printJSON(map[string]any{
			"name":     name,
			"template": tpl.Name,
			"dry_run":  true,
			"preview":  preview.Plan.Preview(),
		})
	}

	printInfo("\nPlanned change to %s:\n", path)
	printPreview(preview.Plan)

	if tplApplyDryRun {
		printInfo("\nDry run: nothing written.\n")
		return nil
	}

	if err := confirm(tplApplyYes, "Apply this change to %s?", path); err != nil {
		return err
	}

	opts.DryRun = false
	res, err := mcp.Add(ctx, path, name, server, opts)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"name":     name,
			"template": tpl.Name,
			"applied":  res.Applied(),
		})
	}
	printInfo("\n%s Added %q from template %q\n", styled(successStyle, "✓"), name, tpl.Name)
	if tpl.SetupInstructions != "" {
		printInfo("\n%s\n", tpl.SetupInstructions)
	}
	return nil
}
