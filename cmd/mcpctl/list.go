package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/config/redact"
	"github.com/joshuapare/mcpkit/pkg/mcp"
)

var listFormat string

func init() {
	cmd := newListCmd()
	cmd.Flags().StringVar(&listFormat, "format", "table", "Output format (table, json, names)")
	rootCmd.AddCommand(cmd)
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [filter]",
		Short: "List configured servers",
		Long: `The list command shows every server entry in the configuration, in
declaration order. An optional filter keeps only names containing the given
substring. Environment values with sensitive keys are masked.

Example:
  mcpctl list
  mcpctl list api
  mcpctl list --format names
  mcpctl list --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args)
		},
	}
	return cmd
}

func runList(args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	printVerbose("Loading configuration: %s\n", path)

	entries, err := mcp.List(path)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		entries = filterEntries(entries, args[0])
	}

	if jsonOut || listFormat == "json" {
		return printJSON(entriesJSON(entries))
	}

	switch listFormat {
	case "names":
		for _, e := range entries {
			printInfo("%s\n", e.Name)
		}
		return nil
	case "table":
	default:
		return fmt.Errorf("unknown format: %s (must be table, json, or names)", listFormat)
	}

	if len(entries) == 0 {
		printInfo("No servers configured.\n")
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
		Headers("NAME", "COMMAND", "ARGS", "ENV")
	for _, e := range entries {
		tbl.Row(e.Name, e.Server.Command,
			truncate(strings.Join(e.Server.Args, " "), 48),
			truncate(envSummary(e.Server.Env), 40))
	}
	printInfo("%s\n", tbl)
	printInfo("%s\n", styled(mutedStyle, fmt.Sprintf("%d server(s)", len(entries))))
	return nil
}

func filterEntries(entries []mcp.Entry, filter string) []mcp.Entry {
	needle := strings.ToLower(filter)
	out := entries[:0]
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}

// entriesJSON shapes entries for JSON output, env masked.
func entriesJSON(entries []mcp.Entry) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		item := map[string]any{
			"name":    e.Name,
			"command": e.Server.Command,
		}
		if len(e.Server.Args) > 0 {
			item["args"] = e.Server.Args
		}
		if len(e.Server.Env) > 0 {
			item["env"] = redact.MaskEnv(e.Server.Env)
		}
		out = append(out, item)
	}
	return out
}

// envSummary renders masked KEY=value pairs, keys sorted.
func envSummary(env map[string]string) string {
	if len(env) == 0 {
		return ""
	}
	masked := redact.MaskEnv(env)
	keys := make([]string, 0, len(masked))
	for k := range masked {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+masked[k])
	}
	return strings.Join(pairs, ", ")
}

// truncate truncates a string to the specified length with ellipsis
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
