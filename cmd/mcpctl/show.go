package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/config/redact"
	"github.com/joshuapare/mcpkit/pkg/mcp"
)

func init() {
	rootCmd.AddCommand(newShowCmd())
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show one server entry in detail",
		Long: `The show command displays a single server entry: command, arguments and
environment. Environment values with sensitive keys are masked; use export
to get the stored values.

Example:
  mcpctl show github
  mcpctl show github --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args)
		},
	}
	return cmd
}

func runShow(args []string) error {
	name := args[0]

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	printVerbose("Loading configuration: %s\n", path)

	server, err := mcp.Get(path, name)
	if err != nil {
		return err
	}
	masked := redact.MaskEnv(server.Env)

	if jsonOut {
		item := map[string]any{
			"name":    name,
			"command": server.Command,
		}
		if len(server.Args) > 0 {
			item["args"] = server.Args
		}
		if len(masked) > 0 {
			item["env"] = masked
		}
		return printJSON(item)
	}

	printInfo("%s\n", styled(headerStyle, name))
	printInfo("  Command: %s\n", server.Command)
	if len(server.Args) > 0 {
		printInfo("  Args:    %s\n", strings.Join(server.Args, " "))
	}
	if len(masked) > 0 {
		printInfo("  Env:\n")
		keys := make([]string, 0, len(masked))
		for k := range masked {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			printInfo("    %s=%s\n", k, masked[k])
		}
	}
	return nil
}
