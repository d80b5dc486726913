package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/pkg/mcp"
)

func init() {
	rootCmd.AddCommand(newSearchCmd())
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <pattern>",
		Short: "Find servers by selector pattern",
		Long: `The search command matches server names against a selector pattern and
lists the matches in declaration order.

Patterns support * (any run), ? (one character), [abc] and [!abc] character
sets, and {a,b} alternation. A name without wildcards matches exactly.

Example:
  mcpctl search 'api-*'
  mcpctl search '{github,gitlab}'
  mcpctl search 'server-?' --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args)
		},
	}
	return cmd
}

func runSearch(args []string) error {
	pattern := args[0]

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	printVerbose("Searching %s for %q\n", path, pattern)

	entries, err := mcp.Search(path, pattern)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(entriesJSON(entries))
	}

	if len(entries) == 0 {
		printInfo("No servers match %q.\n", pattern)
		return nil
	}
	for _, e := range entries {
		line := e.Name
		if e.Server.Command != "" {
			line += styled(mutedStyle, "  ("+e.Server.Command+" "+truncate(strings.Join(e.Server.Args, " "), 40)+")")
		}
		printInfo("%s\n", line)
	}
	printInfo("%s\n", styled(mutedStyle, pluralize(len(entries), "match", "matches")))
	return nil
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
