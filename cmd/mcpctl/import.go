package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/pkg/mcp"
)

var (
	importMode     string
	importDryRun   bool
	importYes      bool
	importNoBackup bool
)

func init() {
	cmd := newImportCmd()
	cmd.Flags().StringVar(&importMode, "mode", "merge", "How to combine with existing entries (merge, overwrite, replace)")
	cmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show the changes without writing them")
	cmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Import without asking for confirmation")
	cmd.Flags().BoolVar(&importNoBackup, "no-backup", false, "Skip the pre-change snapshot")
	rootCmd.AddCommand(cmd)
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import server entries from a JSON document",
		Long: `The import command reads an external configuration document and folds its
server entries into the current one. Pass - to read from stdin. UTF-8 and
UTF-16 input (with or without a byte order mark) are accepted.

Modes:
  merge     - add new entries, keep existing ones on name collisions
  overwrite - add new entries, replace existing ones on name collisions
  replace   - make the document's entries exactly the imported set

Example:
  mcpctl import team-config.json
  mcpctl import team-config.json --mode overwrite
  cat export.json | mcpctl import - --mode replace --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args)
		},
	}
	return cmd
}

func parseImportMode(s string) (mcp.ImportMode, error) {
	switch s {
	case "merge":
		return mcp.ImportMerge, nil
	case "overwrite":
		return mcp.ImportOverwrite, nil
	case "replace":
		return mcp.ImportReplace, nil
	default:
		return 0, fmt.Errorf("unknown import mode: %s (must be merge, overwrite, or replace)", s)
	}
}

func runImport(args []string) error {
	mode, err := parseImportMode(importMode)
	if err != nil {
		return err
	}

	var data []byte
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read import source: %w", err)
	}

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	printVerbose("Loading configuration: %s\n", path)

	ctx := context.Background()
	preview, err := mcp.Import(ctx, path, data, mode, &mcp.Options{DryRun: true})
	if err != nil {
		return err
	}

	if preview.Plan.IsEmpty() {
		if issues := preview.Plan.Validation(); len(issues.Issues) > 0 {
			printIssues(issues)
		}
		printInfo("Nothing to import.\n")
		return nil
	}

	if jsonOut && importDryRun {
		return printJSON(map[string]any{
			"mode":    mode.String(),
			"dry_run": true,
			"preview": preview.Plan.Preview(),
		})
	}

	printInfo("\nImport (%s) would change %s:\n", mode, path)
	printPreview(preview.Plan)

	if importDryRun {
		printInfo("\nDry run: nothing written.\n")
		return nil
	}

	if err := confirm(importYes, "Apply %s to %s?",
		pluralize(preview.Plan.Size(), "change", "changes"), path); err != nil {
		return err
	}

	res, err := mcp.Import(ctx, path, data, mode, &mcp.Options{NoBackup: importNoBackup})
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"mode":    mode.String(),
			"applied": res.Applied(),
			"changes": res.Plan.Size(),
		})
	}
	printInfo("\n%s Imported %s\n", styled(successStyle, "✓"),
		pluralize(res.Plan.Size(), "change", "changes"))
	return nil
}
