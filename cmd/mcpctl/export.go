package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/pkg/mcp"
)

var exportOutput string

func init() {
	cmd := newExportCmd()
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
	rootCmd.AddCommand(cmd)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [name...]",
		Short: "Export the configuration as JSON",
		Long: `The export command writes the configuration document, or just the named
entries, as pretty-printed JSON. Values are exported as stored, without
masking; treat the output as sensitive.

Example:
  mcpctl export
  mcpctl export github sqlite -o team-config.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args)
		},
	}
	return cmd
}

func runExport(args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	printVerbose("Loading configuration: %s\n", path)

	data, err := mcp.Export(path, args...)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(exportOutput, data, 0o600); err != nil {
		return err
	}
	printInfo("%s Exported to %s\n", styled(successStyle, "✓"), exportOutput)
	return nil
}
