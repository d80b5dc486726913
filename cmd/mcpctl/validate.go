package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/verify"
	"github.com/joshuapare/mcpkit/pkg/mcp"
	"github.com/joshuapare/mcpkit/pkg/types"
)

var validateDeep bool

func init() {
	cmd := newValidateCmd()
	cmd.Flags().BoolVar(&validateDeep, "deep", false, "Also check commands and paths against the filesystem")
	rootCmd.AddCommand(cmd)
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [name]",
		Short: "Validate the configuration or one entry",
		Long: `The validate command checks every server entry (or just the named one)
against the configuration rules: non-empty commands, well-formed
environment keys, duplicate detection. --deep additionally resolves
commands against PATH and checks referenced paths, which touches the
filesystem and is slower.

Warnings do not fail validation; errors do.

Example:
  mcpctl validate
  mcpctl validate github
  mcpctl validate --deep --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
	return cmd
}

func runValidate(args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	printVerbose("Validating %s\n", path)

	var result verify.Result
	scope := path
	if len(args) == 1 {
		name := args[0]
		scope = name
		doc, err := config.Load(path)
		if err != nil {
			return err
		}
		server, ok := doc.Get(name)
		if !ok {
			return &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("entry %q not found", name)}
		}
		result = verify.CheckServer(server, verify.Options{Deep: validateDeep})
	} else {
		result, err = mcp.Validate(path, validateDeep)
		if err != nil {
			return err
		}
	}

	errs, warns := result.Errors(), result.Warnings()

	if jsonOut {
		issues := make([]map[string]string, 0, len(result.Issues))
		for _, is := range result.Issues {
			issues = append(issues, map[string]string{
				"severity": is.Severity.String(),
				"entry":    is.Entry,
				"field":    is.Field,
				"message":  is.Message,
			})
		}
		if err := printJSON(map[string]any{
			"target":   scope,
			"valid":    result.OK(),
			"errors":   len(errs),
			"warnings": len(warns),
			"issues":   issues,
		}); err != nil {
			return err
		}
		if !result.OK() {
			return types.ErrValidationFailed
		}
		return nil
	}

	printInfo("\nValidating %s...\n\n", scope)
	if len(result.Issues) > 0 {
		printIssues(result)
		printInfo("\n")
	}
	printInfo("%d error(s), %d warning(s)\n", len(errs), len(warns))

	if !result.OK() {
		printInfo("\nResult: %s INVALID\n", styled(errorStyle, "✗"))
		return types.ErrValidationFailed
	}
	printInfo("\nResult: %s VALID\n", styled(successStyle, "✓"))
	return nil
}
