package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/joshuapare/mcpkit/cmd/mcpctl/logger"
	"github.com/joshuapare/mcpkit/internal/paths"
	"github.com/joshuapare/mcpkit/pkg/types"
	"github.com/joshuapare/mcpkit/profile"
	"github.com/joshuapare/mcpkit/template/catalog"
)

var (
	// Global flags
	configFlag  string
	profileFlag string
	verbose     bool
	quiet       bool
	jsonOut     bool
	noColor     bool
	debugMode   bool
)

var rootCmd = &cobra.Command{
	Use:   "mcpctl",
	Short: "Manage MCP server entries in the desktop configuration",
	Long: `mcpctl is a tool for inspecting and modifying the MCP server entries
of the desktop application's configuration document. Every change runs as a
transaction: the current document is snapshotted first, the change is written
atomically, and validation failures roll the file back untouched.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(logger.Options{Enabled: debugMode, Level: slog.LevelDebug})
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to the configuration document (overrides profile resolution)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Operate on the named profile's document")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Write a debug log file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		logger.Error("command failed", "error", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to the process exit code: 2 for validation
// problems, 3 for missing targets, 4 for concurrent-change conflicts,
// 1 for everything else.
func exitCodeFor(err error) int {
	kind, ok := types.KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case types.ErrKindValidation, types.ErrKindPattern, types.ErrKindExists:
		return 2
	case types.ErrKindNotFound:
		return 3
	case types.ErrKindConflict:
		return 4
	default:
		return 1
	}
}

// Styling

var (
	successColor = lipgloss.Color("#04B575")
	warningColor = lipgloss.Color("#FFA500")
	errorColor   = lipgloss.Color("#FF4B4B")
	mutedColor   = lipgloss.Color("#666666")
	accentColor  = lipgloss.Color("#00D7FF")

	successStyle = lipgloss.NewStyle().Foreground(successColor)
	warnStyle    = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	headerStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	// Diff styles
	diffAddedStyle    = lipgloss.NewStyle().Foreground(successColor)
	diffRemovedStyle  = lipgloss.NewStyle().Foreground(errorColor)
	diffModifiedStyle = lipgloss.NewStyle().Foreground(warningColor)
)

// styled renders s with st unless --no-color is set.
func styled(st lipgloss.Style, s string) string {
	if noColor {
		return s
	}
	return st.Render(s)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, styled(errorStyle, "Error: ")+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// resolveConfigPath picks the document a command operates on: --config
// wins, then --profile, then whatever profile is currently active.
func resolveConfigPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	dir, err := paths.ConfigDir()
	if err != nil {
		return "", err
	}
	return profile.NewManager(dir).DocumentPath(profileFlag)
}

// profileManager returns the manager over the application config
// directory. Profile state always lives there, even when --config
// points the document elsewhere.
func profileManager() (*profile.Manager, error) {
	dir, err := paths.ConfigDir()
	if err != nil {
		return nil, err
	}
	return profile.NewManager(dir), nil
}

// catalogManager returns the template catalog manager, caching under
// the application config directory.
func catalogManager(offline bool) (*catalog.Manager, error) {
	dir, err := paths.ConfigDir()
	if err != nil {
		return nil, err
	}
	m := catalog.NewManager(filepath.Join(dir, "templates"))
	m.Offline = offline
	return m, nil
}

// confirm asks before a mutating run. yes (the --yes flag) skips the
// prompt; a non-interactive stdin refuses instead of hanging.
func confirm(yes bool, format string, args ...any) error {
	if yes {
		return nil
	}
	prompt := fmt.Sprintf(format, args...)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("%s: confirmation required (re-run with --yes)", prompt)
	}
	fmt.Fprintf(os.Stdout, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	}
	return fmt.Errorf("aborted")
}
