package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mcpkit/cmd/mcpctl/logger"
	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/verify"
	"github.com/joshuapare/mcpkit/internal/paths"
	"github.com/joshuapare/mcpkit/pkg/mcp"
)

func init() {
	rootCmd.AddCommand(newDoctorCmd())
}

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the configuration environment",
		Long: `The doctor command inspects the environment the other commands depend
on: where the configuration document lives, whether it parses, what the
snapshot store and profile registry look like. It reports findings and
always exits 0; use validate for a pass/fail check.

Example:
  mcpctl doctor
  mcpctl doctor --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor()
		},
	}
	return cmd
}

type finding struct {
	Check  string `json:"check"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

func runDoctor() error {
	var findings []finding
	note := func(check string, ok bool, format string, args ...any) {
		findings = append(findings, finding{Check: check, OK: ok, Detail: fmt.Sprintf(format, args...)})
	}

	dir, err := paths.ConfigDir()
	if err != nil {
		note("config directory", false, "cannot resolve: %v", err)
	} else if _, statErr := os.Stat(dir); statErr != nil {
		note("config directory", false, "%s does not exist", dir)
	} else {
		note("config directory", true, "%s", dir)
	}

	path, err := resolveConfigPath()
	if err != nil {
		note("config document", false, "cannot resolve: %v", err)
	} else if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		note("config document", false, "%s does not exist yet (created on first add)", path)
	} else if doc, loadErr := config.Load(path); loadErr != nil {
		note("config document", false, "%s: %v", path, loadErr)
	} else {
		note("config document", true, "%s (%d servers)", path, doc.Len())

		result := verify.CheckDocument(doc, verify.Options{})
		if errs := result.Errors(); len(errs) > 0 {
			note("validation", false, "%d error(s); run: mcpctl validate", len(errs))
		} else if warns := result.Warnings(); len(warns) > 0 {
			note("validation", true, "%d warning(s); run: mcpctl validate", len(warns))
		} else {
			note("validation", true, "no issues")
		}

		snaps, listErr := mcp.Backups(path, nil).List()
		switch {
		case listErr != nil:
			note("snapshots", false, "%v", listErr)
		case len(snaps) == 0:
			note("snapshots", true, "none yet")
		default:
			age := time.Since(snaps[0].Metadata.CreatedAt).Round(time.Minute)
			note("snapshots", true, "%d stored, newest %s old", len(snaps), age)
		}
	}

	if mgr, mgrErr := profileManager(); mgrErr == nil {
		infos, current, listErr := mgr.List()
		if listErr != nil {
			note("profiles", false, "%v", listErr)
		} else {
			note("profiles", true, "%d named, active: %s", len(infos), current)
		}
	}

	if p := logger.Path(); p != "" {
		note("debug log", true, "%s", p)
	}

	if cat, catErr := catalogManager(true); catErr == nil {
		meta, metaErr := cat.Cache.Metadata()
		switch {
		case metaErr != nil || meta.LastRefresh.IsZero():
			note("template catalog", true, "no cached index (built-ins available)")
		case cat.Cache.Expired():
			note("template catalog", true, "cache stale; refresh with: mcpctl template list --refresh")
		default:
			note("template catalog", true, "refreshed %s", meta.LastRefresh.Format("2006-01-02"))
		}
	}

	if jsonOut {
		return printJSON(findings)
	}

	printInfo("\nEnvironment:\n")
	for _, f := range findings {
		glyph := styled(successStyle, "✓")
		if !f.OK {
			glyph = styled(errorStyle, "✗")
		}
		printInfo("  %s %s: %s\n", glyph, f.Check, f.Detail)
	}
	return nil
}
