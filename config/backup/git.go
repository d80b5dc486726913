package backup

import (
	"os/exec"
	"strings"
)

// gitInfo returns the current branch and short commit, best effort. Both
// come back empty when git is absent or the working directory is not a
// repository.
func gitInfo() (branch, commit string) {
	branch = gitOutput("branch", "--show-current")
	commit = gitOutput("rev-parse", "--short", "HEAD")
	return branch, commit
}

func gitOutput(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
