//go:build windows
// +build windows

package python

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// launcherLine matches one entry of `py --list-paths` output, in both the
// modern ` -V:3.12 * C:\...` and legacy ` -3.12-64 * C:\...` spellings.
var launcherLine = regexp.MustCompile(`^\s*-(?:V:)?(\d+)\.(\d+)(?:-\d+)?\s+\*?\s*(.+)$`)

func launcherAvailable() bool {
	return true
}

// launcherListPaths asks the py launcher for every interpreter it knows
// about. A machine without the launcher installed simply contributes no
// candidates.
func launcherListPaths(ctx context.Context) ([]launcherEntry, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "py", "--list-paths")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return nil, nil
		}
		return nil, &LauncherError{Err: err, Output: strings.TrimSpace(stderr.String())}
	}

	var entries []launcherEntry
	for _, line := range strings.Split(stdout.String(), "\n") {
		groups := launcherLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if groups == nil {
			continue
		}
		major, err := strconv.Atoi(groups[1])
		if err != nil {
			continue
		}
		minor, err := strconv.Atoi(groups[2])
		if err != nil {
			continue
		}
		entries = append(entries, launcherEntry{
			Major:      major,
			Minor:      minor,
			Executable: strings.TrimSpace(groups[3]),
		})
	}

	return entries, nil
}
