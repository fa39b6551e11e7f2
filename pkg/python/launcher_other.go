//go:build !windows
// +build !windows

package python

import "context"

// launcherAvailable reports whether this platform has a python launcher,
// which only Windows does.
func launcherAvailable() bool {
	return false
}

func launcherListPaths(ctx context.Context) ([]launcherEntry, error) {
	return nil, nil
}
