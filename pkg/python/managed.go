package python

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// Toolchain is an interpreter installed into the directory pyscout
// controls. Its version is declared by the install directory name so
// requests can be prefiltered without spawning the interpreter.
type Toolchain struct {
	Implementation ImplementationName
	Root           string
	Major          int
	Minor          int
	Patch          int
}

// Version renders the declared toolchain version e.g. "3.12.1".
func (t Toolchain) Version() string {
	return fmt.Sprintf("%d.%d.%d", t.Major, t.Minor, t.Patch)
}

// Executable returns the interpreter path inside the toolchain.
func (t Toolchain) Executable() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(t.Root, "python.exe")
	}
	return filepath.Join(t.Root, "bin", "python3")
}

// toolchainDir is where managed toolchains are installed, one directory
// per toolchain named <implementation>-<version>-<os>-<arch>.
func toolchainDir() (string, error) {
	if dir := os.Getenv(toolchainDirKey); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not locate the toolchain directory: %w", err)
	}
	return filepath.Join(home, ".pyscout", "toolchains"), nil
}

// InstalledToolchains enumerates the managed toolchains installed for the
// current OS and architecture, newest version first. A missing toolchain
// directory simply means no toolchains.
func InstalledToolchains() ([]Toolchain, error) {
	dir, err := toolchainDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("could not read contents of %s: %w", dir, err)
	}

	var toolchains []Toolchain
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		toolchain, ok := parseToolchainName(entry.Name())
		if !ok {
			log.WithField("dir", entry.Name()).Debugln("Skipping unrecognised toolchain directory")
			continue
		}
		toolchain.Root = filepath.Join(dir, entry.Name())
		toolchains = append(toolchains, toolchain)
	}

	sort.SliceStable(toolchains, func(i, j int) bool {
		a, b := toolchains[i], toolchains[j]
		if a.Major != b.Major {
			return a.Major > b.Major
		}
		if a.Minor != b.Minor {
			return a.Minor > b.Minor
		}
		return a.Patch > b.Patch
	})

	return toolchains, nil
}

// parseToolchainName decodes an install directory name of the form
// "cpython-3.12.1-linux-x86_64", rejecting toolchains built for another
// OS or architecture.
func parseToolchainName(name string) (Toolchain, bool) {
	parts := strings.SplitN(name, "-", 4)
	if len(parts) != 4 {
		return Toolchain{}, false
	}

	implementation, err := ParseImplementationName(parts[0])
	if err != nil {
		return Toolchain{}, false
	}

	versionParts := strings.Split(parts[1], ".")
	if len(versionParts) != 3 {
		return Toolchain{}, false
	}
	numbers := make([]int, 3)
	for i, part := range versionParts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Toolchain{}, false
		}
		numbers[i] = n
	}

	if parts[2] != runtime.GOOS || parts[3] != platformArch() {
		return Toolchain{}, false
	}

	return Toolchain{
		Implementation: implementation,
		Major:          numbers[0],
		Minor:          numbers[1],
		Patch:          numbers[2],
	}, true
}

// platformArch maps Go's architecture names onto the ones toolchain
// distributions use.
func platformArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	default:
		return runtime.GOARCH
	}
}
