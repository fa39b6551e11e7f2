package python

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/FollowTheProcess/pyscout/internal"
)

const (
	// venvDirName is the conventional virtual environment directory.
	venvDirName = ".venv"

	// pyvenvCfgFile marks a directory as a virtual environment.
	pyvenvCfgFile = "pyvenv.cfg"
)

// VirtualenvExecutable returns the canonical interpreter path beneath a
// virtual environment root: bin/python on POSIX, Scripts\python.exe on
// Windows.
func VirtualenvExecutable(root string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(root, "Scripts", "python.exe")
	}
	return filepath.Join(root, "bin", "python")
}

// virtualenvFromEnv returns the root of the active virtual environment as
// advertised by VIRTUAL_ENV, or "" when none is active.
func virtualenvFromEnv() string {
	return os.Getenv(virtualEnvKey)
}

// virtualenvFromWorkingDir walks up from the working directory looking for
// a ".venv" directory holding a "pyvenv.cfg", the marker that this is
// indeed a python virtual environment. Returns the environment root, or ""
// when no environment is found anywhere up the tree.
func virtualenvFromWorkingDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("error getting cwd: %w", err)
	}

	for dir := cwd; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, venvDirName)
		if internal.Exists(filepath.Join(candidate, pyvenvCfgFile)) {
			log.WithField("venv", candidate).Debugln("Found a virtual environment")
			return candidate, nil
		}
		if filepath.Dir(dir) == dir {
			return "", nil
		}
	}
}

// PyVenvConfiguration is the contents of an environment's pyvenv.cfg.
type PyVenvConfiguration struct {
	// Home is the directory of the interpreter the environment was made from.
	Home string
	// Version is the python version recorded at creation time.
	Version string
	// Prompt is the customised shell prompt, if any.
	Prompt string
	// IncludeSystemSitePackages is whether the base interpreter's
	// site-packages leak into the environment.
	IncludeSystemSitePackages bool
}

// ParsePyVenvCfg reads a pyvenv.cfg, a flat file of "key = value" lines.
// Unknown keys are ignored.
func ParsePyVenvCfg(path string) (PyVenvConfiguration, error) {
	file, err := os.Open(path)
	if err != nil {
		return PyVenvConfiguration{}, err
	}
	defer file.Close()

	var cfg PyVenvConfiguration
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		switch key {
		case "home":
			cfg.Home = value
		case "version", "version_info":
			cfg.Version = value
		case "prompt":
			cfg.Prompt = value
		case "include-system-site-packages":
			cfg.IncludeSystemSitePackages = strings.EqualFold(value, "true")
		}
	}
	if err := scanner.Err(); err != nil {
		return PyVenvConfiguration{}, fmt.Errorf("could not read %s: %w", path, err)
	}

	return cfg, nil
}
