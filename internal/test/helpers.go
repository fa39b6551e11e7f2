// Package test holds helpers shared by pyscout's test suites.
package test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// GetProjectRoot is a convenience function for reliably getting the project root dir from anywhere
// so that tests can make use of root-relative paths
func GetProjectRoot() (string, error) {
	_, here, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("could not find current filepath")
	}

	return filepath.Join(filepath.Dir(here), "../.."), nil
}

// FakeInterpreter describes the metadata a fake interpreter script will
// report when queried.
type FakeInterpreter struct {
	Implementation string // Defaults to "cpython"
	Prefix         string // Defaults to "/usr"
	SpawnLog       string // If set, append a line to this file on every invocation
	Major          int
	Minor          int
	Patch          int
	VirtualEnv     bool // Report a prefix different from the base prefix
	Broken         bool // Exit nonzero instead of reporting anything
}

// MakeFakeInterpreter writes an executable shell script into dir that
// behaves like a python interpreter being introspected: invoked with any
// arguments it prints the metadata JSON record on stdout. It returns the
// script's path.
//
// This keeps discovery tests honest (real directories, real executables,
// real subprocess spawns) without needing any actual python installed.
func MakeFakeInterpreter(t *testing.T, dir, name string, fake FakeInterpreter) string {
	t.Helper()

	if fake.Implementation == "" {
		fake.Implementation = "cpython"
	}
	if fake.Prefix == "" {
		fake.Prefix = "/usr"
	}
	basePrefix := fake.Prefix
	if fake.VirtualEnv {
		basePrefix = "/usr"
	}

	path := filepath.Join(dir, name)
	site := filepath.Join(fake.Prefix, "lib", fmt.Sprintf("python%d.%d", fake.Major, fake.Minor), "site-packages")

	record, err := json.Marshal(map[string]interface{}{
		"implementation": fake.Implementation,
		"major":          fake.Major,
		"minor":          fake.Minor,
		"patch":          fake.Patch,
		"prefix":         fake.Prefix,
		"base_prefix":    basePrefix,
		"executable":     path,
		"purelib":        site,
		"platlib":        site,
	})
	if err != nil {
		t.Fatalf("could not marshal fake interpreter record: %v", err)
	}

	script := "#!/bin/sh\n"
	if fake.SpawnLog != "" {
		script += fmt.Sprintf("echo %s >> %s\n", name, fake.SpawnLog)
	}
	if fake.Broken {
		script += "echo 'boom' >&2\nexit 1\n"
	} else {
		// printf is a shell builtin, so the script still works when a test
		// narrows PATH to a directory holding nothing but fake interpreters
		script += fmt.Sprintf("printf '%%s\\n' '%s'\n", strings.ReplaceAll(string(record), "'", `'\''`))
	}

	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("could not write fake interpreter %s: %v", path, err)
	}

	return path
}

// CountLines returns how many lines the file at path has, 0 if it does
// not exist. Used with FakeInterpreter.SpawnLog to count subprocess
// spawns.
func CountLines(t *testing.T, path string) int {
	t.Helper()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("could not read %s: %v", path, err)
	}

	count := 0
	for _, b := range data {
		if b == '\n' {
			count++
		}
	}
	return count
}

// WritePyProject writes a pyproject.toml with the given contents into
// dir, creating the directory if need be.
func WritePyProject(t *testing.T, dir, contents string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("could not create %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("could not write pyproject.toml in %s: %v", dir, err)
	}
}
