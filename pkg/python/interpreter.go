package python

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// queryScript is the introspection program run inside each candidate
// interpreter. It prints a single JSON object on stdout, everything the
// core needs to know about an interpreter in one subprocess round trip.
const queryScript = `import json
import platform
import sys
import sysconfig

implementation = platform.python_implementation().lower()
if implementation not in ("cpython", "pypy"):
    implementation = "cpython"

print(json.dumps({
    "implementation": implementation,
    "major": sys.version_info[0],
    "minor": sys.version_info[1],
    "patch": sys.version_info[2],
    "prefix": sys.prefix,
    "base_prefix": sys.base_prefix,
    "executable": sys.executable,
    "purelib": sysconfig.get_path("purelib"),
    "platlib": sysconfig.get_path("platlib"),
}))
`

// Interpreter is a fully queried python runtime, identified by its
// executable path and the metadata record the introspection script
// reported for it.
type Interpreter struct {
	Implementation ImplementationName `json:"implementation"`
	Prefix         string             `json:"prefix"`
	BasePrefix     string             `json:"base_prefix"`
	Executable     string             `json:"executable"`
	Purelib        string             `json:"purelib"`
	Platlib        string             `json:"platlib"`
	Major          int                `json:"major"`
	Minor          int                `json:"minor"`
	Patch          int                `json:"patch"`
	VirtualEnv     bool               `json:"virtualenv"`
}

// Version renders the full interpreter version e.g. "3.12.1".
func (i Interpreter) Version() string {
	return fmt.Sprintf("%d.%d.%d", i.Major, i.Minor, i.Patch)
}

// String satisfies the "stringer" interface and allows an `Interpreter`
// to be pretty printed using fmt.Println
func (i Interpreter) String() string {
	// Note, the vertical bar character below is not the U+007C "Vertical Line" pipe character
	// '|' but the U+2502 "Box Drawings Light Vertical" character '│'
	// this is so, when printed it looks like a proper table
	return fmt.Sprintf("%s %s\t│ %s", i.Implementation, i.Version(), i.Executable)
}

// queryInterpreter spawns the interpreter at path with the introspection
// script and decodes its report. The subprocess blocks until completion,
// bounded only by ctx.
func queryInterpreter(ctx context.Context, path string) (Interpreter, error) {
	log.WithField("interpreter", path).Debugln("Querying interpreter metadata")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "-c", queryScript)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The interpreter started but our script failed inside it,
			// this interpreter is broken rather than missing
			return Interpreter{}, &QueryError{
				Path:   path,
				Script: true,
				Stderr: strings.TrimSpace(stderr.String()),
				Err:    err,
			}
		}
		return Interpreter{}, &QueryError{Path: path, Err: err}
	}

	var info struct {
		Implementation string `json:"implementation"`
		Prefix         string `json:"prefix"`
		BasePrefix     string `json:"base_prefix"`
		Executable     string `json:"executable"`
		Purelib        string `json:"purelib"`
		Platlib        string `json:"platlib"`
		Major          int    `json:"major"`
		Minor          int    `json:"minor"`
		Patch          int    `json:"patch"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return Interpreter{}, &QueryError{Path: path, Err: fmt.Errorf("malformed interpreter metadata: %w", err)}
	}

	implementation, err := ParseImplementationName(info.Implementation)
	if err != nil {
		return Interpreter{}, &QueryError{Path: path, Err: err}
	}

	executable := info.Executable
	if executable == "" {
		executable = path
	}
	if abs, err := filepath.Abs(executable); err == nil {
		executable = abs
	}

	return Interpreter{
		Implementation: implementation,
		Major:          info.Major,
		Minor:          info.Minor,
		Patch:          info.Patch,
		Prefix:         info.Prefix,
		BasePrefix:     info.BasePrefix,
		Executable:     executable,
		Purelib:        info.Purelib,
		Platlib:        info.Platlib,
		VirtualEnv:     info.Prefix != info.BasePrefix,
	}, nil
}
