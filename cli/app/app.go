// Package app implements the CLI functionality, the CLI defers
// execution to the exported methods in this package
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/FollowTheProcess/msg"
	"github.com/FollowTheProcess/pyscout/pkg/python"
	"github.com/FollowTheProcess/pyscout/pkg/workspace"
	"github.com/sirupsen/logrus"
)

const debugEnvKey = "PYSCOUT_DEBUG" // The key for the env variable to trigger verbose logging

// App represents the pyscout program
type App struct {
	Out    io.Writer      // Normal CLI output
	Err    io.Writer      // Where the logger and errors will write to
	Logger *logrus.Logger // The debug logger
	Cache  *python.Cache  // Interpreter metadata cache
}

// New creates a new default App configured to write to 'stdout'
// and DEBUG log to 'stderr'
func New() *App {
	log := logrus.New()

	// If the PYSCOUT_DEBUG environment variable is set to anything
	// set logging level accordingly, otherwise leave at default (InfoLevel)
	if debug := os.Getenv(debugEnvKey); debug != "" {
		log.Level = logrus.DebugLevel
	}
	log.Formatter = &logrus.TextFormatter{DisableLevelTruncation: true, DisableTimestamp: true}
	log.Out = os.Stderr

	return &App{Out: os.Stdout, Err: os.Stderr, Logger: log, Cache: &python.Cache{}}
}

// Find resolves a single interpreter request and reports what it found
// and where it came from.
//
// An empty request means "any interpreter". With 'system' set, virtual
// environments are ignored. With 'best' set, a request that cannot be
// satisfied exactly falls back to the closest match instead of failing.
func (a *App) Find(request string, system, best bool) error {
	ctx := context.Background()

	policy := python.SystemAllowed
	if system {
		policy = python.SystemRequired
	}

	req := python.Request{Kind: python.RequestVersion, Version: python.DefaultVersion()}
	if request != "" {
		req = python.ParseRequest(request)
	}
	a.Logger.WithField("request", req.String()).Debugln("Parsed interpreter request")

	var (
		found python.DiscoveredInterpreter
		err   error
	)
	if best {
		found, err = python.FindBestInterpreter(ctx, req, policy, a.Cache)
	} else {
		sources := python.SourcesFromEnv(policy)
		found, err = python.FindInterpreter(ctx, req, sources, a.Cache)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "%s (%s)\n", found.Interpreter, found.Source)
	return nil
}

// List shows every discoverable python interpreter, in discovery order
// so the first line is what a default request would resolve to.
func (a *App) List(system bool) error {
	ctx := context.Background()

	policy := python.SystemAllowed
	if system {
		policy = python.SystemRequired
	}
	sources := python.SourcesFromEnv(policy)
	a.Logger.WithField("sources", sources.String()).Debugln("Listing interpreters")

	interpreters, err := python.AllInterpreters(ctx, sources, a.Cache)
	if err != nil {
		return err
	}

	// Handle the case where the user does not have any pythons
	if len(interpreters) == 0 {
		return fmt.Errorf("no python interpreters found in %s", sources)
	}

	for _, found := range interpreters {
		fmt.Fprintf(a.Out, "%s (%s)\n", found.Interpreter, found.Source)
	}

	return nil
}

// Workspace resolves the project at 'dir' (the cwd if empty) and shows the
// workspace it belongs to: roots, members and source overrides.
func (a *App) Workspace(dir string) error {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("error getting cwd: %w", err)
		}
		dir = cwd
	}

	ws, err := workspace.Discover(dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "project:   %s (%s)\n", ws.ProjectName, ws.ProjectRoot)
	fmt.Fprintf(a.Out, "workspace: %s\n", ws.WorkspaceRoot)

	if len(ws.Members) == 1 && ws.WorkspaceRoot == ws.ProjectRoot {
		msg.Info("Project is not part of a wider workspace")
	}

	// Stable output regardless of map order
	names := make([]string, 0, len(ws.Members))
	for name := range ws.Members {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.Out, "members:")
	for _, name := range names {
		fmt.Fprintf(a.Out, "  %s\t│ %s\n", name, ws.Members[name].Root)
	}

	if len(ws.Sources) != 0 {
		overridden := make([]string, 0, len(ws.Sources))
		for name := range ws.Sources {
			overridden = append(overridden, name)
		}
		sort.Strings(overridden)
		fmt.Fprintln(a.Out, "sources:")
		for _, name := range overridden {
			fmt.Fprintf(a.Out, "  %s\n", name)
		}
	}

	return nil
}

// Env resolves a python environment (an interpreter plus its prefix) and
// shows its root, executable and site-packages directories.
func (a *App) Env(request string, system bool) error {
	ctx := context.Background()

	policy := python.SystemAllowed
	if system {
		policy = python.SystemRequired
	}

	env, err := python.FindEnvironment(ctx, request, policy, a.Cache)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "root:        %s\n", env.Root)
	fmt.Fprintf(a.Out, "interpreter: %s %s\n", env.Interpreter.Implementation, env.Interpreter.Version())
	fmt.Fprintf(a.Out, "executable:  %s\n", env.Executable())
	for _, site := range env.SitePackages() {
		fmt.Fprintf(a.Out, "site:        %s\n", site)
	}
	if !env.Interpreter.VirtualEnv {
		msg.Warn("Not a virtual environment")
	}

	return nil
}
