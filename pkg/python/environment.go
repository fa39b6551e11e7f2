package python

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Environment is a python environment: an interpreter plus the prefix it
// installs into. Optionally retargeted at a plain directory for
// `--target` style installs.
type Environment struct {
	// Root is the environment prefix, e.g. the virtualenv directory.
	Root string
	// Target overrides the install destination when set.
	Target string
	// Interpreter is the queried interpreter backing the environment.
	Interpreter Interpreter
}

// FindEnvironment resolves an environment from an optional user request.
//
// With a request string, that wins. Otherwise a virtual environment is
// preferred unless the policy requires a system interpreter, and a system
// interpreter is the fallback when the policy allows one.
func FindEnvironment(ctx context.Context, request string, policy SystemPolicy, cache *Cache) (*Environment, error) {
	if request != "" {
		return EnvironmentFromRequest(ctx, request, cache)
	}
	if policy.Preferred() {
		return DefaultEnvironment(ctx, cache)
	}

	env, err := EnvironmentFromVirtualenv(ctx, cache)
	var notFound *NotFoundError
	if err != nil && errors.As(err, &notFound) && policy.Allowed() {
		return DefaultEnvironment(ctx, cache)
	}
	return env, err
}

// EnvironmentFromVirtualenv resolves the active or discovered virtual
// environment, considering no other sources.
func EnvironmentFromVirtualenv(ctx context.Context, cache *Cache) (*Environment, error) {
	request := Request{Kind: RequestVersion, Version: DefaultVersion()}
	found, err := FindInterpreter(ctx, request, VirtualenvSources(), cache)
	if err != nil {
		return nil, err
	}
	return &Environment{Root: found.Interpreter.Prefix, Interpreter: found.Interpreter}, nil
}

// EnvironmentFromRoot resolves the environment rooted at the given
// directory, e.g. a known ".venv".
func EnvironmentFromRoot(ctx context.Context, root string, cache *Cache) (*Environment, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Kind: DirectoryNotFound, Path: root}
	} else if err != nil {
		return nil, err
	}

	interpreter, err := cache.Query(ctx, VirtualenvExecutable(resolved))
	if err != nil {
		return nil, err
	}
	return &Environment{Root: interpreter.Prefix, Interpreter: interpreter}, nil
}

// EnvironmentFromRequest resolves an environment for a user request string
// such as a version, an implementation, a path or an executable name.
func EnvironmentFromRequest(ctx context.Context, request string, cache *Cache) (*Environment, error) {
	sources := SourcesFromEnv(SystemAllowed)
	found, err := FindInterpreter(ctx, ParseRequest(request), sources, cache)
	if err != nil {
		return nil, err
	}
	return &Environment{Root: found.Interpreter.Prefix, Interpreter: found.Interpreter}, nil
}

// DefaultEnvironment resolves the environment of the default system
// interpreter.
func DefaultEnvironment(ctx context.Context, cache *Cache) (*Environment, error) {
	found, err := FindDefaultInterpreter(ctx, cache)
	if err != nil {
		return nil, err
	}
	return &Environment{Root: found.Interpreter.Prefix, Interpreter: found.Interpreter}, nil
}

// WithTarget returns a copy of the environment that installs into the
// given directory instead of its own site-packages.
func (e *Environment) WithTarget(target string) *Environment {
	copied := *e
	copied.Target = target
	return &copied
}

// Executable returns the environment's interpreter path.
func (e *Environment) Executable() string {
	return e.Interpreter.Executable
}

// SitePackages returns the import directories of the environment. In most
// installs purelib and platlib are the same directory, so usually this is
// a single entry.
func (e *Environment) SitePackages() []string {
	if e.Target != "" {
		return []string{e.Target}
	}

	purelib, platlib := e.Interpreter.Purelib, e.Interpreter.Platlib
	if platlib == "" || platlib == purelib || sameFile(purelib, platlib) {
		return []string{purelib}
	}
	return []string{purelib, platlib}
}

// Cfg returns the environment's pyvenv.cfg contents.
func (e *Environment) Cfg() (PyVenvConfiguration, error) {
	return ParsePyVenvCfg(filepath.Join(e.Root, pyvenvCfgFile))
}

// Lock acquires the file lock guarding mutation of this environment, so
// concurrent installs into the same environment serialise. The caller must
// Unlock it.
//
// Target installs lock beneath the target root and virtual environments
// beneath the environment root. Anything else (a system interpreter) gets
// a process-global lock keyed by a digest of the prefix, since its prefix
// is typically not writable for lock files.
func (e *Environment) Lock() (*flock.Flock, error) {
	var path string
	switch {
	case e.Target != "":
		path = filepath.Join(e.Target, ".lock")
	case e.Interpreter.VirtualEnv:
		path = filepath.Join(e.Root, ".lock")
	default:
		path = filepath.Join(os.TempDir(), fmt.Sprintf("pyscout-%s.lock", digest(e.Root)))
	}

	lock := flock.New(path)
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("could not acquire lock for %s: %w", e.Root, err)
	}
	return lock, nil
}

// sameFile reports whether two paths refer to the same file, e.g. via a
// purelib -> platlib symlink.
func sameFile(a, b string) bool {
	aInfo, err := os.Stat(a)
	if err != nil {
		return false
	}
	bInfo, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(aInfo, bInfo)
}
