package python

import (
	"fmt"
	"path/filepath"
)

// NotFoundKind discriminates the structured negative outcomes of a search.
type NotFoundKind int

const (
	// NoPythonInstallation means no python installations were found at all.
	NoPythonInstallation NotFoundKind = iota
	// NoMatchingVersion means no installation had the requested version.
	NoMatchingVersion
	// NoMatchingImplementation means no installation had the requested
	// implementation.
	NoMatchingImplementation
	// NoMatchingImplementationVersion means no installation had the
	// requested implementation at the requested version.
	NoMatchingImplementationVersion
	// FileNotFound means the requested interpreter path does not exist.
	FileNotFound
	// DirectoryNotFound means the requested directory does not exist.
	DirectoryNotFound
	// ExecutableNotFoundInDirectory means the requested directory has no
	// python executable at the conventional location.
	ExecutableNotFoundInDirectory
	// ExecutableNotFoundInSearchPath means the named executable is not on
	// the search path.
	ExecutableNotFoundInSearchPath
	// FileNotExecutable means a python was found but cannot be executed.
	FileNotExecutable
)

// NotFoundError is the structured "no interpreter matches" outcome of a
// search, distinct from an infrastructure failure. It carries the selector
// and the narrowest applicable request facet so messages can be rendered
// without re-deriving context and so callers can recover programmatically
// with errors.As.
type NotFoundError struct {
	// Version is the version facet, when the request had one. Nil or the
	// default request when no particular version was asked for.
	Version *VersionRequest
	// Path is the offending path for the path-shaped kinds.
	Path string
	// Executable is the missing executable for ExecutableNotFoundInDirectory.
	Executable string
	// Name is the executable name for ExecutableNotFoundInSearchPath.
	Name string
	// Implementation is the implementation facet, when the request had one.
	Implementation ImplementationName
	// Sources is the selector that was consulted.
	Sources SourceSelector
	// Kind says which facets are meaningful.
	Kind NotFoundKind
}

// Error satisfies the error interface.
func (e *NotFoundError) Error() string {
	switch e.Kind {
	case NoPythonInstallation:
		if e.Version != nil && !e.Version.IsDefault() {
			return fmt.Sprintf("no python %s installation found in %s", e.Version, e.Sources)
		}
		return fmt.Sprintf("no python installation found in %s", e.Sources)
	case NoMatchingVersion:
		if e.Version == nil || e.Version.IsDefault() {
			return fmt.Sprintf("no python interpreter found in %s", e.Sources)
		}
		return fmt.Sprintf("no interpreter found for python %s in %s", e.Version, e.Sources)
	case NoMatchingImplementation:
		return fmt.Sprintf("no interpreter found for %s in %s", e.Implementation, e.Sources)
	case NoMatchingImplementationVersion:
		return fmt.Sprintf("no interpreter found for %s %s in %s", e.Implementation, e.Version, e.Sources)
	case FileNotFound:
		return fmt.Sprintf("requested interpreter path %s does not exist", e.Path)
	case DirectoryNotFound:
		return fmt.Sprintf("requested interpreter directory %s does not exist", e.Path)
	case ExecutableNotFoundInDirectory:
		executable := e.Executable
		if relative, err := filepath.Rel(e.Path, e.Executable); err == nil {
			executable = relative
		}
		return fmt.Sprintf("interpreter directory %s does not contain a python executable at %s", e.Path, executable)
	case ExecutableNotFoundInSearchPath:
		return fmt.Sprintf("requested python executable %q not found in the search path", e.Name)
	case FileNotExecutable:
		return fmt.Sprintf("python interpreter at %s is not executable", e.Path)
	default:
		return fmt.Sprintf("no interpreter found in %s", e.Sources)
	}
}
