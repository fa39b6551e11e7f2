package python

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Environment variables the discovery machinery reads.
const (
	// virtualEnvKey advertises the root of an active virtual environment.
	virtualEnvKey = "VIRTUAL_ENV"

	// testPythonPathKey overrides PATH and narrows discovery to the active
	// environment and the search path. Used by the test suite to control
	// which interpreters are visible.
	testPythonPathKey = "UV_TEST_PYTHON_PATH"

	// forceManagedKey restricts discovery to managed toolchains.
	forceManagedKey = "UV_FORCE_MANAGED_PYTHON"

	// toolchainDirKey overrides the managed toolchain directory.
	toolchainDirKey = "PYSCOUT_TOOLCHAIN_DIR"

	// debugKey turns on verbose logging to stderr.
	debugKey = "PYSCOUT_DEBUG"
)

// Source is an origin from which candidate interpreter paths are produced.
//
// The declared order is the default discovery order and breaks ties.
type Source int

const (
	// ProvidedPath means the interpreter path was given directly.
	ProvidedPath Source = iota
	// ActiveEnvironment is a virtual environment advertised via VIRTUAL_ENV.
	ActiveEnvironment
	// DiscoveredEnvironment is a virtual environment found by walking up
	// from the working directory.
	DiscoveredEnvironment
	// ManagedToolchain is an interpreter installed into the toolchain
	// directory that pyscout controls.
	ManagedToolchain
	// SearchPath is an executable found on PATH.
	SearchPath
	// PyLauncher is an executable reported by the Windows py launcher.
	PyLauncher
)

// String satisfies the "stringer" interface.
func (s Source) String() string {
	switch s {
	case ProvidedPath:
		return "provided path"
	case ActiveEnvironment:
		return "active environment"
	case DiscoveredEnvironment:
		return "discovered environment"
	case ManagedToolchain:
		return "managed toolchain"
	case SearchPath:
		return "search path"
	case PyLauncher:
		return "`py` launcher output"
	default:
		return fmt.Sprintf("unknown source (%d)", int(s))
	}
}

// SourceSelector is the set of sources enabled for a discovery run, either
// every source or a non-empty subset.
type SourceSelector struct {
	set map[Source]bool
	all bool
}

// AllSources returns the selector enabling every source.
func AllSources() SourceSelector {
	return SourceSelector{all: true}
}

// SelectSources returns a selector enabling exactly the given sources.
//
// At least one source must be given, an empty selector is meaningless and
// indicates a bug in the caller.
func SelectSources(sources ...Source) SourceSelector {
	if len(sources) == 0 {
		panic("SelectSources called with no sources")
	}
	set := make(map[Source]bool, len(sources))
	for _, source := range sources {
		set[source] = true
	}
	return SourceSelector{set: set}
}

// Contains reports whether the selector enables the given source.
func (s SourceSelector) Contains(source Source) bool {
	if s.all {
		return true
	}
	return s.set[source]
}

// Sources returns the selected sources in their canonical order.
func (s SourceSelector) Sources() []Source {
	if s.all {
		return []Source{ProvidedPath, ActiveEnvironment, DiscoveredEnvironment, ManagedToolchain, SearchPath, PyLauncher}
	}
	sources := make([]Source, 0, len(s.set))
	for source := range s.set {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources
}

// String renders the selector for diagnostics, the sources in stable order
// joined with natural-language conjunctions e.g. "search path or `py`
// launcher output".
func (s SourceSelector) String() string {
	if s.all {
		return "all sources"
	}
	names := make([]string, 0, len(s.set))
	for _, source := range s.Sources() {
		names = append(names, source.String())
	}
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
	}
}

// SystemPolicy governs whether interpreters outside virtual environments
// may be returned and whether active virtual environments are considered.
type SystemPolicy int

const (
	// SystemDisallowed means only virtual environment interpreters may be used.
	SystemDisallowed SystemPolicy = iota
	// SystemAllowed means a system interpreter may be used if no virtual
	// environment is found.
	SystemAllowed
	// SystemRequired means virtual environments are ignored entirely.
	SystemRequired
)

// Allowed reports whether the policy permits a system interpreter at all.
func (p SystemPolicy) Allowed() bool {
	return p == SystemAllowed || p == SystemRequired
}

// Preferred reports whether the policy demands a system interpreter.
func (p SystemPolicy) Preferred() bool {
	return p == SystemRequired
}

// SourcesFromEnv derives the default SourceSelector for a policy, honouring
// the override environment variables.
func SourcesFromEnv(policy SystemPolicy) SourceSelector {
	if os.Getenv(forceManagedKey) != "" {
		log.Debugln("Only considering managed toolchains due to", forceManagedKey)
		return SelectSources(ManagedToolchain)
	}
	if _, ok := os.LookupEnv(testPythonPathKey); ok {
		log.Debugln("Only considering the active environment and the search path due to", testPythonPathKey)
		return SelectSources(ActiveEnvironment, SearchPath)
	}
	switch policy {
	case SystemRequired:
		log.Debugln("Excluding virtual environments, a system interpreter is required")
		return SelectSources(ProvidedPath, SearchPath, PyLauncher, ManagedToolchain)
	case SystemDisallowed:
		log.Debugln("Only considering virtual environment interpreters")
		return VirtualenvSources()
	default:
		return AllSources()
	}
}

// VirtualenvSources returns the selector covering only virtual environment
// sources.
func VirtualenvSources() SourceSelector {
	return SelectSources(DiscoveredEnvironment, ActiveEnvironment)
}
