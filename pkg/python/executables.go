package python

import "context"

// candidate is one item of the discovery stream: an executable path paired
// with the source that produced it, or an I/O error surfaced as a value so
// the consumer decides whether to continue.
type candidate struct {
	err    error
	path   string
	source Source
}

// executableIter lazily yields candidate executables from the enabled
// sources in their fixed order: the active environment, a discovered
// environment, managed toolchains, the search path, then the py launcher.
//
// A source is only consulted once everything before it is exhausted, and
// dropping the iterator stops all further I/O, which is what keeps
// discovery cheap: the expensive work (subprocess queries) happens per
// pulled candidate, and a hit in an early source means later sources are
// never touched.
//
// When a version request is known, sources that declare versions up front
// (managed toolchains, the launcher) are prefiltered so their losers are
// never queried. Candidates are not guaranteed to satisfy the request,
// the caller must still query and check.
type executableIter struct {
	ctx     context.Context
	version *VersionRequest
	scanner *searchPathScanner
	queue   []candidate
	sources SourceSelector
	stage   int
}

const (
	stageActiveEnvironment = iota
	stageDiscoveredEnvironment
	stageManagedToolchains
	stageSearchPath
	stagePyLauncher
	stageDone
)

func newExecutableIter(ctx context.Context, version *VersionRequest, sources SourceSelector) *executableIter {
	return &executableIter{ctx: ctx, version: version, sources: sources}
}

// Next pulls the next candidate, returning false when every enabled source
// is exhausted.
func (it *executableIter) Next() (candidate, bool) {
	for {
		if len(it.queue) > 0 {
			next := it.queue[0]
			it.queue = it.queue[1:]
			return next, true
		}

		if it.scanner != nil {
			if path, ok := it.scanner.Next(); ok {
				return candidate{source: SearchPath, path: path}, true
			}
			it.scanner = nil
		}

		switch it.stage {
		case stageActiveEnvironment:
			it.stage++
			if !it.sources.Contains(ActiveEnvironment) {
				continue
			}
			if root := virtualenvFromEnv(); root != "" {
				log.WithField("root", root).Debugln("Found active virtual environment")
				it.queue = append(it.queue, candidate{source: ActiveEnvironment, path: VirtualenvExecutable(root)})
			}

		case stageDiscoveredEnvironment:
			it.stage++
			if !it.sources.Contains(DiscoveredEnvironment) {
				continue
			}
			root, err := virtualenvFromWorkingDir()
			if err != nil {
				it.queue = append(it.queue, candidate{source: DiscoveredEnvironment, err: err})
				continue
			}
			if root != "" {
				it.queue = append(it.queue, candidate{source: DiscoveredEnvironment, path: VirtualenvExecutable(root)})
			}

		case stageManagedToolchains:
			it.stage++
			if !it.sources.Contains(ManagedToolchain) {
				continue
			}
			toolchains, err := InstalledToolchains()
			if err != nil {
				it.queue = append(it.queue, candidate{source: ManagedToolchain, err: err})
				continue
			}
			for _, toolchain := range toolchains {
				// The declared version lets us skip the interpreter query
				// for toolchains that cannot possibly satisfy the request
				if it.version != nil && !it.version.MatchesVersionTriple(toolchain.Major, toolchain.Minor, toolchain.Patch) {
					continue
				}
				it.queue = append(it.queue, candidate{source: ManagedToolchain, path: toolchain.Executable()})
			}

		case stageSearchPath:
			it.stage++
			if !it.sources.Contains(SearchPath) {
				continue
			}
			version := DefaultVersion()
			if it.version != nil {
				version = *it.version
			}
			it.scanner = newSearchPathScanner(version)

		case stagePyLauncher:
			it.stage++
			if !it.sources.Contains(PyLauncher) || !launcherAvailable() {
				continue
			}
			entries, err := launcherListPaths(it.ctx)
			if err != nil {
				it.queue = append(it.queue, candidate{source: PyLauncher, err: err})
				continue
			}
			for _, entry := range entries {
				// The launcher reports no patch component, so a patch
				// request cannot be prefiltered here
				if it.version != nil && !it.version.HasPatch() && !it.version.MatchesMajorMinor(entry.Major, entry.Minor) {
					continue
				}
				it.queue = append(it.queue, candidate{source: PyLauncher, path: entry.Executable})
			}

		default:
			return candidate{}, false
		}
	}
}
