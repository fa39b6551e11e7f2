package python

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// DiscoveredInterpreter pairs a queried interpreter with the source that
// produced it.
type DiscoveredInterpreter struct {
	Interpreter Interpreter
	Source      Source
}

// FindInterpreter locates an interpreter satisfying the request, consulting
// only the selected sources in their canonical order and stopping at the
// first match, so a hit in an early source means later sources are never
// queried.
//
// When nothing matches the returned error is a *NotFoundError carrying the
// selector and the request facet, which callers can pick apart with
// errors.As to distinguish "nothing matches" from infrastructure failure.
func FindInterpreter(ctx context.Context, request Request, sources SourceSelector, cache *Cache) (DiscoveredInterpreter, error) {
	log.WithField("request", request.String()).Debugln("Looking for an interpreter")

	switch request.Kind {
	case RequestFile:
		if !sources.Contains(ProvidedPath) {
			return DiscoveredInterpreter{}, &SourceNotSelectedError{Request: request, Source: ProvidedPath, Sources: sources}
		}
		if _, err := os.Stat(request.Path); errors.Is(err, fs.ErrNotExist) {
			return DiscoveredInterpreter{}, &NotFoundError{Kind: FileNotFound, Path: request.Path, Sources: sources}
		} else if err != nil {
			return DiscoveredInterpreter{}, err
		}
		interpreter, err := cache.Query(ctx, request.Path)
		if err != nil {
			return DiscoveredInterpreter{}, err
		}
		return DiscoveredInterpreter{Source: ProvidedPath, Interpreter: interpreter}, nil

	case RequestDirectory:
		if !sources.Contains(ProvidedPath) {
			return DiscoveredInterpreter{}, &SourceNotSelectedError{Request: request, Source: ProvidedPath, Sources: sources}
		}
		if _, err := os.Stat(request.Path); errors.Is(err, fs.ErrNotExist) {
			return DiscoveredInterpreter{}, &NotFoundError{Kind: FileNotFound, Path: request.Path, Sources: sources}
		} else if err != nil {
			return DiscoveredInterpreter{}, err
		}
		executable := VirtualenvExecutable(request.Path)
		if _, err := os.Stat(executable); errors.Is(err, fs.ErrNotExist) {
			return DiscoveredInterpreter{}, &NotFoundError{Kind: ExecutableNotFoundInDirectory, Path: request.Path, Executable: executable, Sources: sources}
		} else if err != nil {
			return DiscoveredInterpreter{}, err
		}
		interpreter, err := cache.Query(ctx, executable)
		if err != nil {
			return DiscoveredInterpreter{}, err
		}
		return DiscoveredInterpreter{Source: ProvidedPath, Interpreter: interpreter}, nil

	case RequestExecutableName:
		if !sources.Contains(SearchPath) {
			return DiscoveredInterpreter{}, &SourceNotSelectedError{Request: request, Source: SearchPath, Sources: sources}
		}
		executable := resolveInSearchPath(request.Name)
		if executable == "" {
			return DiscoveredInterpreter{}, &NotFoundError{Kind: ExecutableNotFoundInSearchPath, Name: request.Name, Sources: sources}
		}
		interpreter, err := cache.Query(ctx, executable)
		if err != nil {
			return DiscoveredInterpreter{}, err
		}
		return DiscoveredInterpreter{Source: SearchPath, Interpreter: interpreter}, nil

	case RequestImplementation:
		found, err := findFirst(ctx, nil, sources, cache, true, func(interpreter Interpreter) bool {
			return interpreter.Implementation == request.Implementation
		})
		if err != nil {
			return DiscoveredInterpreter{}, err
		}
		if found == nil {
			return DiscoveredInterpreter{}, &NotFoundError{Kind: NoMatchingImplementation, Implementation: request.Implementation, Sources: sources}
		}
		return *found, nil

	case RequestImplementationVersion:
		version := request.Version
		found, err := findFirst(ctx, &version, sources, cache, true, func(interpreter Interpreter) bool {
			return interpreter.Implementation == request.Implementation && version.MatchesInterpreter(interpreter)
		})
		if err != nil {
			return DiscoveredInterpreter{}, err
		}
		if found == nil {
			return DiscoveredInterpreter{}, &NotFoundError{Kind: NoMatchingImplementationVersion, Implementation: request.Implementation, Version: &version, Sources: sources}
		}
		return *found, nil

	default: // RequestVersion
		version := request.Version
		found, err := findFirst(ctx, &version, sources, cache, false, func(interpreter Interpreter) bool {
			return version.MatchesInterpreter(interpreter)
		})
		if err != nil {
			return DiscoveredInterpreter{}, err
		}
		if found == nil {
			kind := NoMatchingVersion
			if version.IsDefault() {
				kind = NoPythonInstallation
			}
			return DiscoveredInterpreter{}, &NotFoundError{Kind: kind, Version: &version, Sources: sources}
		}
		return *found, nil
	}
}

// findFirst drives the lazy enumeration, querying each candidate in turn
// and returning the first interpreter the predicate accepts, or nil when
// the stream is exhausted.
//
// When skipBroken is set a candidate whose introspection script fails is
// logged and passed over (some interpreter on the machine is broken, keep
// looking), every other error short-circuits.
func findFirst(ctx context.Context, version *VersionRequest, sources SourceSelector, cache *Cache, skipBroken bool, match func(Interpreter) bool) (*DiscoveredInterpreter, error) {
	it := newExecutableIter(ctx, version, sources)
	for {
		next, ok := it.Next()
		if !ok {
			return nil, nil
		}
		if next.err != nil {
			return nil, next.err
		}

		interpreter, err := cache.Query(ctx, next.path)
		if err != nil {
			if skipBroken && isQueryScriptError(err) {
				log.WithField("path", next.path).Debugln("Skipping broken interpreter")
				continue
			}
			return nil, err
		}

		if match(interpreter) {
			log.WithField("interpreter", interpreter.Executable).Debugln("Found a matching interpreter")
			return &DiscoveredInterpreter{Source: next.source, Interpreter: interpreter}, nil
		}
	}
}

// FindDefaultInterpreter finds the default system interpreter, virtual
// environments are not considered.
func FindDefaultInterpreter(ctx context.Context, cache *Cache) (DiscoveredInterpreter, error) {
	request := Request{Kind: RequestVersion, Version: DefaultVersion()}
	sources := SelectSources(SearchPath, PyLauncher)
	return FindInterpreter(ctx, request, sources, cache)
}

// FindBestInterpreter finds the closest matching interpreter in three
// passes, stopping at the first success:
//
//	1) The exact request
//	2) If the request carries a patch version, the request without it
//	3) Any interpreter at all
//
// A pass 3 miss is reported as NoPythonInstallation rather than
// NoMatchingVersion, since by then multiple versions have been tried.
func FindBestInterpreter(ctx context.Context, request Request, policy SystemPolicy, cache *Cache) (DiscoveredInterpreter, error) {
	sources := SourcesFromEnv(policy)

	log.WithField("request", request.String()).Debugln("Looking for an exact match")
	found, err := FindInterpreter(ctx, request, sources, cache)
	if err == nil {
		return found, nil
	}
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		return DiscoveredInterpreter{}, err
	}

	if relaxed, ok := request.withoutPatch(); ok {
		log.WithField("request", relaxed.String()).Debugln("Looking for a relaxed patch version")
		found, err = FindInterpreter(ctx, relaxed, sources, cache)
		if err == nil {
			return found, nil
		}
		if !errors.As(err, &notFound) {
			return DiscoveredInterpreter{}, err
		}
	}

	log.Debugln("Looking for an interpreter with any version")
	found, err = FindInterpreter(ctx, Request{Kind: RequestVersion, Version: DefaultVersion()}, sources, cache)
	if err == nil {
		return found, nil
	}
	if errors.As(err, &notFound) && notFound.Kind == NoMatchingVersion {
		// Several versions were tried by now, report the general failure
		return DiscoveredInterpreter{}, &NotFoundError{Kind: NoPythonInstallation, Sources: notFound.Sources}
	}
	return DiscoveredInterpreter{}, err
}

// AllInterpreters queries every discoverable interpreter from the selected
// sources, in discovery order. Broken interpreters (those whose
// introspection script fails) are skipped, any other failure aborts.
func AllInterpreters(ctx context.Context, sources SourceSelector, cache *Cache) ([]DiscoveredInterpreter, error) {
	var interpreters []DiscoveredInterpreter
	it := newExecutableIter(ctx, nil, sources)
	for {
		next, ok := it.Next()
		if !ok {
			return interpreters, nil
		}
		if next.err != nil {
			return nil, next.err
		}
		interpreter, err := cache.Query(ctx, next.path)
		if err != nil {
			if isQueryScriptError(err) {
				log.WithField("path", next.path).Debugln("Skipping broken interpreter")
				continue
			}
			return nil, err
		}
		interpreters = append(interpreters, DiscoveredInterpreter{Source: next.source, Interpreter: interpreter})
	}
}
