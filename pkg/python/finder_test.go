package python

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/FollowTheProcess/pyscout/internal/test"
)

// cleanEnv clears every environment variable discovery reads so tests are
// hermetic regardless of the machine they run on.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{virtualEnvKey, testPythonPathKey, forceManagedKey, toolchainDirKey, "PATH"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	cache := &Cache{Temporary: true}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestFindDefaultInterpreterEmptyPath(t *testing.T) {
	cleanEnv(t)
	t.Setenv("PATH", "")

	_, err := FindDefaultInterpreter(context.Background(), newTestCache(t))

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("with an empty path, no python should be detected; got %v", err)
	}
	if notFound.Kind != NoPythonInstallation {
		t.Errorf("got kind %d, wanted NoPythonInstallation", notFound.Kind)
	}
	if !notFound.Sources.Contains(SearchPath) || !notFound.Sources.Contains(PyLauncher) {
		t.Errorf("the consulted sources should be reported, got %s", notFound.Sources)
	}
}

func TestFindDefaultInterpreterInvalidExecutable(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	// A plain empty file is not an executable python, it must be passed over
	if err := os.WriteFile(filepath.Join(tmp, "python"), nil, 0o644); err != nil {
		t.Fatalf("could not write file: %v", err)
	}
	t.Setenv("PATH", tmp)

	_, err := FindDefaultInterpreter(context.Background(), newTestCache(t))

	var notFound *NotFoundError
	if !errors.As(err, &notFound) || notFound.Kind != NoPythonInstallation {
		t.Fatalf("with an invalid executable, no python should be detected; got %v", err)
	}
}

func TestFindDefaultInterpreterValidExecutable(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	real := test.MakeFakeInterpreter(t, tmp, "python3.12", test.FakeInterpreter{Major: 3, Minor: 12, Patch: 1})
	if err := os.Symlink(real, filepath.Join(tmp, "python")); err != nil {
		t.Fatalf("could not symlink: %v", err)
	}
	t.Setenv("PATH", tmp)

	found, err := FindDefaultInterpreter(context.Background(), newTestCache(t))
	if err != nil {
		t.Fatalf("with a valid executable, we should find it; got %v", err)
	}
	if found.Source != SearchPath {
		t.Errorf("got source %s, wanted %s", found.Source, SearchPath)
	}
	if found.Interpreter.Major != 3 || found.Interpreter.Minor != 12 {
		t.Errorf("got version %s, wanted 3.12.1", found.Interpreter.Version())
	}
}

func TestFindDefaultInterpreterValidExecutableAfterInvalid(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	bad := filepath.Join(tmp, "bad")
	good := filepath.Join(tmp, "good")
	empty := filepath.Join(tmp, "empty")
	for _, dir := range []string{bad, good, empty} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("could not create %s: %v", dir, err)
		}
	}

	// The bad candidate is attempted and rejected, the good one wins
	if err := os.WriteFile(filepath.Join(bad, "python"), nil, 0o644); err != nil {
		t.Fatalf("could not write file: %v", err)
	}
	want := test.MakeFakeInterpreter(t, good, "python", test.FakeInterpreter{Major: 3, Minor: 11, Patch: 6})

	path := strings.Join([]string{filepath.Join(tmp, "missing"), empty, bad, good}, string(os.PathListSeparator))
	t.Setenv("PATH", path)

	found, err := FindDefaultInterpreter(context.Background(), newTestCache(t))
	if err != nil {
		t.Fatalf("we should skip the bad executable in favour of the good one; got %v", err)
	}
	if found.Source != SearchPath {
		t.Errorf("got source %s, wanted %s", found.Source, SearchPath)
	}
	if found.Interpreter.Executable != want {
		t.Errorf("got executable %s, wanted %s", found.Interpreter.Executable, want)
	}
}

func TestFindInterpreterSourceOrdering(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	// A fake active environment and a fake search path python, the active
	// environment must win because its source ranks earlier
	venv := filepath.Join(tmp, "venv")
	if err := os.MkdirAll(filepath.Join(venv, "bin"), 0o755); err != nil {
		t.Fatalf("could not create venv: %v", err)
	}
	test.MakeFakeInterpreter(t, filepath.Join(venv, "bin"), "python", test.FakeInterpreter{
		Major: 3, Minor: 12, Patch: 0, Prefix: venv, VirtualEnv: true,
	})

	searchDir := filepath.Join(tmp, "bin")
	if err := os.Mkdir(searchDir, 0o755); err != nil {
		t.Fatalf("could not create search dir: %v", err)
	}
	test.MakeFakeInterpreter(t, searchDir, "python3", test.FakeInterpreter{Major: 3, Minor: 11, Patch: 2})

	t.Setenv(virtualEnvKey, venv)
	t.Setenv("PATH", searchDir)

	request := Request{Kind: RequestVersion, Version: DefaultVersion()}
	found, err := FindInterpreter(context.Background(), request, SelectSources(ActiveEnvironment, SearchPath), newTestCache(t))
	if err != nil {
		t.Fatalf("FindInterpreter returned an error: %v", err)
	}
	if found.Source != ActiveEnvironment {
		t.Errorf("got source %s, wanted %s", found.Source, ActiveEnvironment)
	}
	if !found.Interpreter.VirtualEnv {
		t.Error("the active environment interpreter should report itself as a virtualenv")
	}
}

func TestFindInterpreterShortCircuits(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	first := filepath.Join(tmp, "first")
	second := filepath.Join(tmp, "second")
	for _, dir := range []string{first, second} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("could not create %s: %v", dir, err)
		}
	}

	firstLog := filepath.Join(tmp, "first.log")
	secondLog := filepath.Join(tmp, "second.log")
	test.MakeFakeInterpreter(t, first, "python3", test.FakeInterpreter{Major: 3, Minor: 12, Patch: 0, SpawnLog: firstLog})
	test.MakeFakeInterpreter(t, second, "python3", test.FakeInterpreter{Major: 3, Minor: 10, Patch: 0, SpawnLog: secondLog})

	t.Setenv("PATH", first+string(os.PathListSeparator)+second)

	request := Request{Kind: RequestVersion, Version: DefaultVersion()}
	found, err := FindInterpreter(context.Background(), request, SelectSources(SearchPath), newTestCache(t))
	if err != nil {
		t.Fatalf("FindInterpreter returned an error: %v", err)
	}

	if found.Interpreter.Minor != 12 {
		t.Errorf("got %s, wanted the interpreter from the first directory", found.Interpreter.Version())
	}
	if got := test.CountLines(t, firstLog); got != 1 {
		t.Errorf("first interpreter spawned %d times, wanted exactly 1", got)
	}
	if got := test.CountLines(t, secondLog); got != 0 {
		t.Errorf("second interpreter spawned %d times, a match in an earlier candidate must stop enumeration", got)
	}
}

func TestFindInterpreterManagedPrefilter(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	toolchains := filepath.Join(tmp, "toolchains")
	oldLog := filepath.Join(tmp, "old.log")
	newLog := filepath.Join(tmp, "new.log")

	for _, tc := range []struct {
		version string
		spawn   string
		major   int
		minor   int
		patch   int
	}{
		{version: "3.11.4", spawn: oldLog, major: 3, minor: 11, patch: 4},
		{version: "3.12.1", spawn: newLog, major: 3, minor: 12, patch: 1},
	} {
		root := filepath.Join(toolchains, fmt.Sprintf("cpython-%s-%s-%s", tc.version, runtime.GOOS, platformArch()))
		bin := filepath.Join(root, "bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			t.Fatalf("could not create toolchain: %v", err)
		}
		test.MakeFakeInterpreter(t, bin, "python3", test.FakeInterpreter{
			Major: tc.major, Minor: tc.minor, Patch: tc.patch, Prefix: root, SpawnLog: tc.spawn,
		})
	}

	t.Setenv(toolchainDirKey, toolchains)
	t.Setenv("PATH", "")

	request := Request{Kind: RequestVersion, Version: MajorMinorVersion(3, 12)}
	found, err := FindInterpreter(context.Background(), request, SelectSources(ManagedToolchain), newTestCache(t))
	if err != nil {
		t.Fatalf("FindInterpreter returned an error: %v", err)
	}

	if found.Source != ManagedToolchain {
		t.Errorf("got source %s, wanted %s", found.Source, ManagedToolchain)
	}
	if found.Interpreter.Minor != 12 {
		t.Errorf("got %s, wanted the 3.12 toolchain", found.Interpreter.Version())
	}
	if got := test.CountLines(t, oldLog); got != 0 {
		t.Errorf("the 3.11 toolchain was queried %d times, its declared version should have ruled it out", got)
	}
}

func TestFindInterpreterImplementationVersion(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	// A cpython and a pypy side by side, only the pypy satisfies pypy@3.12
	test.MakeFakeInterpreter(t, tmp, "python3.12", test.FakeInterpreter{Major: 3, Minor: 12, Patch: 3})
	test.MakeFakeInterpreter(t, tmp, "python3", test.FakeInterpreter{Implementation: "pypy", Major: 3, Minor: 12, Patch: 0})
	t.Setenv("PATH", tmp)

	request := ParseRequest("pypy@3.12")
	found, err := FindInterpreter(context.Background(), request, SelectSources(SearchPath), newTestCache(t))
	if err != nil {
		t.Fatalf("FindInterpreter returned an error: %v", err)
	}

	if found.Interpreter.Implementation != PyPy {
		t.Errorf("got %s, wanted pypy", found.Interpreter.Implementation)
	}
	if found.Interpreter.Major != 3 || found.Interpreter.Minor != 12 {
		t.Errorf("got version %s, wanted 3.12", found.Interpreter.Version())
	}
}

func TestFindInterpreterSkipsBrokenDuringImplementationSearch(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	// python3 is broken, python works and is a pypy. An implementation
	// search should step over the broken one and keep looking
	test.MakeFakeInterpreter(t, tmp, "python3", test.FakeInterpreter{Broken: true})
	test.MakeFakeInterpreter(t, tmp, "python", test.FakeInterpreter{Implementation: "pypy", Major: 3, Minor: 9, Patch: 18})
	t.Setenv("PATH", tmp)

	request := Request{Kind: RequestImplementation, Implementation: PyPy}
	found, err := FindInterpreter(context.Background(), request, SelectSources(SearchPath), newTestCache(t))
	if err != nil {
		t.Fatalf("a broken interpreter should be skipped during implementation search: %v", err)
	}
	if found.Interpreter.Implementation != PyPy {
		t.Errorf("got %s, wanted pypy", found.Interpreter.Implementation)
	}
}

func TestFindInterpreterBrokenIsFatalForVersionSearch(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	test.MakeFakeInterpreter(t, tmp, "python3", test.FakeInterpreter{Broken: true})
	t.Setenv("PATH", tmp)

	request := Request{Kind: RequestVersion, Version: DefaultVersion()}
	_, err := FindInterpreter(context.Background(), request, SelectSources(SearchPath), newTestCache(t))

	var queryErr *QueryError
	if !errors.As(err, &queryErr) || !queryErr.Script {
		t.Fatalf("a broken interpreter should surface as a script failure for version searches, got %v", err)
	}
}

func TestFindInterpreterSourceNotSelected(t *testing.T) {
	cleanEnv(t)

	request := Request{Kind: RequestFile, Path: "/somewhere/python"}
	_, err := FindInterpreter(context.Background(), request, SelectSources(SearchPath), newTestCache(t))

	var notSelected *SourceNotSelectedError
	if !errors.As(err, &notSelected) {
		t.Fatalf("a file request without the provided path source must error, got %v", err)
	}
	if notSelected.Source != ProvidedPath {
		t.Errorf("got source %s, wanted %s", notSelected.Source, ProvidedPath)
	}
}

func TestFindInterpreterFileRequests(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	missing := filepath.Join(tmp, "missing", "python")
	_, err := FindInterpreter(context.Background(), Request{Kind: RequestFile, Path: missing}, AllSources(), newTestCache(t))
	var notFound *NotFoundError
	if !errors.As(err, &notFound) || notFound.Kind != FileNotFound {
		t.Fatalf("a missing file must report FileNotFound, got %v", err)
	}

	real := test.MakeFakeInterpreter(t, tmp, "python3.12", test.FakeInterpreter{Major: 3, Minor: 12, Patch: 1})
	found, err := FindInterpreter(context.Background(), Request{Kind: RequestFile, Path: real}, AllSources(), newTestCache(t))
	if err != nil {
		t.Fatalf("FindInterpreter returned an error: %v", err)
	}
	if found.Source != ProvidedPath {
		t.Errorf("got source %s, wanted %s", found.Source, ProvidedPath)
	}
}

func TestFindInterpreterDirectoryRequest(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	// An environment-shaped directory with the conventional executable
	venv := filepath.Join(tmp, ".venv")
	bin := filepath.Join(venv, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatalf("could not create venv: %v", err)
	}

	// Before the executable exists, the failure names the directory
	_, err := FindInterpreter(context.Background(), Request{Kind: RequestDirectory, Path: venv}, AllSources(), newTestCache(t))
	var notFound *NotFoundError
	if !errors.As(err, &notFound) || notFound.Kind != ExecutableNotFoundInDirectory {
		t.Fatalf("an empty directory must report ExecutableNotFoundInDirectory, got %v", err)
	}

	test.MakeFakeInterpreter(t, bin, "python", test.FakeInterpreter{Major: 3, Minor: 12, Patch: 1, Prefix: venv, VirtualEnv: true})
	found, err := FindInterpreter(context.Background(), Request{Kind: RequestDirectory, Path: venv}, AllSources(), newTestCache(t))
	if err != nil {
		t.Fatalf("FindInterpreter returned an error: %v", err)
	}
	if found.Source != ProvidedPath {
		t.Errorf("got source %s, wanted %s", found.Source, ProvidedPath)
	}
}

func TestFindInterpreterExecutableNameRequest(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	test.MakeFakeInterpreter(t, tmp, "foopython3", test.FakeInterpreter{Major: 3, Minor: 10, Patch: 2})
	t.Setenv("PATH", tmp)

	found, err := FindInterpreter(context.Background(), Request{Kind: RequestExecutableName, Name: "foopython3"}, AllSources(), newTestCache(t))
	if err != nil {
		t.Fatalf("FindInterpreter returned an error: %v", err)
	}
	if found.Source != SearchPath {
		t.Errorf("got source %s, wanted %s", found.Source, SearchPath)
	}

	_, err = FindInterpreter(context.Background(), Request{Kind: RequestExecutableName, Name: "nope"}, AllSources(), newTestCache(t))
	var notFound *NotFoundError
	if !errors.As(err, &notFound) || notFound.Kind != ExecutableNotFoundInSearchPath {
		t.Fatalf("an unresolvable name must report ExecutableNotFoundInSearchPath, got %v", err)
	}
}

func TestFindBestInterpreter(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	// Only a 3.12.6 exists. Use the test search path override so the best
	// match machinery derives {active environment, search path} itself
	test.MakeFakeInterpreter(t, tmp, "python3.12", test.FakeInterpreter{Major: 3, Minor: 12, Patch: 6})
	test.MakeFakeInterpreter(t, tmp, "python3", test.FakeInterpreter{Major: 3, Minor: 12, Patch: 6})
	t.Setenv(testPythonPathKey, tmp)

	cache := newTestCache(t)

	// Pass 2: the exact patch is missing, major.minor still matches
	request := ParseRequest("3.12.1")
	found, err := FindBestInterpreter(context.Background(), request, SystemAllowed, cache)
	if err != nil {
		t.Fatalf("patch relaxation should have found 3.12.6: %v", err)
	}
	if found.Interpreter.Patch != 6 {
		t.Errorf("got %s, wanted 3.12.6", found.Interpreter.Version())
	}

	// Pass 3: nothing matches 3.9 at all, but some interpreter exists
	request = ParseRequest("3.9.1")
	found, err = FindBestInterpreter(context.Background(), request, SystemAllowed, cache)
	if err != nil {
		t.Fatalf("the any-version fallback should have found 3.12.6: %v", err)
	}
	if found.Interpreter.Minor != 12 {
		t.Errorf("got %s, wanted 3.12.6", found.Interpreter.Version())
	}
}

func TestFindBestInterpreterNothingInstalled(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir() // deliberately empty
	t.Setenv(testPythonPathKey, tmp)

	request := ParseRequest("3.9.1")
	_, err := FindBestInterpreter(context.Background(), request, SystemAllowed, newTestCache(t))

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got %v, wanted a NotFoundError", err)
	}
	// Multiple versions were attempted, the error must say "no python at
	// all" rather than naming any one version
	if notFound.Kind != NoPythonInstallation {
		t.Errorf("got kind %d, wanted NoPythonInstallation", notFound.Kind)
	}
}

func TestAllInterpretersSkipsBroken(t *testing.T) {
	cleanEnv(t)
	tmp := t.TempDir()

	test.MakeFakeInterpreter(t, tmp, "python3", test.FakeInterpreter{Broken: true})
	test.MakeFakeInterpreter(t, tmp, "python", test.FakeInterpreter{Major: 3, Minor: 12, Patch: 1})
	t.Setenv("PATH", tmp)

	interpreters, err := AllInterpreters(context.Background(), SelectSources(SearchPath), newTestCache(t))
	if err != nil {
		t.Fatalf("AllInterpreters returned an error: %v", err)
	}
	if len(interpreters) != 1 {
		t.Fatalf("got %d interpreters, wanted 1 (the broken one skipped)", len(interpreters))
	}
	if interpreters[0].Interpreter.Version() != "3.12.1" {
		t.Errorf("got %s, wanted 3.12.1", interpreters[0].Interpreter.Version())
	}
}
