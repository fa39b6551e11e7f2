package python

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/FollowTheProcess/pyscout/internal"
)

// searchPath returns the raw search path to scan: the test override
// variable when set, the real PATH otherwise.
func searchPath() string {
	if override, ok := os.LookupEnv(testPythonPathKey); ok {
		return override
	}
	return os.Getenv("PATH")
}

// searchPathScanner lazily yields python executables from the search path,
// one directory at a time. Within a directory the candidate names from the
// version request are probed most specific first, so enumeration order is
// directory-major, name-minor. Directories are only read when the consumer
// has exhausted everything before them.
type searchPathScanner struct {
	dirs  []string
	names []string
	queue []string
	next  int
}

func newSearchPathScanner(version VersionRequest) *searchPathScanner {
	var names []string
	for _, name := range version.ExecutableNames() {
		if name != "" {
			names = append(names, name)
		}
	}
	return &searchPathScanner{
		dirs:  internal.DeDupe(filepath.SplitList(searchPath())),
		names: names,
	}
}

// Next returns the next candidate executable, or false when the whole
// search path is exhausted.
func (s *searchPathScanner) Next() (string, bool) {
	for len(s.queue) == 0 {
		if s.next >= len(s.dirs) {
			return "", false
		}
		dir := s.dirs[s.next]
		s.next++

		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			// Dead search path entries are silently dropped
			continue
		}

		log.WithField("dir", dir).Debugln("Checking search path directory for interpreters")

		for _, name := range s.names {
			path := filepath.Join(dir, name)
			if !isExecutableFile(path) {
				continue
			}
			if isStoreShim(path) {
				log.WithField("path", path).Debugln("Rejecting app store shim")
				continue
			}
			s.queue = append(s.queue, path)
		}

		if runtime.GOOS == "windows" {
			// Batch file shims (e.g. from conda) come after the real names
			path := filepath.Join(dir, "python.bat")
			if isExecutableFile(path) {
				s.queue = append(s.queue, path)
			}
		}
	}

	path := s.queue[0]
	s.queue = s.queue[1:]
	return path, true
}

// resolveInSearchPath finds the named executable on the search path,
// returning "" if it is nowhere to be found.
func resolveInSearchPath(name string) string {
	names := []string{name}
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		names = append(names, name+".exe")
	}

	for _, dir := range filepath.SplitList(searchPath()) {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		for _, candidate := range names {
			path := filepath.Join(dir, candidate)
			if isExecutableFile(path) && !isStoreShim(path) {
				return path
			}
		}
	}

	return ""
}

// isExecutableFile reports whether path is a regular file the current user
// could plausibly execute. On Windows executability comes from the file
// extension, which the candidate names already carry.
func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(filepath.Ext(path))
		return ext == ".exe" || ext == ".bat"
	}
	return info.Mode().Perm()&0o111 != 0
}
