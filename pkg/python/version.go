package python

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// The kind of a VersionRequest, from least to most specific.
const (
	verDefault = iota
	verMajor
	verMajorMinor
	verMajorMinorPatch
)

// VersionRequest is a partial python version e.g. "3", "3.12" or "3.12.1".
//
// The zero value is the default request which matches any interpreter.
// Version components are 8 bit on disk and on the wire so anything larger
// is rejected at parse time.
type VersionRequest struct {
	kind  int
	major uint8
	minor uint8
	patch uint8
}

// DefaultVersion returns the VersionRequest matching any interpreter.
func DefaultVersion() VersionRequest {
	return VersionRequest{}
}

// MajorVersion returns the VersionRequest for e.g. "3".
func MajorVersion(major uint8) VersionRequest {
	return VersionRequest{kind: verMajor, major: major}
}

// MajorMinorVersion returns the VersionRequest for e.g. "3.12".
func MajorMinorVersion(major, minor uint8) VersionRequest {
	return VersionRequest{kind: verMajorMinor, major: major, minor: minor}
}

// MajorMinorPatchVersion returns the VersionRequest for e.g. "3.12.1".
func MajorMinorPatchVersion(major, minor, patch uint8) VersionRequest {
	return VersionRequest{kind: verMajorMinorPatch, major: major, minor: minor, patch: patch}
}

// ParseVersionRequest parses a version request from its string form.
//
// The empty string parses as the default request. Otherwise the string must
// be up to three dot-separated decimal components, each fitting in 8 bits,
// with no trailing data e.g. "3", "3.12", "3.12.1"
func ParseVersionRequest(s string) (VersionRequest, error) {
	if s == "" {
		return DefaultVersion(), nil
	}

	parts := strings.SplitN(s, ".", 3)
	numbers := make([]uint8, 0, 3)
	for _, part := range parts {
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return VersionRequest{}, fmt.Errorf("invalid version request %q: component %q is not an 8 bit integer", s, part)
		}
		numbers = append(numbers, uint8(n))
	}

	switch len(numbers) {
	case 1:
		return MajorVersion(numbers[0]), nil
	case 2:
		return MajorMinorVersion(numbers[0], numbers[1]), nil
	default:
		return MajorMinorPatchVersion(numbers[0], numbers[1], numbers[2]), nil
	}
}

// String renders the request the way a user would have typed it, the
// default request renders as "default".
func (v VersionRequest) String() string {
	switch v.kind {
	case verMajor:
		return fmt.Sprintf("%d", v.major)
	case verMajorMinor:
		return fmt.Sprintf("%d.%d", v.major, v.minor)
	case verMajorMinorPatch:
		return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
	default:
		return "default"
	}
}

// IsDefault reports whether v is the default (match anything) request.
func (v VersionRequest) IsDefault() bool {
	return v.kind == verDefault
}

// HasPatch reports whether a patch component is present in the request.
func (v VersionRequest) HasPatch() bool {
	return v.kind == verMajorMinorPatch
}

// WithoutPatch demotes a three component request to its major.minor form,
// any other request is returned unchanged.
func (v VersionRequest) WithoutPatch() VersionRequest {
	if v.kind == verMajorMinorPatch {
		return MajorMinorVersion(v.major, v.minor)
	}
	return v
}

// MatchesInterpreter reports whether a queried interpreter satisfies the
// request, comparing only the components the request actually has.
func (v VersionRequest) MatchesInterpreter(interpreter Interpreter) bool {
	return v.MatchesVersionTriple(interpreter.Major, interpreter.Minor, interpreter.Patch)
}

// MatchesVersionTriple reports whether a full (major, minor, patch) version
// satisfies the request.
func (v VersionRequest) MatchesVersionTriple(major, minor, patch int) bool {
	switch v.kind {
	case verMajor:
		return int(v.major) == major
	case verMajorMinor:
		return int(v.major) == major && int(v.minor) == minor
	case verMajorMinorPatch:
		return int(v.major) == major && int(v.minor) == minor && int(v.patch) == patch
	default:
		return true
	}
}

// MatchesMajorMinor reports whether a (major, minor) pair satisfies the
// request, ignoring any requested patch component. This is what the py
// launcher prefilter uses, its output carries no patch information.
func (v VersionRequest) MatchesMajorMinor(major, minor int) bool {
	switch v.kind {
	case verMajor:
		return int(v.major) == major
	case verMajorMinor, verMajorMinorPatch:
		return int(v.major) == major && int(v.minor) == minor
	default:
		return true
	}
}

// ExecutableNames returns the candidate executable basenames for the
// request, most specific first, ending with the generic fallbacks. Unused
// slots are empty strings. On Windows the executable extension is appended.
//
// For example MajorMinorPatch(3, 12, 1) yields python3.12.1, python3.12,
// python3, python and the default request yields just python3, python.
func (v VersionRequest) ExecutableNames() [4]string {
	python, python3, extension := "python", "python3", ""
	if runtime.GOOS == "windows" {
		python, python3, extension = "python.exe", "python3.exe", ".exe"
	}

	switch v.kind {
	case verMajor:
		return [4]string{
			fmt.Sprintf("python%d%s", v.major, extension),
			python,
		}
	case verMajorMinor:
		return [4]string{
			fmt.Sprintf("python%d.%d%s", v.major, v.minor, extension),
			fmt.Sprintf("python%d%s", v.major, extension),
			python,
		}
	case verMajorMinorPatch:
		return [4]string{
			fmt.Sprintf("python%d.%d.%d%s", v.major, v.minor, v.patch, extension),
			fmt.Sprintf("python%d.%d%s", v.major, v.minor, extension),
			fmt.Sprintf("python%d%s", v.major, extension),
			python,
		}
	default:
		return [4]string{python3, python}
	}
}
