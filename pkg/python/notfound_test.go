package python

import "testing"

func TestNotFoundErrorMessages(t *testing.T) {
	version := MajorMinorVersion(3, 12)

	tests := []struct {
		name string
		err  *NotFoundError
		want string
	}{
		{
			name: "no installation at all",
			err:  &NotFoundError{Kind: NoPythonInstallation, Sources: SelectSources(SearchPath, PyLauncher)},
			want: "no python installation found in search path or `py` launcher output",
		},
		{
			name: "no matching version",
			err:  &NotFoundError{Kind: NoMatchingVersion, Version: &version, Sources: AllSources()},
			want: "no interpreter found for python 3.12 in all sources",
		},
		{
			name: "no matching implementation",
			err:  &NotFoundError{Kind: NoMatchingImplementation, Implementation: PyPy, Sources: SelectSources(SearchPath)},
			want: "no interpreter found for pypy in search path",
		},
		{
			name: "no matching implementation version",
			err:  &NotFoundError{Kind: NoMatchingImplementationVersion, Implementation: PyPy, Version: &version, Sources: SelectSources(SearchPath)},
			want: "no interpreter found for pypy 3.12 in search path",
		},
		{
			name: "file not found",
			err:  &NotFoundError{Kind: FileNotFound, Path: "/somewhere/python"},
			want: "requested interpreter path /somewhere/python does not exist",
		},
		{
			name: "executable not found in directory",
			err:  &NotFoundError{Kind: ExecutableNotFoundInDirectory, Path: "/project/.venv", Executable: "/project/.venv/bin/python"},
			want: "interpreter directory /project/.venv does not contain a python executable at bin/python",
		},
		{
			name: "executable not found in search path",
			err:  &NotFoundError{Kind: ExecutableNotFoundInSearchPath, Name: "foopython3"},
			want: `requested python executable "foopython3" not found in the search path`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, wanted %q", got, tt.want)
			}
		})
	}
}
