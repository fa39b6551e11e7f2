//go:build windows
// +build windows

package python

import (
	"path/filepath"
	"strings"
	"unicode/utf16"

	"golang.org/x/sys/windows"
)

// storeRedirector is the tell-tale payload of the app execution alias that
// redirects python.exe to the Microsoft Store installer.
const storeRedirector = `\AppInstallerPythonRedirector.exe`

// isStoreShim detects the Windows Store proxy shim (enabled under
// Settings/Apps/App execution aliases). When python is not installed but
// the alias is enabled, running python.exe opens the store installer, so
// the stub must not be treated as an interpreter.
//
// The alias is a reparse point whose payload names the store redirector.
// The reparse format is undocumented and unstable, so this is a best
// effort probe: anything that cannot be read is assumed to be real.
func isStoreShim(path string) bool {
	if !filepath.IsAbs(path) {
		return false
	}

	// Only paths like ...\Microsoft\WindowsApps\python3.exe are suspects
	base := strings.ToLower(filepath.Base(path))
	if base != "python.exe" && base != "python3.exe" {
		return false
	}
	parent := filepath.Dir(path)
	if !strings.EqualFold(filepath.Base(parent), "WindowsApps") {
		return false
	}
	if !strings.EqualFold(filepath.Base(filepath.Dir(parent)), "Microsoft") {
		return false
	}

	encoded, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}

	attrs, err := windows.GetFileAttributes(encoded)
	if err != nil || attrs&windows.FILE_ATTRIBUTE_REPARSE_POINT == 0 {
		return false
	}

	handle, err := windows.CreateFile(
		encoded,
		0,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OPEN_REPARSE_POINT,
		0,
	)
	if err != nil {
		return false
	}
	defer windows.CloseHandle(handle)

	buf := make([]byte, windows.MAXIMUM_REPARSE_DATA_BUFFER_SIZE)
	var returned uint32
	err = windows.DeviceIoControl(
		handle,
		windows.FSCTL_GET_REPARSE_POINT,
		nil,
		0,
		&buf[0],
		uint32(len(buf)),
		&returned,
		nil,
	)
	if err != nil {
		return false
	}

	// The payload is (mostly) UTF-16, decode it wholesale and look for the
	// redirector name
	codes := make([]uint16, 0, returned/2)
	for i := 0; i+1 < int(returned); i += 2 {
		codes = append(codes, uint16(buf[i])|uint16(buf[i+1])<<8)
	}
	return strings.Contains(string(utf16.Decode(codes)), storeRedirector)
}
