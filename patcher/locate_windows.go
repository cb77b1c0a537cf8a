//go:build windows

package patcher

import "golang.org/x/sys/windows"

// defaultInstallRoot is the 32-bit Program Files folder: "Program Files
// (x86)" on 64-bit Windows and plain "Program Files" on 32-bit Windows.
func defaultInstallRoot() (string, error) {
	return windows.KnownFolderPath(windows.FOLDERID_ProgramFilesX86, 0)
}
