//go:build darwin

package watcher

import (
	"strings"

	"golang.org/x/sys/unix"
)

func statfsType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}

	name := strings.ToLower(unix.ByteSliceToString(st.Fstypename[:]))
	switch {
	case name == "nfs":
		return FSTypeNFS
	case name == "smbfs" || name == "cifs":
		return FSTypeSMB
	case strings.Contains(name, "sshfs"):
		return FSTypeSSHFS
	case strings.Contains(name, "fuse") || strings.HasPrefix(name, "osxfuse") || strings.HasPrefix(name, "macfuse"):
		return FSTypeFUSE
	}
	return FSTypeLocal
}
