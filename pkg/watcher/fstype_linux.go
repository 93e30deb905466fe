//go:build linux

package watcher

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Superblock magic numbers from statfs(2).
const (
	nfsSuperMagic  = 0x6969
	smbSuperMagic  = 0x517b
	cifsMagic      = 0xff534d42
	smb2Magic      = 0xfe534d42
	fuseSuperMagic = 0x65735546
)

func statfsType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}

	switch uint32(st.Type) {
	case nfsSuperMagic:
		return FSTypeNFS
	case smbSuperMagic, cifsMagic, smb2Magic:
		return FSTypeSMB
	case fuseSuperMagic:
		return fuseSubtype(path)
	}
	return FSTypeLocal
}

// fuseSubtype distinguishes sshfs from other FUSE mounts via /proc/self/mounts.
// The longest mount point that prefixes the path wins.
func fuseSubtype(path string) FilesystemType {
	f, err := os.Open("/proc/self/mounts")
	if err != nil {
		return FSTypeFUSE
	}
	defer f.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return FSTypeFUSE
	}

	best := FSTypeFUSE
	bestLen := -1
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mountPoint, fsType := fields[1], fields[2]
		if !strings.HasPrefix(abs, mountPoint) || len(mountPoint) <= bestLen {
			continue
		}
		bestLen = len(mountPoint)
		if strings.Contains(fsType, "sshfs") {
			best = FSTypeSSHFS
		} else {
			best = FSTypeFUSE
		}
	}
	return best
}
