//go:build linux

package targetdir

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const exfatSuperMagic = 0x2011BAB0

// IsFAT reports whether path lives on a FAT or exFAT filesystem.
func IsFAT(path string) (bool, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return false, fmt.Errorf("statfs %s: %w", path, err)
	}
	switch int64(st.Type) {
	case unix.MSDOS_SUPER_MAGIC, exfatSuperMagic:
		return true, nil
	}
	return false, nil
}
