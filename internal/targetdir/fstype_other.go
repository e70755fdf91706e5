//go:build !linux

package targetdir

// IsFAT always reports false where the filesystem type cannot be probed.
func IsFAT(string) (bool, error) {
	return false, nil
}
