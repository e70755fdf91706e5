package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PartialPrefix marks in-flight files written next to their final destination.
const PartialPrefix = ".mixtape-partial-"

// PartialPath returns the sibling path used while dst is being produced. The
// original extension is kept so tools that infer the output format from the
// file name still work.
func PartialPath(dst string) string {
	return filepath.Join(filepath.Dir(dst), PartialPrefix+filepath.Base(dst))
}

// CopyFile streams src to dst. dst gets the permission bits of src.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	mode := os.FileMode(0o644)
	if info, err := in.Stat(); err == nil {
		mode = info.Mode().Perm()
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// CopyFileAtomic copies src into a partial sibling of dst and renames it into
// place once the copy completes, so dst never holds a truncated file.
func CopyFileAtomic(src, dst string) error {
	partial := PartialPath(dst)
	if err := CopyFile(src, partial); err != nil {
		_ = os.Remove(partial)
		return err
	}
	return Promote(partial, dst)
}

// Promote renames a finished partial file onto its destination.
func Promote(partial, dst string) error {
	if err := os.Rename(partial, dst); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("rename %s: %w", filepath.Base(partial), err)
	}
	return nil
}

// Exists reports whether path can be stat'ed. Permission errors count as
// present so callers never overwrite something they cannot inspect.
func Exists(path string) bool {
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	return !os.IsNotExist(err)
}
