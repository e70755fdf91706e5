package targetdir

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"mixtape/internal/fileutil"
)

var (
	// ErrNotEmpty is returned when the target has entries and force is off.
	ErrNotEmpty = errors.New("target directory is not empty")
	// ErrLocked is returned when another run holds the target lock.
	ErrLocked = errors.New("target is locked by another run")
)

// IsEmpty reports whether dir has no entries. In-flight partial files left by
// an interrupted run do not count.
func IsEmpty(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, fmt.Errorf("open target: %w", err)
	}
	defer f.Close()

	for {
		names, err := f.Readdirnames(64)
		for _, name := range names {
			if !strings.HasPrefix(name, fileutil.PartialPrefix) {
				return false, nil
			}
		}
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("read target: %w", err)
		}
	}
}

// RequireEmpty returns ErrNotEmpty unless dir is empty or force is set.
func RequireEmpty(dir string, force bool) error {
	if force {
		return nil
	}
	empty, err := IsEmpty(dir)
	if err != nil {
		return err
	}
	if !empty {
		return fmt.Errorf("%w: %s (use --force to add to it)", ErrNotEmpty, dir)
	}
	return nil
}

// Lock is an exclusive claim on a target directory.
type Lock struct {
	flock  *flock.Flock
	target string
}

// LockPath returns the lock file used for target inside lockDir.
func LockPath(lockDir, target string) string {
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = filepath.Clean(target)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")
}

// Acquire takes the lock for target without blocking.
func Acquire(lockDir, target string) (*Lock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(LockPath(lockDir, target))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, target)
	}
	return &Lock{flock: fl, target: target}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.flock.Path()
}

// Release drops the lock.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	return l.flock.Unlock()
}
