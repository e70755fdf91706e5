package plan

import (
	"errors"
	"fmt"
)

// ErrConfig marks invalid option combinations detected before any work is
// done. Callers treat it as fatal.
var ErrConfig = errors.New("configuration error")

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
