package playlist

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedURI is returned for locations that are not local file URIs.
var ErrUnsupportedURI = errors.New("unsupported location uri")

// Unescape percent-decodes s into raw bytes. Malformed escapes are kept
// literally so that no input is rejected.
func Unescape(s string) string {
	if strings.IndexByte(s, '%') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' && i+2 < len(s) {
			hi, okHi := unhex(s[i+1])
			lo, okLo := unhex(s[i+2])
			if okHi && okLo {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// IsFileURI reports whether raw uses the file scheme.
func IsFileURI(raw string) bool {
	return len(raw) >= 7 && strings.EqualFold(raw[:7], "file://")
}

// PathFromURI returns the decoded local path of a file:// URI. Only an empty
// host or "localhost" is accepted.
func PathFromURI(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !IsFileURI(raw) {
		scheme := raw
		if idx := strings.Index(raw, ":"); idx >= 0 {
			scheme = raw[:idx]
		}
		return "", fmt.Errorf("%w: scheme %q", ErrUnsupportedURI, scheme)
	}
	rest := raw[len("file://"):]
	host := rest
	path := ""
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		host = rest[:idx]
		path = rest[idx:]
	}
	if host != "" && !strings.EqualFold(host, "localhost") {
		return "", fmt.Errorf("%w: remote host %q", ErrUnsupportedURI, host)
	}
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrUnsupportedURI)
	}
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	return Unescape(path), nil
}
