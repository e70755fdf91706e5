package textutil

// Mangle replaces every byte outside [A-Za-z0-9_/.] with '_'. Multi-byte
// sequences become one underscore per byte.
func Mangle(name string) string {
	out := []byte(name)
	for i, c := range out {
		if !safeByte(c) {
			out[i] = '_'
		}
	}
	return string(out)
}

func safeByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '/' || c == '.':
		return true
	default:
		return false
	}
}
