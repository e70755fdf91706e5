package textutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// legacyTable maps 0x80-0xFF onto Unicode. Bytes the code page leaves
// undefined decode either to utf8.RuneError or to the matching C1 control,
// depending on the table's source; both count as unmapped.
var legacyTable = charmap.Windows1252

// RepairLegacyName decodes raw as Windows-1252 text: bytes up to 0x7F are
// ASCII, higher bytes go through the code page table. When any byte has no
// mapping the input is returned unchanged and ok is false.
func RepairLegacyName(raw []byte) (string, bool) {
	var b strings.Builder
	b.Grow(len(raw) + len(raw)/2)
	for _, c := range raw {
		if c <= 0x7f {
			b.WriteByte(c)
			continue
		}
		r := legacyTable.DecodeByte(c)
		if r == utf8.RuneError || (r >= 0x80 && r <= 0x9f) {
			return string(raw), false
		}
		b.WriteRune(r)
	}
	return b.String(), true
}

// NeedsRepair reports whether raw contains bytes outside ASCII that are not
// already valid UTF-8, i.e. whether RepairLegacyName could change it.
func NeedsRepair(raw []byte) bool {
	for _, c := range raw {
		if c > 0x7f {
			return !utf8.Valid(raw)
		}
	}
	return false
}
