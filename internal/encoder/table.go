package encoder

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultPreference is the compiled-in encoder order.
var DefaultPreference = []string{"sox", "avconv", "ffmpeg"}

type argvBuilder func(origin, destination string, extra []string) []string

type builtin struct {
	extensions []string
	argv       argvBuilder
}

var builtins = map[string]builtin{
	"sox": {
		extensions: []string{"mp3", "ogg", "oga", "flac", "wav", "aiff", "au"},
		argv: func(origin, destination string, extra []string) []string {
			args := []string{origin}
			args = append(args, extra...)
			return append(args, destination)
		},
	},
	"avconv": {
		extensions: []string{"mp3", "ogg", "oga", "flac", "wav", "aac", "aiff", "au", "m4a"},
		argv: func(origin, destination string, extra []string) []string {
			args := []string{"-i", origin}
			args = append(args, extra...)
			return append(args, destination)
		},
	},
	"ffmpeg": {
		extensions: []string{"mp3", "ogg", "oga", "flac", "wav", "aac", "aiff", "au", "m4a"},
		argv: func(origin, destination string, extra []string) []string {
			args := []string{"-nostdin", "-i", origin}
			args = append(args, extra...)
			return append(args, destination)
		},
	},
}

// Encoder is one external tool in the table.
type Encoder struct {
	Name   string
	Binary string
	// Extensions lists the lowercase source extensions the tool reads.
	Extensions []string
	argv       argvBuilder
}

// Reads reports whether the encoder accepts ext.
func (e Encoder) Reads(ext string) bool {
	for _, candidate := range e.Extensions {
		if candidate == ext {
			return true
		}
	}
	return false
}

// Command returns the argument vector (without the binary) that converts
// origin into destination with the given profile arguments.
func (e Encoder) Command(origin, destination string, extra []string) []string {
	return e.argv(origin, destination, extra)
}

// Table is the ordered capability table.
type Table struct {
	encoders []Encoder
}

// NewTable builds a table in the given preference order. An empty preference
// uses DefaultPreference. binaries overrides the executable per encoder name.
func NewTable(preference []string, binaries map[string]string) (*Table, error) {
	if len(preference) == 0 {
		preference = DefaultPreference
	}
	t := &Table{encoders: make([]Encoder, 0, len(preference))}
	seen := make(map[string]struct{}, len(preference))
	for _, raw := range preference {
		name := strings.ToLower(strings.TrimSpace(raw))
		known, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("unknown encoder %q (known: %s)", raw, strings.Join(KnownEncoders(), ", "))
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("encoder %q listed more than once", name)
		}
		seen[name] = struct{}{}
		binary := name
		if override := strings.TrimSpace(binaries[name]); override != "" {
			binary = override
		}
		t.encoders = append(t.encoders, Encoder{
			Name:       name,
			Binary:     binary,
			Extensions: append([]string(nil), known.extensions...),
			argv:       known.argv,
		})
	}
	for name := range binaries {
		if _, ok := builtins[strings.ToLower(strings.TrimSpace(name))]; !ok {
			return nil, fmt.Errorf("binary override for unknown encoder %q", name)
		}
	}
	return t, nil
}

// DefaultTable returns the compiled-in table.
func DefaultTable() *Table {
	t, err := NewTable(nil, nil)
	if err != nil {
		panic(err)
	}
	return t
}

// KnownEncoders lists the encoder names this build can drive.
func KnownEncoders() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Encoders returns the table in preference order.
func (t *Table) Encoders() []Encoder {
	return append([]Encoder(nil), t.encoders...)
}

// Select returns the first encoder in preference order that reads ext.
func (t *Table) Select(ext string) (string, bool) {
	e, ok := t.selectEncoder(ext)
	return e.Name, ok
}

func (t *Table) selectEncoder(ext string) (Encoder, bool) {
	if ext == "" {
		return Encoder{}, false
	}
	for _, e := range t.encoders {
		if e.Reads(ext) {
			return e, true
		}
	}
	return Encoder{}, false
}

// Known reports whether any encoder in the table reads ext.
func (t *Table) Known(ext string) bool {
	_, ok := t.selectEncoder(ext)
	return ok
}

// Extensions returns the sorted union of all readable extensions.
func (t *Table) Extensions() []string {
	set := map[string]struct{}{}
	for _, e := range t.encoders {
		for _, ext := range e.Extensions {
			set[ext] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for ext := range set {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
