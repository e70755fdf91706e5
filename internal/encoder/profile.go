package encoder

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownProfile is returned when a profile name is not defined.
var ErrUnknownProfile = errors.New("unknown profile")

// Profile describes a conversion target.
type Profile struct {
	Name      string
	Extension string
	// Args holds extra arguments per encoder name.
	Args map[string][]string
}

// ArgsFor returns the profile arguments for the named encoder.
func (p Profile) ArgsFor(encoder string) []string {
	return append([]string(nil), p.Args[encoder]...)
}

// ProfileSet maps profile names to profiles.
type ProfileSet map[string]Profile

// BuiltinProfiles returns the compiled-in profiles.
func BuiltinProfiles() ProfileSet {
	id3 := []string{"-id3v2_version", "3"}
	hiq := []string{"-q:a", "0", "-id3v2_version", "3"}
	return ProfileSet{
		"mp3": {
			Name:      "mp3",
			Extension: "mp3",
			Args:      map[string][]string{"avconv": id3, "ffmpeg": id3},
		},
		"mp3-hiq": {
			Name:      "mp3-hiq",
			Extension: "mp3",
			Args: map[string][]string{
				"sox":    {"-t", "mp3", "-C", "0"},
				"avconv": hiq,
				"ffmpeg": hiq,
			},
		},
		"ogg": {
			Name:      "ogg",
			Extension: "ogg",
		},
	}
}

// Merge returns a copy of s with overrides applied. An override for an
// existing profile replaces its extension when set and replaces argument lists
// per encoder; new profiles must name an extension.
func (s ProfileSet) Merge(overrides ProfileSet) (ProfileSet, error) {
	out := make(ProfileSet, len(s)+len(overrides))
	for name, p := range s {
		out[name] = p.clone()
	}
	for _, name := range sortedNames(overrides) {
		override := overrides[name]
		ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(override.Extension), "."))
		base, exists := out[name]
		if !exists {
			if ext == "" {
				return nil, fmt.Errorf("profile %q: extension is required", name)
			}
			base = Profile{Name: name}
		}
		if ext != "" {
			base.Extension = ext
		}
		if base.Args == nil && len(override.Args) > 0 {
			base.Args = make(map[string][]string, len(override.Args))
		}
		for encoder, args := range override.Args {
			base.Args[encoder] = append([]string(nil), args...)
		}
		out[name] = base
	}
	return out, nil
}

// Get returns the named profile.
func (s ProfileSet) Get(name string) (Profile, error) {
	p, ok := s[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w %s (available: %s)", ErrUnknownProfile, name, strings.Join(s.Names(), ", "))
	}
	return p, nil
}

// Names returns the profile names sorted.
func (s ProfileSet) Names() []string {
	return sortedNames(s)
}

func sortedNames(s ProfileSet) []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p Profile) clone() Profile {
	out := Profile{Name: p.Name, Extension: p.Extension}
	if len(p.Args) > 0 {
		out.Args = make(map[string][]string, len(p.Args))
		for k, v := range p.Args {
			out.Args[k] = append([]string(nil), v...)
		}
	}
	return out
}
