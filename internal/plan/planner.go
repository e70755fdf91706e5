package plan

import (
	"path/filepath"
	"strings"

	"mixtape/internal/textutil"
)

// Capabilities answers extension questions for the planner. The encoder
// table implements it.
type Capabilities interface {
	// Known reports whether ext (lowercase, no dot) is readable by any encoder.
	Known(ext string) bool
	// Select returns the preferred encoder able to read ext.
	Select(ext string) (string, bool)
}

// Options configures a planning pass.
type Options struct {
	Layout Layout
	// Mangle rewrites unsafe bytes in the origin-derived part of each path.
	Mangle bool
	// Recode forces transcoding even when the source already has the target
	// extension.
	Recode          bool
	TargetRoot      string
	TargetExtension string
	Capabilities    Capabilities
}

// Result is the output of Plan.
type Result struct {
	Items []PlannedItem
	// CommonPrefix is the directory shared by every origin. Only LayoutMirror
	// uses it, but it is always computed for reporting.
	CommonPrefix string
}

// Copies counts items that will be copied rather than transcoded.
func (r Result) Copies() int {
	n := 0
	for _, item := range r.Items {
		if item.Action == ActionCopy && !item.Collision() {
			n++
		}
	}
	return n
}

// Collisions counts items that lost their destination to an earlier item.
func (r Result) Collisions() int {
	n := 0
	for _, item := range r.Items {
		if item.Collision() {
			n++
		}
	}
	return n
}

// Plan computes one PlannedItem per record in groups, in group order.
func Plan(groups *Groups, opts Options) (Result, error) {
	if strings.TrimSpace(opts.TargetRoot) == "" {
		return Result{}, configError("target directory is required")
	}
	targetExt := asciiLower(strings.TrimPrefix(opts.TargetExtension, "."))
	if targetExt == "" {
		return Result{}, configError("profile has no target extension")
	}
	if opts.Capabilities == nil {
		return Result{}, configError("encoder capabilities are required")
	}

	prefix := CommonPrefix(groups.Origins())
	claimed := make(map[string]string, groups.Len())
	result := Result{CommonPrefix: prefix}

	for _, group := range groups.All() {
		for _, rec := range group.Records {
			name, err := relativeName(rec, opts.Layout, prefix)
			if err != nil {
				return Result{}, err
			}
			if opts.Mangle {
				name = textutil.Mangle(name)
			}
			if escapesRoot(name) {
				return Result{}, configError("%q would be written outside the target as %q; use --single or --translate-from to place it", rec.Origin, name)
			}
			item := placeItem(rec, filepath.Join(opts.TargetRoot, name), targetExt, opts)
			if owner, taken := claimed[item.DestinationPath]; taken {
				item.CollidesWith = owner
			} else {
				claimed[item.DestinationPath] = item.Origin
			}
			result.Items = append(result.Items, item)
		}
	}
	return result, nil
}

func relativeName(rec SourceRecord, layout Layout, prefix string) (string, error) {
	switch layout {
	case LayoutSingle:
		return filepath.Base(rec.Origin), nil
	case LayoutNamed:
		return filepath.Join(playlistDir(rec.Playlist), filepath.Base(rec.Origin)), nil
	default:
		base := prefix
		if base == "" {
			base = "."
		}
		rel, err := filepath.Rel(base, rec.Origin)
		if err != nil {
			return "", configError("cannot place %q relative to common prefix %q: %v", rec.Origin, prefix, err)
		}
		return rel, nil
	}
}

// playlistDir turns a playlist name into a single directory segment under
// the target. Separators become '_', and names that are empty or consist
// only of dots are replaced.
func playlistDir(name string) string {
	dir := strings.ReplaceAll(name, string(filepath.Separator), "_")
	if strings.Trim(dir, ".") == "" {
		return "_" + dir
	}
	return dir
}

// escapesRoot reports whether the relative name resolves outside the
// directory it is joined to.
func escapesRoot(name string) bool {
	if filepath.IsAbs(name) {
		return true
	}
	clean := filepath.Clean(name)
	return clean == ".." || clean == "." || strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

func placeItem(rec SourceRecord, joined, targetExt string, opts Options) PlannedItem {
	dir, file := filepath.Split(joined)
	item := PlannedItem{
		Origin:         rec.Origin,
		Playlist:       rec.Playlist,
		DestinationDir: filepath.Clean(dir),
		Action:         ActionTranscode,
	}

	newName := file + "." + targetExt
	if dot := strings.LastIndexByte(file, '.'); dot >= 0 {
		suffix := asciiLower(file[dot+1:])
		if suffix != "" && opts.Capabilities.Known(suffix) {
			item.Extension = suffix
			newName = file[:dot] + "." + targetExt
		}
	}
	item.DestinationPath = filepath.Join(item.DestinationDir, newName)

	if item.Extension == targetExt && !opts.Recode {
		item.Action = ActionCopy
		return item
	}
	if item.Extension != "" {
		if name, ok := opts.Capabilities.Select(item.Extension); ok {
			item.EncoderHint = name
		}
	}
	return item
}

// CommonPrefix returns the directory portion of the longest byte-level prefix
// shared by all origins. It returns "" when origins is empty or share no
// directory.
func CommonPrefix(origins []string) string {
	if len(origins) == 0 {
		return ""
	}
	prefix := origins[0]
	for _, origin := range origins[1:] {
		n := 0
		for n < len(prefix) && n < len(origin) && prefix[n] == origin[n] {
			n++
		}
		prefix = prefix[:n]
		if prefix == "" {
			return ""
		}
	}
	slash := strings.LastIndexByte(prefix, '/')
	if slash < 0 {
		return ""
	}
	head := strings.TrimRight(prefix[:slash], "/")
	if head == "" {
		return "/"
	}
	return head
}

func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
