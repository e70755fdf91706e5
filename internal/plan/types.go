package plan

import "fmt"

// SourceRecord is one playlist entry after URI decoding.
type SourceRecord struct {
	// Origin is the source media path as raw bytes.
	Origin string
	// Playlist names the playlist that referenced Origin.
	Playlist string
	// URI is the location exactly as the playlist stored it, when it was a URI.
	URI string
}

// SourceGroup holds the records sharing one origin, in first-seen order.
type SourceGroup struct {
	Origin  string
	Records []SourceRecord
}

// Layout selects how destination paths are built.
type Layout int

const (
	// LayoutMirror keeps each origin's path relative to the common directory
	// of all origins.
	LayoutMirror Layout = iota
	// LayoutNamed places files under a directory per playlist.
	LayoutNamed
	// LayoutSingle flattens every file directly into the target.
	LayoutSingle
)

func (l Layout) String() string {
	switch l {
	case LayoutSingle:
		return "single"
	case LayoutNamed:
		return "named"
	case LayoutMirror:
		return "mirror"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// SelectLayout applies the CLI precedence rule: single wins over named, and
// mirror is the default.
func SelectLayout(single, named bool) Layout {
	switch {
	case single:
		return LayoutSingle
	case named:
		return LayoutNamed
	default:
		return LayoutMirror
	}
}

// ScopedByPlaylist reports whether records for the same origin stay distinct
// per playlist under this layout.
func (l Layout) ScopedByPlaylist() bool {
	return l == LayoutNamed
}

// Action is what the driver does with a planned item.
type Action int

const (
	ActionTranscode Action = iota
	ActionCopy
)

func (a Action) String() string {
	if a == ActionCopy {
		return "copy"
	}
	return "transcode"
}

// PlannedItem is one unit of work produced by Plan.
type PlannedItem struct {
	Origin   string
	Playlist string
	// DestinationDir is the directory that must exist before writing.
	DestinationDir string
	// DestinationPath is the full output path including the target extension.
	DestinationPath string
	// Extension is the recognized, lowercased source extension. Empty when the
	// origin's suffix is not a known audio extension.
	Extension string
	Action    Action
	// EncoderHint names the encoder the dispatcher will choose, when any.
	EncoderHint string
	// CollidesWith is set when an earlier item with a different origin already
	// claimed DestinationPath. Such items are skipped at execution time.
	CollidesWith string
}

// Collision reports whether the item lost its destination to an earlier item.
func (p PlannedItem) Collision() bool {
	return p.CollidesWith != ""
}
