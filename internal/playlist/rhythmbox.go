package playlist

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"mixtape/internal/logging"
	"mixtape/internal/plan"
)

type rhythmboxDB struct {
	XMLName   xml.Name            `xml:"rhythmdb-playlists"`
	Playlists []rhythmboxPlaylist `xml:"playlist"`
}

type rhythmboxPlaylist struct {
	Name      string   `xml:"name,attr"`
	Type      string   `xml:"type,attr"`
	Locations []string `xml:"location"`
}

// ReadRhythmbox parses a Rhythmbox playlists.xml stream and returns records
// for the requested static playlists in document order. An empty names list
// selects every static playlist.
func ReadRhythmbox(r io.Reader, names []string, logger *slog.Logger) ([]plan.SourceRecord, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	var db rhythmboxDB
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&db); err != nil {
		return nil, fmt.Errorf("parse rhythmbox playlists: %w", err)
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = false
	}

	var records []plan.SourceRecord
	for _, pl := range db.Playlists {
		if pl.Type != "static" {
			continue
		}
		if len(names) > 0 {
			if _, ok := wanted[pl.Name]; !ok {
				continue
			}
			wanted[pl.Name] = true
		}
		for _, loc := range pl.Locations {
			loc = strings.TrimSpace(loc)
			origin, err := PathFromURI(loc)
			if err != nil {
				logging.WarnWithContext(logger, "ignoring playlist location", "playlist_entry_skipped",
					logging.String(logging.FieldPlaylist, pl.Name),
					logging.String("uri", loc),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "only local file:// locations are supported"),
					logging.String(logging.FieldImpact, "entry will not be converted"),
				)
				continue
			}
			records = append(records, plan.SourceRecord{Origin: origin, Playlist: pl.Name, URI: loc})
		}
	}
	for _, name := range names {
		if !wanted[name] {
			warnMissingPlaylist(logger, name, "no static playlist with this name in the rhythmbox database")
		}
	}
	return records, nil
}

// ReadRhythmboxFile opens path and parses it with ReadRhythmbox.
func ReadRhythmboxFile(path string, names []string, logger *slog.Logger) ([]plan.SourceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rhythmbox playlists: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadRhythmbox(f, names, logger)
}

func warnMissingPlaylist(logger *slog.Logger, name, hint string) {
	logging.WarnWithContext(logger, "playlist not found", "playlist_missing",
		logging.String(logging.FieldPlaylist, name),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, "playlist contributes no items"),
	)
}
