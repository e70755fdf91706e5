package playlist

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mixtape/internal/logging"
	"mixtape/internal/plan"
)

// Format selects the playlist reader.
type Format string

const (
	FormatAuto      Format = "auto"
	FormatRhythmbox Format = "rhythmbox"
	FormatM3U       Format = "m3u"
)

// ErrFormat is returned for unknown or inapplicable formats.
var ErrFormat = errors.New("playlist format")

// ParseFormat validates a format name. Empty means auto.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatRhythmbox:
		return FormatRhythmbox, nil
	case FormatM3U:
		return FormatM3U, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want auto, rhythmbox, or m3u)", ErrFormat, value)
	}
}

// LoadOptions describes where playlists come from.
type LoadOptions struct {
	// Origin is an m3u file, a directory of m3u files, or a Rhythmbox
	// playlists.xml. Empty reads RhythmboxPath.
	Origin        string
	Format        Format
	Names         []string
	Synofix       bool
	RhythmboxPath string
	Logger        *slog.Logger
}

// Load reads the requested playlists and returns their records in order.
func Load(opts LoadOptions) ([]plan.SourceRecord, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	format := opts.Format
	if format == "" {
		format = FormatAuto
	}

	origin := strings.TrimSpace(opts.Origin)
	if origin == "" {
		if format == FormatM3U {
			return nil, fmt.Errorf("%w: m3u playlists need an origin file or directory", ErrFormat)
		}
		if strings.TrimSpace(opts.RhythmboxPath) == "" {
			return nil, fmt.Errorf("%w: no origin and no rhythmbox database configured", ErrFormat)
		}
		logger.Debug("reading rhythmbox database", logging.String("path", opts.RhythmboxPath))
		return ReadRhythmboxFile(opts.RhythmboxPath, opts.Names, logger)
	}

	info, err := os.Stat(origin)
	if err != nil {
		return nil, fmt.Errorf("playlist origin: %w", err)
	}
	if info.IsDir() {
		if format == FormatRhythmbox {
			return nil, fmt.Errorf("%w: rhythmbox origin must be a file, got directory %s", ErrFormat, origin)
		}
		return loadM3UDir(origin, opts.Names, opts.Synofix, logger)
	}

	if format == FormatAuto {
		format, err = detectFormat(origin)
		if err != nil {
			return nil, err
		}
	}
	switch format {
	case FormatRhythmbox:
		return ReadRhythmboxFile(origin, opts.Names, logger)
	default:
		return ReadM3UFile(origin, opts.Synofix, logger)
	}
}

// loadM3UDir reads <dir>/<name>.m3u for each requested name, in the order the
// names were given.
func loadM3UDir(dir string, names []string, synofix bool, logger *slog.Logger) ([]plan.SourceRecord, error) {
	var records []plan.SourceRecord
	for _, name := range names {
		path, ok := findM3U(dir, name)
		if !ok {
			warnMissingPlaylist(logger, name, fmt.Sprintf("expected %s.m3u in %s", M3UName(name), dir))
			continue
		}
		recs, err := ReadM3UFile(path, synofix, logger)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

func findM3U(dir, name string) (string, bool) {
	candidates := []string{name}
	if M3UName(name) == name {
		candidates = []string{name + ".m3u", name + ".m3u8"}
	}
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func detectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatRhythmbox, nil
	case ".m3u", ".m3u8":
		return FormatM3U, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("playlist origin: %w", err)
	}
	defer func() { _ = f.Close() }()
	head, err := bufio.NewReader(f).Peek(512)
	if err != nil && len(head) == 0 {
		return FormatM3U, nil
	}
	if bytes.HasPrefix(bytes.TrimSpace(head), []byte("<")) {
		return FormatRhythmbox, nil
	}
	return FormatM3U, nil
}
