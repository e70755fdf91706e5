package playlist

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mixtape/internal/logging"
	"mixtape/internal/plan"
	"mixtape/internal/textutil"
)

var m3uSuffixes = []string{".m3u8", ".m3u"}

// M3UName derives the playlist name from an m3u file path.
func M3UName(path string) string {
	base := filepath.Base(path)
	for _, suffix := range m3uSuffixes {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

// ReadM3U parses an m3u stream. The first line is the header and is always
// dropped, whatever it holds. After it, blank lines and '#' lines are
// skipped. Each remaining line is a percent-encoded path or a file:// URI. With synofix set, a filename segment that is not valid
// UTF-8 is repaired from the legacy codepage.
func ReadM3U(r io.Reader, name string, synofix bool, logger *slog.Logger) ([]plan.SourceRecord, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []plan.SourceRecord
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec := plan.SourceRecord{Playlist: name}
		if IsFileURI(line) || hasScheme(line) {
			origin, err := PathFromURI(line)
			if err != nil {
				logging.WarnWithContext(logger, "skipping playlist entry", "playlist_entry_skipped",
					logging.String(logging.FieldPlaylist, name),
					logging.Int("line", lineNo),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "only local file:// locations are supported"),
					logging.String(logging.FieldImpact, "entry will not be converted"),
				)
				continue
			}
			rec.Origin = origin
			rec.URI = line
		} else {
			rec.Origin = Unescape(line)
		}
		if synofix {
			rec.Origin = repairFilename(rec.Origin)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read m3u %s: %w", name, err)
	}
	return records, nil
}

// ReadM3UFile opens path and parses it with ReadM3U.
func ReadM3UFile(path string, synofix bool, logger *slog.Logger) ([]plan.SourceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open m3u: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadM3U(f, M3UName(path), synofix, logger)
}

// hasScheme reports whether line starts with "<scheme>://".
func hasScheme(line string) bool {
	idx := strings.Index(line, "://")
	if idx <= 0 {
		return false
	}
	for i := 0; i < idx; i++ {
		c := line[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.')) {
			return false
		}
	}
	return true
}

func repairFilename(origin string) string {
	dir, file := "", origin
	if idx := strings.LastIndexByte(origin, '/'); idx >= 0 {
		dir, file = origin[:idx+1], origin[idx+1:]
	}
	if !textutil.NeedsRepair([]byte(file)) {
		return origin
	}
	fixed, ok := textutil.RepairLegacyName([]byte(file))
	if !ok {
		return origin
	}
	return dir + fixed
}
