package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mixtape/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "mixtape")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	wantRB := filepath.Join(tempHome, ".local", "share", "rhythmbox", "playlists.xml")
	if cfg.Paths.RhythmboxPlaylists != wantRB {
		t.Fatalf("unexpected rhythmbox path: %q", cfg.Paths.RhythmboxPlaylists)
	}
	if cfg.Defaults.Profile != "mp3" {
		t.Fatalf("expected mp3 default profile, got %q", cfg.Defaults.Profile)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.StateDir); err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
}

func TestLoadHonoursXDGStateHome(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.StateDir != filepath.Join(state, "mixtape") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mixtape.toml")

	custom := config.Config{
		Paths: config.Paths{StateDir: filepath.Join(tempDir, "state")},
		Encoders: config.Encoders{
			Preference: []string{" FFmpeg ", "sox"},
			Binaries:   map[string]string{"ffmpeg": " /opt/ffmpeg/bin/ffmpeg "},
		},
		Profiles: map[string]config.Profile{
			"opus": {Extension: ".OPUS", Args: map[string][]string{"FFmpeg": {"-c:a", "libopus"}}},
		},
		Defaults: config.Defaults{Profile: "opus"},
		History:  config.History{Enabled: false},
		Logging:  config.Logging{Format: "JSON", Level: "Debug"},
	}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q (exists=%v)", resolved, exists)
	}
	if got := strings.Join(cfg.Encoders.Preference, ","); got != "ffmpeg,sox" {
		t.Fatalf("unexpected preference: %q", got)
	}
	if cfg.Encoders.Binaries["ffmpeg"] != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.Encoders.Binaries["ffmpeg"])
	}
	opus, ok := cfg.Profiles["opus"]
	if !ok {
		t.Fatal("expected opus profile")
	}
	if opus.Extension != "opus" {
		t.Fatalf("expected normalized extension, got %q", opus.Extension)
	}
	if len(opus.Args["ffmpeg"]) != 2 {
		t.Fatalf("expected lowercased encoder key, got %v", opus.Args)
	}
	if cfg.History.Enabled {
		t.Fatal("expected history disabled")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "mixtape.toml")
	if err := os.WriteFile(path, []byte("[paths]\nstate_dri = \"/tmp\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error for unknown key, got %v", err)
	}
}

func TestValidateRejectsDuplicatePreference(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "mixtape.toml")
	content := "[encoders]\npreference = [\"sox\", \"SOX\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "more than once") {
		t.Fatalf("expected duplicate preference error, got %v", err)
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Defaults.Profile != "mp3" {
		t.Fatalf("unexpected sample profile: %q", cfg.Defaults.Profile)
	}
}
