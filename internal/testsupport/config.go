package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mixtape/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose state directory and Rhythmbox database
// live under a per-test temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.RhythmboxPlaylists = filepath.Join(base, "rhythmbox", "playlists.xml")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithHistoryDisabled turns off the run ledger.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithStubbedEncoders writes stub encoders into the temp directory and points
// [encoders.binaries] at them. Each stub writes a marker into its last
// argument, which is where every encoder puts its output. If names is empty,
// sox, avconv, and ffmpeg are stubbed.
func WithStubbedEncoders(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"sox", "avconv", "ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		if b.cfg.Encoders.Binaries == nil {
			b.cfg.Encoders.Binaries = map[string]string{}
		}
		for _, name := range names {
			target := filepath.Join(binDir, name)
			script := []byte("#!/bin/sh\nfor last; do :; done\nprintf '" + name + "' > \"$last\"\n")
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
			b.cfg.Encoders.Binaries[name] = target
		}
	}
}

// WithFailingEncoder points name at a stub that prints to stderr and exits 1.
func WithFailingEncoder(name string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		if b.cfg.Encoders.Binaries == nil {
			b.cfg.Encoders.Binaries = map[string]string{}
		}
		target := filepath.Join(binDir, name+"-failing")
		script := []byte("#!/bin/sh\necho \"" + name + ": unsupported input\" >&2\nexit 1\n")
		if err := os.WriteFile(target, script, 0o755); err != nil {
			b.t.Fatalf("write failing stub %s: %v", name, err)
		}
		b.cfg.Encoders.Binaries[name] = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
