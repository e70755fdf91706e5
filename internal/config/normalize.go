package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEncoders()
	c.normalizeProfiles()
	c.normalizeLogging()
	c.Defaults.Profile = strings.TrimSpace(c.Defaults.Profile)
	if c.Defaults.Profile == "" {
		c.Defaults.Profile = defaultProfile
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.RhythmboxPlaylists) == "" {
		c.Paths.RhythmboxPlaylists = defaultRhythmboxPlaylists
	}
	if c.Paths.RhythmboxPlaylists, err = expandPath(c.Paths.RhythmboxPlaylists); err != nil {
		return fmt.Errorf("paths.rhythmbox_playlists: %w", err)
	}
	return nil
}

func (c *Config) normalizeEncoders() {
	pref := make([]string, 0, len(c.Encoders.Preference))
	for _, name := range c.Encoders.Preference {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			pref = append(pref, name)
		}
	}
	c.Encoders.Preference = pref

	if len(c.Encoders.Binaries) == 0 {
		return
	}
	binaries := make(map[string]string, len(c.Encoders.Binaries))
	for name, bin := range c.Encoders.Binaries {
		name = strings.ToLower(strings.TrimSpace(name))
		bin = strings.TrimSpace(bin)
		if name == "" || bin == "" {
			continue
		}
		if strings.HasPrefix(bin, "~") {
			if expanded, err := expandPath(bin); err == nil {
				bin = expanded
			}
		}
		binaries[name] = bin
	}
	c.Encoders.Binaries = binaries
}

func (c *Config) normalizeProfiles() {
	if len(c.Profiles) == 0 {
		return
	}
	profiles := make(map[string]Profile, len(c.Profiles))
	for name, profile := range c.Profiles {
		name = strings.TrimSpace(name)
		profile.Extension = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(profile.Extension), "."))
		if len(profile.Args) > 0 {
			args := make(map[string][]string, len(profile.Args))
			for encoder, values := range profile.Args {
				args[strings.ToLower(strings.TrimSpace(encoder))] = values
			}
			profile.Args = args
		}
		profiles[name] = profile
	}
	c.Profiles = profiles
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
