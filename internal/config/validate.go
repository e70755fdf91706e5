package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoders(); err != nil {
		return err
	}
	if err := c.validateProfiles(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateEncoders() error {
	seen := make(map[string]struct{}, len(c.Encoders.Preference))
	for _, name := range c.Encoders.Preference {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("encoders.preference lists %q more than once", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func (c *Config) validateProfiles() error {
	for name, profile := range c.Profiles {
		if name == "" {
			return errors.New("profiles: profile name must not be empty")
		}
		for encoder := range profile.Args {
			if encoder == "" {
				return fmt.Errorf("profiles.%s.args: encoder name must not be empty", name)
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
