package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mixtape/internal/config"
	"mixtape/internal/encoder"
	"mixtape/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// logger builds the command logger on the command's stderr.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return newLogger(cfg, flagValue(c.logLevelFlag), flagValue(c.logFormatFlag), cmd.ErrOrStderr())
}

func newLogger(cfg *config.Config, levelOverride, formatOverride string, w io.Writer) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if levelOverride != "" {
		level = levelOverride
	}
	format := cfg.Logging.Format
	if formatOverride != "" {
		format = formatOverride
	}
	logger, err := logging.New(logging.Options{
		Level:  level,
		Format: format,
		Writer: w,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// encoders resolves the capability table and the merged profile set.
func (c *commandContext) encoders() (*encoder.Table, encoder.ProfileSet, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	table, err := encoder.NewTable(cfg.Encoders.Preference, cfg.Encoders.Binaries)
	if err != nil {
		return nil, nil, fmt.Errorf("encoders: %w", err)
	}
	overrides := make(encoder.ProfileSet, len(cfg.Profiles))
	for name, p := range cfg.Profiles {
		overrides[name] = encoder.Profile{Name: name, Extension: p.Extension, Args: p.Args}
	}
	profiles, err := encoder.BuiltinProfiles().Merge(overrides)
	if err != nil {
		return nil, nil, fmt.Errorf("profiles: %w", err)
	}
	return table, profiles, nil
}

func flagValue(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
