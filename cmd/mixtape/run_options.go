package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mixtape/internal/config"
	"mixtape/internal/encoder"
	"mixtape/internal/logging"
	"mixtape/internal/plan"
	"mixtape/internal/playlist"
	"mixtape/internal/targetdir"
)

// runFlags holds the flags shared by run and plan.
type runFlags struct {
	target        string
	single        bool
	named         bool
	profile       string
	recode        bool
	mangle        bool
	force         bool
	translateFrom string
	translateTo   string
	origin        string
	synofix       bool
	format        string
}

func (f *runFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.target, "target", "t", "", "Directory to write converted files into (required)")
	flags.BoolVarP(&f.single, "single", "s", false, "Put every file directly under the target (wins over --named)")
	flags.BoolVarP(&f.named, "named", "n", false, "Put files under a directory named after each playlist")
	flags.StringVarP(&f.profile, "profile", "p", "", "Encoding profile (default from config, normally mp3)")
	flags.BoolVarP(&f.recode, "recode", "r", false, "Transcode even when the source already has the profile extension")
	flags.BoolVarP(&f.mangle, "mangle", "m", false, "Replace characters outside [A-Za-z0-9_/.] with '_' in output names")
	flags.BoolVarP(&f.force, "force", "f", false, "Write into a non-empty target")
	flags.StringVarP(&f.translateFrom, "translate-from", "x", "", "Path prefix to replace in every origin (needs --translate-to)")
	flags.StringVarP(&f.translateTo, "translate-to", "y", "", "Replacement for --translate-from")
	flags.StringVarP(&f.origin, "origin", "o", "", "m3u file, directory of <name>.m3u files, or Rhythmbox playlists.xml")
	flags.BoolVar(&f.synofix, "synofix", false, "Repair legacy-codepage file names read from m3u playlists")
	flags.StringVar(&f.format, "format", "auto", "Playlist format: auto, rhythmbox, or m3u")
	_ = cmd.MarkFlagRequired("target")
}

// preparedRun is everything a run or dry run needs after planning.
type preparedRun struct {
	cfg       *config.Config
	logger    *slog.Logger
	target    string
	layout    plan.Layout
	profile   encoder.Profile
	table     *encoder.Table
	playlists []string
	records   int
	unmatched []string
	result    plan.Result
}

// prepare validates options, reads playlists, and builds the plan. It never
// writes into the target.
func (f *runFlags) prepare(cmd *cobra.Command, ctx *commandContext, playlists []string) (*preparedRun, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.logger(cmd)
	if err != nil {
		return nil, err
	}

	translator, err := plan.NewTranslator(
		playlist.Unescape(f.translateFrom),
		playlist.Unescape(f.translateTo),
		cmd.Flags().Changed("translate-from"),
		cmd.Flags().Changed("translate-to"),
	)
	if err != nil {
		return nil, err
	}

	table, profiles, err := ctx.encoders()
	if err != nil {
		return nil, err
	}
	profileName := strings.TrimSpace(f.profile)
	if profileName == "" {
		profileName = cfg.Defaults.Profile
	}
	profile, err := profiles.Get(profileName)
	if err != nil {
		return nil, err
	}

	format, err := playlist.ParseFormat(f.format)
	if err != nil {
		return nil, err
	}

	target := filepath.Clean(strings.TrimSpace(f.target))
	if target == "." && strings.TrimSpace(f.target) == "" {
		return nil, errors.New("--target is required")
	}

	records, err := playlist.Load(playlist.LoadOptions{
		Origin:        f.origin,
		Format:        format,
		Names:         playlists,
		Synofix:       f.synofix,
		RhythmboxPath: cfg.Paths.RhythmboxPlaylists,
		Logger:        logging.NewComponentLogger(logger, "playlist"),
	})
	if err != nil {
		return nil, err
	}

	layout := plan.SelectLayout(f.single, f.named)
	groups := plan.Dedup(records, layout.ScopedByPlaylist())
	groups, unmatched := translator.Apply(groups)
	if len(unmatched) > 0 {
		logging.WarnWithContext(logger, "translate-from did not match some origins", "translate_unmatched",
			logging.Int("unmatched", len(unmatched)),
			logging.String("translate_from", translator.From),
			logging.String(logging.FieldErrorHint, "check --translate-from against the playlist paths"),
			logging.String(logging.FieldImpact, "those items keep their original path"),
		)
		for _, origin := range unmatched {
			logger.Debug("translate-from not found", logging.String(logging.FieldOrigin, origin))
		}
	}

	result, err := plan.Plan(groups, plan.Options{
		Layout:          layout,
		Mangle:          f.mangle,
		Recode:          f.recode,
		TargetRoot:      target,
		TargetExtension: profile.Extension,
		Capabilities:    table,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("plan ready",
		logging.String("target", target),
		logging.String("common_prefix", result.CommonPrefix),
		logging.String("layout", layout.String()),
		logging.String("profile", profile.Name),
		logging.Int("records", len(records)),
		logging.Int("items", len(result.Items)),
	)
	for _, item := range result.Items {
		if item.Collision() {
			logging.WarnWithContext(logger, "destination collision", "plan_collision",
				logging.String(logging.FieldOrigin, item.Origin),
				logging.String(logging.FieldDestination, item.DestinationPath),
				logging.String("claimed_by", item.CollidesWith),
				logging.String(logging.FieldErrorHint, "drop --single so each file keeps its directory"),
				logging.String(logging.FieldImpact, "later file is skipped"),
			)
		}
	}

	return &preparedRun{
		cfg:       cfg,
		logger:    logger,
		target:    target,
		layout:    layout,
		profile:   profile,
		table:     table,
		playlists: playlists,
		records:   len(records),
		unmatched: unmatched,
		result:    result,
	}, nil
}

// warnIfFAT suggests --mangle when the target cannot hold arbitrary names.
func (p *preparedRun) warnIfFAT(mangle bool) {
	if mangle {
		return
	}
	fat, err := targetdir.IsFAT(p.target)
	if err != nil {
		p.logger.Debug("filesystem probe failed", logging.Error(err))
		return
	}
	if fat {
		logging.WarnWithContext(p.logger, "target is on a FAT filesystem", "target_fat",
			logging.String("target", p.target),
			logging.String(logging.FieldErrorHint, "rerun with --mangle to avoid invalid file names"),
			logging.String(logging.FieldImpact, "files with characters FAT rejects will fail"),
		)
	}
}

func describeLayout(l plan.Layout) string {
	switch l {
	case plan.LayoutSingle:
		return "single (flat)"
	case plan.LayoutNamed:
		return "named (per playlist)"
	default:
		return "mirror (relative to common prefix)"
	}
}

func formatCount(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
