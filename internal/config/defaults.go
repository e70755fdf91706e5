package config

const (
	defaultConfigPath         = "~/.config/mixtape/config.toml"
	defaultStateDirFallback   = "~/.local/state/mixtape"
	defaultRhythmboxPlaylists = "~/.local/share/rhythmbox/playlists.xml"
	defaultProfile            = "mp3"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:           defaultStateDir(),
			RhythmboxPlaylists: defaultRhythmboxPlaylists,
		},
		Defaults: Defaults{
			Profile: defaultProfile,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
