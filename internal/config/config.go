package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Autoplay bool     `koanf:"autoplay"` // start playback as soon as a source attaches
	Loop     bool     `koanf:"loop"`     // restart from zero when playback ends
	Volume   *float64 `koanf:"volume"`   // 0.0-1.0 (default: 1.0)
	Muted    bool     `koanf:"muted"`

	// Media to register on startup
	Media MediaConfig `koanf:"media"`
}

// MediaConfig describes the media source registered on startup.
type MediaConfig struct {
	URL             string  `koanf:"url"`              // source URL, e.g. "mem://demo"
	MimeType        string  `koanf:"mime_type"`        // e.g. "video/mp4"
	DurationSeconds float64 `koanf:"duration_seconds"` // reported duration (default: 60)
	Subtitles       string  `koanf:"subtitles"`        // path to a WebVTT file, optional
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in the subtitles path
	if cfg.Media.Subtitles != "" {
		cfg.Media.Subtitles = expandPath(cfg.Media.Subtitles)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/mediahost/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "mediahost", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// EffectiveVolume returns the configured volume with the default applied
// and the value clamped to [0, 1].
func (c *Config) EffectiveVolume() float64 {
	if c.Volume == nil {
		return 1
	}
	v := *c.Volume
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// DefaultURL is the source URL used when none is configured.
const DefaultURL = "mem://demo"

// GetMediaConfig returns the media configuration with defaults applied.
func (c *Config) GetMediaConfig() MediaConfig {
	cfg := c.Media

	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.MimeType == "" {
		cfg.MimeType = "video/mp4"
	}
	if cfg.DurationSeconds <= 0 {
		cfg.DurationSeconds = 60
	}

	return cfg
}
