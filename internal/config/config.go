// Package config persists the operator's API credential and last-used search
// settings to a TOML file in the user config dir. Read/write failures are
// non-fatal: a missing or unreadable file behaves as "no stored credential,
// default settings".
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	APIKey string       `toml:"api_key"`
	Search SearchConfig `toml:"search"`
}

type SearchConfig struct {
	RunMode        string   `toml:"run_mode"` // channels | keywords | both
	Regions        []string `toml:"regions"`
	Language       string   `toml:"language"`
	TranslateTo    string   `toml:"translate_to"`
	UseTranslation bool     `toml:"use_translation"`

	FormFactor      string  `toml:"form_factor"` // short | long | both
	ShortsSec       int     `toml:"shorts_sec"`
	DaysBack        int     `toml:"days_back"`
	PerChannelMax   int     `toml:"per_channel_max"`
	PerKeywordMax   int     `toml:"per_keyword_max"`
	MinViewsPerHour float64 `toml:"min_vph"`
	WaitMinutes     float64 `toml:"wait_minutes"`
	StrictKeywords  bool    `toml:"strict_keywords"`
	KeywordMode     string  `toml:"keyword_mode"` // any | all
}

// ForeignPreset is the default overseas region selection.
var ForeignPreset = []string{"US", "JP", "TW", "HK", "SG", "GB", "DE", "FR", "ES", "BR"}

func DefaultConfig() Config {
	return Config{
		Search: SearchConfig{
			RunMode:        "both",
			Regions:        append([]string{"KR"}, ForeignPreset...),
			Language:       "ko",
			TranslateTo:    "ja",
			UseTranslation: true,

			FormFactor:     "both",
			ShortsSec:      60,
			DaysBack:       180,
			PerChannelMax:  200,
			PerKeywordMax:  200,
			StrictKeywords: true,
			KeywordMode:    "any",
		},
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "hotfinder", "config.toml")
}

// Load reads the config file, returning defaults when it does not exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config file, creating the directory as needed. The file is
// 0600: it holds the API credential.
func Save(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Delete removes the config file. A missing file is not an error.
func Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete config: %w", err)
	}
	return nil
}
