package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/what-go/what/pkg/logger"
)

const envPrefix = "WHAT"

// settings is the resolved command configuration. Values come from flags,
// WHAT_* environment variables and the config file, in that order.
type settings struct {
	ShowTags          bool   `mapstructure:"tags"`
	Rarity            string `mapstructure:"rarity"`
	Include           string `mapstructure:"include"`
	Exclude           string `mapstructure:"exclude"`
	OnlyText          bool   `mapstructure:"only-text"`
	DisableBorderless bool   `mapstructure:"disable-borderless"`
	AllowDuplicates   bool   `mapstructure:"allow-duplicates"`
	Pcap              bool   `mapstructure:"pcap"`
	Format            string `mapstructure:"format"`
	Key               string `mapstructure:"key"`
	Reverse           bool   `mapstructure:"reverse"`
	Generate          string `mapstructure:"generate"`
	Catalog           string `mapstructure:"catalog"`
	Extract           string `mapstructure:"extract"`
	MaxDepth          int    `mapstructure:"max-depth"`
	Gitignore         bool   `mapstructure:"gitignore"`
	KeepGoing         bool   `mapstructure:"keep-going"`
	Color             string `mapstructure:"color"`
	Verbose           bool   `mapstructure:"verbose"`
	Quiet             bool   `mapstructure:"quiet"`
}

// initConfig wires environment variables and the optional config file into v.
// An explicit cfgFile must exist; the default locations are optional.
func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return nil
	}

	v.SetConfigName(".what")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func loadSettings(v *viper.Viper) (*settings, error) {
	var cfg settings
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *settings) validate() error {
	s.Format = strings.ToLower(s.Format)
	if !slices.Contains(formats, s.Format) {
		return fmt.Errorf("invalid format %q (supported: %s)", s.Format, strings.Join(formats, ", "))
	}
	s.Key = strings.ToLower(s.Key)
	if !slices.Contains(sortKeys, s.Key) {
		return fmt.Errorf("unsupported sorting key %q (supported: %s)", s.Key, strings.Join(sortKeys, ", "))
	}
	switch s.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode %q (supported: auto, always, never)", s.Color)
	}
	if s.MaxDepth < 0 {
		return fmt.Errorf("max-depth must not be negative")
	}
	return nil
}

func (s *settings) logLevel() logger.Level {
	switch {
	case s.Quiet:
		return logger.LevelError
	case s.Verbose:
		return logger.LevelDebug
	default:
		return logger.LevelWarn
	}
}
