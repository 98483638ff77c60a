package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the defaults bndtool falls back to when a flag isn't
// passed explicitly.
type Config struct {
	PrimaryAlignment   uint32 `mapstructure:"primary_alignment"`
	SecondaryAlignment uint32 `mapstructure:"secondary_alignment"`
	LogLevel           string `mapstructure:"log_level"`
	LogFormat          string `mapstructure:"log_format"`
}

// Load initializes and loads configuration from file.
func Load(cfgFile string) (*Config, error) {
	// Set defaults
	viper.SetDefault("primary_alignment", 0x10)
	viper.SetDefault("secondary_alignment", 0x80)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")

	// Config file handling
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName("bndtool")
		viper.SetConfigType("yaml")
	}

	// Read config file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateAlignment(cfg.PrimaryAlignment); err != nil {
		return nil, fmt.Errorf("invalid primary_alignment: %w", err)
	}
	if err := validateAlignment(cfg.SecondaryAlignment); err != nil {
		return nil, fmt.Errorf("invalid secondary_alignment: %w", err)
	}

	return &cfg, nil
}

func validateAlignment(v uint32) error {
	if v == 0 || v > 0x8000 || v&(v-1) != 0 {
		return fmt.Errorf("%d is not a power of two no greater than 0x8000", v)
	}
	return nil
}
