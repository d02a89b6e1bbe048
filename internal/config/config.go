// Package config loads console settings from defaults, an optional hbnb.yaml,
// HBNB_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Storage kinds.
const (
	StorageFile = "file"
	StorageDB   = "db"
)

// Config holds everything needed to open a session.
type Config struct {
	Storage    string `mapstructure:"storage"`
	FilePath   string `mapstructure:"file_path"`
	DBPath     string `mapstructure:"db_path"`
	SchemaFile string `mapstructure:"schema_file"`
	Verbose    bool   `mapstructure:"verbose"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() *Config {
	return &Config{
		Storage:  StorageFile,
		FilePath: "file.json",
		DBPath:   "hbnb.db",
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"storage": "storage",
	"file":    "file_path",
	"db":      "db_path",
	"schema":  "schema_file",
	"verbose": "verbose",
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile is an explicit config path. When empty, hbnb.yaml is
	// searched for in the working directory and the user config dir.
	ConfigFile string

	// Flags are bound over every other source when set.
	Flags *pflag.FlagSet
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("storage", def.Storage)
	v.SetDefault("file_path", def.FilePath)
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("schema_file", def.SchemaFile)
	v.SetDefault("verbose", def.Verbose)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("hbnb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := userConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("HBNB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("storage", "HBNB_TYPE_STORAGE", "HBNB_STORAGE"); err != nil {
		return nil, err
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageFile:
		if c.FilePath == "" {
			return fmt.Errorf("config: file_path is required for %s storage", StorageFile)
		}
	case StorageDB:
		if c.DBPath == "" {
			return fmt.Errorf("config: db_path is required for %s storage", StorageDB)
		}
	default:
		return fmt.Errorf("config: storage %q is invalid (must be %s or %s)", c.Storage, StorageFile, StorageDB)
	}
	return nil
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hbnb")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hbnb")
}
