// Package config loads gtoken settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultAPIURL is the public gallery JSON API endpoint.
const DefaultAPIURL = "https://api.e-hentai.org/api.php"

// Config holds application configuration.
type Config struct {
	API      APIConfig
	Database DatabaseConfig
	Log      LogConfig
	UI       UIConfig
}

// APIConfig holds gallery API settings.
type APIConfig struct {
	URL       string
	Timeout   time.Duration
	UserAgent string `mapstructure:"user_agent"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LogConfig holds log file settings.
type LogConfig struct {
	Path  string
	Level string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Locale  string
	Animate bool
}

// Load reads configuration from file and env. Env var overrides use prefix GTOKEN_.
// An explicit path wins over GTOKEN_CONFIG, which wins over ~/.config/gtoken/config.toml.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("GTOKEN_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(homeDir(), ".config", "gtoken"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("GTOKEN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing default file is fine; a missing explicit file is not.
		if !errors.As(err, &notFound) || path != "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.API.Timeout <= 0 {
		return Config{}, fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	return c, nil
}

// Default returns the configuration used when no file or env override exists.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

func setDefaults(v *viper.Viper) {
	base := filepath.Join(homeDir(), ".gtoken")

	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("api.timeout", "20s")
	v.SetDefault("api.user_agent", "gtoken/"+Version)
	v.SetDefault("database.path", filepath.Join(base, "gtoken.db"))
	v.SetDefault("log.path", filepath.Join(base, "gtoken.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.locale", "en")
	v.SetDefault("ui.animate", true)
}

func homeDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return dir
}
