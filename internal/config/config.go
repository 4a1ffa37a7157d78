// internal/config/config.go
//
// Process configuration via viper: defaults, then an optional config.yaml
// in the working directory, then WORDCLASH_-prefixed environment variables
// (e.g. WORDCLASH_PORT, WORDCLASH_STORE_DRIVER, WORDCLASH_ROOMS_IDLE_EVICTION).

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port         int    `mapstructure:"port"`
	LogLevel     string `mapstructure:"log_level"`
	ClientOrigin string `mapstructure:"client_origin"`

	Store struct {
		Driver string `mapstructure:"driver"` // "file" or "sqlite"
		Path   string `mapstructure:"path"`
	} `mapstructure:"store"`

	Rooms struct {
		DisconnectGrace time.Duration `mapstructure:"disconnect_grace"`
		IdleEviction    time.Duration `mapstructure:"idle_eviction"`
		SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	} `mapstructure:"rooms"`

	Commentary struct {
		Enabled   bool    `mapstructure:"enabled"`
		AIEnabled bool    `mapstructure:"ai_enabled"`
		AIChance  float64 `mapstructure:"ai_chance"`
		APIKey    string  `mapstructure:"api_key"`
		Model     string  `mapstructure:"model"`
		BaseURL   string  `mapstructure:"base_url"`
	} `mapstructure:"commentary"`
}

// Load reads configuration with sane defaults for every knob.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 5002)
	v.SetDefault("log_level", "info")
	v.SetDefault("client_origin", "*")
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", "game-rooms.json")
	v.SetDefault("rooms.disconnect_grace", 10*time.Minute)
	v.SetDefault("rooms.idle_eviction", 30*time.Minute)
	v.SetDefault("rooms.sweep_interval", time.Minute)
	v.SetDefault("commentary.enabled", true)
	v.SetDefault("commentary.ai_enabled", false)
	v.SetDefault("commentary.ai_chance", 0.2)
	v.SetDefault("commentary.api_key", "")
	v.SetDefault("commentary.model", "moonshot-v1-8k")
	v.SetDefault("commentary.base_url", "https://api.moonshot.cn/v1")

	v.SetEnvPrefix("WORDCLASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Store.Driver != "file" && cfg.Store.Driver != "sqlite" {
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	return &cfg, nil
}
