// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store backends accepted by the "store" key.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds every setting shared by the formwizard commands.
type Config struct {
	Definition    string        `mapstructure:"definition"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"`
	Addr          string        `mapstructure:"addr"`
	Store         string        `mapstructure:"store"`
	SessionDir    string        `mapstructure:"session_dir"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	FirstStep     string        `mapstructure:"first_step"`

	// EncryptionKey (hex or base64, 32 bytes) seals stored sessions.
	EncryptionKey          string   `mapstructure:"encryption_key"`
	EncryptionFallbackKeys []string `mapstructure:"encryption_fallback_keys"`
	// MaskFields are regular expressions; matching form values are stored as "***".
	MaskFields []string `mapstructure:"mask_fields"`
}

var keys = []string{
	"definition", "log_level", "log_format", "addr", "store", "session_dir",
	"redis_addr", "redis_password", "redis_db", "session_ttl", "first_step",
	"encryption_key", "encryption_fallback_keys", "mask_fields",
}

// Load resolves the configuration with precedence:
// flags > FORMWIZARD_* env vars > ./formwizard.yml (or an explicit file) > defaults.
// flags may be nil; only flags whose name matches a key (with - for _) are bound.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("addr", ":8080")
	v.SetDefault("store", StoreMemory)
	v.SetDefault("session_dir", ".formwizard/sessions")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("first_step", "1")

	v.SetEnvPrefix("FORMWIZARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	if flags != nil {
		for _, key := range keys {
			if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding %s flag: %w", key, err)
				}
			}
		}
	}

	if file == "" && fileExists(ProjectPath()) {
		file = ProjectPath()
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown store backends and negative TTLs.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want %s, %s or %s)", c.Store, StoreMemory, StoreFile, StoreRedis)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("session_ttl must not be negative")
	}
	return nil
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "formwizard.yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
