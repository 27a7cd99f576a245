// Package config handles bosun configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Environment variables (BOSUN_*)
//  2. Config file (~/.config/bosun/config.yaml)
//  3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/harborview/bosun/internal/paths"
)

const (
	// DefaultEnvFile is the name of the root configuration file.
	DefaultEnvFile = ".env"
	// DefaultShell interprets command lines passed to `bosun run`.
	DefaultShell = "sh"
	// DefaultGracePeriod is how long a stopping service gets between
	// SIGTERM and SIGKILL, in seconds.
	DefaultGracePeriod = 5
)

// Config holds the bosun configuration.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from all sources.
func Load() *Config {
	v := viper.New()

	v.SetDefault("env.file", DefaultEnvFile)
	v.SetDefault("env.strict", false)
	v.SetDefault("run.shell", DefaultShell)
	v.SetDefault("service.grace_period", DefaultGracePeriod)
	v.SetDefault("warn.local_env", true)

	if configDir, err := paths.ConfigRoot(); err == nil {
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("BOSUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found, but warn on other errors)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}

	return &Config{v: v}
}

// Get returns a configuration value.
func (c *Config) Get(key string) any {
	return c.v.Get(key)
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetBool returns a configuration value as bool.
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// Set sets a configuration value and persists it.
func (c *Config) Set(key string, value any) error {
	c.v.Set(key, value)

	configDir, err := paths.ConfigRoot()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	return c.v.WriteConfigAs(filepath.Join(configDir, "config.yaml"))
}

// All returns all configuration as a flat dot-keyed map.
func (c *Config) All() map[string]any {
	settings := make(map[string]any)
	for _, key := range c.v.AllKeys() {
		settings[key] = c.v.Get(key)
	}

	return settings
}

// EnvFile returns the configured root env file name.
func (c *Config) EnvFile() string {
	return c.GetString("env.file")
}

// StrictEnv reports whether malformed env file lines are fatal.
func (c *Config) StrictEnv() bool {
	return c.GetBool("env.strict")
}

// Shell returns the shell used to interpret command lines.
func (c *Config) Shell() string {
	return c.GetString("run.shell")
}

// GracePeriod returns the stop grace period for managed services.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.v.GetInt("service.grace_period")) * time.Second
}

// WarnLocalEnv reports whether the local-.env drift warning is enabled.
func (c *Config) WarnLocalEnv() bool {
	return c.GetBool("warn.local_env")
}
