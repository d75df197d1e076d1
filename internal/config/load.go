// Package config initializes viper-backed configuration for scanctl.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load initializes the configuration from file and environment
// variables. cfgFile overrides the search path when set via --config.
func Load(cfgFile string) {
	// explicit .env loading; a missing file is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "scanctl"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("SCANCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("server.url", "http://localhost:8000")
	viper.SetDefault("lang", "en")
	viper.SetDefault("timeout", 30)
	viper.SetDefault("verbose", false)
	viper.SetDefault("watch.interval", 3)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ServerURL returns the backend base URL.
func ServerURL() string { return viper.GetString("server.url") }

// Lang returns the configured UI locale ("en" or "ru").
func Lang() string { return viper.GetString("lang") }

// Timeout returns the per-request HTTP timeout.
func Timeout() time.Duration { return time.Duration(viper.GetInt("timeout")) * time.Second }

// WatchInterval returns the poll interval for scan watching.
func WatchInterval() time.Duration {
	return time.Duration(viper.GetInt("watch.interval")) * time.Second
}

// HistoryPath returns the scan status cache location. Configurable so
// tests and sandboxed runs can point it elsewhere.
func HistoryPath() (string, error) {
	if p := viper.GetString("history.path"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "scanctl", "history.db"), nil
}
