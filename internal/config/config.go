package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lumen-design/ldip/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Config keys understood by the toolkit.
const (
	KeyHostVersion     = "host_version"
	KeyExtensionsDir   = "extensions_dir"
	KeyCacheDir        = "cache_dir"
	KeyCloudCacheTTL   = "cloud.cache_ttl"
	KeyCloudFailures   = "cloud.failure_threshold"
	KeyCloudResetAfter = "cloud.reset_timeout"
	KeyCloudFetchLimit = "cloud.fetch_timeout"
)

// Defaults applied when a key is absent from the config file and environment.
const (
	DefaultHostVersion     = "1.0.0"
	DefaultCloudCacheTTL   = 24 * time.Hour
	DefaultCloudFailures   = 5
	DefaultCloudResetAfter = 60 * time.Second
	DefaultCloudFetchLimit = 10 * time.Second
)

// Dir returns the path to the product config directory (~/.ldip/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.ldip/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// ExtensionsDir returns the directory that holds installed extensions.
func ExtensionsDir() string {
	if dir := viper.GetString(KeyExtensionsDir); dir != "" {
		return dir
	}
	return filepath.Join(Dir(), "extensions")
}

// CacheDir returns the directory used for downloaded cloud resources.
func CacheDir() string {
	if dir := viper.GetString(KeyCacheDir); dir != "" {
		return dir
	}
	return filepath.Join(Dir(), "cache")
}

// HostVersion returns the host application version validation runs against.
func HostVersion() string {
	if v := viper.GetString(KeyHostVersion); v != "" {
		return v
	}
	return DefaultHostVersion
}

// CloudCacheTTL returns the TTL for cloud resource cache entries.
func CloudCacheTTL() time.Duration {
	if d := viper.GetDuration(KeyCloudCacheTTL); d > 0 {
		return d
	}
	return DefaultCloudCacheTTL
}

// CloudFailureThreshold returns the consecutive-failure count that opens a circuit.
func CloudFailureThreshold() int {
	if n := viper.GetInt(KeyCloudFailures); n > 0 {
		return n
	}
	return DefaultCloudFailures
}

// CloudResetTimeout returns the cooldown after which an open circuit self-heals.
func CloudResetTimeout() time.Duration {
	if d := viper.GetDuration(KeyCloudResetAfter); d > 0 {
		return d
	}
	return DefaultCloudResetAfter
}

// CloudFetchTimeout returns the per-request timeout for cloud fetches.
func CloudFetchTimeout() time.Duration {
	if d := viper.GetDuration(KeyCloudFetchLimit); d > 0 {
		return d
	}
	return DefaultCloudFetchLimit
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
