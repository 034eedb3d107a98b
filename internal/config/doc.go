// Package config manages the ~/.ldip/config.yaml file and environment
// overrides via Viper, and exposes typed accessors for the host version,
// install/cache directories, and cloud fetch tuning.
package config
