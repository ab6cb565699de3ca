// Package config provides functionality for managing configuration options
// for the admin client using command-line flags, environment variables and
// an optional JSON config file.
package config

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Options holds the configuration values for the admin client.
type Options struct {
	// ServerURL is the base URL of the CRM backend.
	ServerURL string `json:"server_url"`

	// CachePath is the path of the persisted entity cache file.
	CachePath string `json:"cache_path"`

	// TokenPath is the path of the persisted bearer token file.
	TokenPath string `json:"token_path"`

	// SettingsPath is the path of the persisted UI settings file.
	SettingsPath string `json:"settings_path"`

	// RequestTimeout bounds every network operation.
	RequestTimeout time.Duration `json:"-"`

	// RequestTimeoutSeconds is the config-file form of RequestTimeout.
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`

	// LogLevel is the zap log level.
	LogLevel string `json:"log_level"`

	// Config is the path to the config file.
	Config string `json:"-"`
}

// FlagSet is the minimal flag interface Parse needs; it matches *flag.FlagSet.
type FlagSet interface {
	StringVar(p *string, name, value, usage string)
	DurationVar(p *time.Duration, name string, value time.Duration, usage string)
	Parse(args []string) error
}

// Register declares the client flags on fs with their default values.
func Register(fs FlagSet, o *Options) {
	fs.StringVar(&o.ServerURL, "url", "https://evolution-backend-flhq.onrender.com", "backend base URL")
	fs.StringVar(&o.CachePath, "cache", "evoadmin_cache.json", "path to the entity cache file")
	fs.StringVar(&o.TokenPath, "token", "evoadmin_token", "path to the bearer token file")
	fs.StringVar(&o.SettingsPath, "settings", "evoadmin_settings.json", "path to the UI settings file")
	fs.DurationVar(&o.RequestTimeout, "timeout", 15*time.Second, "network request timeout")
	fs.StringVar(&o.LogLevel, "log-level", "info", "log level: debug|info|warn|error")
	fs.StringVar(&o.Config, "config", "", "path to config file")
	fs.StringVar(&o.Config, "c", "", "path to config file (shorthand)")
}

// Parse resolves the final configuration. Flag defaults are overridden by
// the config file (if present), which is overridden by environment
// variables.
func Parse(fs FlagSet, o *Options, args []string) *Options {
	if err := fs.Parse(args); err != nil {
		log.Fatalf("error while parsing flags: %v", err)
	}

	if configPath := os.Getenv("EVOADMIN_CONFIG"); configPath != "" {
		o.Config = configPath
	}

	if o.Config != "" {
		if _, err := os.Stat(o.Config); err == nil {
			data, err := os.ReadFile(o.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, o); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
			if o.RequestTimeoutSeconds > 0 {
				o.RequestTimeout = time.Duration(o.RequestTimeoutSeconds) * time.Second
			}
		}
	}

	if url := os.Getenv("EVOADMIN_SERVER_URL"); url != "" {
		o.ServerURL = url
	}
	if cache := os.Getenv("EVOADMIN_CACHE_PATH"); cache != "" {
		o.CachePath = cache
	}
	if level := os.Getenv("EVOADMIN_LOG_LEVEL"); level != "" {
		o.LogLevel = level
	}

	return o
}
