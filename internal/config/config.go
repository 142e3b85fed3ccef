package config

import (
	"fmt"
	"net/url"
	"time"

	"valence/internal/components/configutil"
	"valence/internal/components/db"
	"valence/internal/components/telemetry"
)

const ConfigName = "d2l.json5"

type Redis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type Config struct {
	// BaseUrl is the LMS origin, eg. https://learn.example.edu
	BaseUrl string `json:"base_url"`
	// Cookies are the session cookies exported from an authenticated
	// browser session, keyed by cookie name.
	Cookies map[string]string `json:"cookies"`
	// UserAgent is sent with every request, it should match the browser
	// the cookies were exported from.
	UserAgent string `json:"user_agent"`
	// Timezone overrides the timezone scraped from the LMS.
	Timezone string `json:"timezone"`

	Cache db.Config `json:"cache"`
	// Redis, when Addr is set, replaces the database backed cache store.
	Redis Redis `json:"redis"`

	LogLevel  string               `json:"log_level"`
	LogFormat string               `json:"log_format"`
	Otlp      telemetry.OtlpConfig `json:"otlp"`
	Daemon    Daemon               `json:"daemon"`
}

type Daemon struct {
	// PreloadCron is a cron expression for periodic preloads.
	PreloadCron string `json:"preload_cron"`
}

func Default() Config {
	return Config{
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		Cache: db.Config{
			File: ".valence/cache.db",
		},
		LogLevel:  "info",
		LogFormat: "text",
		Daemon: Daemon{
			PreloadCron: "@every 30m",
		},
	}
}

// Load reads d2l.json5 (and d2l.local.json5) from the cwd or one of its
// parents, filling unset fields with Default.
func Load() (Config, error) {
	cfg, err := configutil.ReadRecursively[Config](ConfigName)
	if err != nil {
		return Config{}, err
	}
	return WithDefaults(cfg), nil
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil {
		return Config{}, err
	}
	return WithDefaults(cfg), nil
}

func WithDefaults(cfg Config) Config {
	def := Default()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Cache.File == "" && cfg.Cache.Url == "" {
		cfg.Cache = def.Cache
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = def.LogFormat
	}
	if cfg.Daemon.PreloadCron == "" {
		cfg.Daemon.PreloadCron = def.Daemon.PreloadCron
	}
	return cfg
}

func (c Config) Validate() error {
	if c.BaseUrl == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(c.BaseUrl)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http(s), got '%s'", c.BaseUrl)
	}
	if len(c.Cookies) == 0 {
		return fmt.Errorf("no session cookies configured")
	}
	if c.Timezone != "" {
		_, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
	}
	return nil
}
