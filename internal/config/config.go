package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration. Malformed values never fail a load; the
// Normalize pass clamps them back to defaults.
type Config struct {
	TriggerTime  string          `yaml:"trigger_time"`
	MosaicLevel  int             `yaml:"mosaic_level"`
	Proxy        string          `yaml:"proxy"`
	DeliveryMode string          `yaml:"delivery_mode"` // html_image | plain
	CacheDir     string          `yaml:"cache_dir"`
	LogLevel     string          `yaml:"log_level"`
	Render       RenderConfig    `yaml:"render"`
	Database     DatabaseConfig  `yaml:"database"`
	Server       ServerConfig    `yaml:"server"`
	Delivery     DeliveryConfig  `yaml:"delivery"`
	Sources      map[string]bool `yaml:"sources"` // enable_<id> keys, default off
}

// RenderConfig configures the report image renderer.
type RenderConfig struct {
	Template       string `yaml:"template"`
	Endpoint       string `yaml:"endpoint"`
	SendMode       string `yaml:"send_mode"`  // file | url | base64
	ImageType      string `yaml:"image_type"` // png | jpeg
	Quality        int    `yaml:"quality"`
	FullPage       bool   `yaml:"full_page"`
	OmitBackground bool   `yaml:"omit_background"`
	TimeoutMS      int    `yaml:"timeout_ms"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DeliveryConfig configures outbound destinations.
type DeliveryConfig struct {
	WebhookURL    string `yaml:"webhook_url"`
	WebhookSecret string `yaml:"webhook_secret"`
	OutboxDir     string `yaml:"outbox_dir"`
}

// Default returns a Config with sensible defaults. Every source starts
// disabled; scraping a site is an explicit opt-in.
func Default() *Config {
	return &Config{
		TriggerTime:  "09:00",
		MosaicLevel:  60,
		DeliveryMode: "html_image",
		CacheDir:     "./cache",
		LogLevel:     "info",
		Render: RenderConfig{
			SendMode:  "base64",
			ImageType: "png",
			Quality:   85,
			FullPage:  true,
			TimeoutMS: 30000,
		},
		Database: DatabaseConfig{Path: "./hotdaily.db"},
		Server:   ServerConfig{Port: 8080},
		Delivery: DeliveryConfig{OutboxDir: "./outbox"},
		Sources:  map[string]bool{},
	}
}

// Load reads configuration from a YAML file, applies env overrides, and
// normalizes every value.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	cfg.Normalize()
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOTDAILY_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("HOTDAILY_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("HOTDAILY_WEBHOOK_URL"); v != "" {
		cfg.Delivery.WebhookURL = v
	}
}

// Normalize clamps out-of-range values back to defaults. It never reports an
// error: a bad value costs the caller nothing beyond a default.
func (c *Config) Normalize() {
	def := Default()

	if _, err := time.Parse("15:04", c.TriggerTime); err != nil {
		c.TriggerTime = def.TriggerTime
	}
	if c.MosaicLevel < 0 || c.MosaicLevel > 100 {
		c.MosaicLevel = def.MosaicLevel
	}
	if c.DeliveryMode != "html_image" && c.DeliveryMode != "plain" {
		c.DeliveryMode = def.DeliveryMode
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		c.LogLevel = def.LogLevel
	}

	switch c.Render.SendMode {
	case "file", "url", "base64":
	default:
		c.Render.SendMode = def.Render.SendMode
	}
	if c.Render.ImageType != "png" && c.Render.ImageType != "jpeg" {
		c.Render.ImageType = def.Render.ImageType
	}
	if c.Render.Quality < 10 || c.Render.Quality > 100 {
		c.Render.Quality = def.Render.Quality
	}
	if c.Render.TimeoutMS <= 0 {
		c.Render.TimeoutMS = def.Render.TimeoutMS
	}

	if c.Database.Path == "" {
		c.Database.Path = def.Database.Path
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		c.Server.Port = def.Server.Port
	}
	if c.Sources == nil {
		c.Sources = map[string]bool{}
	}
}

// SourceEnabled reports whether the `enable_<id>` switch is on. Absent keys
// are off.
func (c *Config) SourceEnabled(id string) bool {
	return c.Sources["enable_"+id]
}
