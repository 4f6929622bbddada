package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "omnis.yaml"

// Config represents the top-level omnis.yaml configuration.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	Server   ServerConfig   `yaml:"server"`
	Feed     FeedConfig     `yaml:"feed"`
	Tracking TrackingConfig `yaml:"tracking"`
	Banner   BannerConfig   `yaml:"banner"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	ListenAddr        string   `yaml:"listen_addr"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
	AllowedOrigins    []string `yaml:"allowed_origins,omitempty"`
}

// FeedConfig points at the external recommendation service.
type FeedConfig struct {
	Endpoint string        `yaml:"endpoint"`
	UserID   string        `yaml:"user_id"`
	TopK     int           `yaml:"top_k"`
	Timeout  time.Duration `yaml:"timeout"`
}

// TrackingConfig controls interaction tracking.
type TrackingConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	Timeout   time.Duration `yaml:"timeout"`
	DedupeTTL time.Duration `yaml:"dedupe_ttl"`
	RedisAddr string        `yaml:"redis_addr,omitempty"` // empty = in-memory dedupe
	LogDir    string        `yaml:"log_dir,omitempty"`    // empty = no interaction log
}

// BannerConfig holds the promotional banner timings.
type BannerConfig struct {
	InitialDelay         time.Duration `yaml:"initial_delay"`
	AutoDismiss          time.Duration `yaml:"auto_dismiss"`
	Reappear             time.Duration `yaml:"reappear"`
	SwipeThreshold       float64       `yaml:"swipe_threshold"`
	OfferID              string        `yaml:"offer_id"`
	ReappearAfterDismiss bool          `yaml:"reappear_after_dismiss"`
}

// Load reads an omnis.yaml file from disk. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the demo's defaults.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			ListenAddr:        ":8080",
			RequestsPerSecond: 10,
			Burst:             30,
			AllowedOrigins:    []string{"http://localhost:5173"},
		},
		Feed: FeedConfig{
			Endpoint: "http://localhost:8046/api/v1/recommend",
			UserID:   "USR001",
			TopK:     5,
			Timeout:  15 * time.Second,
		},
		Tracking: TrackingConfig{
			Endpoint:  "http://localhost:8046/api/v1/recommend/interaction",
			Timeout:   10 * time.Second,
			DedupeTTL: 10 * time.Minute,
			LogDir:    "logs",
		},
		Banner: BannerConfig{
			InitialDelay:   3 * time.Second,
			AutoDismiss:    30 * time.Second,
			Reappear:       60 * time.Second,
			SwipeThreshold: 50,
			OfferID:        "flexible-savings",
		},
	}
}

// ApplyEnv loads .env (if present) and overrides cfg with OMNIS_* variables.
func ApplyEnv(cfg *Config) error {
	_ = godotenv.Load()

	setString(&cfg.LogLevel, "OMNIS_LOG_LEVEL")
	setString(&cfg.Server.ListenAddr, "OMNIS_LISTEN_ADDR")
	setString(&cfg.Feed.Endpoint, "OMNIS_FEED_ENDPOINT")
	setString(&cfg.Feed.UserID, "OMNIS_FEED_USER_ID")
	setString(&cfg.Tracking.Endpoint, "OMNIS_TRACKING_ENDPOINT")
	setString(&cfg.Tracking.RedisAddr, "OMNIS_REDIS_ADDR")
	setString(&cfg.Tracking.LogDir, "OMNIS_TRACKING_LOG_DIR")

	if v := os.Getenv("OMNIS_FEED_TOP_K"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse OMNIS_FEED_TOP_K: %w", err)
		}
		cfg.Feed.TopK = n
	}

	if v := os.Getenv("OMNIS_FEED_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse OMNIS_FEED_TIMEOUT: %w", err)
		}
		cfg.Feed.Timeout = d
	}

	if v := os.Getenv("OMNIS_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse OMNIS_RATE_LIMIT_RPS: %w", err)
		}
		cfg.Server.RequestsPerSecond = f
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
