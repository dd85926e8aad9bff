package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Agent      AgentConfig      `yaml:"agent"`
	Warehouse  WarehouseConfig  `yaml:"warehouse"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications. Notifications
// are only sent when Enabled is set.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the document store server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// AgentConfig configures one terminal's sync engine and its local API.
type AgentConfig struct {
	ServerURL        string        `yaml:"server_url"`
	Dataset          string        `yaml:"dataset"`
	ListenPort       int           `yaml:"listen_port"`
	HTTPProxy        string        `yaml:"http_proxy"`
	PullIntervalMs   int           `yaml:"pull_interval_ms"`
	DebounceMs       int           `yaml:"debounce_ms"`
	RequestTimeoutMs int           `yaml:"request_timeout_ms"`
	PullInterval     time.Duration `yaml:"-"`
	Debounce         time.Duration `yaml:"-"`
	RequestTimeout   time.Duration `yaml:"-"`
}

// WarehouseConfig is the dock vocabulary edits are validated against. An
// empty list disables that check.
type WarehouseConfig struct {
	LoadingDoors []string `yaml:"loading_doors"`
	Routes       []string `yaml:"routes"`
	StagingDoors []string `yaml:"staging_doors"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 20
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 2
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "badger.db"
	}

	if cfg.Agent.ServerURL == "" {
		cfg.Agent.ServerURL = "http://localhost:8080"
	}
	if cfg.Agent.ListenPort <= 0 {
		cfg.Agent.ListenPort = 8081
	}
	if cfg.Agent.PullIntervalMs <= 0 {
		cfg.Agent.PullIntervalMs = 5000
	}
	cfg.Agent.PullInterval = time.Duration(cfg.Agent.PullIntervalMs) * time.Millisecond
	if cfg.Agent.DebounceMs <= 0 {
		cfg.Agent.DebounceMs = 1000
	}
	cfg.Agent.Debounce = time.Duration(cfg.Agent.DebounceMs) * time.Millisecond
	if cfg.Agent.RequestTimeoutMs <= 0 {
		cfg.Agent.RequestTimeoutMs = 10000
	}
	cfg.Agent.RequestTimeout = time.Duration(cfg.Agent.RequestTimeoutMs) * time.Millisecond

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}
