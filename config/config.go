package config

import (
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" envPrefix:"SERVER_"`
	Database   DatabaseConfig   `yaml:"database" envPrefix:"DATABASE_"`
	Auth       AuthConfig       `yaml:"auth" envPrefix:"AUTH_"`
	Storage    StorageConfig    `yaml:"storage" envPrefix:"STORAGE_"`
	Inventory  InventoryConfig  `yaml:"inventory" envPrefix:"INVENTORY_"`
	Push       PushConfig       `yaml:"push" envPrefix:"PUSH_"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool" envPrefix:"WORKER_POOL_"`
	Log        LogConfig        `yaml:"log" envPrefix:"LOG_"`
	Bootstrap  BootstrapConfig  `yaml:"bootstrap" envPrefix:"BOOTSTRAP_"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port              int     `yaml:"port" env:"PORT"`
	RateLimitPerSec   float64 `yaml:"rate_limit_per_sec" env:"RATE_LIMIT_PER_SEC"`
	RateLimitBurst    int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	MaxUploadMB       int64   `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
	ShutdownTimeoutMS int     `yaml:"shutdown_timeout_ms" env:"SHUTDOWN_TIMEOUT_MS"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver" env:"DRIVER"` // postgres or sqlite
	DSN                    string `yaml:"dsn" env:"DSN"`
	MaxOpenConns           int    `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns           int    `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes" env:"CONN_MAX_LIFETIME_MINUTES"`
	LogSQL                 bool   `yaml:"log_sql" env:"LOG_SQL"`
}

// AuthConfig configures access token signing.
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTLMinutes int           `yaml:"token_ttl_minutes" env:"TOKEN_TTL_MINUTES"`
	TokenTTL        time.Duration `yaml:"-"`
}

// StorageConfig configures where uploaded action images are written.
type StorageConfig struct {
	BasePath string `yaml:"base_path" env:"BASE_PATH"`
	ImageDir string `yaml:"image_dir" env:"IMAGE_DIR"`
}

// InventoryConfig holds stock alerting settings.
type InventoryConfig struct {
	LowStockThreshold int `yaml:"low_stock_threshold" env:"LOW_STOCK_THRESHOLD"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key" env:"VAPID_PUBLIC_KEY"`
	PrivateKey string `yaml:"vapid_private_key" env:"VAPID_PRIVATE_KEY"`
	Subject    string `yaml:"subject" env:"SUBJECT"`
	TTL        int    `yaml:"ttl" env:"TTL"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size" env:"SIZE"`
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// BootstrapConfig describes the administrator created on an empty user table.
type BootstrapConfig struct {
	AdminName     string `yaml:"admin_name" env:"ADMIN_NAME"`
	AdminEmail    string `yaml:"admin_email" env:"ADMIN_EMAIL"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD"`
}

// Load reads the configuration from the given path, then applies environment overrides.
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

	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 20
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 16
	}
	if cfg.Server.ShutdownTimeoutMS <= 0 {
		cfg.Server.ShutdownTimeoutMS = 5000
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Auth.TokenTTLMinutes <= 0 {
		cfg.Auth.TokenTTLMinutes = 12 * 60
	}
	cfg.Auth.TokenTTL = time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute

	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = "./storage"
	}
	if cfg.Storage.ImageDir == "" {
		cfg.Storage.ImageDir = "action_images"
	}

	if cfg.Inventory.LowStockThreshold <= 0 {
		cfg.Inventory.LowStockThreshold = 5
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}
