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
	JWT        JWTConfig        `yaml:"jwt"`
	Holiday    HolidayConfig    `yaml:"holiday"`
	Booking    BookingConfig    `yaml:"booking"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	AdminSeed  AdminSeedConfig  `yaml:"admin_seed"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret        string `yaml:"secret"`
	Issuer        string `yaml:"issuer"`
	ExpireMinutes int    `yaml:"expire_minutes"`
}

// HolidayConfig points at the public-holiday service and controls caching.
type HolidayConfig struct {
	BaseURL        string        `yaml:"base_url"`
	CountryCode    string        `yaml:"country_code"`
	CacheTTLHours  int           `yaml:"cache_ttl_hours"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	CacheTTL       time.Duration `yaml:"-"` // Derived in Load
	Timeout        time.Duration `yaml:"-"`
}

// BookingConfig holds reservation-pipeline settings.
type BookingConfig struct {
	// Timezone interprets incoming wall-clock times. "Local" means the
	// server's own zone, matching how bookings are entered on site.
	Timezone string `yaml:"timezone"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig sizes the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// AdminSeedConfig describes the default administrator created at startup.
type AdminSeedConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
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

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.JWT.ExpireMinutes <= 0 {
		cfg.JWT.ExpireMinutes = 60
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "booking-rooms"
	}

	if cfg.Holiday.BaseURL == "" {
		cfg.Holiday.BaseURL = "https://date.nager.at"
	}
	if cfg.Holiday.CountryCode == "" {
		cfg.Holiday.CountryCode = "MX"
	}
	if cfg.Holiday.CacheTTLHours <= 0 {
		cfg.Holiday.CacheTTLHours = 12
	}
	if cfg.Holiday.TimeoutSeconds <= 0 {
		cfg.Holiday.TimeoutSeconds = 10
	}
	cfg.Holiday.CacheTTL = time.Duration(cfg.Holiday.CacheTTLHours) * time.Hour
	cfg.Holiday.Timeout = time.Duration(cfg.Holiday.TimeoutSeconds) * time.Second

	if cfg.Booking.Timezone == "" {
		cfg.Booking.Timezone = "Local"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
