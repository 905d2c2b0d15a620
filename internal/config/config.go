// Package config defines the top-level configuration for the spread watcher
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SPREADWATCH_* environment
// variables.
type Config struct {
	Paradex     ParadexConfig     `toml:"paradex"`
	Backpack    BackpackConfig    `toml:"backpack"`
	Hyperliquid HyperliquidConfig `toml:"hyperliquid"`
	Detector    DetectorConfig    `toml:"detector"`
	Database    DatabaseConfig    `toml:"database"`
	Redis       RedisConfig       `toml:"redis"`
	S3          S3Config          `toml:"s3"`
	Server      ServerConfig      `toml:"server"`
	Notify      NotifyConfig      `toml:"notify"`
	Mode        string            `toml:"mode"`
	LogLevel    string            `toml:"log_level"`
}

// ParadexConfig holds the Paradex feed settings. Symbols may be empty, in
// which case the perpetual universe is discovered over REST. JWT enables the
// authenticated feed.
type ParadexConfig struct {
	WSURL   string   `toml:"ws_url"`
	APIURL  string   `toml:"api_url"`
	Symbols []string `toml:"symbols"`
	JWT     string   `toml:"jwt"`
	Testnet bool     `toml:"testnet"`
}

// BackpackConfig holds the Backpack feed settings. Backpack has no discovery
// endpoint for the tracked set, so symbols are required.
type BackpackConfig struct {
	WSURL   string   `toml:"ws_url"`
	Symbols []string `toml:"symbols"`
}

// HyperliquidConfig holds the Hyperliquid feed settings.
type HyperliquidConfig struct {
	WSURL   string   `toml:"ws_url"`
	APIURL  string   `toml:"api_url"`
	Symbols []string `toml:"symbols"`
	Testnet bool     `toml:"testnet"`
}

// DetectorConfig holds the spread detection parameters.
type DetectorConfig struct {
	// MinMarginPct is the minimum percentage edge before a spread is
	// recorded, e.g. 0.5 for half a percent.
	MinMarginPct float64 `toml:"min_margin_pct"`
	// PollInterval is the pause between evaluation cycles.
	PollInterval duration `toml:"poll_interval"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters for the quote cache and the
// spread signal bus. When disabled, both fan-out paths are skipped.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds cold-storage parameters for the spread archiver. When
// disabled, old rows stay in PostgreSQL.
type S3Config struct {
	Enabled         bool     `toml:"enabled"`
	Endpoint        string   `toml:"endpoint"`
	Region          string   `toml:"region"`
	Bucket          string   `toml:"bucket"`
	AccessKey       string   `toml:"access_key"`
	SecretKey       string   `toml:"secret_key"`
	UseSSL          bool     `toml:"use_ssl"`
	ForcePathStyle  bool     `toml:"force_path_style"`
	RetentionDays   int      `toml:"retention_days"`
	ArchiveInterval duration `toml:"archive_interval"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// NotifyConfig holds notification channel credentials and alert thresholds.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
	// MinDifferencePct gates alerting separately from detection so the
	// channels only see the spreads worth waking someone for.
	MinDifferencePct float64  `toml:"min_difference_pct"`
	Cooldown         duration `toml:"cooldown"`
}

// duration wraps time.Duration so the TOML decoder accepts strings like
// "30s" or "5m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Valid run modes. collect runs the feeds and the poller, serve runs only
// the read API, full runs both.
const (
	ModeFull    = "full"
	ModeCollect = "collect"
	ModeServe   = "serve"
)

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Backpack: BackpackConfig{
			Symbols: []string{"BTC_USDC_PERP", "ETH_USDC_PERP", "SOL_USDC_PERP"},
		},
		Detector: DetectorConfig{
			MinMarginPct: 0.5,
			PollInterval: duration{30 * time.Second},
		},
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "spreadwatch",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Region:          "us-east-1",
			Bucket:          "spreadwatch-data",
			ForcePathStyle:  true,
			RetentionDays:   30,
			ArchiveInterval: duration{6 * time.Hour},
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8080,
		},
		Notify: NotifyConfig{
			MinDifferencePct: 1.0,
			Cooldown:         duration{5 * time.Minute},
		},
		Mode:     ModeFull,
		LogLevel: "info",
	}
}

// Validate checks the configuration for obviously invalid or missing values
// and returns a combined error listing every problem found.
func (c *Config) Validate() error {
	var problems []string

	switch c.Mode {
	case ModeFull, ModeCollect, ModeServe:
	default:
		problems = append(problems, fmt.Sprintf("mode must be one of full, collect, serve (got %q)", c.Mode))
	}

	if c.Detector.MinMarginPct < 0 {
		problems = append(problems, "detector.min_margin_pct must not be negative")
	}
	if c.Detector.PollInterval.Duration <= 0 {
		problems = append(problems, "detector.poll_interval must be positive")
	}

	if c.Mode != ModeServe && len(c.Backpack.Symbols) == 0 {
		problems = append(problems, "backpack.symbols must not be empty")
	}

	if c.Database.DSN == "" {
		if c.Database.Host == "" {
			problems = append(problems, "database.host or database.dsn is required")
		}
		if c.Database.Database == "" {
			problems = append(problems, "database.database is required")
		}
		if c.Database.User == "" {
			problems = append(problems, "database.user is required")
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		problems = append(problems, "redis.addr is required when redis is enabled")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			problems = append(problems, "s3.bucket is required when s3 is enabled")
		}
		if c.S3.Region == "" {
			problems = append(problems, "s3.region is required when s3 is enabled")
		}
		if c.S3.RetentionDays <= 0 {
			problems = append(problems, "s3.retention_days must be positive")
		}
		if c.S3.ArchiveInterval.Duration <= 0 {
			problems = append(problems, "s3.archive_interval must be positive")
		}
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		problems = append(problems, fmt.Sprintf("server.port must be a valid port (got %d)", c.Server.Port))
	}

	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		problems = append(problems, "notify.telegram_token and notify.telegram_chat_id must be set together")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
