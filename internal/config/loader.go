package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SPREADWATCH_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// callers should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env if present, silently ignore when missing.
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SPREADWATCH_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Paradex.WSURL, "SPREADWATCH_PARADEX_WS_URL")
	setStr(&cfg.Paradex.APIURL, "SPREADWATCH_PARADEX_API_URL")
	setStringSlice(&cfg.Paradex.Symbols, "SPREADWATCH_PARADEX_SYMBOLS")
	setStr(&cfg.Paradex.JWT, "SPREADWATCH_PARADEX_JWT")
	setBool(&cfg.Paradex.Testnet, "SPREADWATCH_PARADEX_TESTNET")

	setStr(&cfg.Backpack.WSURL, "SPREADWATCH_BACKPACK_WS_URL")
	setStringSlice(&cfg.Backpack.Symbols, "SPREADWATCH_BACKPACK_SYMBOLS")

	setStr(&cfg.Hyperliquid.WSURL, "SPREADWATCH_HYPERLIQUID_WS_URL")
	setStr(&cfg.Hyperliquid.APIURL, "SPREADWATCH_HYPERLIQUID_API_URL")
	setStringSlice(&cfg.Hyperliquid.Symbols, "SPREADWATCH_HYPERLIQUID_SYMBOLS")
	setBool(&cfg.Hyperliquid.Testnet, "SPREADWATCH_HYPERLIQUID_TESTNET")

	setFloat64(&cfg.Detector.MinMarginPct, "SPREADWATCH_DETECTOR_MIN_MARGIN_PCT")
	setDuration(&cfg.Detector.PollInterval, "SPREADWATCH_DETECTOR_POLL_INTERVAL")

	setStr(&cfg.Database.DSN, "SPREADWATCH_DATABASE_DSN")
	setStr(&cfg.Database.Host, "SPREADWATCH_DATABASE_HOST")
	setInt(&cfg.Database.Port, "SPREADWATCH_DATABASE_PORT")
	setStr(&cfg.Database.Database, "SPREADWATCH_DATABASE_DATABASE")
	setStr(&cfg.Database.User, "SPREADWATCH_DATABASE_USER")
	setStr(&cfg.Database.Password, "SPREADWATCH_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "SPREADWATCH_DATABASE_SSL_MODE")
	setInt(&cfg.Database.PoolMaxConns, "SPREADWATCH_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "SPREADWATCH_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "SPREADWATCH_DATABASE_RUN_MIGRATIONS")

	setBool(&cfg.Redis.Enabled, "SPREADWATCH_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SPREADWATCH_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SPREADWATCH_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SPREADWATCH_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SPREADWATCH_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SPREADWATCH_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SPREADWATCH_REDIS_TLS_ENABLED")

	setBool(&cfg.S3.Enabled, "SPREADWATCH_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "SPREADWATCH_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SPREADWATCH_S3_REGION")
	setStr(&cfg.S3.Bucket, "SPREADWATCH_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SPREADWATCH_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SPREADWATCH_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SPREADWATCH_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SPREADWATCH_S3_FORCE_PATH_STYLE")
	setInt(&cfg.S3.RetentionDays, "SPREADWATCH_S3_RETENTION_DAYS")
	setDuration(&cfg.S3.ArchiveInterval, "SPREADWATCH_S3_ARCHIVE_INTERVAL")

	setBool(&cfg.Server.Enabled, "SPREADWATCH_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SPREADWATCH_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SPREADWATCH_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "SPREADWATCH_SERVER_API_KEY")

	setStr(&cfg.Notify.TelegramToken, "SPREADWATCH_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SPREADWATCH_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SPREADWATCH_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SPREADWATCH_NOTIFY_EVENTS")
	setFloat64(&cfg.Notify.MinDifferencePct, "SPREADWATCH_NOTIFY_MIN_DIFFERENCE_PCT")
	setDuration(&cfg.Notify.Cooldown, "SPREADWATCH_NOTIFY_COOLDOWN")

	setStr(&cfg.Mode, "SPREADWATCH_MODE")
	setStr(&cfg.LogLevel, "SPREADWATCH_LOG_LEVEL")
}

// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
