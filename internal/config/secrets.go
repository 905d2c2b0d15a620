package config

const redactedValue = "[REDACTED]"

// Redacted returns a copy of the configuration with every secret field
// replaced by a placeholder, safe to log at startup.
func (c Config) Redacted() Config {
	out := c

	redact(&out.Database.DSN)
	redact(&out.Database.Password)
	redact(&out.Redis.Password)
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)
	redact(&out.Paradex.JWT)
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)
	redact(&out.Server.APIKey)

	return out
}

func redact(s *string) {
	if *s != "" {
		*s = redactedValue
	}
}
