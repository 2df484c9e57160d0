package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	ConfirmBaseURL  string
	MailerProvider  string
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPassword    string
	MailFrom        string
	MailFromName    string
	WatcherCron     string
	WatcherDisabled bool
	ReminderHorizon time.Duration
	ReminderDedup   time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SGE Estagio API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("mailer.provider", "smtp")
	v.SetDefault("mail.from_name", "Secretaria de Estagios")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("watcher.cron", "@hourly")
	v.SetDefault("watcher.disabled", false)
	v.SetDefault("watcher.horizon_hours", 72)
	v.SetDefault("watcher.dedup_hours", 24)

	horizonHours := v.GetInt("watcher.horizon_hours")
	if horizonHours <= 0 {
		horizonHours = 72
	}

	dedupHours := v.GetInt("watcher.dedup_hours")
	if dedupHours <= 0 {
		dedupHours = 24
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		JWTSecret:       v.GetString("jwt.secret"),
		ConfirmBaseURL:  strings.TrimRight(v.GetString("confirm.base_url"), "/"),
		MailerProvider:  strings.ToLower(v.GetString("mailer.provider")),
		SMTPHost:        v.GetString("smtp.host"),
		SMTPPort:        v.GetInt("smtp.port"),
		SMTPUser:        v.GetString("smtp.user"),
		SMTPPassword:    v.GetString("smtp.password"),
		MailFrom:        v.GetString("mail.from"),
		MailFromName:    v.GetString("mail.from_name"),
		WatcherCron:     v.GetString("watcher.cron"),
		WatcherDisabled: v.GetBool("watcher.disabled"),
		ReminderHorizon: time.Duration(horizonHours) * time.Hour,
		ReminderDedup:   time.Duration(dedupHours) * time.Hour,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MailerProvider != "smtp" && cfg.MailerProvider != "log" {
		return Config{}, fmt.Errorf("unknown mailer provider %q", cfg.MailerProvider)
	}

	if cfg.MailerProvider == "smtp" && cfg.SMTPHost == "" {
		return Config{}, fmt.Errorf("smtp host must be provided for the smtp mailer")
	}

	return cfg, nil
}
