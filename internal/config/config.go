package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	AudioDir    string
	AudioPlayer []string // Command and arguments; empty disables playback
	TTSLanguage string

	AWSRegion       string
	SESFromEmail    string
	SESFromName     string
	ReportRecipient string

	AMQPURL      string
	AMQPExchange string

	SettingsKey string
	Debug       bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	// Missing .env is fine; the process environment still applies
	_ = godotenv.Load()

	return &Config{
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./vocabdrill.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		AudioDir:        getEnv("AUDIO_DIR", "./audio"),
		AudioPlayer:     strings.Fields(getEnvAllowEmpty("AUDIO_PLAYER", "mpg123 -q")),
		TTSLanguage:     getEnv("TTS_LANGUAGE", "en"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:    getEnv("SES_FROM_EMAIL", ""),
		SESFromName:     getEnv("SES_FROM_NAME", "Vocab Drill"),
		ReportRecipient: getEnv("REPORT_EMAIL", ""),
		AMQPURL:         getEnv("AMQP_URL", ""),
		AMQPExchange:    getEnv("AMQP_EXCHANGE", "vocabdrill.events"),
		SettingsKey:     getEnv("SETTINGS_KEY", "practice_settings"),
		Debug:           getBool("DEBUG", false),
	}
}

// ReportsEnabled reports whether session summaries should be e-mailed
func (c *Config) ReportsEnabled() bool {
	return c.SESFromEmail != "" && c.ReportRecipient != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty lets an explicitly empty variable override the default
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
