package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Worker   WorkerConfig
	SMTP     SMTPConfig
	OpenAI   OpenAIConfig
	Scraper  ScraperConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	LogJSON     bool
	LogDebug    bool
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type WorkerConfig struct {
	// SharedSecret authenticates report-in calls and outgoing worker
	// callbacks.
	SharedSecret string
	// ManageTokenSecret signs subscription manage-links embedded in
	// digest emails.
	ManageTokenSecret string
	ManageTokenTTL    time.Duration
	// RateLimitPerDay caps new submissions per email per rolling 24h.
	RateLimitPerDay int
	// PublicBaseURL is the externally reachable base for manage links.
	PublicBaseURL string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type ScraperConfig struct {
	ResultsPerSearch int
	RecencyHours     int
	Headless         bool
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optInt := func(key string, def int) int {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return def
		}
		return n
	}
	optBool := func(key string) bool {
		v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
		return v == "1" || v == "true" || v == "yes"
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		LogJSON:     optBool("LOG_JSON"),
		LogDebug:    optBool("LOG_DEBUG"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE"),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
	}

	cfg.Worker = WorkerConfig{
		SharedSecret:      req("WORKER_SECRET"),
		ManageTokenSecret: opt("MANAGE_TOKEN_SECRET"),
		ManageTokenTTL:    time.Duration(optInt("MANAGE_TOKEN_TTL_HOURS", 72)) * time.Hour,
		RateLimitPerDay:   optInt("RATE_LIMIT_PER_DAY", 3),
		PublicBaseURL:     opt("PUBLIC_BASE_URL"),
	}

	cfg.SMTP = SMTPConfig{
		Host:     opt("SMTP_HOST"),
		Port:     opt("SMTP_PORT"),
		Username: opt("SMTP_USERNAME"),
		Password: opt("SMTP_PASSWORD"),
		From:     opt("SMTP_FROM"),
	}

	cfg.OpenAI = OpenAIConfig{
		APIKey: opt("OPENAI_API_KEY"),
		Model:  opt("OPENAI_MODEL"),
	}

	cfg.Scraper = ScraperConfig{
		ResultsPerSearch: optInt("SCRAPER_RESULTS_PER_SEARCH", 30),
		RecencyHours:     optInt("SCRAPER_RECENCY_HOURS", 72),
		Headless:         optBool("SCRAPER_HEADLESS"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}
