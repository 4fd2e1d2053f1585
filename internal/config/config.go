package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration values sourced from an optional YAML
// file, a .env file and environment variables, in increasing precedence.
type Config struct {
	HTTPPort         string        `yaml:"http_port"`
	DatabaseURL      string        `yaml:"database_url"`
	MQURL            string        `yaml:"rabbitmq_url"`
	MQTicketExchange string        `yaml:"rabbitmq_ticket_exchange"`
	MQTicketQueue    string        `yaml:"rabbitmq_ticket_queue"`
	RedisAddr        string        `yaml:"redis_addr"`
	RedisDB          int           `yaml:"redis_db"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	JWTSecret        string        `yaml:"jwt_secret"`
	AdminUsername    string        `yaml:"admin_username"`
	AdminPassword    string        `yaml:"admin_password"`
	CORSOrigins      []string      `yaml:"cors_origins"`
	TelegramToken    string        `yaml:"telegram_bot_token"`
	TelegramChatID   int64         `yaml:"telegram_chat_id"`
}

// Defaults returns the configuration used for local development.
func Defaults() Config {
	return Config{
		HTTPPort:         ":8080",
		DatabaseURL:      "helpdesk.db",
		MQURL:            "",
		MQTicketExchange: "ticket.events",
		MQTicketQueue:    "ticket.events.queue",
		SessionTTL:       12 * time.Hour,
		JWTSecret:        "change-me",
		AdminUsername:    "admin",
		AdminPassword:    "admin@123",
		CORSOrigins:      []string{"http://localhost:3000"},
	}
}

// Load produces a Config. path names an optional YAML file; when empty the
// HELPDESK_CONFIG variable is consulted. A missing .env file is not an error.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	cfg := Defaults()
	if path == "" {
		path = os.Getenv("HELPDESK_CONFIG")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config file %s", path)
		}
	}

	cfg.HTTPPort = getEnv("API_HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.MQURL = getEnv("RABBITMQ_URL", cfg.MQURL)
	cfg.MQTicketExchange = getEnv("RABBITMQ_TICKET_EXCHANGE", cfg.MQTicketExchange)
	cfg.MQTicketQueue = getEnv("RABBITMQ_TICKET_QUEUE", cfg.MQTicketQueue)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = MustGetInt("REDIS_DB", cfg.RedisDB)
	cfg.SessionTTL = getDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.AdminUsername = getEnv("ADMIN_USERNAME", cfg.AdminUsername)
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", cfg.TelegramToken)
	cfg.TelegramChatID = mustGetInt64("TELEGRAM_CHAT_ID", cfg.TelegramChatID)
	if v := getEnv("CORS_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// MustGetInt reads an environment variable and converts it to int with default fallback.
func MustGetInt(key string, fallback int) int {
	val := getEnv(key, "")
	if val == "" {
		return fallback
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("failed to parse %s=%q as int: %v", key, val, err)
		return fallback
	}
	return i
}

func mustGetInt64(key string, fallback int64) int64 {
	val := getEnv(key, "")
	if val == "" {
		return fallback
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		log.Printf("failed to parse %s=%q as int64: %v", key, val, err)
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s %q, defaulting to %s: %v", key, v, fallback, err)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
