package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	Environment string

	// question service the player fetches from
	QuestionEndpoint string
	QuestionPoolSize int
	ExcludedIDs      []string
	CacheTTL         time.Duration

	SessionIdleTimeout time.Duration
	StoreTTL           time.Duration

	// question bank lookup service
	BankFile   string
	BankIssuer string

	AllowedOrigins []string

	Casdoor CasdoorConfig
	Events  EventConfig
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

// Enabled reports whether enough of Casdoor is configured to verify tokens.
func (c CasdoorConfig) Enabled() bool {
	return c.Endpoint != "" && c.Certificate != ""
}

// LoadConfig reads .env when present and falls back to defaults.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		Environment: getEnv("ENVIRONMENT", "development"),

		QuestionEndpoint: getEnv("QUESTION_ENDPOINT", "http://localhost:8081/api/question"),
		QuestionPoolSize: getEnvInt("QUESTION_POOL_SIZE", 300),
		ExcludedIDs:      getEnvList("EXCLUDED_QUESTION_IDS", "Q238,Q277"),
		CacheTTL:         getEnvDuration("QUESTION_CACHE_TTL", 10*time.Minute),

		SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		StoreTTL:           getEnvDuration("STORE_TTL", 30*24*time.Hour),

		BankFile:   getEnv("BANK_FILE", "questions.xml"),
		BankIssuer: getEnv("BANK_TOKEN_ISSUER", ""),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", "*"),

		Casdoor: CasdoorConfig{
			Endpoint:     getEnv("CASDOOR_ENDPOINT", ""),
			ClientID:     getEnv("CASDOOR_CLIENT_ID", ""),
			ClientSecret: getEnv("CASDOOR_CLIENT_SECRET", ""),
			Certificate:  getEnv("CASDOOR_CERTIFICATE", ""),
			Organization: getEnv("CASDOOR_ORGANIZATION", ""),
			Application:  getEnv("CASDOOR_APPLICATION", ""),
		},
		Events: EventConfig{
			Enabled:        getEnvBool("EVENTS_ENABLED", true),
			Publisher:      getEnv("EVENTS_PUBLISHER", "mock"),
			KafkaBrokers:   getEnv("KAFKA_BROKERS", "localhost:9092"),
			TelemetryTopic: getEnv("TELEMETRY_TOPIC", "quiz-telemetry"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
