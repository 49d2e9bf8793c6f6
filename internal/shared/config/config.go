package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"contractai-backend/internal/shared/apperrors"
)

// Config holds the process-wide settings snapshot. It is constructed once at
// startup and passed by reference; nothing else re-reads the environment.
type Config struct {
	AppName     string
	APIPrefix   string
	Debug       bool
	Environment string
	Port        string

	DBHost      string
	DBPort      int
	DBName      string
	DBUser      string
	DBPassword  string
	DatabaseURL string

	RedisURL string

	StorageType      string
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool
	StorageLocalDir  string
	AWSRegion        string

	JWTSecret                   string
	JWTAlgorithm                string
	JWTAccessTokenExpireMinutes int

	OpenAIAPIKey    string
	AnthropicAPIKey string
	CohereAPIKey    string
	MistralAPIKey   string

	CORSOrigins []string

	LogLevel string
}

// Load reads configuration from environment variables with hard-coded
// defaults. Variable names are case-sensitive; a local .env file is read
// best-effort first. The only failure mode is a production environment with
// an empty JWT secret.
func Load() (Config, error) {
	loadEnvFiles(".env")

	cfg := Config{
		AppName:     getEnv("APP_NAME", "DocMatrix ContractAI"),
		APIPrefix:   getEnv("API_PREFIX", "/api"),
		Debug:       getEnvBool("DEBUG", false),
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),

		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnvInt("DB_PORT", 5432),
		DBName:      getEnv("DB_NAME", "contractai"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		StorageType:      normalizeStorageType(getEnv("STORAGE_TYPE", "local")),
		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", ""),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", ""),
		StorageBucket:    getEnv("STORAGE_BUCKET", "contractai"),
		StorageUseSSL:    getEnvBool("STORAGE_USE_SSL", false),
		StorageLocalDir:  getEnv("STORAGE_LOCAL_DIR", "./uploads"),
		AWSRegion:        getEnv("AWS_REGION", ""),

		JWTSecret:                   getEnv("JWT_SECRET", ""),
		JWTAlgorithm:                getEnv("JWT_ALGORITHM", "HS256"),
		JWTAccessTokenExpireMinutes: getEnvInt("JWT_ACCESS_TOKEN_EXPIRE_MINUTES", 30),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		CohereAPIKey:    getEnv("COHERE_API_KEY", ""),
		MistralAPIKey:   getEnv("MISTRAL_API_KEY", ""),

		CORSOrigins: splitAndTrim(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = assembleDatabaseURL(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}

	if cfg.Environment == "production" && cfg.JWTSecret == "" {
		return Config{}, apperrors.Configuration(
			"JWT_SECRET must be set in production environment",
			map[string]any{"environment": cfg.Environment},
		)
	}

	return cfg, nil
}

// assembleDatabaseURL derives the connection URL from DB_* parts. Credentials
// are included only when both user and password are present.
func assembleDatabaseURL(user, password, host string, port int, name string) string {
	if user != "" && password != "" {
		return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s", user, password, host, port, name)
	}
	return fmt.Sprintf("postgresql://%s:%d/%s", host, port, name)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeStorageType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "minio":
		return "minio"
	case "azure":
		return "azure"
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
