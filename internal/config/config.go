package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	Env            string
	MongoURI       string
	MongoDB        string
	JWTSecret      string
	RedisAddr      string
	RedisPassword  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	AllowedOrigins []string
}

// Load reads configuration from the environment (and a local .env file if
// present). JWT_SECRET has no default: a missing secret is a startup error,
// not a silently weak deployment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		Env:            getenv("ENV", "development"),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getenv("MONGO_DB", "wishhub"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RedisAddr:      getenv("REDIS_ADDR", ""),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "wishhub-images"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		AllowedOrigins: []string{getenv("FRONTEND_ORIGIN", "http://localhost:3000")},
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	return cfg, nil
}

// Production reports whether the service runs with production hardening
// (secure cookies).
func (c *Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
