package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate.
type Config struct {
	ListenAddr string

	DatabaseURL string

	// JWTSecret signs access tokens. Required; the process refuses to
	// start without one.
	JWTSecret string

	// TokenTTL is how long issued access tokens stay valid.
	TokenTTL time.Duration

	// PredictionAPIURL is the external prediction endpoint that
	// generic predictions are proxied to.
	PredictionAPIURL string

	// S3 settings for audio blob storage. When S3Bucket is empty the
	// service falls back to local-disk storage under UploadDir.
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	// UploadDir is the local audio storage directory used when S3 is
	// not configured.
	UploadDir string
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		ListenAddr:       getenv("APP_LISTEN_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("APP_DATABASE_URL"),
		JWTSecret:        os.Getenv("APP_JWT_SECRET"),
		TokenTTL:         30 * time.Minute,
		PredictionAPIURL: os.Getenv("APP_PREDICTION_API_URL"),
		S3Endpoint:       os.Getenv("APP_S3_ENDPOINT"),
		S3Region:         getenv("APP_S3_REGION", "us-east-1"),
		S3Bucket:         os.Getenv("APP_S3_BUCKET"),
		S3AccessKey:      os.Getenv("APP_S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("APP_S3_SECRET_KEY"),
		UploadDir:        getenv("APP_UPLOAD_DIR", "uploads/audio"),
	}

	if v := os.Getenv("APP_TOKEN_TTL_MINUTES"); v != "" {
		if mins, err := strconv.Atoi(v); err == nil && mins > 0 {
			cfg.TokenTTL = time.Duration(mins) * time.Minute
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
