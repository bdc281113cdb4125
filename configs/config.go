package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type S3 struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}

type OpenRouter struct {
	APIKey     string
	Model      string
	ImageModel string
	BaseURL    string
}

type Config struct {
	PostgresURI           string
	RedisURI              string
	SecretKey             string
	EncryptionKey         string
	CookieName            string
	VerifyToken           string
	FrontendURL           string
	InstagramClientID     string
	InstagramClientSecret string
	InstagramRedirectURI  string
	PublishInterval       time.Duration
	PublishDelay          time.Duration
	AttemptRetentionDays  int
	OpenRouter            OpenRouter
	S3                    S3
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:           getEnv("POSTGRES_URI", ""),
		RedisURI:              getEnv("REDIS_URI", "localhost:6379"),
		SecretKey:             getEnv("SECRET_KEY", ""),
		EncryptionKey:         getEnv("ENCRYPTION_KEY", ""),
		CookieName:            getEnv("COOKIE_NAME", "instapilot_session"),
		VerifyToken:           getEnv("VERIFY_TOKEN", ""),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:5173"),
		InstagramClientID:     getEnv("INSTAGRAM_CLIENT_ID", ""),
		InstagramClientSecret: getEnv("INSTAGRAM_CLIENT_SECRET", ""),
		InstagramRedirectURI:  getEnv("INSTAGRAM_REDIRECT_URI", ""),
		PublishInterval:       getDuration("PUBLISH_INTERVAL", 600*time.Second),
		PublishDelay:          getDuration("PUBLISH_DELAY", 15*time.Second),
		AttemptRetentionDays:  getInt("ATTEMPT_RETENTION_DAYS", 30),
		OpenRouter: OpenRouter{
			APIKey:     getEnv("OPENROUTER_KEY", ""),
			Model:      getEnv("OPENROUTER_MODEL", "google/gemini-2.5-flash"),
			ImageModel: getEnv("OPENROUTER_IMAGE_MODEL", "google/gemini-2.5-flash-image-preview"),
			BaseURL:    getEnv("OPENROUTER_URL", "https://openrouter.ai/api/v1/chat/completions"),
		},
		S3: S3{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", "instapilot"),
			PublicURL: getEnv("S3_PUBLIC_URL", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default", key, value)
		return defaultValue
	}
	return parsed
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default", key, value)
		return defaultValue
	}
	return parsed
}
