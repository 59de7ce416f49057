package config

import (
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Schedule struct {
	Enabled      bool
	Dispatch     string
	Snapshot     string
	TokenRefresh string
}

type Config struct {
	FacebookAppID         string
	FacebookAppSecret     string
	InstagramRedirectURI  string
	GraphAPIBaseURL       string
	FacebookDialogURL     string
	InstagramRefreshURL   string
	InstagramClientID     string
	InstagramClientSecret string
	InstagramAuthorizeURL string
	InstagramTokenURL     string
	InstagramGraphURL     string
	PostgresURI           string
	RedisURI              string
	FrontendURL           string
	R2                    R2
	SecretKey             string
	ServiceRoleSecret     string
	Port                  string
	Env                   string
	SentryDSN             string
	PublishMode           string
	HTTPTimeout           time.Duration
	PublishTimeout        time.Duration
	Schedule              Schedule
}

const (
	PublishModeGraph    = "graph"
	PublishModeSimulate = "simulate"
)

func LoadConfig() *Config {
	return &Config{
		FacebookAppID:         getEnv("FACEBOOK_APP_ID", ""),
		FacebookAppSecret:     getEnv("FACEBOOK_APP_SECRET", ""),
		InstagramRedirectURI:  getEnv("INSTAGRAM_REDIRECT_URI", "http://localhost:8080/auth/callback"),
		GraphAPIBaseURL:       getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v18.0"),
		FacebookDialogURL:     getEnv("FACEBOOK_DIALOG_URL", "https://www.facebook.com/v18.0/dialog/oauth"),
		InstagramRefreshURL:   getEnv("INSTAGRAM_REFRESH_URL", "https://graph.instagram.com/refresh_access_token"),
		InstagramClientID:     getEnv("INSTAGRAM_CLIENT_ID", ""),
		InstagramClientSecret: getEnv("INSTAGRAM_CLIENT_SECRET", ""),
		InstagramAuthorizeURL: getEnv("INSTAGRAM_AUTHORIZE_URL", "https://www.instagram.com/oauth/authorize"),
		InstagramTokenURL:     getEnv("INSTAGRAM_TOKEN_URL", "https://api.instagram.com/oauth/access_token"),
		InstagramGraphURL:     getEnv("INSTAGRAM_GRAPH_URL", "https://graph.instagram.com"),
		PostgresURI:           getEnv("POSTGRES_URI", ""),
		RedisURI:              getEnv("REDIS_URI", ""),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:8080"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		SecretKey:         getEnv("SECRET_KEY", ""),
		ServiceRoleSecret: getEnv("SERVICE_ROLE_SECRET", ""),
		Port:              getEnv("PORT", "3000"),
		Env:               getEnv("APP_ENV", "development"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		PublishMode:       getEnv("PUBLISH_MODE", PublishModeGraph),
		HTTPTimeout:       getDuration("HTTP_TIMEOUT", 30*time.Second),
		PublishTimeout:    getDuration("PUBLISH_TIMEOUT", 3*time.Minute),
		Schedule: Schedule{
			Enabled:      getBool("SCHEDULER_ENABLED", true),
			Dispatch:     getEnv("DISPATCH_SCHEDULE", "@every 5m"),
			Snapshot:     getEnv("SNAPSHOT_SCHEDULE", "@daily"),
			TokenRefresh: getEnv("TOKEN_REFRESH_SCHEDULE", "@every 12h"),
		},
	}
}

// HasAppCredentials reports whether the Facebook app id and secret are set.
func (c Config) HasAppCredentials() bool {
	return c.FacebookAppID != "" && c.FacebookAppSecret != ""
}

// HasInstagramCredentials reports whether the Instagram Login client id and
// secret are set.
func (c Config) HasInstagramCredentials() bool {
	return c.InstagramClientID != "" && c.InstagramClientSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
