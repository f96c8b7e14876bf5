package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Identity verification modes supported by the API.
const (
	IdentityModeGoogle   = "google"
	IdentityModeInsecure = "insecure"
)

// Config holds runtime configuration values for the activity server.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	GoogleClientID         string
	IdentityMode           string
	OpenGrantBootstrap     bool
	MaxScore               float64
	DashboardCacheTTL      time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
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
	v.SetEnvPrefix("ACTIVITY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Activity Server API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8100")
	v.SetDefault("identity.mode", IdentityModeGoogle)
	v.SetDefault("open.grant.bootstrap", false)
	v.SetDefault("max.score", 100.0)
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("cloudinary.folder", "activity/notebooks")

	ttlString := v.GetString("dashboard.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		GoogleClientID:         v.GetString("google.client_id"),
		IdentityMode:           strings.ToLower(v.GetString("identity.mode")),
		OpenGrantBootstrap:     v.GetBool("open.grant.bootstrap"),
		MaxScore:               v.GetFloat64("max.score"),
		DashboardCacheTTL:      ttl,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
	}

	switch cfg.IdentityMode {
	case IdentityModeGoogle:
		if cfg.GoogleClientID == "" {
			return Config{}, fmt.Errorf("google client id must be provided when identity mode is %q", IdentityModeGoogle)
		}
	case IdentityModeInsecure:
		// Claims are decoded without signature verification. Only valid behind
		// a proxy that already verified the credential.
	default:
		return Config{}, fmt.Errorf("unknown identity mode %q", cfg.IdentityMode)
	}

	if cfg.MaxScore <= 0 {
		cfg.MaxScore = 100
	}

	return cfg, nil
}
