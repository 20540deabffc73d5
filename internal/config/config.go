package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database drivers accepted by DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseDriver      string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	EventChannelBase    string
	JWTSecret           string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CORSAllowOrigins    string
	WithdrawalLockTTL   time.Duration
	WithdrawalAttempts  int
	AcademyCodeAttempts int
	RateLimitMax        int
	RateLimitWindow     time.Duration
	Location            *time.Location
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// CloudinaryEnabled reports whether profile photos can be deleted remotely.
func (c Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ACADEMY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Academy API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("events.channel", "academy")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("withdrawal.lock_ttl", "2m")
	v.SetDefault("withdrawal.max_attempts", 3)
	v.SetDefault("academy_code.max_attempts", 10)
	v.SetDefault("rate_limit.max", 5)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("timezone", "Asia/Seoul")

	lockTTL, err := parseDuration(v, "withdrawal.lock_ttl", "2m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid withdrawal lock ttl: %w", err)
	}
	window, err := parseDuration(v, "rate_limit.window", "1m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	location, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		location = time.UTC
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseDriver:      strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		EventChannelBase:    v.GetString("events.channel"),
		JWTSecret:           v.GetString("jwt.secret"),
		CloudinaryCloudName: v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary.api_secret"),
		CORSAllowOrigins:    v.GetString("cors.origins"),
		WithdrawalLockTTL:   lockTTL,
		WithdrawalAttempts:  v.GetInt("withdrawal.max_attempts"),
		AcademyCodeAttempts: v.GetInt("academy_code.max_attempts"),
		RateLimitMax:        v.GetInt("rate_limit.max"),
		RateLimitWindow:     window,
		Location:            location,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.WithdrawalAttempts <= 0 {
		cfg.WithdrawalAttempts = 3
	}
	if cfg.AcademyCodeAttempts <= 0 {
		cfg.AcademyCodeAttempts = 10
	}
	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 5
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		raw = fallback
	}
	return time.ParseDuration(raw)
}
