package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	API         APIConfig
	Auth        AuthConfig
	Scheduling  SchedulingConfig
	Redis       RedisConfig
	WhatsApp    WhatsAppConfig
	OTEL        OTELConfig
}

// APIConfig holds the backend gateway configuration
type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// AuthConfig holds auth microservice configuration
type AuthConfig struct {
	LoginPath    string
	RefreshPath  string
	ProfilePath  string
	ExpiryMargin time.Duration
}

// SchedulingConfig holds agenda slot generation configuration. The working
// day itself (06:00 through 20:00) is fixed in the slot calculator.
type SchedulingConfig struct {
	SlotIntervalMinutes int
	LeadTimeMinutes     int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// WhatsAppConfig holds WhatsApp Cloud API configuration for appointment
// reminders
type WhatsAppConfig struct {
	Enabled       bool
	AccessToken   string
	PhoneNumberID string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Environment: getEnv("APP_ENV", "development"),
		API: APIConfig{
			BaseURL:        getEnv("IPS_API_BASE_URL", "http://localhost:3000/api"),
			TimeoutSeconds: getEnvAsInt("IPS_API_TIMEOUT_SECONDS", 30),
		},
		Auth: AuthConfig{
			LoginPath:    getEnv("AUTH_LOGIN_PATH", "/auth/login"),
			RefreshPath:  getEnv("AUTH_REFRESH_PATH", "/auth/refresh"),
			ProfilePath:  getEnv("AUTH_PROFILE_PATH", "/auth/me"),
			ExpiryMargin: time.Duration(getEnvAsInt("AUTH_EXPIRY_MARGIN_SECONDS", 60)) * time.Second,
		},
		Scheduling: SchedulingConfig{
			SlotIntervalMinutes: getEnvAsInt("SCHEDULING_SLOT_INTERVAL_MINUTES", 20),
			LeadTimeMinutes:     getEnvAsInt("SCHEDULING_LEAD_TIME_MINUTES", 60),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		WhatsApp: WhatsAppConfig{
			Enabled:       getEnvAsBool("WHATSAPP_ENABLED", false),
			AccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			PhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "ips-admin-core"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// Timeout returns the HTTP client timeout as a duration
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SlotInterval returns the slot width as a duration
func (c *SchedulingConfig) SlotInterval() time.Duration {
	return time.Duration(c.SlotIntervalMinutes) * time.Minute
}

// LeadTime returns the same-day booking buffer as a duration
func (c *SchedulingConfig) LeadTime() time.Duration {
	return time.Duration(c.LeadTimeMinutes) * time.Minute
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
