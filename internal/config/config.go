package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      *AppConfig      `yaml:"app"`
	Database *DatabaseConfig `yaml:"database"`
	Redis    *RedisConfig    `yaml:"redis"`
	SMTP     *SMTPConfig     `yaml:"smtp"`
	SMS      *SMSConfig      `yaml:"sms"`
	Payment  *PaymentConfig  `yaml:"payment"`
	Maps     *MapsConfig     `yaml:"maps"`
	Storage  *StorageConfig  `yaml:"storage"`
	Worker   *WorkerConfig   `yaml:"worker"`
	Security *SecurityConfig `yaml:"security"`
	OAuth    *OAuthConfig    `yaml:"oauth"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	Port        int    `yaml:"port"`
	Host        string `yaml:"host"`
	BaseURL     string `yaml:"base_url"`
	FrontendURL string `yaml:"frontend_url"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	Currency    string `yaml:"currency"`
	MaxBodySize int64  `yaml:"max_body_size"`
}

type SecurityConfig struct {
	JWTSecret            string        `yaml:"jwt_secret"`
	JWTRefreshSecret     string        `yaml:"jwt_refresh_secret"`
	JWTAccessTokenTTL    time.Duration `yaml:"jwt_access_token_ttl"`
	JWTRefreshTokenTTL   time.Duration `yaml:"jwt_refresh_token_ttl"`
	BcryptCost           int           `yaml:"bcrypt_cost"`
	PasswordMinLength    int           `yaml:"password_min_length"`
	VerificationTokenTTL time.Duration `yaml:"verification_token_ttl"`
	ResetTokenTTL        time.Duration `yaml:"reset_token_ttl"`
	RateLimitWindow      time.Duration `yaml:"rate_limit_window"`
	RateLimitMaxRequests int           `yaml:"rate_limit_max_requests"`
	CORSAllowedOrigins   []string      `yaml:"cors_allowed_origins"`
	TrustedProxies       []string      `yaml:"trusted_proxies"`
}

func Load() (*Config, error) {
	app := loadAppConfig()
	config := &Config{
		App:      app,
		Database: loadDatabaseConfig(),
		Redis:    loadRedisConfig(),
		SMTP:     loadSMTPConfig(),
		SMS:      loadSMSConfig(),
		Payment:  loadPaymentConfig(),
		Maps:     loadMapsConfig(),
		Storage:  loadStorageConfig(),
		Worker:   loadWorkerConfig(),
		Security: loadSecurityConfig(),
		OAuth:    loadOAuthConfig(app.FrontendURL),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects configurations that would make tokens forgeable or interchangeable.
func (c *Config) Validate() error {
	if c.Security.JWTSecret == "" || c.Security.JWTRefreshSecret == "" {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be set")
	}
	if c.Security.JWTSecret == c.Security.JWTRefreshSecret {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.App.Environment == "production" {
		if c.Security.JWTSecret == defaultJWTSecret || c.Security.JWTRefreshSecret == defaultJWTRefreshSecret {
			return errors.New("default JWT secrets are not allowed in production")
		}
		if c.Payment.Stripe.SecretKey == "" || c.Payment.Stripe.WebhookSecret == "" {
			return errors.New("STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required in production")
		}
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

const (
	defaultJWTSecret        = "dev-access-secret-change-me"
	defaultJWTRefreshSecret = "dev-refresh-secret-change-me"
)

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:        getEnv("APP_NAME", "GB Travel Agency"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		Environment: getEnv("NODE_ENV", getEnv("APP_ENV", "development")),
		Port:        getEnvAsInt("PORT", 5000),
		Host:        getEnv("APP_HOST", "0.0.0.0"),
		BaseURL:     getEnv("APP_BASE_URL", "http://localhost:5000"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		Currency:    getEnv("APP_CURRENCY", "USD"),
		MaxBodySize: int64(getEnvAsInt("MAX_BODY_SIZE", 10<<20)),
	}
}

func loadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		JWTSecret:            getEnv("JWT_SECRET", defaultJWTSecret),
		JWTRefreshSecret:     getEnv("JWT_REFRESH_SECRET", defaultJWTRefreshSecret),
		JWTAccessTokenTTL:    getEnvAsDuration("JWT_ACCESS_EXPIRE", 15*time.Minute),
		JWTRefreshTokenTTL:   getEnvAsDuration("JWT_REFRESH_EXPIRE", 7*24*time.Hour),
		BcryptCost:           getEnvAsInt("BCRYPT_COST", 12),
		PasswordMinLength:    getEnvAsInt("PASSWORD_MIN_LENGTH", 6),
		VerificationTokenTTL: getEnvAsDuration("EMAIL_VERIFICATION_TTL", 24*time.Hour),
		ResetTokenTTL:        getEnvAsDuration("PASSWORD_RESET_TTL", time.Hour),
		RateLimitWindow:      getEnvAsMillis("RATE_LIMIT_WINDOW_MS", 15*time.Minute),
		RateLimitMaxRequests: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 100),
		CORSAllowedOrigins:   getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:5174"}),
		TrustedProxies:       getEnvAsSlice("TRUSTED_PROXIES", []string{}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsMillis accepts a bare millisecond count or a Go duration string.
func getEnvAsMillis(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return defaultValue
}
