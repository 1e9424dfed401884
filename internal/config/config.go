package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      *AppConfig      `yaml:"app"`
	Store    *StoreConfig    `yaml:"store"`
	Database *DatabaseConfig `yaml:"database"`
	Firebase *FirebaseConfig `yaml:"firebase"`
	Redis    *RedisConfig    `yaml:"redis"`
	SMS      *SMSConfig      `yaml:"sms"`
	Security *SecurityConfig `yaml:"security"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	Port        int    `yaml:"port"`
	Host        string `yaml:"host"`
	BaseURL     string `yaml:"base_url"`
	Debug       bool   `yaml:"debug"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	LogOutput   string `yaml:"log_output"`
}

type SecurityConfig struct {
	AuthProvider             string        `yaml:"auth_provider"`
	JWTSecret                string        `yaml:"jwt_secret"`
	JWTAccessTokenTTL        time.Duration `yaml:"jwt_access_token_ttl"`
	ReviewRateLimitPerMinute int           `yaml:"review_rate_limit_per_minute"`
	CORSAllowedOrigins       []string      `yaml:"cors_allowed_origins"`
	TrustedProxies           []string      `yaml:"trusted_proxies"`
}

func Load() (*Config, error) {
	config := &Config{
		App:      loadAppConfig(),
		Store:    loadStoreConfig(),
		Database: loadDatabaseConfig(),
		Firebase: loadFirebaseConfig(),
		Redis:    loadRedisConfig(),
		SMS:      loadSMSConfig(),
		Security: loadSecurityConfig(),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Store.Provider {
	case StoreMongoDB, StoreFirestore, StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_PROVIDER %q", c.Store.Provider)
	}

	switch c.Security.AuthProvider {
	case AuthFirebase:
	case AuthJWT:
		if c.Security.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_PROVIDER=%s", AuthJWT)
		}
	default:
		return fmt.Errorf("unsupported AUTH_PROVIDER %q", c.Security.AuthProvider)
	}

	switch c.SMS.Provider {
	case SMSNone, SMSTwilio, SMSAWS:
	default:
		return fmt.Errorf("unsupported SMS_PROVIDER %q", c.SMS.Provider)
	}

	if c.Store.TxMaxAttempts < 1 {
		return fmt.Errorf("TX_MAX_ATTEMPTS must be >= 1, got %d", c.Store.TxMaxAttempts)
	}

	return nil
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:        getEnv("APP_NAME", "HunarScan"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnvAsInt("APP_PORT", 8080),
		Host:        getEnv("APP_HOST", "localhost"),
		BaseURL:     getEnv("APP_BASE_URL", ""),
		Debug:       getEnvAsBool("APP_DEBUG", true),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		LogOutput:   getEnv("LOG_OUTPUT", "stdout"),
	}
}

const (
	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

func loadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		AuthProvider:             getEnv("AUTH_PROVIDER", AuthFirebase),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		JWTAccessTokenTTL:        getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", time.Hour),
		ReviewRateLimitPerMinute: getEnvAsInt("RATE_LIMIT_REVIEWS_PER_MINUTE", 10),
		CORSAllowedOrigins:       getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:           getEnvAsSlice("TRUSTED_PROXIES", []string{}),
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

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

func IsProduction() bool {
	return getEnv("APP_ENV", "development") == "production"
}

func IsTest() bool {
	return getEnv("APP_ENV", "development") == "test"
}
