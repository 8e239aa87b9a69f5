package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Env         string `mapstructure:"ENV"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDraftDB  int    `mapstructure:"REDIS_DRAFT_DB"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Stripe configuration.
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	// Booking policy. Hold/draft lifetimes and the sweep cadence are
	// deployment policy, not code constants.
	HoldTTLMinutes       int    `mapstructure:"HOLD_TTL_MINUTES"`
	DraftTTLMinutes      int    `mapstructure:"DRAFT_TTL_MINUTES"`
	SweepIntervalSeconds int    `mapstructure:"SWEEP_INTERVAL_SECONDS"`
	DefaultCurrency      string `mapstructure:"DEFAULT_CURRENCY"`
	MaxRequestsPerMin    int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// AdminToken guards the operator endpoints. Empty disables them.
	AdminToken string `mapstructure:"ADMIN_TOKEN"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DRAFT_DB", 0)
	viper.SetDefault("REDIS_CACHE_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("HOLD_TTL_MINUTES", 10)
	viper.SetDefault("DRAFT_TTL_MINUTES", 30)
	viper.SetDefault("SWEEP_INTERVAL_SECONDS", 60)
	viper.SetDefault("DEFAULT_CURRENCY", "pln")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// HoldTTL returns the configured reservation hold lifetime.
func HoldTTL() time.Duration {
	return time.Duration(AppConfig.HoldTTLMinutes) * time.Minute
}

// DraftTTL returns the configured draft session lifetime.
func DraftTTL() time.Duration {
	return time.Duration(AppConfig.DraftTTLMinutes) * time.Minute
}

// SweepInterval returns the cadence of the expired-hold sweep.
func SweepInterval() time.Duration {
	return time.Duration(AppConfig.SweepIntervalSeconds) * time.Second
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
