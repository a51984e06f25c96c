package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Env         string `mapstructure:"ENV"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisWebhookDB int    `mapstructure:"REDIS_WEBHOOK_DB"`
	RedisTaskQueue int    `mapstructure:"REDIS_TASK_QUEUE_DB"`

	// Stripe.
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	CheckoutSuccessURL  string `mapstructure:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL   string `mapstructure:"CHECKOUT_CANCEL_URL"`
	PlatformFeePercent  int    `mapstructure:"PLATFORM_FEE_PERCENT"`
	Currency            string `mapstructure:"CURRENCY"`

	// Google Calendar OAuth.
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`

	// Microsoft Graph OAuth.
	MicrosoftClientID     string `mapstructure:"MS_CLIENT_ID"`
	MicrosoftClientSecret string `mapstructure:"MS_CLIENT_SECRET"`
	MicrosoftRedirectURL  string `mapstructure:"MS_REDIRECT_URL"`

	// Meeting room provisioner.
	MeetingAPIURL string `mapstructure:"MEETING_API_URL"`
	MeetingAPIKey string `mapstructure:"MEETING_API_KEY"`

	// SMTP for transactional email.
	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort string `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	SMTPFrom string `mapstructure:"SMTP_FROM"`

	// Scheduling engine knobs.
	SlotWindowDays         int `mapstructure:"SLOT_WINDOW_DAYS"`
	DefaultMinAdvanceHours int `mapstructure:"DEFAULT_MIN_ADVANCE_HOURS"`
	DefaultMaxAdvanceDays  int `mapstructure:"DEFAULT_MAX_ADVANCE_DAYS"`
	CalendarTimeoutSecs    int `mapstructure:"CALENDAR_TIMEOUT_SECS"`
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
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_WEBHOOK_DB", 1)
	viper.SetDefault("REDIS_TASK_QUEUE_DB", 2)
	viper.SetDefault("PLATFORM_FEE_PERCENT", 20)
	viper.SetDefault("CURRENCY", "usd")
	viper.SetDefault("SLOT_WINDOW_DAYS", 30)
	viper.SetDefault("DEFAULT_MIN_ADVANCE_HOURS", 2)
	viper.SetDefault("DEFAULT_MAX_ADVANCE_DAYS", 30)
	viper.SetDefault("CALENDAR_TIMEOUT_SECS", 4)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
