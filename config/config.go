package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Public base URL of this server; the voice platform calls back here.
	ServerBaseURL string `mapstructure:"SERVER_BASE_URL"`

	// Booking state persistence. When DATABASE_URL is set the Mongo-backed
	// repository is used instead of the JSON file.
	StateFilePath string `mapstructure:"STATE_FILE_PATH"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`

	// Redis configuration (webhook dedup cache + watchdog queue).
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB    int    `mapstructure:"REDIS_CACHE_DB"`
	RedisWatchdogDB int    `mapstructure:"REDIS_WATCHDOG_DB"`

	// Voice platform credentials.
	VapiPrivateKey    string `mapstructure:"VAPI_PRIVATE_KEY"`
	VapiAssistantID   string `mapstructure:"VAPI_ASSISTANT_ID"`
	VapiPhoneNumberID string `mapstructure:"VAPI_PHONE_NUMBER_ID"`
	VapiWebhookSecret string `mapstructure:"VAPI_WEBHOOK_SECRET"`
	VapiBaseURL       string `mapstructure:"VAPI_BASE_URL"`

	// Scraping agent credentials.
	RtrvrAPIKey   string `mapstructure:"RTRVR_API_KEY"`
	RtrvrAgentURL string `mapstructure:"RTRVR_AGENT_URL"`

	// The customer the assistant books on behalf of.
	CustomerName  string `mapstructure:"CUSTOMER_NAME"`
	CustomerPhone string `mapstructure:"CUSTOMER_PHONE"`

	// Google Calendar OAuth credentials. All three must be set for the
	// calendar step to run; otherwise it is skipped.
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRefreshToken string `mapstructure:"GOOGLE_REFRESH_TOKEN"`
	GoogleCalendarID   string `mapstructure:"GOOGLE_CALENDAR_ID"`

	// Minutes before a stuck outbound call leg is given up on.
	CallTimeoutMinutes int `mapstructure:"CALL_TIMEOUT_MINUTES"`
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
	viper.SetDefault("SERVER_BASE_URL", "http://localhost:8080")
	viper.SetDefault("STATE_FILE_PATH", "bookings.json")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_WATCHDOG_DB", 1)
	viper.SetDefault("VAPI_BASE_URL", "https://api.vapi.ai")
	viper.SetDefault("RTRVR_AGENT_URL", "https://api.rtrvr.ai/agent")
	viper.SetDefault("CUSTOMER_NAME", "User")
	viper.SetDefault("GOOGLE_CALENDAR_ID", "primary")
	viper.SetDefault("CALL_TIMEOUT_MINUTES", 10)

	// Credential keys default to empty. Unmarshal only sees keys viper knows
	// about, so env-only values are lost without a registered default.
	viper.SetDefault("VAPI_PRIVATE_KEY", "")
	viper.SetDefault("VAPI_ASSISTANT_ID", "")
	viper.SetDefault("VAPI_PHONE_NUMBER_ID", "")
	viper.SetDefault("VAPI_WEBHOOK_SECRET", "")
	viper.SetDefault("RTRVR_API_KEY", "")
	viper.SetDefault("CUSTOMER_PHONE", "")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REFRESH_TOKEN", "")

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

// RedisEnabled reports whether a Redis address has been configured. The
// webhook dedup cache and the call watchdog only start when it is.
func RedisEnabled() bool {
	return AppConfig.RedisAddr != ""
}

// CalendarConfigured reports whether all Google OAuth credentials are present.
func CalendarConfigured() bool {
	return AppConfig.GoogleClientID != "" &&
		AppConfig.GoogleClientSecret != "" &&
		AppConfig.GoogleRefreshToken != ""
}
