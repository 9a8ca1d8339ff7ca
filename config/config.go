package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Telegram bot.
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`

	// Google Sheets availability source.
	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	SpreadsheetID         string `mapstructure:"SPREADSHEET_ID"`
	AvailableMarker       string `mapstructure:"AVAILABLE_MARKER"`
	BookedMarker          string `mapstructure:"BOOKED_MARKER"`

	// Availability cache.
	CacheTTLSeconds      int `mapstructure:"CACHE_TTL_SECONDS"`
	SourceTimeoutSeconds int `mapstructure:"SOURCE_TIMEOUT_SECONDS"`

	// Calendar events.
	Timezone      string `mapstructure:"TIMEZONE"`
	SalonLocation string `mapstructure:"SALON_LOCATION"`

	// Admin API credentials (password stored as a bcrypt hash).
	AdminUser         string `mapstructure:"ADMIN_USER"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`
}

var AppConfig Config

// TimeslotLabels is the fixed column order of the availability sheets. Every
// specialist tab uses the same columns; column B corresponds to index 0.
var TimeslotLabels = []string{
	"8:00 - 9:00",
	"9:00 - 10:00",
	"10:00 - 11:00",
	"11:00 - 12:00",
	"12:00 - 13:00",
	"13:00 - 14:00",
	"14:00 - 15:00",
	"15:00 - 16:00",
	"16:00 - 17:00",
	"17:00 - 18:00",
	"18:00 - 19:00",
	"19:00 - 20:00",
}

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
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "beautybot")
	viper.SetDefault("GOOGLE_CREDENTIALS_FILE", "secrets/google-sheets-api.json")
	viper.SetDefault("AVAILABLE_MARKER", "x")
	viper.SetDefault("BOOKED_MARKER", "booked")
	viper.SetDefault("CACHE_TTL_SECONDS", 180)
	viper.SetDefault("SOURCE_TIMEOUT_SECONDS", 10)
	viper.SetDefault("TIMEZONE", "Europe/Kyiv")
	viper.SetDefault("SALON_LOCATION", "Saloon5")
	viper.SetDefault("ADMIN_USER", "admin")

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
