package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Stripe       StripeConfig
	OTP          OTPConfig
	Notification NotificationConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Host string
	Port string
}

type StripeConfig struct {
	SecretKey         string
	WebhookSecret     string
	Currency          string
	CommissionPercent int64
	TimeoutSeconds    int
}

type OTPConfig struct {
	ExpiryMinutes int
	Length        int
}

type NotificationConfig struct {
	Endpoint string
	APIKey   string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("STRIPE_CURRENCY", "usd")
	viper.SetDefault("COMMISSION_PERCENT", 10)
	viper.SetDefault("STRIPE_TIMEOUT_SECONDS", 15)
	viper.SetDefault("OTP_EXPIRY_MINUTES", 5)
	viper.SetDefault("OTP_LENGTH", 6)
	viper.SetDefault("LOG_PATH", "logs/")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Host: viper.GetString("REDIS_HOST"),
			Port: viper.GetString("REDIS_PORT"),
		},
		Stripe: StripeConfig{
			SecretKey:         viper.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret:     viper.GetString("STRIPE_WEBHOOK_SECRET"),
			Currency:          viper.GetString("STRIPE_CURRENCY"),
			CommissionPercent: viper.GetInt64("COMMISSION_PERCENT"),
			TimeoutSeconds:    viper.GetInt("STRIPE_TIMEOUT_SECONDS"),
		},
		OTP: OTPConfig{
			ExpiryMinutes: viper.GetInt("OTP_EXPIRY_MINUTES"),
			Length:        viper.GetInt("OTP_LENGTH"),
		},
		Notification: NotificationConfig{
			Endpoint: viper.GetString("NOTIFY_ENDPOINT"),
			APIKey:   viper.GetString("NOTIFY_API_KEY"),
		},
	}

	return config, nil
}
