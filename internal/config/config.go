package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
//
// Notification identities (AdminEmail, SenderEmail) are injected here and
// passed to the engine at construction instead of being read from ambient
// process state at call time.
type Config struct {
	AppPort string `mapstructure:"APP_PORT"`
	Env     string `mapstructure:"ENV"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	// DynamoDB configuration.
	RequestsTable      string `mapstructure:"REQUESTS_TABLE"`
	PaymentOrdersTable string `mapstructure:"PAYMENT_ORDERS_TABLE"`
	PaymentEventsTable string `mapstructure:"PAYMENT_EVENTS_TABLE"`
	AWSRegion          string `mapstructure:"AWS_REGION"`
	DynamoDBEndpoint   string `mapstructure:"DYNAMODB_ENDPOINT"`

	// Payment gateway (Mercado Pago).
	MercadoPagoAccessToken   string `mapstructure:"MERCADOPAGO_ACCESS_TOKEN"`
	MercadoPagoWebhookSecret string `mapstructure:"MERCADOPAGO_WEBHOOK_SECRET"`
	PaymentCurrency          string `mapstructure:"PAYMENT_CURRENCY"`

	// Notification identities.
	AdminEmail  string `mapstructure:"ADMIN_EMAIL"`
	SenderEmail string `mapstructure:"SENDER_EMAIL"`
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
	viper.SetDefault("REQUESTS_TABLE", "requests")
	viper.SetDefault("PAYMENT_ORDERS_TABLE", "payment_orders")
	viper.SetDefault("PAYMENT_EVENTS_TABLE", "payment_events")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("PAYMENT_CURRENCY", "INR")
	viper.SetDefault("ADMIN_EMAIL", "admin@projectease.local")
	viper.SetDefault("SENDER_EMAIL", "no-reply@projectease.local")

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
