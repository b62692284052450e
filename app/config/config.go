package config

import (
	"os"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port        string
	FrontendURL string
	DB          PostgresConfig
	Stripe      StripeConfig
	Odds        OddsConfig
	Anthropic   AnthropicConfig
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
	Database string
}

type StripeConfig struct {
	SecretKey      string
	WebhookSecret  string
	PriceBasic     string
	PriceStandard  string
	PriceUnlimited string
}

type OddsConfig struct {
	APIKey string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        envOr("PORT", "8080"),
		FrontendURL: os.Getenv("FRONTEND_URL"),
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     envOr("POSTGRES_PORT", "5432"),
			Database: envOr("POSTGRES_DB", "fadeodds"),
		},
		Stripe: StripeConfig{
			SecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
			PriceBasic:     os.Getenv("STRIPE_PRICE_BASIC"),
			PriceStandard:  os.Getenv("STRIPE_PRICE_STANDARD"),
			PriceUnlimited: os.Getenv("STRIPE_PRICE_UNLIMITED"),
		},
		Odds: OddsConfig{
			APIKey: os.Getenv("ODDS_API_KEY"),
		},
		Anthropic: AnthropicConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-6"),
		},
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
