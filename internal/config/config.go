package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`

	// BaseURL is the public origin of the frontend; Stripe redirect URLs are
	// built against it.
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:3000"`

	// Question generator settings
	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel         string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	GeneratorTimeoutSec int    `envconfig:"GENERATOR_TIMEOUT_SEC" default:"20"`
	// MockAI forces every generation call onto the deterministic fallback
	// path, for local runs without an API key.
	MockAI bool `envconfig:"MOCK_AI" default:"false"`

	// Stripe settings
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripePricePro      string `envconfig:"STRIPE_PRICE_PRO"`

	// Rate limiting; leaving REDIS_ADDR empty disables the limiter.
	RedisAddr          string `envconfig:"REDIS_ADDR"`
	RedisPassword      string `envconfig:"REDIS_PASSWORD"`
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"20"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
