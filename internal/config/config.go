package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type R2Config struct {
	AccountID       string `env:"R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	Bucket          string `env:"R2_BUCKET"`
	PublicURL       string `env:"R2_PUBLIC_URL"`
}

type KieConfig struct {
	APIKey  string `env:"KIE_API_KEY"`
	BaseURL string `env:"KIE_BASE_URL" envDefault:"https://api.kie.ai"`
}

type AIGatewayConfig struct {
	APIKey  string `env:"AI_GATEWAY_API_KEY"`
	BaseURL string `env:"AI_GATEWAY_URL" envDefault:"https://ai.gateway.lovable.dev"`
}

type RunwayConfig struct {
	APIKey      string `env:"RUNWAY_API_KEY"`
	BaseURL     string `env:"RUNWAY_BASE_URL" envDefault:"https://api.dev.runwayml.com"`
	TaskBaseURL string `env:"RUNWAY_TASK_BASE_URL" envDefault:"https://api.runwayml.com"`
}

type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	SuccessURL    string `env:"STRIPE_SUCCESS_URL" envDefault:"http://localhost:5173/?session_id={CHECKOUT_SESSION_ID}"`
	CancelURL     string `env:"STRIPE_CANCEL_URL" envDefault:"http://localhost:5173/"`
	PriceStarter  string `env:"STRIPE_PRICE_STARTER"`
	PriceClassic  string `env:"STRIPE_PRICE_CLASSIC"`
	PricePremier  string `env:"STRIPE_PRICE_PREMIER"`
}

type EmailConfig struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	FromAddress  string `env:"EMAIL_FROM_ADDRESS"`
	FromName     string `env:"EMAIL_FROM_NAME" envDefault:"Vintage AI"`
}

type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabaseURL  string `env:"DATABASE_URL,required"`
	JWTSecret    string `env:"JWT_SECRET,required"`
	AllowOrigins string `env:"ALLOW_ORIGINS" envDefault:"http://localhost:5173"`

	// CronSecret protects the sweep endpoint. SweepInterval enables the
	// in-process ticker; zero leaves scheduling to an external cron.
	CronSecret     string        `env:"CRON_SECRET"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL"`
	SweepBatchSize int           `env:"SWEEP_BATCH_SIZE" envDefault:"50"`

	R2        R2Config
	Kie       KieConfig
	AIGateway AIGatewayConfig
	Runway    RunwayConfig
	Stripe    StripeConfig
	Email     EmailConfig
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PriceTable maps allowed Stripe price ids to package types. Anything
// outside this table is rejected at checkout creation.
func (c *Config) PriceTable() map[string]string {
	table := make(map[string]string)
	if c.Stripe.PriceStarter != "" {
		table[c.Stripe.PriceStarter] = "starter"
	}
	if c.Stripe.PriceClassic != "" {
		table[c.Stripe.PriceClassic] = "classic"
	}
	if c.Stripe.PricePremier != "" {
		table[c.Stripe.PricePremier] = "premier"
	}
	return table
}
