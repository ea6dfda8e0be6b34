package config

import "time"

type PaymentConfig struct {
	Stripe         *StripeConfig `yaml:"stripe"`
	Currency       string        `yaml:"currency"`
	CheckoutExpiry time.Duration `yaml:"checkout_expiry"`
}

type StripeConfig struct {
	PublishableKey string `yaml:"publishable_key"`
	SecretKey      string `yaml:"secret_key"`
	WebhookSecret  string `yaml:"webhook_secret"`
}

func loadPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		Stripe: &StripeConfig{
			PublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
			SecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Currency:       getEnv("PAYMENT_CURRENCY", "usd"),
		CheckoutExpiry: getEnvAsDuration("STRIPE_CHECKOUT_EXPIRY", 30*time.Minute),
	}
}
