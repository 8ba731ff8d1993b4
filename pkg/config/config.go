package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "QUICKCART"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv             = "QUICKCART_APP_ENV"
	EnvPort               = "QUICKCART_APP_PORT"
	EnvRedisURL           = "QUICKCART_REDIS_URL"
	EnvRazorpayKeyID      = "QUICKCART_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret  = "QUICKCART_RAZORPAY_KEY_SECRET"
	EnvCashfreeClientID   = "QUICKCART_CASHFREE_CLIENT_ID"
	EnvCashfreeSecret     = "QUICKCART_CASHFREE_CLIENT_SECRET"
	EnvCashfreeWebhookKey = "QUICKCART_CASHFREE_WEBHOOK_SECRET"
	EnvMailFrom           = "QUICKCART_MAIL_FROM"
	EnvMailAdmin          = "QUICKCART_MAIL_ADMIN"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Razorpay RazorpayConfig
	Cashfree CashfreeConfig
	Mail     MailConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"QUICKCART_APP_ENV" required:"true"`
	Port         string `envconfig:"QUICKCART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"QUICKCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUICKCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"QUICKCART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"QUICKCART_REDIS_ADDR"`
	Password     string        `envconfig:"QUICKCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUICKCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUICKCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUICKCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUICKCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUICKCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUICKCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RazorpayConfig carries the popup-checkout gateway credentials. Secrets
// always come from the environment, never source literals.
type RazorpayConfig struct {
	KeyID     string `envconfig:"QUICKCART_RAZORPAY_KEY_ID" required:"true"`
	KeySecret string `envconfig:"QUICKCART_RAZORPAY_KEY_SECRET" required:"true"`
}

// CashfreeConfig carries the payment-link gateway credentials.
type CashfreeConfig struct {
	ClientID      string        `envconfig:"QUICKCART_CASHFREE_CLIENT_ID" required:"true"`
	ClientSecret  string        `envconfig:"QUICKCART_CASHFREE_CLIENT_SECRET" required:"true"`
	WebhookSecret string        `envconfig:"QUICKCART_CASHFREE_WEBHOOK_SECRET" required:"true"`
	Env           string        `envconfig:"QUICKCART_CASHFREE_ENV" default:"sandbox"`
	ReturnURL     string        `envconfig:"QUICKCART_CASHFREE_RETURN_URL"`
	Timeout       time.Duration `envconfig:"QUICKCART_CASHFREE_TIMEOUT" default:"30s"`
}

// Environment returns the normalized Cashfree environment (sandbox/production).
func (c CashfreeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(c.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type MailConfig struct {
	SMTPAddress string `envconfig:"QUICKCART_SMTP_ADDRESS" default:"smtp.gmail.com:587"`
	SMTPHost    string `envconfig:"QUICKCART_SMTP_HOST" default:"smtp.gmail.com"`
	From        string `envconfig:"QUICKCART_MAIL_FROM" required:"true"`
	Password    string `envconfig:"QUICKCART_MAIL_PASSWORD"`
	AdminEmail  string `envconfig:"QUICKCART_MAIL_ADMIN" required:"true"`
	StoreName   string `envconfig:"QUICKCART_MAIL_STORE_NAME" default:"QuickCart"`
}

type CheckoutConfig struct {
	Currency       string        `envconfig:"QUICKCART_CHECKOUT_CURRENCY" default:"INR"`
	WebhookTTL     time.Duration `envconfig:"QUICKCART_WEBHOOK_IDEMPOTENCY_TTL" default:"168h"`
	CORSOrigins    []string      `envconfig:"QUICKCART_CORS_ORIGINS"`
	SessionCartTTL time.Duration `envconfig:"QUICKCART_CART_TTL" default:"720h"`
}
