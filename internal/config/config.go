package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the storefront needs at startup.
type Config struct {
	AppPort string
	AppEnv  string

	DBDriver    string
	DatabaseDSN string
	RedisURL    string
	RabbitMQURL string
	JWTSecret   string

	CartTTL   time.Duration
	RateLimit RateLimitConfig
	Pricing   PricingConfig
	EmailJS   EmailJSConfig
	Storage   StorageConfig
	Proxy     ProxyConfig

	APIRatePerMinute int
	APIRateBurst     int
}

// RateLimitConfig configures order-submission throttling.
type RateLimitConfig struct {
	MaxAttempts   int
	Window        time.Duration
	SweepOnCheck  bool
	SweepInterval time.Duration
	FailOpen      bool
	Timeout       time.Duration
}

// PricingConfig configures shipping and tax.
type PricingConfig struct {
	FreeShippingThreshold float64
	FlatShippingFee       float64
	TaxRate               float64
}

// EmailJSConfig holds the transactional e-mail credentials.
type EmailJSConfig struct {
	ServiceID            string
	ContactTemplateID    string
	OrderTemplateID      string
	PublicKey            string
	PrivateKey           string
	APIURL               string
	Timeout              time.Duration
	ContactRecipientName string
}

// StorageConfig points image uploads at an S3-compatible bucket.
type StorageConfig struct {
	Bucket        string
	PublicBaseURL string
	Region        string
	Endpoint      string
}

// ProxyConfig decides whether X-Forwarded-For names the client. Trust stays off
// unless the service runs behind a proxy that overwrites the header.
// With TrustedProxies set, the header is only read on requests from those
// addresses or CIDR ranges.
type ProxyConfig struct {
	Trust          bool
	TrustedProxies []string
}

// Load reads configuration from an optional .env file and the environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		AppPort:     v.GetString("APP_PORT"),
		AppEnv:      v.GetString("APP_ENV"),
		DBDriver:    v.GetString("DB_DRIVER"),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		RedisURL:    v.GetString("REDIS_URL"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		CartTTL:     v.GetDuration("CART_TTL"),
		RateLimit: RateLimitConfig{
			MaxAttempts:   v.GetInt("RATE_LIMIT_MAX_ATTEMPTS"),
			Window:        v.GetDuration("RATE_LIMIT_WINDOW"),
			SweepOnCheck:  v.GetBool("RATE_LIMIT_SWEEP_ON_CHECK"),
			SweepInterval: v.GetDuration("RATE_LIMIT_SWEEP_INTERVAL"),
			FailOpen:      v.GetBool("RATE_LIMIT_FAIL_OPEN"),
			Timeout:       v.GetDuration("RATE_LIMIT_TIMEOUT"),
		},
		Pricing: PricingConfig{
			FreeShippingThreshold: v.GetFloat64("FREE_SHIPPING_THRESHOLD"),
			FlatShippingFee:       v.GetFloat64("FLAT_SHIPPING_FEE"),
			TaxRate:               v.GetFloat64("TAX_RATE"),
		},
		EmailJS: EmailJSConfig{
			ServiceID:            v.GetString("EMAILJS_SERVICE_ID"),
			ContactTemplateID:    v.GetString("EMAILJS_TEMPLATE_ID"),
			OrderTemplateID:      v.GetString("EMAILJS_ORDER_TEMPLATE_ID"),
			PublicKey:            v.GetString("EMAILJS_PUBLIC_KEY"),
			PrivateKey:           v.GetString("EMAILJS_PRIVATE_KEY"),
			APIURL:               v.GetString("EMAILJS_API_URL"),
			Timeout:              v.GetDuration("EMAILJS_TIMEOUT"),
			ContactRecipientName: v.GetString("CONTACT_RECIPIENT_NAME"),
		},
		Storage: StorageConfig{
			Bucket:        v.GetString("S3_BUCKET"),
			PublicBaseURL: v.GetString("S3_PUBLIC_BASE_URL"),
			Region:        v.GetString("AWS_REGION"),
			Endpoint:      v.GetString("AWS_ENDPOINT"),
		},
		Proxy: ProxyConfig{
			Trust:          v.GetBool("TRUST_PROXY"),
			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		},
		APIRatePerMinute: v.GetInt("API_RATE_PER_MINUTE"),
		APIRateBurst:     v.GetInt("API_RATE_BURST"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "storefront.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("CART_TTL", "720h")

	v.SetDefault("RATE_LIMIT_MAX_ATTEMPTS", 5)
	v.SetDefault("RATE_LIMIT_WINDOW", "1h")
	v.SetDefault("RATE_LIMIT_SWEEP_ON_CHECK", true)
	v.SetDefault("RATE_LIMIT_SWEEP_INTERVAL", "0s")
	v.SetDefault("RATE_LIMIT_FAIL_OPEN", false)
	v.SetDefault("RATE_LIMIT_TIMEOUT", "3s")

	v.SetDefault("FREE_SHIPPING_THRESHOLD", 5000)
	v.SetDefault("FLAT_SHIPPING_FEE", 250)
	v.SetDefault("TAX_RATE", 0.12)

	v.SetDefault("EMAILJS_SERVICE_ID", "")
	v.SetDefault("EMAILJS_TEMPLATE_ID", "")
	v.SetDefault("EMAILJS_ORDER_TEMPLATE_ID", "")
	v.SetDefault("EMAILJS_PUBLIC_KEY", "")
	v.SetDefault("EMAILJS_PRIVATE_KEY", "")
	v.SetDefault("EMAILJS_API_URL", "https://api.emailjs.com/api/v1.0/email/send")
	v.SetDefault("EMAILJS_TIMEOUT", "10s")
	v.SetDefault("CONTACT_RECIPIENT_NAME", "Customer Support")

	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_PUBLIC_BASE_URL", "")
	v.SetDefault("AWS_REGION", "")
	v.SetDefault("AWS_ENDPOINT", "")

	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("TRUSTED_PROXIES", "")

	v.SetDefault("API_RATE_PER_MINUTE", 100)
	v.SetDefault("API_RATE_BURST", 50)
}

// splitList parses a comma separated setting, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects settings the services cannot run with.
func (c Config) Validate() error {
	if c.RateLimit.MaxAttempts < 1 {
		return fmt.Errorf("RATE_LIMIT_MAX_ATTEMPTS must be at least 1, got %d", c.RateLimit.MaxAttempts)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimit.Window)
	}
	if c.RateLimit.Timeout <= 0 {
		return fmt.Errorf("RATE_LIMIT_TIMEOUT must be positive, got %s", c.RateLimit.Timeout)
	}
	if c.Pricing.TaxRate < 0 || c.Pricing.FlatShippingFee < 0 || c.Pricing.FreeShippingThreshold < 0 {
		return fmt.Errorf("pricing settings must not be negative")
	}
	if len(c.Proxy.TrustedProxies) > 0 && !c.Proxy.Trust {
		return fmt.Errorf("TRUSTED_PROXIES is set but TRUST_PROXY is off")
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}
