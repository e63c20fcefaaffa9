package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port       string        `env:"PORT,        default=8080"`
	Env        string        `env:"ENV,         default=development"`
	JWTSecret  string        `env:"JWT_SECRET"`
	LogLevel   string        `env:"LOG_LEVEL,   default=info"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,   default=24h"`
	SessionTTL time.Duration `env:"SESSION_TTL, default=24h"`

	AnonymousSessionTTL time.Duration `env:"ANON_SESSION_TTL, default=30m"`
	AnonymousSessionMax int           `env:"ANON_SESSION_MAX, default=10000"`

	Mongo       MongoConfig
	Redis       RedisConfig
	Checkout    CheckoutConfig
	Coupons     CouponConfig
	Affiliates  AffiliateConfig
	Withdrawals WithdrawalConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type CheckoutConfig struct {
	TaxRate        decimal.Decimal `env:"TAX_RATE,        default=0.23"`
	Currency       string          `env:"CURRENCY,        default=EUR"`
	IdempotencyTTL time.Duration   `env:"IDEMPOTENCY_TTL, default=24h"`
}

// CouponConfig selects the coupon validator: "static" accepts one code,
// "mongo" reads the coupons collection.
type CouponConfig struct {
	Source        string          `env:"COUPON_SOURCE,         default=static"`
	StaticCode    string          `env:"STATIC_COUPON_CODE,    default=DESCONTO10"`
	StaticPercent decimal.Decimal `env:"STATIC_COUPON_PERCENT, default=10"`
}

type AffiliateConfig struct {
	ReferralBaseURL   string          `env:"REFERRAL_BASE_URL,  default=http://localhost:3000"`
	CommissionPercent decimal.Decimal `env:"COMMISSION_PERCENT, default=20"`
	DispatchWorkers   int             `env:"DISPATCH_WORKERS,   default=8"`
}

type WithdrawalConfig struct {
	FeePercent decimal.Decimal `env:"WITHDRAWAL_FEE_PERCENT, default=0"`
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	if c.Checkout.TaxRate.IsNegative() {
		errs = append(errs, fmt.Errorf("TAX_RATE must not be negative, got %s", c.Checkout.TaxRate))
	}
	switch c.Coupons.Source {
	case "static", "mongo":
	default:
		errs = append(errs, fmt.Errorf("COUPON_SOURCE must be static or mongo, got %q", c.Coupons.Source))
	}
	hundred := decimal.NewFromInt(100)
	if p := c.Withdrawals.FeePercent; p.IsNegative() || p.GreaterThan(hundred) {
		errs = append(errs, fmt.Errorf("WITHDRAWAL_FEE_PERCENT must be within 0..100, got %s", p))
	}
	if p := c.Affiliates.CommissionPercent; p.IsNegative() || p.GreaterThan(hundred) {
		errs = append(errs, fmt.Errorf("COMMISSION_PERCENT must be within 0..100, got %s", p))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
