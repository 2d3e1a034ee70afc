// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	PublicURL       string        `yaml:"public_url"` // base for checkout redirects
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	Secret     string `yaml:"secret"`
	CookieName string `yaml:"cookie_name"`
	Issuer     string `yaml:"issuer"`
}

type CodesConfig struct {
	Length      int `yaml:"length"`
	MaxLength   int `yaml:"max_length"`
	MaxAttempts int `yaml:"max_attempts"`
}

type RedemptionConfig struct {
	// RejectExhausted refuses codes whose subscription has no visits left.
	RejectExhausted bool `yaml:"reject_exhausted"`
}

type QRConfig struct {
	MaxAge    time.Duration `yaml:"max_age"`
	MaxFuture time.Duration `yaml:"max_future"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	BaseURL       string `yaml:"base_url"`
	Currency      string `yaml:"currency"`
	SuccessPath   string `yaml:"success_path"`
	CancelPath    string `yaml:"cancel_path"`
}

type MailConfig struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`
	From    string `yaml:"from"`
	Lang    string `yaml:"lang"`
	Workers int    `yaml:"workers"`
	Queue   int    `yaml:"queue"`
}

type SchedulerConfig struct {
	ExpiryInterval time.Duration `yaml:"expiry_interval"`
	LockTTL        time.Duration `yaml:"lock_ttl"`
}

type RateLimitConfig struct {
	RedeemLimit  int           `yaml:"redeem_limit"`
	RedeemWindow time.Duration `yaml:"redeem_window"`
}

type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	Codes      CodesConfig      `yaml:"codes"`
	Redemption RedemptionConfig `yaml:"redemption"`
	QR         QRConfig         `yaml:"qr"`
	Stripe     StripeConfig     `yaml:"stripe"`
	Mail       MailConfig       `yaml:"mail"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the -config and -dev flags and loads the file.
func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	return Load(configPath, dev)
}

// Load parses the YAML file at path, applies env overrides and defaults,
// and validates the result.
func Load(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	override(&cfg.Database.URL, "DATABASE_URL")
	override(&cfg.Redis.URL, "REDIS_URL")
	override(&cfg.Auth.Secret, "AUTH_SECRET")
	override(&cfg.Stripe.SecretKey, "STRIPE_SECRET_KEY")
	override(&cfg.Stripe.WebhookSecret, "STRIPE_WEBHOOK_SECRET")
}

func override(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 15 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "fideliza_session"
	}
	if cfg.Codes.Length <= 0 {
		cfg.Codes.Length = 8
	}
	if cfg.Codes.MaxLength < cfg.Codes.Length {
		cfg.Codes.MaxLength = cfg.Codes.Length + 2
	}
	if cfg.Codes.MaxAttempts <= 0 {
		cfg.Codes.MaxAttempts = 10
	}
	if cfg.QR.MaxAge <= 0 {
		cfg.QR.MaxAge = 5 * time.Minute
	}
	if cfg.QR.MaxFuture <= 0 {
		cfg.QR.MaxFuture = time.Minute
	}
	if cfg.Stripe.BaseURL == "" {
		cfg.Stripe.BaseURL = "https://api.stripe.com"
	}
	if cfg.Stripe.Currency == "" {
		cfg.Stripe.Currency = "usd"
	}
	if cfg.Stripe.SuccessPath == "" {
		cfg.Stripe.SuccessPath = "/subscriptions?checkout=success"
	}
	if cfg.Stripe.CancelPath == "" {
		cfg.Stripe.CancelPath = "/subscriptions?checkout=cancel"
	}
	if cfg.Mail.Lang == "" {
		cfg.Mail.Lang = "en"
	}
	if cfg.Mail.Workers <= 0 {
		cfg.Mail.Workers = 2
	}
	if cfg.Mail.Queue <= 0 {
		cfg.Mail.Queue = 100
	}
	if cfg.Scheduler.ExpiryInterval <= 0 {
		cfg.Scheduler.ExpiryInterval = time.Hour
	}
	if cfg.Scheduler.LockTTL <= 0 {
		cfg.Scheduler.LockTTL = 5 * time.Minute
	}
	if cfg.RateLimit.RedeemLimit <= 0 {
		cfg.RateLimit.RedeemLimit = 30
	}
	if cfg.RateLimit.RedeemWindow <= 0 {
		cfg.RateLimit.RedeemWindow = time.Minute
	}
}

// Validate performs minimal validation of required settings.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}
	if c.Codes.Length < 4 {
		return errors.New("codes.length must be at least 4")
	}
	if c.Mail.Enabled && c.Mail.From == "" {
		return errors.New("mail.from is required when mail is enabled")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
