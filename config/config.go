package config

import (
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultConfigFile = "config.yaml"

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `koanf:"app"`
	Log      LogConfig      `koanf:"log"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Auth     AuthConfig     `koanf:"auth"`
	Stripe   StripeConfig   `koanf:"stripe"`
	VietQR   VietQRConfig   `koanf:"vietqr"`
	Pricing  PricingConfig  `koanf:"pricing"`
	SMTP     SMTPConfig     `koanf:"smtp"`
	Jobs     JobsConfig     `koanf:"jobs"`
}

type AppConfig struct {
	Port         string        `koanf:"port"`
	Env          string        `koanf:"env"`
	Timezone     string        `koanf:"timezone"`
	FrontendURL  string        `koanf:"frontendUrl"`
	CORSOrigins  []string      `koanf:"corsOrigins"`
	StoreName    string        `koanf:"storeName"`
	ReadTimeout  time.Duration `koanf:"readTimeout"`
	WriteTimeout time.Duration `koanf:"writeTimeout"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

type DatabaseConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslMode"`
	MaxOpen  int    `koanf:"maxOpen"`
	MaxIdle  int    `koanf:"maxIdle"`
}

// DSN builds the postgres connection string
func (d DatabaseConfig) DSN() string {
	return "host=" + d.Host + " user=" + d.User + " password=" + d.Password +
		" dbname=" + d.Name + " port=" + d.Port + " sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

// Enabled is false when no address is configured; the cache is then skipped.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type AuthConfig struct {
	JWTSecret          string `koanf:"jwtSecret"`
	ClerkPEMPublicKey  string `koanf:"clerkPemPublicKey"`
	ClerkWebhookSecret string `koanf:"clerkWebhookSecret"`
	SessionSecret      string `koanf:"sessionSecret"`
}

type StripeConfig struct {
	SecretKey     string  `koanf:"secretKey"`
	WebhookSecret string  `koanf:"webhookSecret"`
	Currency      string  `koanf:"currency"`
	ExchangeRate  float64 `koanf:"exchangeRate"` // store currency units per one unit of Currency; 0 keeps VND
}

type VietQRConfig struct {
	BankID      string `koanf:"bankId"`
	AccountNo   string `koanf:"accountNo"`
	AccountName string `koanf:"accountName"`
	Template    string `koanf:"template"`
}

type PricingConfig struct {
	FreeShippingThreshold int64   `koanf:"freeShippingThreshold"`
	FlatShippingFee       int64   `koanf:"flatShippingFee"`
	PointsRate            float64 `koanf:"pointsRate"`
}

type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// Enabled is false when no SMTP host is configured; mail is then only logged.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// JobsConfig holds cron schedules; an empty schedule disables the job.
type JobsConfig struct {
	ApplyPromotions  string        `koanf:"applyPromotions"`
	StaleOrderSweep  string        `koanf:"staleOrderSweep"`
	StaleOrderMaxAge time.Duration `koanf:"staleOrderMaxAge"`
}

// envKeys maps supported environment variables onto config keys.
var envKeys = map[string]string{
	"PORT":                    "app.port",
	"ENV":                     "app.env",
	"APP_TIMEZONE":            "app.timezone",
	"FRONTEND_URL":            "app.frontendUrl",
	"CORS_ORIGINS":            "app.corsOrigins",
	"STORE_NAME":              "app.storeName",
	"LOG_LEVEL":               "log.level",
	"LOG_PRETTY":              "log.pretty",
	"DB_HOST":                 "database.host",
	"DB_PORT":                 "database.port",
	"DB_USER":                 "database.user",
	"DB_PASSWORD":             "database.password",
	"DB_NAME":                 "database.name",
	"DB_SSLMODE":              "database.sslMode",
	"REDIS_ADDR":              "redis.addr",
	"REDIS_PASSWORD":          "redis.password",
	"REDIS_DB":                "redis.db",
	"JWT_SECRET":              "auth.jwtSecret",
	"CLERK_PEM_PUBLIC_KEY":    "auth.clerkPemPublicKey",
	"CLERK_WEBHOOK_SECRET":    "auth.clerkWebhookSecret",
	"SESSION_SECRET":          "auth.sessionSecret",
	"STRIPE_SECRET_KEY":       "stripe.secretKey",
	"STRIPE_WEBHOOK_SECRET":   "stripe.webhookSecret",
	"STRIPE_CURRENCY":         "stripe.currency",
	"STRIPE_EXCHANGE_RATE":    "stripe.exchangeRate",
	"VIETQR_BANK_ID":          "vietqr.bankId",
	"VIETQR_ACCOUNT_NO":       "vietqr.accountNo",
	"VIETQR_ACCOUNT_NAME":     "vietqr.accountName",
	"VIETQR_TEMPLATE":         "vietqr.template",
	"FREE_SHIPPING_THRESHOLD": "pricing.freeShippingThreshold",
	"FLAT_SHIPPING_FEE":       "pricing.flatShippingFee",
	"POINTS_RATE":             "pricing.pointsRate",
	"SMTP_HOST":               "smtp.host",
	"SMTP_PORT":               "smtp.port",
	"SMTP_USERNAME":           "smtp.username",
	"SMTP_PASSWORD":           "smtp.password",
	"SMTP_FROM":               "smtp.from",
	"JOB_APPLY_PROMOTIONS":    "jobs.applyPromotions",
	"JOB_STALE_ORDER_SWEEP":   "jobs.staleOrderSweep",
	"JOB_STALE_ORDER_MAX_AGE": "jobs.staleOrderMaxAge",
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() *Config {
	return &Config{
		App: AppConfig{
			Port:         "8080",
			Env:          "development",
			Timezone:     "Asia/Ho_Chi_Minh",
			FrontendURL:  "http://localhost:3000",
			CORSOrigins:  []string{"http://localhost:3000"},
			StoreName:    "ShuttleHub",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "shuttlehub",
			SSLMode: "disable",
			MaxOpen: 20,
			MaxIdle: 5,
		},
		Redis:  RedisConfig{TTL: 5 * time.Minute},
		Stripe: StripeConfig{Currency: "vnd"},
		VietQR: VietQRConfig{Template: "compact2"},
		Pricing: PricingConfig{
			FreeShippingThreshold: 500000,
			FlatShippingFee:       30000,
			PointsRate:            0.15,
		},
		SMTP: SMTPConfig{Port: 587},
		Jobs: JobsConfig{StaleOrderMaxAge: 24 * time.Hour},
	}
}

// LoadConfig reads an optional .env, an optional yaml file and the environment, in that order
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	if path == "" {
		path = defaultConfigFile
	}

	k := koanf.New(".")
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			mapped, ok := envKeys[key]
			if !ok {
				return "", nil
			}
			if mapped == "app.corsOrigins" {
				return mapped, strings.Split(value, ",")
			}
			return mapped, value
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables")
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	return cfg, nil
}

// Location resolves the store time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
