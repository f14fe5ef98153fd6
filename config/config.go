package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	OTP       OTPConfig
	Mail      MailConfig
	Queue     QueueConfig
	Firebase  FirebaseConfig
	Ledger    LedgerConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port       string
	Env        string
	LogLevel   string
	CORSOrigin string
}

// IsProduction reports whether the service runs with production settings.
func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type OTPConfig struct {
	TTL         time.Duration
	Length      int
	MaxAttempts int
}

// MailConfig configures OTP delivery. An empty Host selects the log mailer.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type QueueConfig struct {
	Concurrency int
}

// FirebaseConfig enables push notifications when CredentialsFile is set.
type FirebaseConfig struct {
	CredentialsFile string
}

// LedgerConfig configures the optional directory registry contract.
type LedgerConfig struct {
	Enabled         bool
	RPCURL          string
	ContractAddress string
	PrivateKey      string
	ChainID         int64
	Timeout         time.Duration
}

// RateLimitConfig limits auth routes per client IP. TrustedProxies lists the proxies
// (IPs or CIDRs) whose X-Forwarded-For header is believed.
type RateLimitConfig struct {
	RPS            float64
	Burst          int
	TrustedProxies []string
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CORS_ORIGIN", "*")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("OTP_TTL", "5m")
	viper.SetDefault("OTP_LENGTH", 6)
	viper.SetDefault("OTP_MAX_ATTEMPTS", 5)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("QUEUE_CONCURRENCY", 5)
	viper.SetDefault("LEDGER_ENABLED", false)
	viper.SetDefault("LEDGER_TIMEOUT", "2m")
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	setDefaults()

	// A missing .env is fine, the process environment is enough.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return nil, err
		}
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	config := &Config{
		App: AppConfig{
			Port:       viper.GetString("APP_PORT"),
			Env:        viper.GetString("APP_ENV"),
			LogLevel:   viper.GetString("LOG_LEVEL"),
			CORSOrigin: viper.GetString("CORS_ORIGIN"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			TimeZone: viper.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		OTP: OTPConfig{
			TTL:         viper.GetDuration("OTP_TTL"),
			Length:      viper.GetInt("OTP_LENGTH"),
			MaxAttempts: viper.GetInt("OTP_MAX_ATTEMPTS"),
		},
		Mail: MailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			Username: viper.GetString("SMTP_USERNAME"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
		},
		Queue: QueueConfig{
			Concurrency: viper.GetInt("QUEUE_CONCURRENCY"),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: viper.GetString("FIREBASE_CREDENTIALS_FILE"),
		},
		Ledger: LedgerConfig{
			Enabled:         viper.GetBool("LEDGER_ENABLED"),
			RPCURL:          viper.GetString("LEDGER_RPC_URL"),
			ContractAddress: viper.GetString("LEDGER_CONTRACT_ADDRESS"),
			PrivateKey:      viper.GetString("LEDGER_PRIVATE_KEY"),
			ChainID:         viper.GetInt64("LEDGER_CHAIN_ID"),
			Timeout:         viper.GetDuration("LEDGER_TIMEOUT"),
		},
		RateLimit: RateLimitConfig{
			RPS:            viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:          viper.GetInt("RATE_LIMIT_BURST"),
			TrustedProxies: splitList(viper.GetString("RATE_LIMIT_TRUSTED_PROXIES")),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
