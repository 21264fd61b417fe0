package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const (
	defaultJWTSecret     = "your-secret-key-change-in-production"
	defaultEncryptionKey = "AdPayGo2025SecureKey123456789012"
)

type Config struct {
	// --- Server ---
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Timezone    string `envconfig:"APP_TIMEZONE" default:"Africa/Lagos"`
	CORSOrigin  string `envconfig:"CORS_ORIGIN" default:"*"`
	// TrustProxy takes the client address from X-Forwarded-For. Enable only
	// behind a reverse proxy that sets it.
	TrustProxy bool `envconfig:"TRUST_PROXY" default:"false"`

	// --- Storage ---
	// A postgres:// or postgresql:// URL selects the Postgres driver, anything else is a SQLite path.
	DatabaseURL string `envconfig:"DATABASE_URL" default:"adpay.db"`
	RedisURL    string `envconfig:"REDIS_URL"`

	// --- Security ---
	JWTSecret         string        `envconfig:"JWT_SECRET" default:"your-secret-key-change-in-production"`
	JWTTTL            time.Duration `envconfig:"JWT_TTL" default:"168h"`
	EncryptionKey     string        `envconfig:"ENCRYPTION_KEY" default:"AdPayGo2025SecureKey123456789012"`
	AdminEmail        string        `envconfig:"ADMIN_EMAIL" default:"admin@adpay.local"`
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH"`
	// Plaintext fallback, only consulted when no hash is configured.
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"50"`

	// --- Notifications ---
	TelegramBotToken    string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatID int64  `envconfig:"TELEGRAM_ADMIN_CHAT_ID"`

	DashboardCacheTTL time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"30s"`

	// --- Business rules ---
	BasicDailyAdLimit    int           `envconfig:"BASIC_DAILY_AD_LIMIT" default:"50"`
	BasicAdEarnings      int64         `envconfig:"BASIC_AD_EARNINGS" default:"15"`
	PremiumAdEarnings    int64         `envconfig:"PREMIUM_AD_EARNINGS" default:"20"`
	BasicReferralBonus   int64         `envconfig:"BASIC_REFERRAL_BONUS" default:"500"`
	PremiumReferralBonus int64         `envconfig:"PREMIUM_REFERRAL_BONUS" default:"1000"`
	BasicMinWithdrawal   int64         `envconfig:"BASIC_MIN_WITHDRAWAL" default:"5000"`
	PremiumMinWithdrawal int64         `envconfig:"PREMIUM_MIN_WITHDRAWAL" default:"10000"`
	BasicTokenPrice      int64         `envconfig:"BASIC_TOKEN_PRICE" default:"3000"`
	PremiumTokenPrice    int64         `envconfig:"PREMIUM_TOKEN_PRICE" default:"5000"`
	TokenTTL             time.Duration `envconfig:"TOKEN_TTL" default:"720h"`
	PayoutDays           []int         `envconfig:"PAYOUT_DAYS" default:"5,17"`
	BasicPayoutStart     int           `envconfig:"BASIC_PAYOUT_START_HOUR" default:"5"`
	BasicPayoutEnd       int           `envconfig:"BASIC_PAYOUT_END_HOUR" default:"8"`
	PremiumPayoutStart   int           `envconfig:"PREMIUM_PAYOUT_START_HOUR" default:"5"`
	PremiumPayoutEnd     int           `envconfig:"PREMIUM_PAYOUT_END_HOUR" default:"12"`
}

// Load reads the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Location resolves APP_TIMEZONE, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.WithError(err).Warnf("Unknown APP_TIMEZONE %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

func ValidateConfig(cfg *Config) error {
	if len(cfg.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 characters, got %d", len(cfg.EncryptionKey))
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if cfg.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	if len(cfg.PayoutDays) == 0 {
		return fmt.Errorf("PAYOUT_DAYS must list at least one day")
	}
	for _, d := range cfg.PayoutDays {
		if d < 1 || d > 31 {
			return fmt.Errorf("PAYOUT_DAYS contains invalid day %d", d)
		}
	}
	if !validHourRange(cfg.BasicPayoutStart, cfg.BasicPayoutEnd) {
		return fmt.Errorf("invalid basic payout hours [%d,%d)", cfg.BasicPayoutStart, cfg.BasicPayoutEnd)
	}
	if !validHourRange(cfg.PremiumPayoutStart, cfg.PremiumPayoutEnd) {
		return fmt.Errorf("invalid premium payout hours [%d,%d)", cfg.PremiumPayoutStart, cfg.PremiumPayoutEnd)
	}
	if cfg.BasicDailyAdLimit <= 0 {
		return fmt.Errorf("BASIC_DAILY_AD_LIMIT must be > 0")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be > 0")
	}

	if len(cfg.JWTSecret) < 32 {
		log.Warn("JWT_SECRET should be at least 32 characters for security")
	}
	if cfg.AdminPasswordHash == "" && cfg.AdminPassword == "" {
		log.Warn("Neither ADMIN_PASSWORD_HASH nor ADMIN_PASSWORD is set, admin login is disabled")
	}
	if cfg.Environment == "production" {
		if cfg.JWTSecret == defaultJWTSecret {
			log.Warn("Change JWT_SECRET in production environment")
		}
		if cfg.EncryptionKey == defaultEncryptionKey {
			log.Warn("Change ENCRYPTION_KEY in production environment")
		}
		if cfg.AdminPasswordHash == "" && cfg.AdminPassword != "" {
			log.Warn("ADMIN_PASSWORD is plaintext, set ADMIN_PASSWORD_HASH instead")
		}
	}
	return nil
}

func validHourRange(start, end int) bool {
	return start >= 0 && end <= 24 && start < end
}
