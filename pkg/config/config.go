package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	WhatsApp WhatsAppConfig
	Paystack PaystackConfig
	OpenAI   OpenAIConfig
	Slots    SlotsConfig
	Bookings BookingsConfig
	Webhooks WebhooksConfig
	Exports  ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// WhatsAppConfig selects the outbound messaging provider and its credentials.
// The provider is chosen here once, at wiring time.
type WhatsAppConfig struct {
	Provider        string
	VerifyToken     string
	AppSecret       string
	MetaToken       string
	MetaPhoneID     string
	TwilioSID       string
	TwilioToken     string
	TwilioFrom      string
	SendchampKey    string
	SendchampSender string
}

// PaystackConfig holds the secret key used for both API calls and
// webhook signature verification.
type PaystackConfig struct {
	SecretKey string
	BaseURL   string
}

// OpenAIConfig configures intent classification and FAQ embeddings.
// An empty APIKey disables both; regex and LIKE fallbacks take over.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
}

// SlotsConfig tunes availability computation and its Redis cache.
type SlotsConfig struct {
	DefaultTimezone string
	CacheTTL        time.Duration
}

// BookingsConfig gates optional write-time behaviour.
type BookingsConfig struct {
	ConflictGuard bool
	ExpireEnabled bool
	ExpireAfter   time.Duration
	ExpireCron    string
}

// WebhooksConfig tunes the inbound message worker queue.
type WebhooksConfig struct {
	WorkerConcurrency int
	QueueBuffer       int
	MaxRetries        int
}

// ExportsConfig controls export storage & signed downloads.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CleanupCron     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		Enabled:  v.GetBool("REDIS_ENABLED"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.WhatsApp = WhatsAppConfig{
		Provider:        strings.ToLower(v.GetString("WA_PROVIDER")),
		VerifyToken:     v.GetString("META_VERIFY_TOKEN"),
		AppSecret:       v.GetString("META_APP_SECRET"),
		MetaToken:       v.GetString("WHATSAPP_TOKEN"),
		MetaPhoneID:     v.GetString("WHATSAPP_PHONE_ID"),
		TwilioSID:       v.GetString("TWILIO_ACCOUNT_SID"),
		TwilioToken:     v.GetString("TWILIO_AUTH_TOKEN"),
		TwilioFrom:      v.GetString("TWILIO_WHATSAPP_FROM"),
		SendchampKey:    v.GetString("SENDCHAMP_API_KEY"),
		SendchampSender: v.GetString("SENDCHAMP_SENDER"),
	}

	cfg.Paystack = PaystackConfig{
		SecretKey: v.GetString("PAYSTACK_SECRET_KEY"),
		BaseURL:   v.GetString("PAYSTACK_BASE_URL"),
	}

	cfg.OpenAI = OpenAIConfig{
		APIKey:         v.GetString("OPENAI_API_KEY"),
		BaseURL:        v.GetString("OPENAI_BASE_URL"),
		ChatModel:      v.GetString("OPENAI_CHAT_MODEL"),
		EmbeddingModel: v.GetString("OPENAI_EMBEDDING_MODEL"),
	}

	cfg.Slots = SlotsConfig{
		DefaultTimezone: v.GetString("SLOTS_DEFAULT_TZ"),
		CacheTTL:        parseDuration(v.GetString("SLOTS_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Bookings = BookingsConfig{
		ConflictGuard: v.GetBool("BOOKINGS_CONFLICT_GUARD"),
		ExpireEnabled: v.GetBool("BOOKINGS_EXPIRE_ENABLED"),
		ExpireAfter:   parseDuration(v.GetString("BOOKINGS_EXPIRE_AFTER"), 24*time.Hour),
		ExpireCron:    v.GetString("BOOKINGS_EXPIRE_CRON"),
	}

	cfg.Webhooks = WebhooksConfig{
		WorkerConcurrency: v.GetInt("WEBHOOK_WORKER_CONCURRENCY"),
		QueueBuffer:       v.GetInt("WEBHOOK_QUEUE_BUFFER"),
		MaxRetries:        v.GetInt("WEBHOOK_MAX_RETRIES"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupCron:     v.GetString("EXPORTS_CLEANUP_CRON"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "waflow")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_ENABLED", false)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "waflow")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("WA_PROVIDER", "meta")
	v.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com")
	v.SetDefault("OPENAI_CHAT_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small")

	v.SetDefault("SLOTS_DEFAULT_TZ", "Africa/Accra")
	v.SetDefault("SLOTS_CACHE_TTL", "2m")

	v.SetDefault("BOOKINGS_CONFLICT_GUARD", false)
	v.SetDefault("BOOKINGS_EXPIRE_ENABLED", false)
	v.SetDefault("BOOKINGS_EXPIRE_AFTER", "24h")
	v.SetDefault("BOOKINGS_EXPIRE_CRON", "@every 15m")

	v.SetDefault("WEBHOOK_WORKER_CONCURRENCY", 4)
	v.SetDefault("WEBHOOK_QUEUE_BUFFER", 64)
	v.SetDefault("WEBHOOK_MAX_RETRIES", 3)

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_CRON", "@hourly")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
