package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Vision providers
const (
	VisionMock   = "mock"
	VisionOpenAI = "openai"
	VisionGemini = "gemini"
)

// Guidance locales
const (
	LocaleEnglish  = "en"
	LocaleRomanian = "ro"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Logging    LoggingConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	Vision     VisionConfig
	Suggest    SuggestConfig
	Redis      RedisConfig
	Storage    StorageConfig

	// Warnings collects env values that were ignored; they are logged once a logger exists
	Warnings []string
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, wins over the individual parts
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	MigrateOnStart     bool
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int
	Host            string
	GinMode         string
	AllowedOrigins  string
	AllowedMethods  string
	AllowedHeaders  string
	ShutdownTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// OpenAIConfig holds the OpenAI-compatible API configuration used for vision and embeddings
type OpenAIConfig struct {
	APIKey              string
	APIBase             string
	VisionModel         string
	VisionTemperature   float64
	VisionMaxTokens     int
	EmbeddingModel      string
	EmbeddingDimensions int
	BatchSize           int
	Timeout             int
	Enabled             bool
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey  string
	Model   string
	Enabled bool
}

// VisionConfig controls how photos are analyzed
type VisionConfig struct {
	Provider          string
	Concurrency       int
	ImageTimeout      time.Duration
	RequestsPerSecond float64
	MaxImages         int
	MaxImageBytes     int
	Prompt            string
}

// SuggestConfig tunes the next-field suggestions
type SuggestConfig struct {
	ConfidenceThreshold float64
	MaxSuggestions      int
	Locale              string
	CatalogPath         string
	KeywordMatch        string // substring or word
}

// RedisConfig configures the photo analysis cache
type RedisConfig struct {
	URL     string
	TTL     time.Duration
	Enabled bool
}

// StorageConfig configures the MinIO photo store
type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PresignExpiry time.Duration
	Enabled       bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	l := &loader{}
	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               l.getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "listings"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     l.getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: l.getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
			MigrateOnStart:     l.getEnvAsBool("PG_MIGRATE_ON_START", true),
		},
		Server: ServerConfig{
			Port:            l.getEnvAsInt("SERVER_PORT", 8080),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:         getEnv("GIN_MODE", "release"),
			AllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods:  getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders:  getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
			ShutdownTimeout: l.getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		OpenAI: OpenAIConfig{
			APIKey:              getEnv("OPENAI_API_KEY", ""),
			APIBase:             strings.TrimRight(getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"), "/"),
			VisionModel:         getEnv("OPENAI_VISION_MODEL", "gpt-4o-mini"),
			VisionTemperature:   l.getEnvAsFloat("OPENAI_VISION_TEMPERATURE", 0.2),
			VisionMaxTokens:     l.getEnvAsInt("OPENAI_VISION_MAX_TOKENS", 1024),
			EmbeddingModel:      getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: l.getEnvAsInt("OPENAI_EMBEDDING_DIMENSIONS", 1536),
			BatchSize:           l.getEnvAsInt("OPENAI_BATCH_SIZE", 100),
			Timeout:             l.getEnvAsInt("OPENAI_TIMEOUT", 60),
			Enabled:             getEnv("OPENAI_API_KEY", "") != "",
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Enabled: getEnv("GEMINI_API_KEY", "") != "",
		},
		Vision: VisionConfig{
			Provider:          strings.ToLower(getEnv("VISION_PROVIDER", VisionMock)),
			Concurrency:       l.getEnvAsInt("VISION_CONCURRENCY", 4),
			ImageTimeout:      l.getEnvAsDuration("VISION_IMAGE_TIMEOUT", 45*time.Second),
			RequestsPerSecond: l.getEnvAsFloat("VISION_REQUESTS_PER_SECOND", 5),
			MaxImages:         l.getEnvAsInt("VISION_MAX_IMAGES", 20),
			MaxImageBytes:     l.getEnvAsInt("VISION_MAX_IMAGE_BYTES", 10<<20),
			Prompt:            getEnv("VISION_PROMPT", ""),
		},
		Suggest: SuggestConfig{
			ConfidenceThreshold: l.getEnvAsFloat("SUGGEST_CONFIDENCE_THRESHOLD", 0.3),
			MaxSuggestions:      l.getEnvAsInt("SUGGEST_MAX_FIELDS", 3),
			Locale:              strings.ToLower(getEnv("SUGGEST_LOCALE", LocaleRomanian)),
			CatalogPath:         getEnv("SUGGEST_CATALOG_PATH", ""),
			KeywordMatch:        getEnv("EXTRACT_KEYWORD_MATCH", "substring"),
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", ""),
			TTL:     l.getEnvAsDuration("REDIS_ANALYSIS_TTL", 24*time.Hour),
			Enabled: getEnv("REDIS_URL", "") != "",
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", "listing-photos"),
			UseSSL:        l.getEnvAsBool("MINIO_USE_SSL", false),
			PresignExpiry: l.getEnvAsDuration("MINIO_PRESIGN_EXPIRY", time.Hour),
			Enabled:       getEnv("MINIO_ENDPOINT", "") != "",
		},
	}
	cfg.Warnings = l.warnings

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	switch c.Vision.Provider {
	case VisionMock:
	case VisionOpenAI:
		if !c.OpenAI.Enabled {
			return fmt.Errorf("OPENAI_API_KEY is required when VISION_PROVIDER is %q", VisionOpenAI)
		}
	case VisionGemini:
		if !c.Gemini.Enabled {
			return fmt.Errorf("GEMINI_API_KEY is required when VISION_PROVIDER is %q", VisionGemini)
		}
	default:
		return fmt.Errorf("unknown VISION_PROVIDER %q (want mock, openai or gemini)", c.Vision.Provider)
	}

	if c.Vision.Concurrency <= 0 {
		return fmt.Errorf("VISION_CONCURRENCY must be positive, got %d", c.Vision.Concurrency)
	}
	if c.Vision.MaxImages <= 0 {
		return fmt.Errorf("VISION_MAX_IMAGES must be positive, got %d", c.Vision.MaxImages)
	}
	if c.Vision.RequestsPerSecond < 0 {
		return fmt.Errorf("VISION_REQUESTS_PER_SECOND cannot be negative")
	}
	if c.Suggest.Locale != LocaleEnglish && c.Suggest.Locale != LocaleRomanian {
		return fmt.Errorf("unknown SUGGEST_LOCALE %q (want en or ro)", c.Suggest.Locale)
	}
	if c.Suggest.ConfidenceThreshold < 0 || c.Suggest.ConfidenceThreshold > 1 {
		return fmt.Errorf("SUGGEST_CONFIDENCE_THRESHOLD must be within [0,1]")
	}
	if c.Storage.Enabled && (c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// HasDatabase reports whether a database was configured explicitly
func (c *Config) HasDatabase() bool {
	return c.PostgreSQL.DSN != "" || os.Getenv("PG_HOST") != ""
}

// Helper functions

type loader struct {
	warnings []string
}

func (l *loader) warn(key, value, fallback string) {
	l.warnings = append(l.warnings, fmt.Sprintf("invalid value %q for %s, using default %s", value, key, fallback))
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func (l *loader) getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		l.warn(key, valueStr, strconv.Itoa(defaultValue))
		return defaultValue
	}
	return value
}

func (l *loader) getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		l.warn(key, valueStr, strconv.FormatFloat(defaultValue, 'f', -1, 64))
		return defaultValue
	}
	return value
}

func (l *loader) getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		l.warn(key, valueStr, strconv.FormatBool(defaultValue))
		return defaultValue
	}
	return value
}

func (l *loader) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		l.warn(key, valueStr, defaultValue.String())
		return defaultValue
	}
	return value
}
