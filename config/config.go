package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Providers     ProvidersConfig
	LLM           LLMConfig
	Generator     GeneratorConfig
	Usage         UsageConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// RedisConfig holds the shared quota and counter store
type RedisConfig struct {
	URL      string // From REDIS_URL when set
	Addr     string
	Password string
	DB       int
}

// ProviderConfig holds one LLM backend's connection settings
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ProvidersConfig holds LLM provider configurations
type ProvidersConfig struct {
	OpenAI    ProviderConfig
	Qwen      ProviderConfig
	Gemini    ProviderConfig
	Anthropic ProviderConfig
}

// LLMConfig holds the orchestration layer settings
type LLMConfig struct {
	ProviderOrder []string

	// RPMLimit waits, RPDLimit rejects
	RPMLimit int
	RPDLimit int64

	BreakerErrorThreshold float64
	BreakerMinRequests    uint32
	BreakerCooldown       time.Duration
	BreakerWindow         time.Duration
	CallTimeout           time.Duration
}

// GeneratorConfig holds request-level generation limits
type GeneratorConfig struct {
	MaxRows        int
	PreviewRows    int
	RowConcurrency int
	RequestTimeout time.Duration
}

// UsageConfig holds usage-log pipeline and admin settings
type UsageConfig struct {
	BufferSize  int
	WorkerCount int
	AdminAPIKey string
	StatsZone   string
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or text
	MetricsEnabled bool
	TracingEnabled bool
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 6*time.Minute),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: loadDatabaseConfig(),
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Providers: ProvidersConfig{
			OpenAI: ProviderConfig{
				APIKey:  getEnv("OPENAI_API_KEY", ""),
				BaseURL: getEnv("OPENAI_BASE_URL", ""),
				Model:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
				Timeout: getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
			},
			Qwen: ProviderConfig{
				APIKey:  getEnv("QWEN_API_KEY", ""),
				BaseURL: getEnv("QWEN_BASE_URL", "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"),
				Model:   getEnv("QWEN_MODEL", "qwen3-4b"),
				Timeout: getEnvAsDuration("QWEN_TIMEOUT", 60*time.Second),
			},
			Gemini: ProviderConfig{
				APIKey:  getEnv("GEMINI_API_KEY", ""),
				Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
				Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
			},
			Anthropic: ProviderConfig{
				APIKey:  getEnv("ANTHROPIC_API_KEY", ""),
				BaseURL: getEnv("ANTHROPIC_BASE_URL", ""),
				Model:   getEnv("ANTHROPIC_MODEL", ""),
				Timeout: getEnvAsDuration("ANTHROPIC_TIMEOUT", 60*time.Second),
			},
		},
		LLM: LLMConfig{
			ProviderOrder:         getEnvAsList("LLM_PROVIDER_ORDER", []string{"gemini", "openai"}),
			RPMLimit:              getEnvAsInt("LLM_RPM_LIMIT", 60),
			RPDLimit:              int64(getEnvAsInt("LLM_RPD_LIMIT", 1000)),
			BreakerErrorThreshold: getEnvAsFloat("LLM_BREAKER_ERROR_THRESHOLD", 0.10),
			BreakerMinRequests:    uint32(getEnvAsInt("LLM_BREAKER_MIN_REQUESTS", 1)),
			BreakerCooldown:       getEnvAsDuration("LLM_BREAKER_COOLDOWN", 30*time.Second),
			BreakerWindow:         getEnvAsDuration("LLM_BREAKER_WINDOW", 60*time.Second),
			CallTimeout:           getEnvAsDuration("LLM_CALL_TIMEOUT", 30*time.Second),
		},
		Generator: GeneratorConfig{
			MaxRows:        getEnvAsInt("GENERATOR_MAX_ROWS", 1000),
			PreviewRows:    getEnvAsInt("GENERATOR_PREVIEW_ROWS", 20),
			RowConcurrency: getEnvAsInt("GENERATOR_ROW_CONCURRENCY", 8),
			RequestTimeout: getEnvAsDuration("GENERATOR_REQUEST_TIMEOUT", 5*time.Minute),
		},
		Usage: UsageConfig{
			BufferSize:  getEnvAsInt("USAGE_BUFFER_SIZE", 10000),
			WorkerCount: getEnvAsInt("USAGE_WORKER_COUNT", 5),
			AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
			StatsZone:   getEnv("USAGE_STATS_TIMEZONE", "Asia/Taipei"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			TracingEnabled: getEnvAsBool("TRACING_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	// Database validation (DATABASE_URL or DB_* vars)
	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
	}
	if c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	if c.Redis.URL == "" && c.Redis.Addr == "" {
		return fmt.Errorf("redis configuration required: set REDIS_URL or REDIS_ADDR")
	}

	if len(c.LLM.ProviderOrder) == 0 {
		return fmt.Errorf("LLM_PROVIDER_ORDER must name at least one provider")
	}
	for _, name := range c.LLM.ProviderOrder {
		if _, ok := c.Providers.ByName(name); !ok {
			return fmt.Errorf("unknown provider %q in LLM_PROVIDER_ORDER", name)
		}
	}
	if c.LLM.RPMLimit <= 0 || c.LLM.RPDLimit <= 0 {
		return fmt.Errorf("LLM rate limits must be positive")
	}
	if c.LLM.BreakerErrorThreshold <= 0 || c.LLM.BreakerErrorThreshold > 1 {
		return fmt.Errorf("LLM_BREAKER_ERROR_THRESHOLD must be in (0, 1]")
	}

	if c.Generator.MaxRows <= 0 {
		return fmt.Errorf("GENERATOR_MAX_ROWS must be positive")
	}
	if c.Generator.RowConcurrency <= 0 {
		return fmt.Errorf("GENERATOR_ROW_CONCURRENCY must be positive")
	}

	if _, err := time.LoadLocation(c.Usage.StatsZone); err != nil {
		return fmt.Errorf("invalid USAGE_STATS_TIMEZONE: %w", err)
	}

	// Provider validation (at least one provider API key required in production)
	if c.IsProduction() && !c.Providers.AnyConfigured(c.LLM.ProviderOrder) {
		return fmt.Errorf("at least one LLM provider in the order must be configured in production")
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// ByName returns the provider config for an order entry
func (p *ProvidersConfig) ByName(name string) (ProviderConfig, bool) {
	switch name {
	case "openai":
		return p.OpenAI, true
	case "qwen":
		return p.Qwen, true
	case "gemini":
		return p.Gemini, true
	case "anthropic":
		return p.Anthropic, true
	default:
		return ProviderConfig{}, false
	}
}

// AnyConfigured reports whether any provider in order has an API key
func (p *ProvidersConfig) AnyConfigured(order []string) bool {
	for _, name := range order {
		if cfg, ok := p.ByName(name); ok && cfg.APIKey != "" {
			return true
		}
	}
	return false
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// LogString returns the Redis target without credentials
func (c *RedisConfig) LogString() string {
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err == nil {
			return fmt.Sprintf("addr=%s db=%s", u.Host, strings.TrimPrefix(u.Path, "/"))
		}
		return "addr=<from REDIS_URL>"
	}
	return fmt.Sprintf("addr=%s db=%d", c.Addr, c.DB)
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars
func loadDatabaseConfig() DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL != "" {
		return DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		}
	}
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "dev"),
		Password:        getEnv("DB_PASSWORD", "datagen_password"),
		Database:        getEnv("DB_NAME", "datagen"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated value, dropping empty entries
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
