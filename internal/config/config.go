package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Storage   StorageConfig
	Backup    BackupConfig
	Streaming StreamingConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// AIConfig holds the remote chat-completion endpoint configuration
type AIConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	VisionModel       string
	Temperature       float64
	MaxTokens         int
	TopP              float64
	OnlyMode          bool
	Client            string // openai-go, go-openai or azure
	AzureEndpoint     string
	AzureAPIVersion   string
	Referer           string
	AppTitle          string
	MaxRetries        int
	ValidationTimeout time.Duration
}

// StorageConfig selects and configures the document storage backend
type StorageConfig struct {
	Backend       string // memory, sqlite, postgres or redis
	SQLitePath    string
	DatabaseURL   string
	Table         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	EncryptionKey string
	CacheTTL      time.Duration
}

// BackupConfig holds Azure Blob Storage configuration for export backups
type BackupConfig struct {
	AccountName string
	AccountKey  string
	Container   string
}

// Enabled reports whether backup uploads are configured
func (b BackupConfig) Enabled() bool {
	return b.AccountName != "" && b.AccountKey != ""
}

// StreamingConfig holds pacing for simulated streaming
type StreamingConfig struct {
	WordDelay     time.Duration
	FollowUpDelay time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads configuration from an optional .env file, environment variables and defaults
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)
	v.SetDefault("server.allowedorigins", []string{"*"})

	v.SetDefault("ai.baseurl", "https://openrouter.ai/api/v1")
	v.SetDefault("ai.model", "openai/gpt-4o-mini")
	v.SetDefault("ai.visionmodel", "openai/gpt-4o-mini")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.maxtokens", 1500)
	v.SetDefault("ai.topp", 0.9)
	v.SetDefault("ai.onlymode", false)
	v.SetDefault("ai.client", "openai-go")
	v.SetDefault("ai.azureapiversion", "2024-08-01-preview")
	v.SetDefault("ai.apptitle", "HealthWise")
	v.SetDefault("ai.maxretries", 3)
	v.SetDefault("ai.validationtimeout", 15*time.Second)

	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.sqlitepath", "healthwise.db")
	v.SetDefault("storage.table", "health_documents")
	v.SetDefault("storage.redisaddr", "localhost:6379")
	v.SetDefault("storage.redisprefix", "healthwise")
	v.SetDefault("storage.cachettl", 5*time.Minute)

	v.SetDefault("backup.container", "healthwise-backups")

	v.SetDefault("streaming.worddelay", 50*time.Millisecond)
	v.SetDefault("streaming.followupdelay", time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.maxsizemb", 10)
	v.SetDefault("logging.maxbackups", 5)
	v.SetDefault("logging.maxagedays", 30)
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")
	v.BindEnv("server.allowedorigins", "ALLOWED_ORIGINS")

	// AI endpoint
	v.BindEnv("ai.apikey", "OPENROUTER_API_KEY", "AI_API_KEY")
	v.BindEnv("ai.baseurl", "OPENROUTER_BASE_URL")
	v.BindEnv("ai.model", "AI_MODEL")
	v.BindEnv("ai.visionmodel", "AI_VISION_MODEL")
	v.BindEnv("ai.onlymode", "AI_ONLY_MODE")
	v.BindEnv("ai.client", "AI_CLIENT")
	v.BindEnv("ai.azureendpoint", "AZURE_OPENAI_ENDPOINT")
	v.BindEnv("ai.referer", "AI_REFERER")

	// Storage
	v.BindEnv("storage.backend", "STORAGE_BACKEND")
	v.BindEnv("storage.sqlitepath", "SQLITE_PATH")
	v.BindEnv("storage.databaseurl", "DATABASE_URL")
	v.BindEnv("storage.redisaddr", "REDIS_ADDR")
	v.BindEnv("storage.redispassword", "REDIS_PASSWORD")
	v.BindEnv("storage.encryptionkey", "STORAGE_ENCRYPTION_KEY")

	// Backup
	v.BindEnv("backup.accountname", "AZURE_STORAGE_ACCOUNT_NAME")
	v.BindEnv("backup.accountkey", "AZURE_STORAGE_ACCOUNT_KEY")
	v.BindEnv("backup.container", "AZURE_STORAGE_BACKUP_CONTAINER")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.file", "LOG_FILE")
}

// Validate checks if the configuration is valid.
// A missing AI key is not an error: the assistant then runs in mock mode.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlitepath is required for the sqlite backend")
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage.databaseurl is required for the postgres backend")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redisaddr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.AI.Client {
	case "openai-go", "go-openai":
	case "azure":
		if c.AI.AzureEndpoint == "" {
			return fmt.Errorf("ai.azureendpoint is required for the azure client")
		}
	default:
		return fmt.Errorf("unknown ai client %q", c.AI.Client)
	}

	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("ai.maxtokens must be positive")
	}

	if c.Streaming.WordDelay < 0 {
		return fmt.Errorf("streaming.worddelay must not be negative")
	}

	return nil
}
