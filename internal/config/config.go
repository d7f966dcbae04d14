package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported AI providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Sessions SessionConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// AIConfig selects and configures the generative model backend
type AIConfig struct {
	Provider string
	Timeout  time.Duration
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	Azure    AzureOpenAIConfig
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// AzureOpenAIConfig holds Azure OpenAI configuration
type AzureOpenAIConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
}

// SessionConfig bounds the in-memory session registry
type SessionConfig struct {
	MaxSessions int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load reads configuration from an optional .env file, environment variables and defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)
	v.SetDefault("server.allowedorigins", []string{"*"})

	// AI defaults
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.azure.apiversion", "2024-08-01-preview")

	v.SetDefault("sessions.maxsessions", 1000)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")
	v.BindEnv("server.allowedorigins", "CORS_ALLOWED_ORIGINS")

	// AI
	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("ai.timeout", "AI_TIMEOUT")

	// Gemini
	v.BindEnv("ai.gemini.apikey", "GEMINI_API_KEY", "API_KEY")
	v.BindEnv("ai.gemini.model", "GEMINI_MODEL")
	v.BindEnv("ai.gemini.baseurl", "GEMINI_BASE_URL")

	// OpenAI
	v.BindEnv("ai.openai.apikey", "OPENAI_API_KEY")
	v.BindEnv("ai.openai.model", "OPENAI_MODEL")
	v.BindEnv("ai.openai.baseurl", "OPENAI_BASE_URL")

	// Azure OpenAI
	v.BindEnv("ai.azure.endpoint", "AZURE_OPENAI_ENDPOINT")
	v.BindEnv("ai.azure.apikey", "AZURE_OPENAI_API_KEY")
	v.BindEnv("ai.azure.deployment", "AZURE_OPENAI_DEPLOYMENT")
	v.BindEnv("ai.azure.apiversion", "AZURE_OPENAI_API_VERSION")

	// Sessions
	v.BindEnv("sessions.maxsessions", "MAX_SESSIONS")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid.
// A missing AI credential is not a configuration error here: the service still
// starts and every AI operation reports it when invoked.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	switch c.AI.Provider {
	case ProviderGemini:
		if c.AI.Gemini.Model == "" {
			return fmt.Errorf("ai.gemini.model is required")
		}
	case ProviderOpenAI:
		if c.AI.OpenAI.Model == "" {
			return fmt.Errorf("ai.openai.model is required")
		}
	case ProviderAzure:
		if c.AI.Azure.APIVersion == "" {
			return fmt.Errorf("ai.azure.apiversion is required")
		}
	default:
		return fmt.Errorf("ai.provider must be one of %q, %q or %q, got %q",
			ProviderGemini, ProviderOpenAI, ProviderAzure, c.AI.Provider)
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive")
	}

	if c.Sessions.MaxSessions <= 0 {
		return fmt.Errorf("sessions.maxsessions must be positive")
	}

	return nil
}
