package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/lingocards/internal/capture"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	TTS      TTSConfig      `mapstructure:"tts" validate:"required"`
	Client   ClientConfig   `mapstructure:"client" validate:"required"`
	Capture  CaptureConfig  `mapstructure:"capture" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int      `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string   `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat              string   `mapstructure:"log_format" validate:"required,oneof=json text"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
	AllowedOrigins         []string `mapstructure:"allowed_origins" validate:"dive,required"`
}

// ShutdownTimeout returns ShutdownTimeoutSeconds as a duration.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Backend      string `mapstructure:"backend" validate:"required,oneof=postgres memory"`
	URL          string `mapstructure:"url" validate:"omitempty,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=5"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
}

// TTSConfig configures OpenAI speech synthesis.
type TTSConfig struct {
	OpenAIAPIKey string  `mapstructure:"openai_api_key"`
	Model        string  `mapstructure:"model" validate:"required"`
	Voice        string  `mapstructure:"voice" validate:"required"`
	Speed        float64 `mapstructure:"speed" validate:"gte=0.25,lte=4"`
}

// ClientConfig configures the CLI's connection to the API server.
type ClientConfig struct {
	BaseURL               string `mapstructure:"base_url" validate:"required,url"`
	TimeoutSeconds        int    `mapstructure:"timeout_seconds" validate:"gte=1"`
	BreakerFailures       int    `mapstructure:"breaker_failures" validate:"gte=1"`
	BreakerTimeoutSeconds int    `mapstructure:"breaker_timeout_seconds" validate:"gte=1"`
}

// Timeout returns TimeoutSeconds as a duration.
func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CaptureConfig configures the camera used by the CLI.
type CaptureConfig struct {
	// DeviceDir is the image directory served as a camera.
	DeviceDir string `mapstructure:"device_dir"`

	capture.Config `mapstructure:",squash"`
}

// validate checks rules that span fields.
func (c *Config) validate() error {
	if c.Database.Backend == BackendPostgres && c.Database.URL == "" {
		return errors.New("database.url is required when database.backend is postgres")
	}
	return nil
}

// RequireServerSecrets reports an error when a key the server cannot run
// without is missing. The CLI does not need them.
func (c *Config) RequireServerSecrets() error {
	if c.LLM.GeminiAPIKey == "" {
		return fmt.Errorf("%w: llm.gemini_api_key is required", ErrMissingSecret)
	}
	return nil
}
