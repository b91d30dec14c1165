// ABOUTME: Centralized configuration for the vault MCP server and CLI
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/harper/vault-standalone/internal/storage/sqlite"
)

// Config holds all configuration for the dialogue vault
type Config struct {
	// Storage settings
	DBPath string

	// Embedding settings
	EmbeddingProvider string
	EmbeddingAPIKey   string
	EmbeddingModel    string

	// Completion settings
	AnthropicKey string
	ChatModel    string
	MaxTokens    int
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:            getEnv("VAULT_DB", sqlite.DefaultDBPath()),
		EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "local"),
		EmbeddingAPIKey:   os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:    os.Getenv("EMBEDDING_MODEL"),
		AnthropicKey:      os.Getenv("ANTHROPIC_API_KEY"),
		ChatModel:         getEnv("VAULT_CHAT_MODEL", "claude-3-7-sonnet-20250219"),
		MaxTokens:         getEnvInt("VAULT_MAX_TOKENS", 4096),
		Timeout:           getEnvDuration("VAULT_LLM_TIMEOUT", 60*time.Second),
		MaxRetries:        getEnvInt("VAULT_MAX_RETRIES", 3),
		RetryDelay:        getEnvDuration("VAULT_RETRY_DELAY", 2*time.Second),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxTokens < 1 || c.MaxTokens > 8192 {
		return fmt.Errorf("VAULT_MAX_TOKENS must be 1-8192, got %d", c.MaxTokens)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("VAULT_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	switch c.EmbeddingProvider {
	case "local", "openai", "voyageai":
	default:
		return fmt.Errorf("EMBEDDING_PROVIDER must be local, openai, or voyageai, got %q", c.EmbeddingProvider)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
