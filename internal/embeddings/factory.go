// ABOUTME: Embedding provider factory and process-wide default accessor
// ABOUTME: Builds providers from configuration; misconfiguration fails at construction, not call time
package embeddings

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrInvalidConfig marks provider configuration errors: a missing API key for
// a remote provider or an unrecognized provider name.
var ErrInvalidConfig = errors.New("invalid embedding configuration")

// Config selects and parameterizes an embedding provider.
type Config struct {
	// Provider is one of "local", "openai", "voyageai".
	Provider string
	// APIKey is required for the remote providers.
	APIKey string
	// Model optionally overrides the provider's default model.
	Model string
}

// ConfigFromEnv reads provider selection from the environment:
// EMBEDDING_PROVIDER (default "local"), EMBEDDING_API_KEY, EMBEDDING_MODEL.
func ConfigFromEnv() Config {
	provider := os.Getenv("EMBEDDING_PROVIDER")
	if provider == "" {
		provider = "local"
	}
	return Config{
		Provider: provider,
		APIKey:   os.Getenv("EMBEDDING_API_KEY"),
		Model:    os.Getenv("EMBEDDING_MODEL"),
	}
}

// Create builds a provider from cfg.
func Create(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "local":
		return NewLocalProvider(), nil

	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: openai provider requires an API key", ErrInvalidConfig)
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.Model), nil

	case "voyageai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: voyageai provider requires an API key", ErrInvalidConfig)
		}
		return NewVoyageProvider(cfg.APIKey, cfg.Model), nil

	default:
		return nil, fmt.Errorf("%w: unknown embedding provider: %q", ErrInvalidConfig, cfg.Provider)
	}
}

var (
	defaultMu       sync.Mutex
	defaultProvider Provider
)

// Default returns the process-wide provider, building it once from
// environment configuration. Treat the returned provider as immutable.
func Default() (Provider, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultProvider == nil {
		provider, err := Create(ConfigFromEnv())
		if err != nil {
			return nil, err
		}
		defaultProvider = provider
	}
	return defaultProvider, nil
}

// SetDefault replaces the process-wide provider (pass nil to reset). Intended
// for tests and for substituting an alternate provider at startup.
func SetDefault(provider Provider) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultProvider = provider
}
