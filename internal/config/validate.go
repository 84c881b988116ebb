package config

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var knownProviders = map[string]bool{"local": true, "openai": true, "gemini": true}

func (c *Config) Validate() error {
	// Embedding config
	if len(c.Embedding.Providers) == 0 {
		return errors.New("embedding.providers must list at least one provider")
	}
	seen := make(map[string]bool, len(c.Embedding.Providers))
	for _, p := range c.Embedding.Providers {
		if !knownProviders[p] {
			return fmt.Errorf("embedding.providers: unknown provider '%s' (want local, openai or gemini)", p)
		}
		if seen[p] {
			return fmt.Errorf("embedding.providers: provider '%s' listed twice", p)
		}
		seen[p] = true
	}
	if seen["local"] && c.Embedding.Dimension < 2 {
		return errors.New("embedding.dimension must be at least 2 for the local provider")
	}
	if c.Embedding.Retry.MaxAttempts < 0 {
		return errors.New("embedding.retry.max_attempts must not be negative")
	}
	if c.Embedding.Retry.BaseDelayMs < 0 {
		return errors.New("embedding.retry.base_delay_ms must not be negative")
	}

	// Categorization config
	if c.Categorization.MaxSentences < 0 {
		return errors.New("categorization.max_sentences must not be negative")
	}

	// Server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}

	// Log config
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json', got '%s'", c.Log.Format)
	}

	// Pricing config (optional, but if present, must be valid)
	for provider, models := range c.Pricing {
		if provider == "" {
			return errors.New("pricing contains an empty provider name")
		}
		for model, price := range models {
			if model == "" {
				return fmt.Errorf("pricing for provider '%s' contains an empty model name", provider)
			}
			if price.InputPerToken < 0 || price.OutputPerToken < 0 {
				return fmt.Errorf("pricing for provider '%s', model '%s' has negative token cost", provider, model)
			}
		}
	}

	return nil
}
