package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"postsorter/internal/costtracker"

	"github.com/spf13/viper"
)

// PricingInfo holds cost details per token for a specific model.
type PricingInfo = costtracker.PricingInfo

type Config struct {
	Embedding struct {
		// Providers is the fallback chain, tried in order.
		Providers       []string `mapstructure:"providers"`
		Model           string   `mapstructure:"model"`
		OpenaiApiKey    string   `mapstructure:"openai_api_key"`
		OpenaiBaseURL   string   `mapstructure:"openai_base_url"`
		GoogleApiKey    string   `mapstructure:"google_api_key"`
		GeminiModelName string   `mapstructure:"gemini_model_name"`
		Dimension       int      `mapstructure:"dimension"` // local provider only
		Serialize       bool     `mapstructure:"serialize"`
		Retry           struct {
			MaxAttempts int   `mapstructure:"max_attempts"`
			BaseDelayMs int64 `mapstructure:"base_delay_ms"`
		} `mapstructure:"retry"`
	} `mapstructure:"embedding"`

	Categorization struct {
		MaxSentences int  `mapstructure:"max_sentences"` // 0 embeds the whole post
		EagerInit    bool `mapstructure:"eager_init"`
	} `mapstructure:"categorization"`

	Server struct {
		Addr string `mapstructure:"addr"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"server"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // "text" or "json"
	} `mapstructure:"log"`

	// Pricing: map[provider][model] = struct{input_per_token, output_per_token}
	Pricing map[string]map[string]PricingInfo `mapstructure:"pricing"`
}

// ListenAddr is the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Addr, c.Server.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("embedding.providers", []string{"local"})
	v.SetDefault("embedding.dimension", 512)
	v.SetDefault("embedding.serialize", false)
	v.SetDefault("embedding.retry.max_attempts", 2)
	v.SetDefault("embedding.retry.base_delay_ms", 200)
	v.SetDefault("categorization.max_sentences", 0)
	v.SetDefault("categorization.eager_init", true)
	v.SetDefault("server.addr", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads config.yaml from the working directory or
// ~/.config/postsorter, or configFile when set. Environment variables
// override file values: POSTSORTER_SERVER_PORT sets server.port.
func LoadConfig(configFile string) (*Config, error) {
	return load(viper.GetViper(), configFile)
}

func load(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "postsorter"))
		}
	}

	v.SetEnvPrefix("POSTSORTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider keys are also honoured under their conventional names.
	v.BindEnv("embedding.openai_api_key", "POSTSORTER_EMBEDDING_OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("embedding.google_api_key", "POSTSORTER_EMBEDDING_GOOGLE_API_KEY", "GEMINI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when no explicit path was given; defaults and
		// env vars are enough to run.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	for i, p := range config.Embedding.Providers {
		config.Embedding.Providers[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return &config, nil
}
