package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"local"}, cfg.Embedding.Providers)
	assert.Equal(t, 512, cfg.Embedding.Dimension)
	assert.True(t, cfg.Categorization.EagerInit)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
embedding:
  providers: [OpenAI, local]
  model: text-embedding-3-large
  dimension: 64
categorization:
  max_sentences: 3
server:
  port: 9000
pricing:
  openai:
    text-embedding-3-large:
      input_per_token: 0.00000013
`)
	t.Setenv("POSTSORTER_SERVER_PORT", "9100")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"openai", "local"}, cfg.Embedding.Providers)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedding.Model)
	assert.Equal(t, 64, cfg.Embedding.Dimension)
	assert.Equal(t, 3, cfg.Categorization.MaxSentences)
	assert.Equal(t, 9100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, "sk-test", cfg.Embedding.OpenaiApiKey)
	assert.InDelta(t, 0.00000013, cfg.Pricing["openai"]["text-embedding-3-large"].InputPerToken, 1e-15)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func validConfig() *Config {
	c := &Config{}
	c.Embedding.Providers = []string{"local"}
	c.Embedding.Dimension = 16
	c.Server.Port = 8080
	c.Log.Level = "debug"
	c.Log.Format = "json"
	return c
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := map[string]func(c *Config){
		"no providers":       func(c *Config) { c.Embedding.Providers = nil },
		"unknown provider":   func(c *Config) { c.Embedding.Providers = []string{"bert"} },
		"duplicate provider": func(c *Config) { c.Embedding.Providers = []string{"local", "local"} },
		"tiny dimension":     func(c *Config) { c.Embedding.Dimension = 1 },
		"negative retries":   func(c *Config) { c.Embedding.Retry.MaxAttempts = -1 },
		"negative sentences": func(c *Config) { c.Categorization.MaxSentences = -2 },
		"bad port":           func(c *Config) { c.Server.Port = 70000 },
		"bad level":          func(c *Config) { c.Log.Level = "loud" },
		"bad format":         func(c *Config) { c.Log.Format = "xml" },
		"negative price": func(c *Config) {
			c.Pricing = map[string]map[string]PricingInfo{"openai": {"m": {InputPerToken: -1}}}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
