package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  provider: "openai"
  api_key: "sk-test"
  model: "gpt-4o"
  max_tokens: 2000
  temperature: 0.5

transcript:
  captions_url: "http://localhost:9999"
  bulk_token: "abc123"
  language: "de"
  rate_limit: 1.5
  timeout_seconds: 10

pipeline:
  max_batch: 5
  max_document_chars: 50000
  preview_chars: 500

server:
  port: "9090"
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "openai", config.LLM.Provider)
	assert.Equal(t, "sk-test", config.LLM.APIKey)
	assert.Equal(t, "gpt-4o", config.LLM.Model)
	assert.Equal(t, 2000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "https://api.openai.com/v1", config.LLM.BaseURL)
	assert.Equal(t, "http://localhost:9999", config.Transcript.CaptionsURL)
	assert.Equal(t, "abc123", config.Transcript.BulkToken)
	assert.Equal(t, "de", config.Transcript.Language)
	assert.Equal(t, 5, config.Pipeline.MaxBatch)
	assert.Equal(t, 50000, config.Pipeline.MaxDocumentChars)
	assert.Equal(t, "9090", config.Server.Port)
}

func TestLoadConfigDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.Chdir(tmpDir))

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "groq", config.LLM.Provider)
	assert.Equal(t, "https://api.groq.com/openai/v1", config.LLM.BaseURL)
	assert.Equal(t, "llama-3.1-70b-versatile", config.LLM.Model)
	assert.Equal(t, 4000, config.LLM.MaxTokens)
	assert.Equal(t, 0.7, config.LLM.Temperature)
	assert.Equal(t, "en", config.Transcript.Language)
	assert.Equal(t, 10, config.Pipeline.MaxBatch)
	assert.Equal(t, 100000, config.Pipeline.MaxDocumentChars)
	assert.Equal(t, "8080", config.Server.Port)
}

func TestLoadConfigEnvMerge(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.Chdir(tmpDir))

	t.Setenv("LLM_API_KEY", "env-key")
	t.Setenv("TRANSCRIPT_TOKEN", "env-token")
	t.Setenv("PORT", "3000")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", config.LLM.APIKey)
	assert.Equal(t, "env-token", config.Transcript.BulkToken)
	assert.Equal(t, "3000", config.Server.Port)
}

func TestMissingAPIKeyIsNotAnError(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.Chdir(tmpDir))

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, config.LLM.APIKey)
	assert.Empty(t, config.Validate())
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*Config)
		expectedErrs int
		field        string
	}{
		{
			name:         "valid config",
			mutate:       func(c *Config) {},
			expectedErrs: 0,
		},
		{
			name:         "bad provider",
			mutate:       func(c *Config) { c.LLM.Provider = "anthropic" },
			expectedErrs: 1,
			field:        "llm.provider",
		},
		{
			name:         "temperature out of range",
			mutate:       func(c *Config) { c.LLM.Temperature = 2.5 },
			expectedErrs: 1,
			field:        "llm.temperature",
		},
		{
			name:         "zero max batch",
			mutate:       func(c *Config) { c.Pipeline.MaxBatch = -1 },
			expectedErrs: 1,
			field:        "pipeline.max_batch",
		},
		{
			name:         "bad port",
			mutate:       func(c *Config) { c.Server.Port = "not-a-port" },
			expectedErrs: 1,
			field:        "server.port",
		},
		{
			name:         "negative rate limit",
			mutate:       func(c *Config) { c.Transcript.RateLimit = -1 },
			expectedErrs: 1,
			field:        "transcript.rate_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			applyDefaults(config)
			tt.mutate(config)

			errs := config.Validate()
			assert.Len(t, errs, tt.expectedErrs)
			if tt.expectedErrs > 0 {
				assert.Equal(t, tt.field, errs[0].Field)
				assert.NotEmpty(t, errs[0].Error())
			}
		})
	}
}
