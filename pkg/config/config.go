package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Provider        string  `yaml:"provider"` // "groq" or "openai"
		APIKey          string  `yaml:"api_key"`
		BaseURL         string  `yaml:"base_url"`
		Model           string  `yaml:"model"`
		MaxTokens       int     `yaml:"max_tokens"`
		Temperature     float64 `yaml:"temperature"`
		FallbackBaseURL string  `yaml:"fallback_base_url"` // local Ollama, tried when no api_key
		FallbackModel   string  `yaml:"fallback_model"`
	} `yaml:"llm"`

	Transcript struct {
		CaptionsURL    string  `yaml:"captions_url"`
		BulkURL        string  `yaml:"bulk_url"`
		BulkToken      string  `yaml:"bulk_token"`
		Language       string  `yaml:"language"`
		RateLimit      float64 `yaml:"rate_limit"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		EnableAudio    bool    `yaml:"enable_audio"`
		WhisperModel   string  `yaml:"whisper_model"`
	} `yaml:"transcript"`

	Pipeline struct {
		MaxBatch         int `yaml:"max_batch"`
		MaxDocumentChars int `yaml:"max_document_chars"`
		PreviewChars     int `yaml:"preview_chars"`
	} `yaml:"pipeline"`

	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/rescript/config.yaml"),
			"/etc/rescript/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = "groq"
	}
	if config.LLM.BaseURL == "" {
		if config.LLM.Provider == "openai" {
			config.LLM.BaseURL = "https://api.openai.com/v1"
		} else {
			config.LLM.BaseURL = "https://api.groq.com/openai/v1"
		}
	}
	if config.LLM.Model == "" {
		if config.LLM.Provider == "openai" {
			config.LLM.Model = "gpt-4o-mini"
		} else {
			config.LLM.Model = "llama-3.1-70b-versatile"
		}
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 4000
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}
	if config.LLM.FallbackModel == "" {
		config.LLM.FallbackModel = "mistral"
	}

	if config.Transcript.CaptionsURL == "" {
		config.Transcript.CaptionsURL = "https://youtube-transcript-api.deno.dev"
	}
	if config.Transcript.BulkURL == "" {
		config.Transcript.BulkURL = "https://www.youtube-transcript.io/api/transcripts"
	}
	if config.Transcript.Language == "" {
		config.Transcript.Language = "en"
	}
	if config.Transcript.RateLimit == 0 {
		config.Transcript.RateLimit = 2.0
	}
	if config.Transcript.TimeoutSeconds == 0 {
		config.Transcript.TimeoutSeconds = 30
	}
	if config.Transcript.WhisperModel == "" {
		if config.LLM.Provider == "groq" {
			config.Transcript.WhisperModel = "whisper-large-v3"
		} else {
			config.Transcript.WhisperModel = "whisper-1"
		}
	}

	if config.Pipeline.MaxBatch == 0 {
		config.Pipeline.MaxBatch = 10
	}
	if config.Pipeline.MaxDocumentChars == 0 {
		config.Pipeline.MaxDocumentChars = 100000
	}
	if config.Pipeline.PreviewChars == 0 {
		config.Pipeline.PreviewChars = 2000
	}

	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
}

func mergeWithEnv(config *Config) {
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}
	if config.LLM.APIKey == "" {
		if key := os.Getenv("GROQ_API_KEY"); key != "" {
			config.LLM.APIKey = key
		} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			config.LLM.APIKey = key
		}
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.FallbackBaseURL = baseURL
	}
	if token := os.Getenv("TRANSCRIPT_TOKEN"); token != "" {
		config.Transcript.BulkToken = token
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
}
