package config

import (
	"fmt"
	"net/url"
	"strconv"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	if c.LLM.Provider != "groq" && c.LLM.Provider != "openai" {
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider %q, must be groq or openai", c.LLM.Provider),
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 32768 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 32768",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if _, err := url.Parse(c.LLM.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "invalid completion endpoint URL",
		})
	}

	// Validate transcript config
	if _, err := url.Parse(c.Transcript.CaptionsURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "transcript.captions_url",
			Message: "invalid captions endpoint URL",
		})
	}

	if c.Transcript.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "transcript.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Transcript.TimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "transcript.timeout_seconds",
			Message: "timeout_seconds must be positive",
		})
	}

	// Validate pipeline config
	if c.Pipeline.MaxBatch < 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.max_batch",
			Message: "max_batch must be positive",
		})
	}

	if c.Pipeline.MaxDocumentChars < 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.max_document_chars",
			Message: "max_document_chars must be positive",
		})
	}

	if c.Pipeline.PreviewChars < 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.preview_chars",
			Message: "preview_chars must be positive",
		})
	}

	// Validate server config
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("invalid port %q", c.Server.Port),
		})
	}

	return errors
}
