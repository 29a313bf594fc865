package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/xhad/rescript/internal/models"
)

const systemPrompt = "You are an expert script writer. Turn the raw video transcripts below into one clean, engaging narration script. Remove filler words, add smooth transitions, and preserve every factual claim."

const truncationNote = "\n\n(The transcripts above were truncated to fit. Infer and compress the missing tail rather than assuming full coverage.)"

// RewriteConfig represents the configuration for a rewrite engine.
type RewriteConfig struct {
	Provider        string // informational: "groq" or "openai"
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float64
	MaxTokens       int
	PreviewChars    int
	FallbackBaseURL string // local Ollama server tried when no APIKey is set
	FallbackModel   string
}

// RewriteEngine submits an aggregated transcript document to a completion
// endpoint and returns exactly one RewriteResult per invocation. Without a
// credential it never makes the completion call and produces a degraded
// result instead.
type RewriteEngine struct {
	config RewriteConfig
	model  llms.Model
}

// NewWithConfig creates a new RewriteEngine with the given configuration.
// A missing API key is not an error: the engine is built in degraded mode
// so the process never crashes over an absent credential.
func NewWithConfig(config RewriteConfig) (*RewriteEngine, error) {
	if config.Temperature <= 0 {
		config.Temperature = 0.7
	}
	if config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 4000
	}
	if config.PreviewChars == 0 {
		config.PreviewChars = 2000
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.groq.com/openai/v1"
	}
	if config.Model == "" {
		config.Model = "llama-3.1-70b-versatile"
	}
	if config.FallbackModel == "" {
		config.FallbackModel = "mistral"
	}

	engine := &RewriteEngine{config: config}
	if config.APIKey == "" {
		return engine, nil
	}

	model, err := openai.New(
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
		openai.WithBaseURL(config.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	engine.model = model
	return engine, nil
}

// Rewrite runs the single completion call for the document. Any failure of
// the call degrades into a preview result; it is never retried.
func (re *RewriteEngine) Rewrite(ctx context.Context, doc models.Document) models.RewriteResult {
	if re.model == nil {
		return re.degrade(ctx, doc, "no completion credential configured")
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userMessage(doc)),
	}

	response, err := re.model.GenerateContent(ctx, content,
		llms.WithTemperature(re.config.Temperature),
		llms.WithMaxTokens(re.config.MaxTokens),
	)
	if err != nil {
		return re.degrade(ctx, doc, fmt.Sprintf("completion call failed: %v", err))
	}

	if response == nil || len(response.Choices) == 0 {
		return re.degrade(ctx, doc, "completion response missing content")
	}

	script := strings.TrimSpace(response.Choices[0].Content)
	if script == "" {
		return re.degrade(ctx, doc, "completion response missing content")
	}

	return models.RewriteResult{Script: script}
}

func userMessage(doc models.Document) string {
	if doc.Truncated {
		return doc.Text + truncationNote
	}
	return doc.Text
}

// degrade builds the credential-absent / call-failed result. If a local
// fallback server is configured it is tried exactly once; its failure is
// swallowed and the plain preview returned.
func (re *RewriteEngine) degrade(ctx context.Context, doc models.Document, reason string) models.RewriteResult {
	log.Printf("llm: degrading rewrite: %s", reason)

	if re.config.FallbackBaseURL != "" {
		if text, err := re.fallback(ctx, doc); err == nil && strings.TrimSpace(text) != "" {
			return models.RewriteResult{
				Preview:  strings.TrimSpace(text),
				Degraded: true,
				Reason:   reason + "; local fallback model used",
			}
		}
	}

	return models.RewriteResult{
		Preview:  re.preview(doc),
		Degraded: true,
		Reason:   reason,
	}
}

func (re *RewriteEngine) fallback(ctx context.Context, doc models.Document) (string, error) {
	model, err := ollama.New(
		ollama.WithModel(re.config.FallbackModel),
		ollama.WithServerURL(re.config.FallbackBaseURL),
	)
	if err != nil {
		return "", err
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userMessage(doc)),
	}

	response, err := model.GenerateContent(ctx, content,
		llms.WithTemperature(re.config.Temperature),
		llms.WithMaxTokens(re.config.MaxTokens),
	)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from fallback model")
	}
	return response.Choices[0].Content, nil
}

func (re *RewriteEngine) preview(doc models.Document) string {
	text := doc.Text
	if len(text) > re.config.PreviewChars {
		text = text[:re.config.PreviewChars]
	}
	return "[rewrite unavailable - raw transcript preview]\n\n" + text
}
