package aggregator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xhad/rescript/internal/models"
)

const placeholder = "[no transcript available]"

type AggregatorConfig struct {
	MaxChars int
}

// Aggregator concatenates per-video transcripts into one labeled document.
// Block order always equals input order, and an unavailable transcript still
// contributes a placeholder block so positional context is never lost.
type Aggregator struct {
	config AggregatorConfig
}

func NewWithConfig(config AggregatorConfig) Aggregator {
	if config.MaxChars == 0 {
		config.MaxChars = 100000
	}

	return Aggregator{
		config: config,
	}
}

func (a *Aggregator) Aggregate(transcripts []models.Transcript) models.Document {
	var b strings.Builder

	for i, t := range transcripts {
		b.WriteString(fmt.Sprintf("--- Video %d: %s ---\n", i+1, t.SourceURL))
		if t.Available() {
			b.WriteString(t.Text)
		} else {
			b.WriteString(placeholder)
		}
		b.WriteString("\n\n")
	}

	text := b.String()
	total := len(text)
	truncated := false

	// Truncation cuts only at the tail: the truncated text is a prefix of
	// the full concatenation, and truncating twice equals truncating once.
	// The cut backs up to a rune boundary so it never splits a multibyte
	// character.
	if total > a.config.MaxChars {
		cut := a.config.MaxChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
		truncated = true
	}

	return models.Document{
		Text:        text,
		Blocks:      len(transcripts),
		TotalLength: total,
		Truncated:   truncated,
	}
}
