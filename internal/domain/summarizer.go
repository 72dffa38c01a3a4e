package domain

import "context"

// ModelSettings selects and tunes the model used for summarization.
// The search tool treats it as opaque and forwards it unchanged.
type ModelSettings struct {
	Provider    string  `json:"provider,omitempty" yaml:"provider"`
	Model       string  `json:"model,omitempty" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens"`
	Language    string  `json:"language,omitempty" yaml:"language"`
}

// Summarizer condenses search result snippets into one answer for the agent's goal.
// Implementations may be slow and may fail; callers propagate failures as-is.
type Summarizer interface {
	Summarize(ctx context.Context, settings ModelSettings, goal, query string, snippets []string) (string, error)
}
