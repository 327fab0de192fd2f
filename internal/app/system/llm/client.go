// Package llm wraps the generative-AI service that produces spending
// reports. The Client interface keeps handlers independent of the
// provider; the one real implementation talks to the Gemini REST API.
package llm

import "context"

// Client generates a financial analysis from a formatted ledger digest.
type Client interface {
	Analyze(ctx context.Context, ledger string) (string, error)
}

// Config holds provider settings.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}
