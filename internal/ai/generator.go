package ai

import "context"

// Generator produces text for a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)
