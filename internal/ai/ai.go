// Package ai defines the text-generation and embedding contracts used by the
// HR components, along with the caching client that fronts every provider.
package ai

import "context"

// Request is a single text-generation call.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Provider is one text-generation backend. Implementations perform exactly one
// upstream call per Generate and never retry.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, req Request) (string, error)
}

// TextGenerator is the dependency HR components take for prompting a model.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// Embedder turns text into a vector. An empty vector with a nil error means the
// backend has no embedding support.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NoEmbeddings is used when no embedding backend is configured.
type NoEmbeddings struct{}

func (NoEmbeddings) Embed(context.Context, string) ([]float32, error) { return nil, nil }

// MinTemperature is the lowest sampling temperature sent to HTTP providers;
// both hosted APIs reject zero.
const MinTemperature = 0.1

// ClampTemperature raises t to MinTemperature.
func ClampTemperature(t float64) float64 {
	if t < MinTemperature {
		return MinTemperature
	}
	return t
}
