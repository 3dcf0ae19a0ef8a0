package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/ensa-hoceima/hr-assistant/internal/ai"
)

const (
	Name                  = "gemini"
	DefaultModel          = "gemini-2.5-flash"
	DefaultEmbeddingModel = "text-embedding-004"
)

// models is the subset of *genai.Models used here.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Generator wraps the Google GenAI client. It serves both as an ai.Provider
// and as an ai.Embedder.
type Generator struct {
	models         models
	modelName      string
	embeddingModel string
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model, embeddingModel string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key: %w", ai.ErrMissingCredentials)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, model, embeddingModel), nil
}

func newGenerator(m models, model, embeddingModel string) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	if embeddingModel = strings.TrimSpace(embeddingModel); embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	return &Generator{models: m, modelName: model, embeddingModel: embeddingModel}
}

func (g *Generator) Name() string { return Name }

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// Generate sends the prompt to Gemini and joins the textual parts of every candidate.
func (g *Generator) Generate(ctx context.Context, req ai.Request) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(req.Prompt), config)
	if err != nil {
		return "", toProviderError(err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// Embed returns the embedding of text, or an empty vector when the API
// returned none.
func (g *Generator) Embed(ctx context.Context, text string) ([]float32, error) {
	if g == nil || g.models == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	resp, err := g.models.EmbedContent(ctx, g.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", toProviderError(err))
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, nil
	}

	return resp.Embeddings[0].Values, nil
}

// toProviderError maps genai API errors onto ai.ProviderError so a 503 is
// reported as a cold start like the HTTP providers do.
func toProviderError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ai.ProviderError{Provider: Name, StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &ai.ProviderError{Provider: Name, StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("generate content: %w", err)
}
