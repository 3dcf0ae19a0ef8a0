package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"google.golang.org/genai"

	"github.com/ensa-hoceima/hr-assistant/internal/ai"
)

type fakeModels struct {
	mu        sync.Mutex
	genResp   *genai.GenerateContentResponse
	genErr    error
	embedResp *genai.EmbedContentResponse
	embedErr  error

	lastModel  string
	lastConfig *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastModel = model
	f.lastConfig = config
	return f.genResp, f.genErr
}

func (f *fakeModels) EmbedContent(_ context.Context, model string, _ []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastModel = model
	return f.embedResp, f.embedErr
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGenerateJoinsParts(t *testing.T) {
	fake := &fakeModels{genResp: textResponse(" first ", "", "second")}
	g := newGenerator(fake, "", "")

	out, err := g.Generate(context.Background(), ai.Request{Prompt: "p", MaxTokens: 600, Temperature: 0.4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "first\nsecond" {
		t.Fatalf("unexpected output %q", out)
	}
	if fake.lastModel != DefaultModel {
		t.Fatalf("expected default model, got %q", fake.lastModel)
	}
	if fake.lastConfig.MaxOutputTokens != 600 || *fake.lastConfig.Temperature != float32(0.4) {
		t.Fatalf("unexpected config %+v", fake.lastConfig)
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	g := newGenerator(&fakeModels{genResp: textResponse("  ")}, "gemini-pro", "")
	if _, err := g.Generate(context.Background(), ai.Request{Prompt: "p"}); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestGenerateMapsUnavailableToColdStart(t *testing.T) {
	fake := &fakeModels{genErr: genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded", Status: "UNAVAILABLE"}}
	g := newGenerator(fake, "", "")

	_, err := g.Generate(context.Background(), ai.Request{Prompt: "p"})
	if !ai.IsColdStart(err) {
		t.Fatalf("expected cold start, got %v", err)
	}
}

func TestGenerateKeepsOtherErrors(t *testing.T) {
	fake := &fakeModels{genErr: genai.APIError{Code: http.StatusTooManyRequests, Message: "quota exhausted"}}
	g := newGenerator(fake, "", "")

	_, err := g.Generate(context.Background(), ai.Request{Prompt: "p"})
	var perr *ai.ProviderError
	if !errors.As(err, &perr) || perr.StatusCode != http.StatusTooManyRequests || perr.Message != "quota exhausted" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestEmbed(t *testing.T) {
	fake := &fakeModels{embedResp: &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2}}},
	}}
	g := newGenerator(fake, "", "")

	vec, err := g.Embed(context.Background(), "python developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 || fake.lastModel != DefaultEmbeddingModel {
		t.Fatalf("unexpected embedding %v from %q", vec, fake.lastModel)
	}

	fake.embedResp = &genai.EmbedContentResponse{}
	vec, err = g.Embed(context.Background(), "x")
	if err != nil || len(vec) != 0 {
		t.Fatalf("expected empty vector, got %v, %v", vec, err)
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), "", "", "")
	if !errors.Is(err, ai.ErrMissingCredentials) {
		t.Fatalf("expected missing credentials, got %v", err)
	}
}
