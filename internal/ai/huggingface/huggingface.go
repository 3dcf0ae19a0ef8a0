// Package huggingface talks to the Hugging Face inference router, which
// exposes an OpenAI-compatible chat-completions endpoint.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ensa-hoceima/hr-assistant/internal/ai"
)

const (
	Name         = "huggingface"
	DefaultModel = "microsoft/Phi-3-mini-4k-instruct"

	apiURL       = "https://router.huggingface.co/v1/chat/completions"
	systemPrompt = "You are a helpful AI assistant."
	timeout      = 30 * time.Second
)

type Provider struct {
	token      string
	model      string
	HTTPClient *http.Client
	APIURL     string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// New returns a router provider. An empty model selects DefaultModel.
func New(token, model string) (*Provider, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%s access token: %w", Name, ai.ErrMissingCredentials)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}

	return &Provider{
		token:      token,
		model:      model,
		HTTPClient: &http.Client{Timeout: timeout},
		APIURL:     apiURL,
	}, nil
}

func (p *Provider) Name() string  { return Name }
func (p *Provider) Model() string { return p.model }

// Generate sends one chat-completions request. A 200 response without choices
// is returned verbatim.
func (p *Provider) Generate(ctx context.Context, req ai.Request) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: ai.ClampTemperature(req.Temperature),
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.APIURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s request: %w", Name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", Name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", ai.NewProviderError(Name, resp.StatusCode, data)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode %s response: %w", Name, err)
	}

	if len(parsed.Choices) == 0 {
		return string(data), nil
	}

	return parsed.Choices[0].Message.Content, nil
}
