// Package bytez calls the Bytez hosted model API.
package bytez

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
	Name         = "bytez"
	DefaultModel = "Qwen/Qwen3-4B-Instruct-2507"

	apiURL  = "https://api.bytez.com/models/v2/"
	timeout = 60 * time.Second
)

type Provider struct {
	key        string
	model      string
	HTTPClient *http.Client
	// BaseURL is joined with the model name.
	BaseURL string
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type params struct {
	Temperature  float64 `json:"temperature"`
	MaxNewTokens int     `json:"max_new_tokens"`
}

type runRequest struct {
	Input  []inputMessage `json:"input"`
	Params params         `json:"params"`
	Stream bool           `json:"stream"`
}

func New(key, model string) (*Provider, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%s api key: %w", Name, ai.ErrMissingCredentials)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}

	return &Provider{
		key:        key,
		model:      model,
		HTTPClient: &http.Client{Timeout: timeout},
		BaseURL:    apiURL,
	}, nil
}

func (p *Provider) Name() string  { return Name }
func (p *Provider) Model() string { return p.model }

// Generate runs the model once. A string output is returned as is, structured
// output is re-encoded as JSON, and a response without output is returned
// verbatim.
func (p *Provider) Generate(ctx context.Context, req ai.Request) (string, error) {
	payload, err := json.Marshal(runRequest{
		Input: []inputMessage{{Role: "user", Content: req.Prompt}},
		Params: params{
			Temperature:  ai.ClampTemperature(req.Temperature),
			MaxNewTokens: req.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimSuffix(p.BaseURL, "/") + "/" + p.model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Key "+p.key)
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

	var parsed struct {
		Output json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode %s response: %w", Name, err)
	}

	return outputText(parsed.Output, data), nil
}

func outputText(output json.RawMessage, body []byte) string {
	trimmed := bytes.TrimSpace(output)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return string(body)
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		if text == "" {
			return string(body)
		}
		return text
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}
