// Package providers resolves the configured provider tag into an ai.Provider.
package providers

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/ai"
	"github.com/ensa-hoceima/hr-assistant/internal/ai/bytez"
	"github.com/ensa-hoceima/hr-assistant/internal/ai/gemini"
	"github.com/ensa-hoceima/hr-assistant/internal/ai/huggingface"
	"github.com/ensa-hoceima/hr-assistant/internal/logger"
	"github.com/ensa-hoceima/hr-assistant/internal/secrets"
)

// EmbeddingsNone disables semantic similarity; every match scores 0.
const EmbeddingsNone = "none"

// Backend holds the model and credential source of one provider.
type Backend struct {
	Model string
	Key   secrets.Source
}

type Config struct {
	Provider    string
	HuggingFace Backend
	Bytez       Backend
	Gemini      Backend

	// Embeddings is "gemini" or "none".
	Embeddings     string
	EmbeddingModel string
}

// Tags lists the supported provider tags.
func Tags() []string {
	return []string{huggingface.Name, bytez.Name, gemini.Name}
}

// New builds the provider named by cfg.Provider. The tag is matched case
// insensitively; unknown tags yield *ai.UnsupportedProviderError.
func New(ctx context.Context, cfg Config, log *zap.Logger) (ai.Provider, error) {
	log = logger.OrNop(log)
	tag := strings.ToLower(strings.TrimSpace(cfg.Provider))

	var (
		provider ai.Provider
		err      error
	)

	switch tag {
	case huggingface.Name:
		var key string
		if key, err = loadKey(cfg.HuggingFace.Key); err == nil {
			provider, err = huggingface.New(key, cfg.HuggingFace.Model)
		}
	case bytez.Name:
		var key string
		if key, err = loadKey(cfg.Bytez.Key); err == nil {
			provider, err = bytez.New(key, cfg.Bytez.Model)
		}
	case gemini.Name:
		var key string
		if key, err = loadKey(cfg.Gemini.Key); err == nil {
			provider, err = gemini.NewGenerator(ctx, key, cfg.Gemini.Model, cfg.EmbeddingModel)
		}
	default:
		return nil, &ai.UnsupportedProviderError{Tag: cfg.Provider}
	}
	if err != nil {
		return nil, err
	}

	log.Debug("ai provider resolved", logger.CommonFields(provider.Name(), provider.Model())...)
	return provider, nil
}

// NewEmbedder returns the embedding backend. When the generation provider is
// already a Gemini generator it is reused.
func NewEmbedder(ctx context.Context, cfg Config, provider ai.Provider) (ai.Embedder, error) {
	switch tag := strings.ToLower(strings.TrimSpace(cfg.Embeddings)); tag {
	case "", EmbeddingsNone:
		return ai.NoEmbeddings{}, nil
	case gemini.Name:
		if g, ok := provider.(*gemini.Generator); ok {
			return g, nil
		}
		key, err := loadKey(cfg.Gemini.Key)
		if err != nil {
			return nil, err
		}
		return gemini.NewGenerator(ctx, key, cfg.Gemini.Model, cfg.EmbeddingModel)
	default:
		return nil, fmt.Errorf("unsupported embeddings backend: %s", cfg.Embeddings)
	}
}

func loadKey(src secrets.Source) (string, error) {
	key, err := secrets.LoadOptional(src)
	if err != nil {
		return "", fmt.Errorf("load api key: %w", err)
	}
	return key, nil
}
