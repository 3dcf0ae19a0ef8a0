// Package similarity scores how close two texts are using embedding vectors.
package similarity

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/ai"
	"github.com/ensa-hoceima/hr-assistant/internal/logger"
)

// Cosine returns the cosine similarity of a and b. Empty vectors, vectors of
// different length and zero vectors score 0.
func Cosine[T ~float32 | ~float64](a, b []T) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Semantic turns embedding similarity into a 0..100 match percentage.
type Semantic struct {
	embedder ai.Embedder
	logger   *zap.Logger
}

func NewSemantic(embedder ai.Embedder, log *zap.Logger) *Semantic {
	if embedder == nil {
		embedder = ai.NoEmbeddings{}
	}
	return &Semantic{embedder: embedder, logger: logger.OrNop(log).Named("similarity")}
}

// Match embeds both texts and returns their similarity as a percentage rounded
// to two decimals. Embedding failures and empty vectors score 0 so that a
// missing signal never aborts a larger computation.
func (s *Semantic) Match(ctx context.Context, text1, text2 string) float64 {
	first, err := s.embedder.Embed(ctx, text1)
	if err != nil {
		s.logger.Warn("embedding failed, semantic match is 0", zap.Error(err))
		return 0
	}
	second, err := s.embedder.Embed(ctx, text2)
	if err != nil {
		s.logger.Warn("embedding failed, semantic match is 0", zap.Error(err))
		return 0
	}
	if len(first) == 0 || len(second) == 0 {
		s.logger.Debug("no embeddings available, semantic match is 0")
		return 0
	}

	score := Cosine(first, second) * 100
	score = math.Max(0, math.Min(score, 100))
	return math.Round(score*100) / 100
}
