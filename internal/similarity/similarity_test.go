package similarity

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"empty", nil, nil, 0},
		{"length mismatch", []float64{1}, []float64{1, 2}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Cosine(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Cosine() = %v, want %v", got, tc.want)
			}
		})
	}

	if got := Cosine([]float32{3, 4}, []float32{3, 4}); math.Abs(got-1) > 1e-6 {
		t.Fatalf("float32 self similarity = %v", got)
	}
}

type mapEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (m mapEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vectors[text], nil
}

func TestSemanticMatch(t *testing.T) {
	s := NewSemantic(mapEmbedder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {0.8, 0.6},
		"c": {-1, 0},
	}}, nil)

	if got := s.Match(context.Background(), "a", "b"); got != 80 {
		t.Fatalf("expected 80, got %v", got)
	}
	if got := s.Match(context.Background(), "a", "c"); got != 0 {
		t.Fatalf("negative similarity must clamp to 0, got %v", got)
	}
	if got := s.Match(context.Background(), "a", "missing"); got != 0 {
		t.Fatalf("empty vector must score 0, got %v", got)
	}
}

func TestSemanticMatchEmbeddingError(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewSemantic(mapEmbedder{err: errors.New("quota")}, zap.New(core))

	if got := s.Match(context.Background(), "a", "b"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected a warning, got %d entries", logs.Len())
	}
}

func TestSemanticWithoutEmbedder(t *testing.T) {
	if got := NewSemantic(nil, nil).Match(context.Background(), "a", "b"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
