package insights

import (
	"context"
	"fmt"
)

type DocumentKind string

const (
	PerformanceReport    DocumentKind = "performance_report"
	RecommendationLetter DocumentKind = "recommendation_letter"
	Certificate          DocumentKind = "certificate"
)

// DocumentKinds lists the kinds with a dedicated prompt.
func DocumentKinds() []DocumentKind {
	return []DocumentKind{PerformanceReport, RecommendationLetter, Certificate}
}

// GenerateDocument drafts document text of the given kind from data. Unknown
// kinds use a generic prompt carrying the whole data set.
func (a *Analyzer) GenerateDocument(ctx context.Context, kind DocumentKind, data map[string]any) (string, error) {
	var text string
	switch kind {
	case PerformanceReport, RecommendationLetter, Certificate:
		text = fill(prompt("document_"+string(kind), nil), data)
	default:
		payload, err := marshalIndent(data)
		if err != nil {
			return "", fmt.Errorf("marshal document data: %w", err)
		}
		text = prompt("document_generic", map[string]string{"DATA_JSON": payload})
	}

	return a.generate(ctx, "document", text, 800, 0.6)
}
