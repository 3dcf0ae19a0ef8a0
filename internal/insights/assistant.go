package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ensa-hoceima/hr-assistant/internal/jsonparse"
)

// AnswerQuery answers a natural-language question about the HR data in
// hrContext. The answer is HTML.
func (a *Analyzer) AnswerQuery(ctx context.Context, question string, hrContext any) (string, error) {
	payload, err := marshalIndent(hrContext)
	if err != nil {
		return "", fmt.Errorf("marshal hr context: %w", err)
	}

	return a.generate(ctx, "assistant", prompt("assistant", map[string]string{
		"CONTEXT_JSON": payload,
		"QUESTION":     question,
	}), 500, 0.5)
}

type SuggestionContext struct {
	TotalEmployees int
	AvgPerformance float64
	Departments    []string
}

type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ChartType   string `json:"chart_type"`
}

// Suggestions proposes analyses worth looking at.
func (a *Analyzer) Suggestions(ctx context.Context, sc SuggestionContext) ([]Suggestion, error) {
	departments, err := json.Marshal(sc.Departments)
	if err != nil {
		return nil, fmt.Errorf("marshal departments: %w", err)
	}

	raw, err := a.generate(ctx, "suggestions", prompt("suggestions", map[string]string{
		"TOTAL_EMPLOYEES": strconv.Itoa(sc.TotalEmployees),
		"AVG_PERFORMANCE": strconv.FormatFloat(sc.AvgPerformance, 'f', -1, 64),
		"DEPARTMENTS":     string(departments),
	}), 300, 0.7)
	if err != nil {
		return nil, err
	}

	return jsonparse.List[Suggestion](raw, a.parseOptions("suggestions")...), nil
}

// PredictTrends forecasts the next quarter from recent evaluation scores,
// newest first. Only the ten most recent scores are sent.
func (a *Analyzer) PredictTrends(ctx context.Context, recentScores []float64) (string, error) {
	var sum float64
	for _, s := range recentScores {
		sum += s
	}
	average := 0.0
	if len(recentScores) > 0 {
		average = sum / float64(len(recentScores))
	}

	shown := recentScores
	if len(shown) > 10 {
		shown = shown[:10]
	}
	if shown == nil {
		shown = []float64{}
	}
	scores, err := json.Marshal(shown)
	if err != nil {
		return "", fmt.Errorf("marshal scores: %w", err)
	}

	return a.generate(ctx, "trends", prompt("trends", map[string]string{
		"SCORES":  string(scores),
		"AVERAGE": strconv.FormatFloat(average, 'f', 1, 64),
	}), 500, 0.5)
}

// TestConnection sends a minimal prompt and returns the model's reply.
func (a *Analyzer) TestConnection(ctx context.Context) (string, error) {
	return a.generate(ctx, "ping", "Reply with 'Connection Successful'", 20, 0)
}
