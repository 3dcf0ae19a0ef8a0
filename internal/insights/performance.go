package insights

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/ensa-hoceima/hr-assistant/internal/jsonparse"
)

type Recommendation string

const (
	Promote Recommendation = "promote"
	Retain  Recommendation = "retain"
	Improve Recommendation = "improve"
	Replace Recommendation = "replace"
)

// MapRecommendation reduces free-form model advice to a Recommendation.
func MapRecommendation(text string) Recommendation {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "promote"):
		return Promote
	case strings.Contains(lower, "improve"), strings.Contains(lower, "develop"):
		return Improve
	case strings.Contains(lower, "replace"), strings.Contains(lower, "consider"):
		return Replace
	default:
		return Retain
	}
}

// CriteriaScores are the 0..10 scores of one evaluation.
type CriteriaScores struct {
	Technical    float64 `json:"technical"`
	Productivity float64 `json:"productivity"`
	Teamwork     float64 `json:"teamwork"`
	Innovation   float64 `json:"innovation"`
	Attendance   float64 `json:"attendance"`
}

type PerformanceInput struct {
	Name          string         `json:"name"`
	Department    string         `json:"department"`
	Scores        []float64      `json:"scores"`
	AverageScore  float64        `json:"avg_score"`
	Trend         string         `json:"trend"`
	TrainingCount int            `json:"training_count"`
	TenureYears   float64        `json:"tenure"`
	CurrentScores CriteriaScores `json:"current_scores"`
}

type PerformanceAnalysis struct {
	Summary        string
	Strengths      string
	Improvements   string
	NextSteps      string
	Recommendation Recommendation
	// Fallback marks analyses produced without a model answer.
	Fallback bool
}

type rawPerformance struct {
	Summary        any `json:"summary"`
	Strengths      any `json:"strengths"`
	Improvements   any `json:"improvements"`
	NextSteps      any `json:"next_steps"`
	Recommendation any `json:"recommendation"`
}

const (
	performanceMaxTokens   = 600
	performanceTemperature = 0.5
)

// AnalyzePerformance asks the model for an evaluation analysis. Provider
// errors are returned; callers fall back to Unavailable. Output without a
// usable JSON object is treated the same way and returns Unavailable.
func (a *Analyzer) AnalyzePerformance(ctx context.Context, in PerformanceInput) (PerformanceAnalysis, error) {
	payload, err := marshalIndent(in)
	if err != nil {
		return PerformanceAnalysis{}, fmt.Errorf("marshal performance input: %w", err)
	}

	raw, err := a.generate(ctx, "performance", prompt("performance", map[string]string{
		"EMPLOYEE_JSON": payload,
	}), performanceMaxTokens, performanceTemperature)
	if err != nil {
		return PerformanceAnalysis{}, err
	}

	parsed, ok := jsonparse.Object[rawPerformance](raw, a.parseOptions("performance")...)
	if !ok {
		return Unavailable(in.AverageScore), nil
	}

	return PerformanceAnalysis{
		Summary:        orDefault(flatten(parsed.Summary), "No summary available"),
		Strengths:      orDefault(flatten(parsed.Strengths), "Analysis in progress..."),
		Improvements:   orDefault(flatten(parsed.Improvements), "Analysis in progress..."),
		NextSteps:      orDefault(flatten(parsed.NextSteps), "Continue monitoring performance."),
		Recommendation: MapRecommendation(flatten(parsed.Recommendation)),
	}, nil
}

// FallbackInsight is the rule-based analysis used when AI features are off.
func FallbackInsight(score float64) PerformanceAnalysis {
	switch {
	case score >= 8.5:
		return PerformanceAnalysis{Summary: "Exceptional performance across all metrics. Ready for leadership roles.", Recommendation: Promote, Fallback: true}
	case score >= 7:
		return PerformanceAnalysis{Summary: "Strong performer with good growth potential. Focus on innovation skills.", Recommendation: Retain, Fallback: true}
	case score >= 5:
		return PerformanceAnalysis{Summary: "Meets expectations but needs development in key areas. Implement improvement plan.", Recommendation: Improve, Fallback: true}
	default:
		return PerformanceAnalysis{Summary: "Performance below expectations despite support. Consider role adjustment.", Recommendation: Replace, Fallback: true}
	}
}

// Unavailable is recorded when the model could not produce an analysis.
func Unavailable(score float64) PerformanceAnalysis {
	return PerformanceAnalysis{
		Summary:        fmt.Sprintf("AI analysis temporarily unavailable. Score: %.2f/10", score),
		Recommendation: Retain,
		Fallback:       true,
	}
}

// HTML renders the analysis for storage on the evaluation.
func (p PerformanceAnalysis) HTML() string {
	if p.Fallback {
		return "<p>" + html.EscapeString(p.Summary) + "</p>"
	}

	var b strings.Builder
	b.WriteString("<div>\n<h4>AI Performance Analysis</h4>\n")
	fmt.Fprintf(&b, "<p><strong>Summary:</strong> %s</p>\n", html.EscapeString(p.Summary))
	fmt.Fprintf(&b, "<h5>Key Strengths</h5>\n<p>%s</p>\n", html.EscapeString(p.Strengths))
	fmt.Fprintf(&b, "<h5>Areas for Improvement</h5>\n<p>%s</p>\n", html.EscapeString(p.Improvements))
	fmt.Fprintf(&b, "<h5>Suggested Next Steps</h5>\n<p>%s</p>\n", html.EscapeString(p.NextSteps))
	b.WriteString("</div>")
	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
