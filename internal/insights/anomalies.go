package insights

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/jsonparse"
)

// MetricPoint is one aggregate HR metric.
type MetricPoint struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Period string  `json:"period,omitempty"`
	Unit   string  `json:"unit,omitempty"`
}

type AnomalyFinding struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Severity          string `json:"severity"`
	RecommendedAction string `json:"recommended_action"`
}

const (
	anomalyMaxTokens   = 600
	anomalyTemperature = 0.4
)

// DetectAnomalies asks the model to flag unusual metrics. Unparseable output
// yields an empty list. Unknown severities are reported as medium.
func (a *Analyzer) DetectAnomalies(ctx context.Context, points []MetricPoint) ([]AnomalyFinding, error) {
	if len(points) == 0 {
		return []AnomalyFinding{}, nil
	}

	payload, err := marshalIndent(points)
	if err != nil {
		return nil, fmt.Errorf("marshal metrics: %w", err)
	}

	a.logger.Info("sending anomaly detection prompt", zap.Int("metrics", len(points)))
	raw, err := a.generate(ctx, "anomalies", prompt("anomalies", map[string]string{
		"METRICS_JSON": payload,
	}), anomalyMaxTokens, anomalyTemperature)
	if err != nil {
		return nil, err
	}

	parsed := jsonparse.List[AnomalyFinding](raw, a.parseOptions("anomalies", jsonparse.WithSchema(listSchema))...)

	findings := make([]AnomalyFinding, 0, len(parsed))
	for _, f := range parsed {
		f.Title = strings.TrimSpace(f.Title)
		f.Description = strings.TrimSpace(f.Description)
		f.RecommendedAction = strings.TrimSpace(f.RecommendedAction)
		if f.Title == "" && f.Description == "" {
			continue
		}

		switch severity := strings.ToLower(strings.TrimSpace(f.Severity)); severity {
		case "low", "medium", "high":
			f.Severity = severity
		default:
			f.Severity = "medium"
		}
		findings = append(findings, f)
	}
	return findings, nil
}
