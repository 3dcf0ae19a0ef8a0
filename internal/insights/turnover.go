package insights

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/jsonparse"
)

// EmployeeSnapshot holds the features sent to the model for one employee.
type EmployeeSnapshot struct {
	Name                string    `json:"name"`
	Department          string    `json:"department,omitempty"`
	RecentScores        []float64 `json:"recent_scores"`
	TrainingCount       int       `json:"training_count"`
	TenureYears         float64   `json:"tenure_years"`
	DaysSinceLastReview int       `json:"days_since_last_review"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type RiskAssessment struct {
	EmployeeName string    `json:"employee_name"`
	RiskScore    int       `json:"risk_score"`
	RiskLevel    RiskLevel `json:"risk_level"`
}

type rawRisk struct {
	EmployeeName string  `json:"employee_name"`
	RiskScore    float64 `json:"risk_score"`
	RiskLevel    string  `json:"risk_level"`
}

const (
	turnoverMaxTokens   = 1000
	turnoverTemperature = 0.3

	listSchema = `{"type": "array", "items": {"type": "object"}}`
)

// BatchAnalyzeTurnover scores every employee with a single model call.
// Provider failures are returned. Output that cannot be parsed yields an empty
// list, so "no signal" and "no risk found" look the same to callers.
func (a *Analyzer) BatchAnalyzeTurnover(ctx context.Context, employees []EmployeeSnapshot) ([]RiskAssessment, error) {
	if len(employees) == 0 {
		return []RiskAssessment{}, nil
	}

	payload, err := marshalIndent(employees)
	if err != nil {
		return nil, fmt.Errorf("marshal employee snapshots: %w", err)
	}

	a.logger.Info("sending batch turnover prompt", zap.Int("employees", len(employees)))
	raw, err := a.generate(ctx, "turnover", prompt("turnover", map[string]string{
		"COUNT":          strconv.Itoa(len(employees)),
		"EMPLOYEES_JSON": payload,
	}), turnoverMaxTokens, turnoverTemperature)
	if err != nil {
		return nil, err
	}

	parsed := jsonparse.List[rawRisk](raw, a.parseOptions("turnover", jsonparse.WithSchema(listSchema))...)

	assessments := make([]RiskAssessment, 0, len(parsed))
	for _, r := range parsed {
		assessment := a.normalizeRisk(r)
		a.metrics.RiskAssessed(string(assessment.RiskLevel))
		assessments = append(assessments, assessment)
	}

	return orderByName(employees, assessments), nil
}

// DetectTurnoverRisk scores a single employee. When the model returns nothing
// usable the employee is reported as low risk with a zero score.
func (a *Analyzer) DetectTurnoverRisk(ctx context.Context, employee EmployeeSnapshot) (RiskAssessment, error) {
	results, err := a.BatchAnalyzeTurnover(ctx, []EmployeeSnapshot{employee})
	if err != nil {
		return RiskAssessment{}, err
	}
	if len(results) == 0 {
		return RiskAssessment{EmployeeName: employee.Name, RiskScore: 0, RiskLevel: RiskLow}, nil
	}
	return results[0], nil
}

// LevelForScore derives a risk level from a 0..100 score.
func (a *Analyzer) LevelForScore(score int) RiskLevel {
	switch {
	case score >= a.opts.HighRisk:
		return RiskHigh
	case score >= a.opts.MediumRisk:
		return RiskMedium
	default:
		return RiskLow
	}
}

func (a *Analyzer) normalizeRisk(r rawRisk) RiskAssessment {
	score := r.RiskScore
	if math.IsNaN(score) {
		score = 0
	}
	clamped := int(math.Round(math.Max(0, math.Min(score, 100))))

	level := RiskLevel(strings.ToLower(strings.TrimSpace(r.RiskLevel)))
	switch level {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		level = a.LevelForScore(clamped)
	}

	return RiskAssessment{
		EmployeeName: strings.TrimSpace(r.EmployeeName),
		RiskScore:    clamped,
		RiskLevel:    level,
	}
}

// orderByName lines results up with the input order. Results naming no input
// employee keep their relative order at the end.
func orderByName(employees []EmployeeSnapshot, results []RiskAssessment) []RiskAssessment {
	used := make([]bool, len(results))
	ordered := make([]RiskAssessment, 0, len(results))

	for _, e := range employees {
		for i, r := range results {
			if !used[i] && strings.EqualFold(r.EmployeeName, strings.TrimSpace(e.Name)) {
				used[i] = true
				ordered = append(ordered, r)
				break
			}
		}
	}
	for i, r := range results {
		if !used[i] {
			ordered = append(ordered, r)
		}
	}
	return ordered
}
