package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/hr"
	"github.com/ensa-hoceima/hr-assistant/internal/insights"
)

type TurnoverService struct {
	deps   Deps
	logger *zap.Logger
}

func NewTurnoverService(deps Deps) *TurnoverService {
	return &TurnoverService{deps: deps, logger: deps.log("turnover")}
}

// Scan scores every active employee in one model call and records the risk on
// the matching employee records.
func (s *TurnoverService) Scan(ctx context.Context) ([]insights.RiskAssessment, error) {
	if !s.deps.Flags.TurnoverPrediction {
		return nil, fmt.Errorf("turnover prediction: %w", ErrFeatureDisabled)
	}
	if !s.deps.Flags.AIFeatures || s.deps.Analyzer == nil {
		return nil, fmt.Errorf("turnover prediction: %w", insights.ErrAIDisabled)
	}

	d, err := s.deps.Store.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	now := s.deps.now()
	snapshots, byName := Snapshots(d, now)

	assessments, err := s.deps.Analyzer.BatchAnalyzeTurnover(ctx, snapshots)
	if err != nil {
		return nil, fmt.Errorf("turnover scan: %w", err)
	}

	assessedAt := hr.Date(now)
	for _, a := range assessments {
		employee, ok := byName[strings.ToLower(a.EmployeeName)]
		if !ok {
			s.logger.Warn("assessment names an unknown employee", zap.String("employee", a.EmployeeName))
			continue
		}
		employee.TurnoverRisk = a.RiskScore
		employee.TurnoverRiskLevel = string(a.RiskLevel)
		employee.RiskAssessedAt = &assessedAt
		if err := s.deps.Store.SaveEmployee(ctx, employee); err != nil {
			return nil, err
		}
	}

	s.logger.Info("turnover scan finished", zap.Int("employees", len(snapshots)), zap.Int("assessed", len(assessments)))
	return assessments, nil
}

// Snapshots builds the model input for every active employee, keyed by
// lowercase name for matching results back.
func Snapshots(d hr.Dataset, now time.Time) ([]insights.EmployeeSnapshot, map[string]*hr.Employee) {
	evaluations := make(map[string][]*hr.Evaluation)
	for _, ev := range d.Evaluations {
		evaluations[ev.EmployeeID] = append(evaluations[ev.EmployeeID], ev)
	}
	trainings := make(map[string]int)
	for _, t := range d.Trainings {
		trainings[t.EmployeeID]++
	}

	snapshots := make([]insights.EmployeeSnapshot, 0, len(d.Employees))
	byName := make(map[string]*hr.Employee, len(d.Employees))
	for _, e := range d.Employees {
		if e.Archived {
			continue
		}
		evals := evaluations[e.ID]
		recent := hr.PerformanceOf(evals).Recent
		if recent == nil {
			recent = []float64{}
		}
		snapshots = append(snapshots, insights.EmployeeSnapshot{
			Name:                e.Name,
			Department:          e.Department,
			RecentScores:        recent,
			TrainingCount:       trainings[e.ID],
			TenureYears:         roundTenth(e.TenureYears(now)),
			DaysSinceLastReview: hr.DaysSinceLastReview(evals, now),
		})
		byName[strings.ToLower(strings.TrimSpace(e.Name))] = e
	}
	return snapshots, byName
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
