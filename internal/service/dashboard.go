package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/hr"
	"github.com/ensa-hoceima/hr-assistant/internal/insights"
)

type DashboardService struct {
	deps   Deps
	logger *zap.Logger
}

func NewDashboardService(deps Deps) *DashboardService {
	return &DashboardService{deps: deps, logger: deps.log("dashboard")}
}

func (s *DashboardService) Stats(ctx context.Context) (hr.DashboardStats, error) {
	d, err := s.deps.Store.Dataset(ctx)
	if err != nil {
		return hr.DashboardStats{}, err
	}
	return hr.Stats(d, s.deps.now()), nil
}

// Anomalies feeds the dashboard figures to the anomaly detector.
func (s *DashboardService) Anomalies(ctx context.Context) ([]insights.AnomalyFinding, error) {
	if !s.deps.Flags.AIFeatures || s.deps.Analyzer == nil {
		return nil, insights.ErrAIDisabled
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	points := MetricPoints(stats)
	s.logger.Debug("detecting anomalies", zap.Int("metrics", len(points)))
	return s.deps.Analyzer.DetectAnomalies(ctx, points)
}

// MetricPoints flattens dashboard statistics into named metrics.
func MetricPoints(stats hr.DashboardStats) []insights.MetricPoint {
	points := []insights.MetricPoint{
		{Metric: "active_employees", Value: float64(stats.Employees.Total), Unit: "employees"},
		{Metric: "average_tenure", Value: stats.Employees.AvgTenure, Unit: "years"},
		{Metric: "recent_hires_90_days", Value: float64(stats.RecentHires), Unit: "employees"},
		{Metric: "completed_evaluations", Value: float64(stats.Evaluations.Total), Unit: "evaluations"},
		{Metric: "average_evaluation_score", Value: stats.Evaluations.AvgScore, Unit: "score/10"},
		{Metric: "completed_trainings", Value: float64(stats.Trainings.Total), Unit: "trainings"},
		{Metric: "average_post_training_score", Value: stats.Trainings.AvgScore, Unit: "score/10"},
		{Metric: "upcoming_trainings", Value: float64(stats.Trainings.Upcoming), Unit: "trainings"},
		{Metric: "active_internships", Value: float64(stats.ActiveInternships), Unit: "internships"},
	}

	points = appendCounts(points, "evaluations_scored_", stats.Evaluations.Distribution, "evaluations")
	points = appendCounts(points, "equipment_", stats.Equipment.ByState, "items")
	points = appendCounts(points, "headcount_", stats.Employees.ByDepartment, "employees")
	return points
}

func appendCounts(points []insights.MetricPoint, prefix string, counts map[string]int, unit string) []insights.MetricPoint {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		points = append(points, insights.MetricPoint{Metric: prefix + k, Value: float64(counts[k]), Unit: unit})
	}
	return points
}
