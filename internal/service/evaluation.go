package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/hr"
	"github.com/ensa-hoceima/hr-assistant/internal/insights"
	"github.com/ensa-hoceima/hr-assistant/internal/messaging/twilio"
	"github.com/ensa-hoceima/hr-assistant/internal/store"
)

type EvaluationService struct {
	deps   Deps
	logger *zap.Logger
}

func NewEvaluationService(deps Deps) *EvaluationService {
	return &EvaluationService{deps: deps, logger: deps.log("evaluation")}
}

// Apply runs action on the evaluation and saves it. Submitting attaches an
// analysis; submitting and approving notify the employee over WhatsApp.
func (s *EvaluationService) Apply(ctx context.Context, id string, action hr.EvaluationAction) (*hr.Evaluation, error) {
	ev, err := s.deps.Store.Evaluation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ev.Apply(action, s.deps.now()); err != nil {
		return nil, err
	}

	employee, err := s.deps.Store.Employee(ctx, ev.EmployeeID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if action == hr.ActionSubmit {
		analysis := s.analyze(ctx, ev, employee)
		ev.Insights = analysis.HTML()
		ev.Recommendation = string(analysis.Recommendation)
	}

	if err := s.deps.Store.SaveEvaluation(ctx, ev); err != nil {
		return nil, err
	}
	s.logger.Info("evaluation updated",
		zap.String("reference", ev.Reference),
		zap.String("action", string(action)),
		zap.String("state", string(ev.State)),
	)

	if employee != nil && employee.CanReceiveWhatsApp() {
		switch action {
		case hr.ActionSubmit:
			s.deps.notify(ctx, s.logger, employee.WhatsAppNumber, twilio.EvaluationSubmitted, map[string]any{
				"employee_name": employee.Name,
				"score":         fmt.Sprintf("%.1f", ev.OverallScore()),
			})
		case hr.ActionApprove:
			s.deps.notify(ctx, s.logger, employee.WhatsAppNumber, twilio.EvaluationApproved, map[string]any{
				"employee_name":  employee.Name,
				"score":          fmt.Sprintf("%.1f", ev.OverallScore()),
				"recommendation": recommendationLabel(ev.Recommendation),
			})
		}
	}

	return ev, nil
}

// analyze never fails: without AI the rule-based insight is used and provider
// errors give the "unavailable" analysis.
func (s *EvaluationService) analyze(ctx context.Context, ev *hr.Evaluation, employee *hr.Employee) insights.PerformanceAnalysis {
	score := ev.OverallScore()
	if !s.deps.Flags.AIFeatures || s.deps.Analyzer == nil {
		return insights.FallbackInsight(score)
	}

	in, err := s.performanceInput(ctx, ev, employee)
	if err != nil {
		s.logger.Error("could not gather evaluation history", zap.Error(err))
		return insights.Unavailable(score)
	}

	analysis, err := s.deps.Analyzer.AnalyzePerformance(ctx, in)
	if err != nil {
		s.logger.Error("ai insights generation failed", zap.Error(err))
		return insights.Unavailable(score)
	}
	return analysis
}

func (s *EvaluationService) performanceInput(ctx context.Context, ev *hr.Evaluation, employee *hr.Employee) (insights.PerformanceInput, error) {
	score := ev.OverallScore()
	in := insights.PerformanceInput{
		Name:         ev.EmployeeID,
		Department:   "Unknown",
		Scores:       []float64{score},
		AverageScore: score,
		Trend:        string(hr.TrendStable),
		CurrentScores: insights.CriteriaScores{
			Technical:    ev.TechnicalScore,
			Productivity: ev.ProductivityScore,
			Teamwork:     ev.TeamworkScore,
			Innovation:   ev.InnovationScore,
			Attendance:   ev.AttendanceScore,
		},
	}
	if employee == nil {
		return in, nil
	}

	in.Name = employee.Name
	if employee.Department != "" {
		in.Department = employee.Department
	}
	in.TenureYears = employee.TenureYears(s.deps.now())

	history, err := s.deps.Store.EvaluationsFor(ctx, employee.ID)
	if err != nil {
		return in, err
	}
	var previous []*hr.Evaluation
	for _, h := range history {
		if h.ID != ev.ID && h.State == hr.EvaluationCompleted {
			previous = append(previous, h)
		}
	}
	for _, p := range previous[:min(3, len(previous))] {
		in.Scores = append(in.Scores, p.OverallScore())
	}
	if trend := hr.PerformanceOf(history).Trend; trend != hr.TrendNoData {
		in.Trend = string(trend)
	}

	trainings, err := s.deps.Store.Trainings(ctx)
	if err != nil {
		return in, err
	}
	for _, t := range trainings {
		if t.EmployeeID == employee.ID {
			in.TrainingCount++
		}
	}
	return in, nil
}

func recommendationLabel(r string) string {
	switch insights.Recommendation(r) {
	case insights.Promote:
		return "Recommend for Promotion"
	case insights.Retain:
		return "Retain Current Position"
	case insights.Improve:
		return "Needs Improvement"
	case insights.Replace:
		return "Consider Replacement"
	default:
		return "N/A"
	}
}
