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

type CheckinService struct {
	deps   Deps
	logger *zap.Logger
}

func NewCheckinService(deps Deps) *CheckinService {
	return &CheckinService{deps: deps, logger: deps.log("checkin")}
}

// Record stores a student's progress update with its sentiment analysis and
// alerts the internship supervisor when the update needs attention.
func (s *CheckinService) Record(ctx context.Context, internshipID, message string, source hr.CheckinSource) (*hr.Checkin, error) {
	if !s.deps.Flags.InternshipTracking {
		return nil, fmt.Errorf("internship tracking: %w", ErrFeatureDisabled)
	}

	internship, err := s.deps.Store.Internship(ctx, internshipID)
	if err != nil {
		return nil, err
	}

	var analysis insights.CheckinAnalysis
	if s.deps.Analyzer != nil {
		analysis = s.deps.Analyzer.AnalyzeCheckin(ctx, message)
	} else {
		analysis = insights.KeywordCheckin(message)
	}

	if source == "" {
		source = hr.SourceManual
	}
	checkin := &hr.Checkin{
		InternshipID:      internship.ID,
		StudentName:       internship.StudentName,
		CompanyName:       internship.HostCompany,
		Date:              hr.Date(s.deps.now()),
		Message:           message,
		Source:            source,
		Sentiment:         string(analysis.Sentiment),
		Keywords:          analysis.Keywords,
		Summary:           analysis.Summary,
		RequiresAttention: analysis.AttentionNeeded,
	}
	if err := s.deps.Store.SaveCheckin(ctx, checkin); err != nil {
		return nil, err
	}

	s.logger.Info("check-in recorded",
		zap.String("student", internship.StudentName),
		zap.String("sentiment", checkin.Sentiment),
		zap.Bool("requires_attention", checkin.RequiresAttention),
	)

	if checkin.RequiresAttention && s.alertSupervisor(ctx, internship, checkin) {
		checkin.SupervisorNotified = true
		if err := s.deps.Store.SaveCheckin(ctx, checkin); err != nil {
			return nil, err
		}
	}
	return checkin, nil
}

func (s *CheckinService) alertSupervisor(ctx context.Context, internship *hr.Internship, checkin *hr.Checkin) bool {
	if internship.SupervisorID == "" {
		return false
	}
	supervisor, err := s.deps.Store.Employee(ctx, internship.SupervisorID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("supervisor notification failed", zap.Error(err))
		}
		return false
	}
	if !supervisor.CanReceiveWhatsApp() {
		return false
	}

	issue := checkin.Summary
	if issue == "" && checkin.Keywords != "" {
		issue = "Mentions: " + checkin.Keywords
	}
	if issue == "" {
		issue = "Check-in flagged as concerning"
	}
	risk := "medium"
	if checkin.Sentiment == string(insights.Concerning) {
		risk = "high"
	}

	return s.deps.notify(ctx, s.logger, supervisor.WhatsAppNumber, twilio.SupervisorAlert, map[string]any{
		"student_name": internship.StudentName,
		"issue":        issue,
		"company_name": internship.HostCompany,
		"risk_level":   risk,
	})
}
