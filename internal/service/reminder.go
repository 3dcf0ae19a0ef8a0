package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/hr"
	"github.com/ensa-hoceima/hr-assistant/internal/messaging/twilio"
)

type ReminderService struct {
	deps   Deps
	logger *zap.Logger
}

func NewReminderService(deps Deps) *ReminderService {
	return &ReminderService{deps: deps, logger: deps.log("reminder")}
}

// WeeklyCheckins asks every student of an in-progress internship for a
// progress update. It returns how many messages went out; students without a
// phone number are skipped.
func (s *ReminderService) WeeklyCheckins(ctx context.Context) (int, error) {
	if !s.deps.Flags.InternshipTracking || !s.deps.Flags.WhatsAppBot {
		return 0, fmt.Errorf("weekly check-ins: %w", ErrFeatureDisabled)
	}
	if s.deps.Notifier == nil {
		return 0, fmt.Errorf("weekly check-ins: %w", twilio.ErrIncompleteConfig)
	}

	internships, err := s.deps.Store.Internships(ctx, hr.InternshipInProgress)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, in := range internships {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if in.StudentPhone == "" {
			s.logger.Debug("student has no phone number", zap.String("student", in.StudentName))
			continue
		}
		if s.deps.notify(ctx, s.logger, in.StudentPhone, twilio.WeeklyCheckin, map[string]any{
			"student_name": in.StudentName,
			"company_name": in.HostCompany,
		}) {
			sent++
		}
	}

	s.logger.Info("weekly check-in reminders sent", zap.Int("sent", sent), zap.Int("internships", len(internships)))
	return sent, nil
}
