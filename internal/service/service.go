// Package service runs the user-facing HR workflows: it loads records from
// the store, asks the insights analyzer for AI output and sends WhatsApp
// notifications.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/insights"
	"github.com/ensa-hoceima/hr-assistant/internal/logger"
	"github.com/ensa-hoceima/hr-assistant/internal/messaging/twilio"
	"github.com/ensa-hoceima/hr-assistant/internal/store"
)

// ErrFeatureDisabled is returned by operations switched off in Flags.
var ErrFeatureDisabled = errors.New("feature disabled")

// Flags switches optional features on and off.
type Flags struct {
	AIFeatures         bool `mapstructure:"enable-ai-features"`
	WhatsAppBot        bool `mapstructure:"enable-whatsapp-bot"`
	SmartMatching      bool `mapstructure:"enable-smart-matching"`
	MatchingThreshold  int  `mapstructure:"matching-threshold"`
	TurnoverPrediction bool `mapstructure:"enable-turnover-prediction"`
	InternshipTracking bool `mapstructure:"enable-internship-tracking"`
}

func DefaultFlags() Flags {
	return Flags{
		AIFeatures:         true,
		WhatsAppBot:        true,
		SmartMatching:      true,
		MatchingThreshold:  50,
		TurnoverPrediction: true,
		InternshipTracking: true,
	}
}

// Notifier delivers WhatsApp notifications. *twilio.Client implements it.
type Notifier interface {
	SendNotification(ctx context.Context, to string, kind twilio.NotificationKind, data map[string]any) (*twilio.SendResult, error)
}

// Deps are shared by every service. Notifier may be nil when WhatsApp is not
// configured.
type Deps struct {
	Store    *store.Store
	Analyzer *insights.Analyzer
	Notifier Notifier
	Flags    Flags
	Logger   *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) log(name string) *zap.Logger {
	return logger.OrNop(d.Logger).Named(name)
}

// notify sends a notification when the bot is enabled. Failures are logged and
// reported as false so workflows never fail on messaging.
func (d Deps) notify(ctx context.Context, log *zap.Logger, to string, kind twilio.NotificationKind, data map[string]any) bool {
	if !d.Flags.WhatsAppBot || d.Notifier == nil || to == "" {
		return false
	}
	res, err := d.Notifier.SendNotification(ctx, to, kind, data)
	if err != nil {
		log.Warn("whatsapp notification failed", zap.String("kind", string(kind)), zap.Error(err))
		return false
	}
	log.Info("whatsapp notification sent", zap.String("kind", string(kind)), zap.String("sid", res.SID))
	return true
}
