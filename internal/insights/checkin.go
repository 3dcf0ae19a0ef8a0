package insights

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/jsonparse"
)

type Sentiment string

const (
	Positive   Sentiment = "positive"
	Neutral    Sentiment = "neutral"
	Concerning Sentiment = "concerning"
)

type CheckinAnalysis struct {
	Sentiment       Sentiment
	Keywords        string
	Summary         string
	AttentionNeeded bool
}

type rawCheckin struct {
	Sentiment       string `json:"sentiment"`
	Keywords        any    `json:"keywords"`
	Summary         any    `json:"summary"`
	AttentionNeeded bool   `json:"attention_needed"`
}

var concerningKeywords = []string{"struggling", "difficult", "problem", "issue", "help", "confused", "stuck", "challenge"}

const (
	checkinMaxTokens   = 200
	checkinTemperature = 0.2
)

// AnalyzeCheckin classifies a student's check-in message. It never fails:
// provider errors give a neutral result and unparseable answers are
// classified by looking for negative words in the raw text.
func (a *Analyzer) AnalyzeCheckin(ctx context.Context, message string) CheckinAnalysis {
	if strings.TrimSpace(message) == "" {
		return CheckinAnalysis{Sentiment: Neutral}
	}

	if !a.opts.AIEnabled || a.gen == nil {
		return KeywordCheckin(message)
	}

	raw, err := a.generate(ctx, "checkin", prompt("checkin", map[string]string{
		"MESSAGE": message,
	}), checkinMaxTokens, checkinTemperature)
	if err != nil {
		a.logger.Error("sentiment analysis failed", zap.Error(err))
		return CheckinAnalysis{Sentiment: Neutral}
	}

	parsed, ok := jsonparse.Object[rawCheckin](raw, a.parseOptions("checkin")...)
	if !ok {
		lower := strings.ToLower(raw)
		if strings.Contains(lower, "concerning") || strings.Contains(lower, "negative") {
			return CheckinAnalysis{Sentiment: Concerning, AttentionNeeded: true}
		}
		return CheckinAnalysis{Sentiment: Positive}
	}

	sentiment := Sentiment(strings.ToLower(strings.TrimSpace(parsed.Sentiment)))
	switch sentiment {
	case Positive, Neutral, Concerning:
	default:
		sentiment = Neutral
	}

	return CheckinAnalysis{
		Sentiment:       sentiment,
		Keywords:        flatten(parsed.Keywords),
		Summary:         flatten(parsed.Summary),
		AttentionNeeded: parsed.AttentionNeeded,
	}
}

// KeywordCheckin is the analysis used without a model.
func KeywordCheckin(message string) CheckinAnalysis {
	lower := strings.ToLower(message)
	var found []string
	for _, keyword := range concerningKeywords {
		if strings.Contains(lower, keyword) {
			found = append(found, keyword)
		}
	}
	if len(found) > 0 {
		return CheckinAnalysis{Sentiment: Concerning, Keywords: strings.Join(found, ", "), AttentionNeeded: true}
	}
	return CheckinAnalysis{Sentiment: Positive}
}
