package hr

import (
	"math"
	"sort"
	"strings"
	"time"
)

type SkillLevel string

const (
	SkillBasic        SkillLevel = "basic"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

type Employee struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Department           string     `json:"department,omitempty"`
	JobTitle             string     `json:"job_title,omitempty"`
	ManagerID            string     `json:"manager_id,omitempty"`
	IdentificationNumber string     `json:"identification_number,omitempty"`
	SkillLevel           SkillLevel `json:"skill_level,omitempty"`
	FirstContractDate    *time.Time `json:"first_contract_date,omitempty"`
	Archived             bool       `json:"archived,omitempty"`

	TechnicalSkills string `json:"technical_skills,omitempty"`
	SoftSkills      string `json:"soft_skills,omitempty"`
	LanguageSkills  string `json:"language_skills,omitempty"`
	// Expertise is matched against project domains and stacks.
	Expertise string `json:"expertise,omitempty"`

	WhatsAppNumber               string `json:"whatsapp_number,omitempty"`
	WhatsAppVerified             bool   `json:"whatsapp_verified"`
	WhatsAppNotificationsEnabled bool   `json:"whatsapp_notifications_enabled"`

	TurnoverRisk      int        `json:"turnover_risk,omitempty"`
	TurnoverRiskLevel string     `json:"turnover_risk_level,omitempty"`
	RiskAssessedAt    *time.Time `json:"risk_assessed_at,omitempty"`
}

func (e *Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return invalid("name", "employee name is required")
	}
	if e.IdentificationNumber != "" && len(e.IdentificationNumber) != 8 {
		return invalid("identification_number", "national ID must be 8 characters long")
	}
	if e.SkillLevel != "" {
		return oneOf("skill_level", e.SkillLevel, SkillBasic, SkillIntermediate, SkillAdvanced, SkillExpert)
	}
	return nil
}

// CanReceiveWhatsApp reports whether notifications may be sent to the
// employee's WhatsApp number.
func (e *Employee) CanReceiveWhatsApp() bool {
	return e.WhatsAppNumber != "" && e.WhatsAppVerified && e.WhatsAppNotificationsEnabled
}

// TenureYears is the time since the first contract in 365-day years, 0 when
// the contract date is unknown.
func (e *Employee) TenureYears(now time.Time) float64 {
	if e.FirstContractDate == nil {
		return 0
	}
	days := Date(now).Sub(Date(*e.FirstContractDate)).Hours() / 24
	return days / 365
}

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
	TrendNoData    Trend = "no_data"
)

type Quality string

const (
	QualityExcellent        Quality = "excellent"
	QualityGood             Quality = "good"
	QualityNeedsImprovement Quality = "needs_improvement"
	QualityCritical         Quality = "critical"
)

// trendMargin is how far the latest score must move from the previous one to
// count as a change.
const trendMargin = 0.5

type Performance struct {
	Average float64 `json:"average"`
	Trend   Trend   `json:"trend"`
	// Recent holds up to three overall scores, newest first.
	Recent  []float64 `json:"recent"`
	Quality Quality   `json:"quality,omitempty"`
}

// PerformanceOf summarizes the completed evaluations of one employee.
// Evaluations in other states are ignored.
func PerformanceOf(evaluations []*Evaluation) Performance {
	completed := make([]*Evaluation, 0, len(evaluations))
	for _, ev := range evaluations {
		if ev.State == EvaluationCompleted {
			completed = append(completed, ev)
		}
	}
	if len(completed) == 0 {
		return Performance{Trend: TrendNoData}
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].Date.After(completed[j].Date)
	})

	var sum float64
	var n int
	for _, ev := range completed {
		if score := ev.OverallScore(); score > 0 {
			sum += score
			n++
		}
	}

	p := Performance{Trend: TrendStable}
	if n > 0 {
		p.Average = sum / float64(n)
	}
	for _, ev := range completed[:min(3, len(completed))] {
		p.Recent = append(p.Recent, ev.OverallScore())
	}

	if len(completed) >= 2 {
		current, previous := p.Recent[0], p.Recent[1]
		switch {
		case current > previous+trendMargin:
			p.Trend = TrendImproving
		case current < previous-trendMargin:
			p.Trend = TrendDeclining
		}
	}

	p.Quality = QualityFor(p.Average)
	return p
}

func QualityFor(avg float64) Quality {
	switch {
	case avg >= 8.5:
		return QualityExcellent
	case avg >= 7:
		return QualityGood
	case avg >= 5:
		return QualityNeedsImprovement
	default:
		return QualityCritical
	}
}

// DaysSinceLastReview counts days since the newest evaluation of any state,
// or -1 when there is none.
func DaysSinceLastReview(evaluations []*Evaluation, now time.Time) int {
	var last time.Time
	for _, ev := range evaluations {
		if ev.Date.After(last) {
			last = ev.Date
		}
	}
	if last.IsZero() {
		return -1
	}
	return int(math.Round(Date(now).Sub(Date(last)).Hours() / 24))
}
