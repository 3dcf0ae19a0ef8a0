package hr

import (
	"strings"
	"time"
)

type CheckinSource string

const (
	SourceWhatsApp CheckinSource = "whatsapp"
	SourceManual   CheckinSource = "manual"
	SourceEmail    CheckinSource = "email"
)

type Checkin struct {
	ID                 string        `json:"id"`
	InternshipID       string        `json:"internship_id"`
	StudentName        string        `json:"student_name,omitempty"`
	CompanyName        string        `json:"company_name,omitempty"`
	Date               time.Time     `json:"date"`
	Message            string        `json:"message"`
	Source             CheckinSource `json:"source"`
	Sentiment          string        `json:"sentiment,omitempty"`
	Keywords           string        `json:"keywords,omitempty"`
	Summary            string        `json:"summary,omitempty"`
	RequiresAttention  bool          `json:"requires_attention"`
	SupervisorNotified bool          `json:"supervisor_notified"`
}

func (c *Checkin) Validate() error {
	if c.InternshipID == "" {
		return invalid("internship_id", "internship is required")
	}
	if strings.TrimSpace(c.Message) == "" {
		return invalid("message", "progress update is required")
	}
	return oneOf("source", c.Source, SourceWhatsApp, SourceManual, SourceEmail)
}

// AssistantChat is one question answered by the HR assistant.
type AssistantChat struct {
	ID           string    `json:"id"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	AskedAt      time.Time `json:"asked_at"`
	ResponseTime float64   `json:"response_time"`
	ContextData  string    `json:"context_data,omitempty"`
}
