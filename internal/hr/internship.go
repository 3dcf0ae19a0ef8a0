package hr

import (
	"strings"
	"time"
)

type InternshipStatus string

const (
	InternshipPlanned    InternshipStatus = "planned"
	InternshipInProgress InternshipStatus = "in_progress"
	InternshipCompleted  InternshipStatus = "completed"
	InternshipCancelled  InternshipStatus = "cancelled"
	InternshipSuspended  InternshipStatus = "suspended"
)

type InternshipType string

const (
	InternshipIndustrial InternshipType = "industrial"
	InternshipResearch   InternshipType = "research"
	InternshipAcademic   InternshipType = "academic"
	InternshipOther      InternshipType = "other"
)

type Internship struct {
	ID               string           `json:"id"`
	StudentName      string           `json:"student_name"`
	StudentEmail     string           `json:"student_email,omitempty"`
	StudentPhone     string           `json:"student_phone,omitempty"`
	Level            string           `json:"level,omitempty"`
	Specialization   string           `json:"specialization,omitempty"`
	HostCompany      string           `json:"host_company"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          time.Time        `json:"end_date"`
	DurationMonths   float64          `json:"duration_months,omitempty"`
	Status           InternshipStatus `json:"status"`
	Type             InternshipType   `json:"type"`
	SupervisorID     string           `json:"supervisor_id,omitempty"`
	Description      string           `json:"description,omitempty"`
	ReportScore      float64          `json:"report_score,omitempty"`
	LearningOutcomes string           `json:"learning_outcomes,omitempty"`
}

func (in *Internship) Validate() error {
	if strings.TrimSpace(in.StudentName) == "" {
		return invalid("student_name", "student name is required")
	}
	if strings.TrimSpace(in.HostCompany) == "" {
		return invalid("host_company", "host company is required")
	}
	if err := checkDates(in.StartDate, in.EndDate); err != nil {
		return err
	}
	if in.ReportScore < 0 || in.ReportScore > 20 {
		return invalid("report_score", "report score must be between 0 and 20")
	}
	if err := oneOf("status", in.Status, InternshipPlanned, InternshipInProgress, InternshipCompleted, InternshipCancelled, InternshipSuspended); err != nil {
		return err
	}
	return oneOf("type", in.Type, InternshipIndustrial, InternshipResearch, InternshipAcademic, InternshipOther)
}

// SetStatus changes the status after checking it is a known value.
func (in *Internship) SetStatus(status InternshipStatus) error {
	if err := oneOf("status", status, InternshipPlanned, InternshipInProgress, InternshipCompleted, InternshipCancelled, InternshipSuspended); err != nil {
		return err
	}
	in.Status = status
	return nil
}
