package hr

import (
	"strings"
	"time"
)

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on_hold"
	ProjectCancelled  ProjectStatus = "cancelled"
)

type Project struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	SupervisorID    string        `json:"supervisor_id"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         time.Time     `json:"end_date"`
	Status          ProjectStatus `json:"status"`
	Domain          string        `json:"domain,omitempty"`
	Budget          float64       `json:"budget,omitempty"`
	TechnologyStack string        `json:"technology_stack,omitempty"`
	Deliverables    string        `json:"deliverables,omitempty"`
	FinalGrade      float64       `json:"final_grade,omitempty"`
}

func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return invalid("title", "project title is required")
	}
	if p.SupervisorID == "" {
		return invalid("supervisor_id", "supervisor is required")
	}
	if err := checkDates(p.StartDate, p.EndDate); err != nil {
		return err
	}
	if p.Budget < 0 {
		return invalid("budget", "budget cannot be negative")
	}
	return oneOf("status", p.Status, ProjectPlanning, ProjectInProgress, ProjectCompleted, ProjectOnHold, ProjectCancelled)
}
