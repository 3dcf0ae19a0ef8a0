package hr

import (
	"strings"
	"time"
)

type TrainingStatus string

const (
	TrainingPlanned    TrainingStatus = "planned"
	TrainingInProgress TrainingStatus = "in_progress"
	TrainingCompleted  TrainingStatus = "completed"
	TrainingCancelled  TrainingStatus = "cancelled"
)

type TrainingCategory string

const (
	TrainingTechnical  TrainingCategory = "technical"
	TrainingSoftSkills TrainingCategory = "soft_skills"
	TrainingCompliance TrainingCategory = "compliance"
	TrainingManagement TrainingCategory = "management"
)

const hoursPerDay = 8

type Training struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	EmployeeID        string           `json:"employee_id"`
	TrainerID         string           `json:"trainer_id,omitempty"`
	StartDate         time.Time        `json:"start_date"`
	EndDate           *time.Time       `json:"end_date,omitempty"`
	Category          TrainingCategory `json:"category"`
	Status            TrainingStatus   `json:"status"`
	Description       string           `json:"description,omitempty"`
	Certification     bool             `json:"certification"`
	Cost              float64          `json:"cost,omitempty"`
	Feedback          string           `json:"feedback,omitempty"`
	PostTrainingScore float64          `json:"post_training_score,omitempty"`
}

// DurationHours counts eight hours per day between start and end.
func (t *Training) DurationHours() float64 {
	if t.StartDate.IsZero() || t.EndDate == nil {
		return 0
	}
	days := Date(*t.EndDate).Sub(Date(t.StartDate)).Hours() / 24
	return days * hoursPerDay
}

func (t *Training) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return invalid("title", "training title is required")
	}
	if t.EmployeeID == "" {
		return invalid("employee_id", "employee is required")
	}
	if t.EndDate != nil {
		if err := checkDates(t.StartDate, *t.EndDate); err != nil {
			return err
		}
	}
	if err := oneOf("category", t.Category, TrainingTechnical, TrainingSoftSkills, TrainingCompliance, TrainingManagement); err != nil {
		return err
	}
	return oneOf("status", t.Status, TrainingPlanned, TrainingInProgress, TrainingCompleted, TrainingCancelled)
}
