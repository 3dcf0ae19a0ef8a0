package hr

import (
	"fmt"
	"strings"
	"time"
)

type EvaluationState string

const (
	EvaluationDraft     EvaluationState = "draft"
	EvaluationSubmitted EvaluationState = "submitted"
	EvaluationApproved  EvaluationState = "approved"
	EvaluationReviewed  EvaluationState = "reviewed"
	EvaluationCompleted EvaluationState = "completed"
)

type EvaluationAction string

const (
	ActionSubmit   EvaluationAction = "submit"
	ActionApprove  EvaluationAction = "approve"
	ActionReject   EvaluationAction = "reject"
	ActionReview   EvaluationAction = "review"
	ActionComplete EvaluationAction = "complete"
	ActionReset    EvaluationAction = "reset"
)

func EvaluationActions() []EvaluationAction {
	return []EvaluationAction{ActionSubmit, ActionApprove, ActionReject, ActionReview, ActionComplete, ActionReset}
}

type Evaluation struct {
	ID                string          `json:"id"`
	Reference         string          `json:"reference"`
	EmployeeID        string          `json:"employee_id"`
	EvaluatorID       string          `json:"evaluator_id,omitempty"`
	ApprovalManagerID string          `json:"approval_manager_id,omitempty"`
	Date              time.Time       `json:"date"`
	State             EvaluationState `json:"state"`
	ApprovalDate      *time.Time      `json:"approval_date,omitempty"`
	ApprovalComments  string          `json:"approval_comments,omitempty"`

	TechnicalScore    float64 `json:"technical_score"`
	ProductivityScore float64 `json:"productivity_score"`
	TeamworkScore     float64 `json:"teamwork_score"`
	InnovationScore   float64 `json:"innovation_score"`
	AttendanceScore   float64 `json:"attendance_score"`

	Comments        string `json:"comments,omitempty"`
	ImprovementPlan string `json:"improvement_plan,omitempty"`

	Insights       string `json:"insights,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// NewEvaluation returns a draft evaluation dated today with a fresh reference.
func NewEvaluation(employeeID string, now time.Time) *Evaluation {
	id := NewID()
	return &Evaluation{
		ID:         id,
		Reference:  fmt.Sprintf("EVAL/%d/%s", now.Year(), strings.ToUpper(id[:8])),
		EmployeeID: employeeID,
		Date:       Date(now),
		State:      EvaluationDraft,
	}
}

// OverallScore is the mean of the criteria scores that were filled in.
func (e *Evaluation) OverallScore() float64 {
	var sum float64
	var n int
	for _, s := range []float64{e.TechnicalScore, e.ProductivityScore, e.TeamworkScore, e.InnovationScore, e.AttendanceScore} {
		if s > 0 {
			sum += s
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (e *Evaluation) Validate() error {
	if e.EmployeeID == "" {
		return invalid("employee_id", "employee is required")
	}
	for name, s := range map[string]float64{
		"technical_score":    e.TechnicalScore,
		"productivity_score": e.ProductivityScore,
		"teamwork_score":     e.TeamworkScore,
		"innovation_score":   e.InnovationScore,
		"attendance_score":   e.AttendanceScore,
	} {
		if s < 0 || s > 10 {
			return invalid(name, "score must be between 0 and 10")
		}
	}
	return oneOf("state", e.State, EvaluationDraft, EvaluationSubmitted, EvaluationApproved, EvaluationReviewed, EvaluationCompleted)
}

// Apply moves the evaluation through its approval workflow. The record is
// left untouched when the action is refused.
func (e *Evaluation) Apply(action EvaluationAction, now time.Time) error {
	switch action {
	case ActionSubmit:
		if e.State != EvaluationDraft {
			return transitionError("evaluation", string(action), string(e.State))
		}
		if e.ApprovalManagerID == "" {
			return invalid("approval_manager_id", "select an approving manager before submitting")
		}
		e.State = EvaluationSubmitted
	case ActionApprove:
		if e.State != EvaluationSubmitted {
			return transitionError("evaluation", string(action), string(e.State))
		}
		e.State = EvaluationApproved
		e.ApprovalDate = datePtr(now)
	case ActionReject:
		if e.State != EvaluationSubmitted && e.State != EvaluationApproved {
			return transitionError("evaluation", string(action), string(e.State))
		}
		e.State = EvaluationDraft
	case ActionReview:
		if e.State != EvaluationApproved {
			return transitionError("evaluation", string(action), string(e.State))
		}
		e.State = EvaluationReviewed
	case ActionComplete:
		if e.State != EvaluationReviewed {
			return transitionError("evaluation", string(action), string(e.State))
		}
		e.State = EvaluationCompleted
	case ActionReset:
		if e.State == EvaluationCompleted {
			return transitionError("evaluation", string(action), string(e.State))
		}
		e.State = EvaluationDraft
	default:
		return fmt.Errorf("unknown evaluation action %q", action)
	}
	return nil
}
