package hr

import (
	"math"
	"time"
)

// Dataset is everything the dashboard and assistant aggregate over.
type Dataset struct {
	Employees   []*Employee
	Evaluations []*Evaluation
	Trainings   []*Training
	Equipment   []*Equipment
	Internships []*Internship
}

const (
	undefined          = "Undefined"
	topPerformerScore  = 8.0
	maxTopPerformers   = 5
	recentHireWindow   = 90 * 24 * time.Hour
	scoreBandBelowFive = "5-"
)

type EmployeeStats struct {
	Total        int            `json:"total"`
	ByDepartment map[string]int `json:"by_department"`
	BySkillLevel map[string]int `json:"by_skill_level"`
	AvgTenure    float64        `json:"avg_tenure"`
}

type EvaluationStats struct {
	Total        int            `json:"total"`
	AvgScore     float64        `json:"avg_score"`
	Distribution map[string]int `json:"distribution"`
}

type EquipmentStats struct {
	Total   int            `json:"total"`
	ByState map[string]int `json:"by_state"`
}

type TrainingStats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	AvgScore   float64        `json:"avg_score"`
	Upcoming   int            `json:"upcoming"`
}

type DashboardStats struct {
	Employees         EmployeeStats   `json:"employee_stats"`
	Evaluations       EvaluationStats `json:"evaluation_stats"`
	Equipment         EquipmentStats  `json:"equipment_stats"`
	Trainings         TrainingStats   `json:"training_stats"`
	TopPerformers     []string        `json:"top_performers"`
	RecentHires       int             `json:"recent_hires"`
	ActiveInternships int             `json:"active_internships"`
}

// Stats aggregates d as of now. Archived employees are left out.
func Stats(d Dataset, now time.Time) DashboardStats {
	active := activeEmployees(d.Employees)
	completed := completedEvaluations(d.Evaluations)

	stats := DashboardStats{
		Employees: EmployeeStats{
			Total:        len(active),
			ByDepartment: map[string]int{},
			BySkillLevel: map[string]int{},
		},
		Evaluations: EvaluationStats{
			Total:        len(completed),
			Distribution: map[string]int{scoreBandBelowFive: 0, "5-7": 0, "7-8.5": 0, "8.5+": 0},
		},
		Equipment: EquipmentStats{Total: len(d.Equipment), ByState: map[string]int{}},
		Trainings: TrainingStats{ByCategory: map[string]int{}},
	}

	var tenure float64
	var withContract int
	for _, e := range active {
		stats.Employees.ByDepartment[orUndefined(e.Department)]++
		stats.Employees.BySkillLevel[orUndefined(string(e.SkillLevel))]++
		if e.FirstContractDate != nil {
			tenure += e.TenureYears(now)
			withContract++
			if Date(now).Sub(Date(*e.FirstContractDate)) <= recentHireWindow {
				stats.RecentHires++
			}
		}
	}
	if withContract > 0 {
		stats.Employees.AvgTenure = round(tenure/float64(withContract), 1)
	}

	var total float64
	for _, ev := range completed {
		score := ev.OverallScore()
		total += score
		stats.Evaluations.Distribution[ScoreBand(score)]++
	}
	if len(completed) > 0 {
		stats.Evaluations.AvgScore = round(total/float64(len(completed)), 2)
	}

	for _, eq := range d.Equipment {
		stats.Equipment.ByState[orUndefined(string(eq.State))]++
	}

	var trainingScore float64
	today := Date(now)
	for _, t := range d.Trainings {
		switch t.Status {
		case TrainingCompleted:
			stats.Trainings.Total++
			stats.Trainings.ByCategory[orUndefined(string(t.Category))]++
			trainingScore += t.PostTrainingScore
		case TrainingPlanned:
			if !Date(t.StartDate).Before(today) {
				stats.Trainings.Upcoming++
			}
		}
	}
	if stats.Trainings.Total > 0 {
		stats.Trainings.AvgScore = round(trainingScore/float64(stats.Trainings.Total), 2)
	}

	for _, in := range d.Internships {
		if in.Status == InternshipInProgress {
			stats.ActiveInternships++
		}
	}

	stats.TopPerformers = TopPerformers(active, completed)
	return stats
}

// ScoreBand buckets an overall score for the evaluation distribution.
func ScoreBand(score float64) string {
	switch {
	case score < 5:
		return scoreBandBelowFive
	case score < 7:
		return "5-7"
	case score < 8.5:
		return "7-8.5"
	default:
		return "8.5+"
	}
}

// TopPerformers lists, in employee order, up to five employees whose completed
// evaluations average at least 8.
func TopPerformers(employees []*Employee, completed []*Evaluation) []string {
	byEmployee := make(map[string][]float64)
	for _, ev := range completed {
		byEmployee[ev.EmployeeID] = append(byEmployee[ev.EmployeeID], ev.OverallScore())
	}

	top := []string{}
	for _, e := range employees {
		scores := byEmployee[e.ID]
		if len(scores) == 0 {
			continue
		}
		var sum float64
		for _, s := range scores {
			sum += s
		}
		if sum/float64(len(scores)) >= topPerformerScore {
			top = append(top, e.Name)
		}
		if len(top) == maxTopPerformers {
			break
		}
	}
	return top
}

// AssistantContext is the HR summary handed to the assistant with each
// question.
type AssistantContext struct {
	TotalEmployees     int            `json:"total_employees"`
	AvgPerformance     float64        `json:"avg_performance"`
	Departments        map[string]int `json:"departments"`
	TotalEvaluations   int            `json:"total_evaluations"`
	CompletedTrainings int            `json:"completed_trainings"`
	ActiveInternships  int            `json:"active_internships"`
	RecentHires        int            `json:"recent_hires"`
	EvaluationBands    map[string]int `json:"evaluation_distribution"`
	TopPerformers      []string       `json:"top_performers"`
	TrainingCategories []string       `json:"training_categories"`
}

func BuildAssistantContext(d Dataset, now time.Time) AssistantContext {
	stats := Stats(d, now)

	seen := map[TrainingCategory]bool{}
	categories := []string{}
	for _, t := range d.Trainings {
		if t.Category != "" && !seen[t.Category] {
			seen[t.Category] = true
			categories = append(categories, string(t.Category))
		}
	}

	return AssistantContext{
		TotalEmployees:     stats.Employees.Total,
		AvgPerformance:     stats.Evaluations.AvgScore,
		Departments:        stats.Employees.ByDepartment,
		TotalEvaluations:   stats.Evaluations.Total,
		CompletedTrainings: stats.Trainings.Total,
		ActiveInternships:  stats.ActiveInternships,
		RecentHires:        stats.RecentHires,
		EvaluationBands:    stats.Evaluations.Distribution,
		TopPerformers:      stats.TopPerformers,
		TrainingCategories: categories,
	}
}

func activeEmployees(employees []*Employee) []*Employee {
	out := make([]*Employee, 0, len(employees))
	for _, e := range employees {
		if !e.Archived {
			out = append(out, e)
		}
	}
	return out
}

func completedEvaluations(evaluations []*Evaluation) []*Evaluation {
	out := make([]*Evaluation, 0, len(evaluations))
	for _, ev := range evaluations {
		if ev.State == EvaluationCompleted {
			out = append(out, ev)
		}
	}
	return out
}

func orUndefined(s string) string {
	if s == "" {
		return undefined
	}
	return s
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
