package matching

// Student is a candidate for an internship. Performance is the average score on
// a 0..10 scale; nil means unknown.
type Student struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Skills      []string `json:"skills"`
	Interests   string   `json:"interests"`
	Performance *float64 `json:"avg_score,omitempty"`
	Level       string   `json:"level"`
	// Trend is the performance trend, e.g. "improving".
	Trend string `json:"performance_trend,omitempty"`
}

type Internship struct {
	ID             string   `json:"id,omitempty"`
	Title          string   `json:"title,omitempty"`
	RequiredSkills []string `json:"required_skills"`
	Description    string   `json:"description"`
	Type           string   `json:"type"`
	RequiredLevel  string   `json:"required_level"`
	HasSupervisor  bool     `json:"has_supervisor"`
}

type Supervisor struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Expertise       string `json:"expertise"`
	Skills          string `json:"skills"`
	CurrentProjects int    `json:"current_projects"`
}

type Project struct {
	ID              string `json:"id,omitempty"`
	Title           string `json:"title,omitempty"`
	Domain          string `json:"domain"`
	TechnologyStack string `json:"technology_stack"`
}

// Category is the recommendation bucket of a score.
type Category string

const (
	Excellent Category = "excellent"
	Good      Category = "good"
	Fair      Category = "fair"
	Weak      Category = "weak"
)

var labels = map[Category]string{
	Excellent: "Excellent Match - Highly Recommended",
	Good:      "Good Match - Recommended",
	Fair:      "Fair Match - Consider with review",
	Weak:      "Weak Match - Not Recommended",
}

func (c Category) Label() string { return labels[c] }

type MatchResult struct {
	TotalScore       float64  `json:"total_score"`
	SkillMatch       float64  `json:"skill_match"`
	SemanticMatch    float64  `json:"semantic_match"`
	PerformanceBonus float64  `json:"performance_bonus"`
	LevelMatch       float64  `json:"level_match"`
	Category         Category `json:"category"`
	Recommendation   string   `json:"recommendation"`
}

type SupervisorMatch struct {
	TotalScore        float64  `json:"total_score"`
	ExpertiseMatch    float64  `json:"expertise_match"`
	AvailabilityScore float64  `json:"availability_score"`
	Category          Category `json:"category"`
	Recommendation    string   `json:"recommendation"`
}

// Kind selects which matcher a ranking uses.
type Kind string

const (
	KindInternship Kind = "internship"
	KindProject    Kind = "project"
)

// Ranked is one ranked candidate. Exactly one of Match and Supervisor is set,
// depending on the ranking kind.
type Ranked struct {
	CandidateID    string           `json:"candidate_id"`
	CandidateName  string           `json:"candidate_name"`
	TotalScore     float64          `json:"total_score"`
	Recommendation string           `json:"recommendation"`
	Match          *MatchResult     `json:"match,omitempty"`
	Supervisor     *SupervisorMatch `json:"supervisor,omitempty"`
}

type Ranking struct {
	Kind  Kind     `json:"kind"`
	Items []Ranked `json:"items"`
}
