// Package matching scores students against internships and supervisors
// against projects, and ranks candidates for one opportunity.
package matching

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/logger"
)

// SemanticMatcher returns the 0..100 similarity of two texts. It must not fail;
// a missing signal is reported as 0.
type SemanticMatcher interface {
	Match(ctx context.Context, text1, text2 string) float64
}

type Engine struct {
	semantic SemanticMatcher
	opts     Options
	logger   *zap.Logger
}

// NewEngine validates opts and returns an engine.
func NewEngine(semantic SemanticMatcher, opts Options, log *zap.Logger) (*Engine, error) {
	if semantic == nil {
		return nil, fmt.Errorf("semantic matcher is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching options: %w", err)
	}
	return &Engine{semantic: semantic, opts: opts, logger: logger.OrNop(log).Named("matching")}, nil
}

func (e *Engine) Options() Options { return e.opts }

// SkillMatch is the Jaccard similarity of the normalized skill sets as a
// percentage, plus the superset bonus when student holds every required skill.
func (e *Engine) SkillMatch(student, required []string) float64 {
	studentSet := normalizeSet(student)
	requiredSet := normalizeSet(required)
	if len(studentSet) == 0 || len(requiredSet) == 0 {
		return 0
	}

	intersection := 0
	for skill := range requiredSet {
		if _, ok := studentSet[skill]; ok {
			intersection++
		}
	}
	union := len(studentSet) + len(requiredSet) - intersection

	score := float64(intersection) / float64(union) * 100
	if intersection == len(requiredSet) {
		score = math.Min(score+e.opts.SupersetBonus, 100)
	}
	return round2(score)
}

func (e *Engine) PerformanceScore(performance *float64) float64 {
	if performance == nil {
		return 0
	}
	return math.Max(0, math.Min(*performance/10*100, 100))
}

func (e *Engine) LevelScore(level, required string) float64 {
	switch {
	case strings.EqualFold(strings.TrimSpace(level), strings.TrimSpace(required)):
		return e.opts.Levels.Equal
	case strings.TrimSpace(required) == "":
		return e.opts.Levels.Unspecified
	default:
		return e.opts.Levels.Mismatch
	}
}

// Categorize maps a total score onto its recommendation band.
func (e *Engine) Categorize(score float64) Category {
	switch {
	case score >= e.opts.Bands.Excellent:
		return Excellent
	case score >= e.opts.Bands.Good:
		return Good
	case score >= e.opts.Bands.Fair:
		return Fair
	default:
		return Weak
	}
}

// MatchStudent scores a student for an internship.
func (e *Engine) MatchStudent(ctx context.Context, s Student, in Internship) MatchResult {
	skill := e.SkillMatch(s.Skills, in.RequiredSkills)
	semantic := e.semantic.Match(ctx,
		s.Interests+" "+strings.Join(s.Skills, " "),
		in.Description+" "+in.Type,
	)
	performance := e.PerformanceScore(s.Performance)
	level := e.LevelScore(s.Level, in.RequiredLevel)

	w := e.opts.Weights
	total := round2(skill*w.Skill + semantic*w.Semantic + performance*w.Performance + level*w.Level)
	category := e.Categorize(total)

	return MatchResult{
		TotalScore:       total,
		SkillMatch:       skill,
		SemanticMatch:    semantic,
		PerformanceBonus: performance,
		LevelMatch:       level,
		Category:         category,
		Recommendation:   category.Label(),
	}
}

// AvailabilityScore decreases with the projects a supervisor already runs.
func (e *Engine) AvailabilityScore(currentProjects int) float64 {
	return math.Max(100-float64(currentProjects)*e.opts.AvailabilityStep, e.opts.AvailabilityFloor)
}

// MatchSupervisor scores a supervisor for a project.
func (e *Engine) MatchSupervisor(ctx context.Context, sup Supervisor, p Project) SupervisorMatch {
	expertise := e.semantic.Match(ctx,
		sup.Expertise+" "+sup.Skills,
		p.Domain+" "+p.TechnologyStack,
	)
	availability := e.AvailabilityScore(sup.CurrentProjects)

	w := e.opts.SupervisorWeights
	total := round2(expertise*w.Expertise + availability*w.Availability)
	category := e.Categorize(total)

	return SupervisorMatch{
		TotalScore:        total,
		ExpertiseMatch:    expertise,
		AvailabilityScore: availability,
		Category:          category,
		Recommendation:    category.Label(),
	}
}

// DefaultPerformance is assumed by SuccessProbability for unknown performance.
const DefaultPerformance = 5.0

// SuccessProbability estimates the chance an internship succeeds, in [0.1, 0.95].
func SuccessProbability(s Student, in Internship, matchScore float64) float64 {
	performance := DefaultPerformance
	if s.Performance != nil {
		performance = *s.Performance
	}

	p := performance/10*0.3 + matchScore/100*0.4
	if strings.EqualFold(s.Trend, "improving") {
		p += 0.2
	} else {
		p += 0.1
	}
	if in.HasSupervisor {
		p += 0.15
	} else {
		p += 0.05
	}

	return math.Max(0.1, math.Min(p, 0.95))
}

// RankStudents scores every student and sorts them by descending total score.
// Ties keep input order.
func (e *Engine) RankStudents(ctx context.Context, students []Student, in Internship) *Ranking {
	ranking := &Ranking{Kind: KindInternship, Items: make([]Ranked, 0, len(students))}
	for _, s := range students {
		result := e.MatchStudent(ctx, s, in)
		ranking.Items = append(ranking.Items, Ranked{
			CandidateID:    s.ID,
			CandidateName:  s.Name,
			TotalScore:     result.TotalScore,
			Recommendation: result.Recommendation,
			Match:          &result,
		})
	}
	e.sort(ranking)
	return ranking
}

// RankSupervisors scores every supervisor and sorts them by descending total
// score. Ties keep input order.
func (e *Engine) RankSupervisors(ctx context.Context, supervisors []Supervisor, p Project) *Ranking {
	ranking := &Ranking{Kind: KindProject, Items: make([]Ranked, 0, len(supervisors))}
	for _, sup := range supervisors {
		result := e.MatchSupervisor(ctx, sup, p)
		ranking.Items = append(ranking.Items, Ranked{
			CandidateID:    sup.ID,
			CandidateName:  sup.Name,
			TotalScore:     result.TotalScore,
			Recommendation: result.Recommendation,
			Supervisor:     &result,
		})
	}
	e.sort(ranking)
	return ranking
}

func (e *Engine) sort(r *Ranking) {
	sort.SliceStable(r.Items, func(i, j int) bool {
		return r.Items[i].TotalScore > r.Items[j].TotalScore
	})
	e.logger.Debug("candidates ranked", zap.String("kind", string(r.Kind)), zap.Int("count", len(r.Items)))
}

func normalizeSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		set[item] = struct{}{}
	}
	return set
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
