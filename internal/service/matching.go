package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/filtering"
	"github.com/ensa-hoceima/hr-assistant/internal/hr"
	"github.com/ensa-hoceima/hr-assistant/internal/matching"
)

type MatchingService struct {
	deps   Deps
	engine *matching.Engine
	logger *zap.Logger
}

func NewMatchingService(deps Deps, engine *matching.Engine) *MatchingService {
	return &MatchingService{deps: deps, engine: engine, logger: deps.log("matching")}
}

// Students ranks students for an internship offer.
func (s *MatchingService) Students(ctx context.Context, students []matching.Student, in matching.Internship) (*matching.Ranking, error) {
	if !s.deps.Flags.SmartMatching {
		return nil, fmt.Errorf("smart matching: %w", ErrFeatureDisabled)
	}
	return s.engine.RankStudents(ctx, students, in), nil
}

// SupervisorCandidates ranks an explicit list of supervisors for a project
// that is not in the store.
func (s *MatchingService) SupervisorCandidates(ctx context.Context, supervisors []matching.Supervisor, p matching.Project) (*matching.Ranking, error) {
	if !s.deps.Flags.SmartMatching {
		return nil, fmt.Errorf("smart matching: %w", ErrFeatureDisabled)
	}
	return s.engine.RankSupervisors(ctx, supervisors, p), nil
}

// Supervisors ranks the employees with known expertise for a stored project.
// Availability counts the projects each one already plans or runs.
func (s *MatchingService) Supervisors(ctx context.Context, projectID string) (*matching.Ranking, error) {
	if !s.deps.Flags.SmartMatching {
		return nil, fmt.Errorf("smart matching: %w", ErrFeatureDisabled)
	}

	project, err := s.deps.Store.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	employees, err := s.deps.Store.Employees(ctx)
	if err != nil {
		return nil, err
	}

	var supervisors []matching.Supervisor
	for _, e := range employees {
		if e.Archived || (strings.TrimSpace(e.Expertise) == "" && strings.TrimSpace(e.TechnicalSkills) == "") {
			continue
		}
		current, err := s.deps.Store.CountProjects(ctx, e.ID, hr.ProjectPlanning, hr.ProjectInProgress)
		if err != nil {
			return nil, err
		}
		supervisors = append(supervisors, matching.Supervisor{
			ID:              e.ID,
			Name:            e.Name,
			Expertise:       e.Expertise,
			Skills:          e.TechnicalSkills,
			CurrentProjects: current,
		})
	}

	s.logger.Info("ranking supervisors", zap.String("project", project.Title), zap.Int("candidates", len(supervisors)))
	return s.engine.RankSupervisors(ctx, supervisors, matching.Project{
		ID:              project.ID,
		Title:           project.Title,
		Domain:          project.Domain,
		TechnologyStack: project.TechnologyStack,
	}), nil
}

// Filter narrows a ranking with the default pipeline. A zero matching
// threshold in Flags switches the threshold step off.
func (s *MatchingService) Filter(ctx context.Context, cfg filtering.Config, r *matching.Ranking) (*matching.Ranking, error) {
	steps := filtering.Default()
	if s.deps.Flags.MatchingThreshold == 0 {
		filtering.DisableByName(steps, "threshold", "matching threshold is 0")
	} else if cfg.Threshold == 0 {
		cfg.Threshold = float64(s.deps.Flags.MatchingThreshold)
	}
	return filtering.Run(ctx, &cfg, filtering.Deps{Logger: s.logger}, steps, r)
}
