// Package filtering narrows a candidate ranking through configurable steps.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/matching"
)

// Filter represents a single filtering step applied to a ranking.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, r *matching.Ranking) (*matching.Ranking, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	// Threshold is the minimum total score kept by the threshold step.
	Threshold float64
	// ExcludeFile lists candidates that must never be proposed again.
	ExcludeFile string
	// RememberRejected appends candidates dropped by the threshold step to
	// ExcludeFile.
	RememberRejected bool
	// Top keeps the first N candidates. Zero keeps all.
	Top int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns the standard pipeline: exclude_file, threshold, top.
func Default() []Filter {
	return []Filter{NewExcludeFile(), NewThreshold(), NewTop()}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the narrowed ranking.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, r *matching.Ranking) (*matching.Ranking, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		r = next
	}

	return r, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep retains the items for which fn is true, preserving ranking order, and
// returns the dropped ones.
func keep(r *matching.Ranking, fn func(matching.Ranked) bool) []matching.Ranked {
	var dropped []matching.Ranked
	kept := r.Items[:0]
	for _, item := range r.Items {
		if fn(item) {
			kept = append(kept, item)
			continue
		}
		dropped = append(dropped, item)
	}
	r.Items = kept
	return dropped
}

func ids(items []matching.Ranked) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.CandidateID)
	}
	return out
}
