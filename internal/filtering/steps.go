package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/matching"
)

type thresholdFilter struct {
	disabled    bool
	reason      string
	threshold   float64
	excludeFile string
	remember    bool
}

// NewThreshold creates a filter that drops candidates scoring below the
// configured threshold.
func NewThreshold() Filter {
	return &thresholdFilter{}
}

func (f *thresholdFilter) Name() string { return "threshold" }

func (f *thresholdFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *thresholdFilter) IsEnabled() bool { return !f.disabled }

func (f *thresholdFilter) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("filtering configuration is required")
	}
	if cfg.Threshold < 0 || cfg.Threshold > 100 {
		return fmt.Errorf("threshold must be within 0..100, got %.2f", cfg.Threshold)
	}
	if cfg.RememberRejected && strings.TrimSpace(cfg.ExcludeFile) == "" {
		return fmt.Errorf("an exclude file is required to remember rejected candidates")
	}
	f.threshold = cfg.Threshold
	f.excludeFile = strings.TrimSpace(cfg.ExcludeFile)
	f.remember = cfg.RememberRejected
	return nil
}

func (f *thresholdFilter) Apply(_ context.Context, deps Deps, r *matching.Ranking) (*matching.Ranking, Step, error) {
	initial := len(r.Items)
	dropped := keep(r, func(item matching.Ranked) bool { return item.TotalScore >= f.threshold })

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding candidates below threshold",
			zap.Float64("threshold", f.threshold),
			zap.Strings("excluded_candidates", ids(dropped)),
			zap.Int("candidates_left", len(r.Items)),
		)
	}

	if f.remember && len(dropped) > 0 {
		if err := f.appendToExcludeFile(dropped); err != nil {
			return r, Step{}, err
		}
	}

	return r, Step{Initial: initial, Dropped: len(dropped), Left: len(r.Items)}, nil
}

func (f *thresholdFilter) appendToExcludeFile(dropped []matching.Ranked) error {
	excluded, err := LoadExcluded(f.excludeFile)
	if err != nil {
		return fmt.Errorf("load excluded candidates: %w", err)
	}

	excluded.Append(ToExcluded(dropped, fmt.Sprintf("score below %.2f", f.threshold)))
	if err := excluded.ToFile(f.excludeFile); err != nil {
		return fmt.Errorf("write excluded candidates: %w", err)
	}
	return nil
}

func (f *thresholdFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"threshold": strconv.FormatFloat(f.threshold, 'f', 2, 64)},
	}
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes candidates listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, r *matching.Ranking) (*matching.Ranking, Step, error) {
	initial := len(r.Items)
	if f.path == "" {
		return r, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	excluded, err := LoadExcluded(f.path)
	if err != nil {
		return r, Step{}, fmt.Errorf("getting excluded candidates from file: %w", err)
	}

	set := make(map[string]struct{}, len(excluded.Items))
	for _, id := range excluded.IDs() {
		set[id] = struct{}{}
	}

	removed := keep(r, func(item matching.Ranked) bool {
		_, skip := set[item.CandidateID]
		return !skip
	})
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding candidates based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_candidates", ids(removed)),
			zap.Int("candidates_left", len(r.Items)),
		)
	}

	return r, Step{Initial: initial, Dropped: len(removed), Left: len(r.Items)}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type topFilter struct {
	n int
}

// NewTop creates a filter that keeps only the best N candidates.
func NewTop() Filter {
	return &topFilter{}
}

func (f *topFilter) Name() string { return "top" }

func (f *topFilter) Disable(string) {}

func (f *topFilter) IsEnabled() bool { return true }

func (f *topFilter) Validate(cfg *Config) error {
	f.n = 0
	if cfg != nil {
		if cfg.Top < 0 {
			return fmt.Errorf("top must not be negative")
		}
		f.n = cfg.Top
	}
	return nil
}

func (f *topFilter) Apply(_ context.Context, _ Deps, r *matching.Ranking) (*matching.Ranking, Step, error) {
	initial := len(r.Items)
	if f.n > 0 && initial > f.n {
		r.Items = r.Items[:f.n]
	}
	return r, Step{Initial: initial, Dropped: initial - len(r.Items), Left: len(r.Items)}, nil
}

func (f *topFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{"top": strconv.Itoa(f.n)}}
}
