package matching

import (
	"errors"
	"fmt"
	"math"
)

// Weights of the four student match components. They must sum to 1.
type Weights struct {
	Skill       float64 `mapstructure:"skill"`
	Semantic    float64 `mapstructure:"semantic"`
	Performance float64 `mapstructure:"performance"`
	Level       float64 `mapstructure:"level"`
}

func (w Weights) sum() float64 { return w.Skill + w.Semantic + w.Performance + w.Level }

// SupervisorWeights of the two supervisor match components. They must sum to 1.
type SupervisorWeights struct {
	Expertise    float64 `mapstructure:"expertise"`
	Availability float64 `mapstructure:"availability"`
}

// Bands are the lower bounds of the Excellent, Good and Fair categories.
type Bands struct {
	Excellent float64 `mapstructure:"excellent"`
	Good      float64 `mapstructure:"good"`
	Fair      float64 `mapstructure:"fair"`
}

// LevelScores are awarded for equal levels, an unspecified required level and
// a mismatch.
type LevelScores struct {
	Equal       float64 `mapstructure:"equal"`
	Unspecified float64 `mapstructure:"unspecified"`
	Mismatch    float64 `mapstructure:"mismatch"`
}

// Options holds every tunable constant of the engine.
type Options struct {
	Weights           Weights           `mapstructure:"weights"`
	SupervisorWeights SupervisorWeights `mapstructure:"supervisor-weights"`
	Bands             Bands             `mapstructure:"bands"`
	Levels            LevelScores       `mapstructure:"levels"`

	// SupersetBonus is added to the skill score when the student holds every
	// required skill.
	SupersetBonus float64 `mapstructure:"superset-bonus"`
	// AvailabilityStep is subtracted from 100 per project a supervisor
	// already runs, never going below AvailabilityFloor.
	AvailabilityStep  float64 `mapstructure:"availability-step"`
	AvailabilityFloor float64 `mapstructure:"availability-floor"`
}

func DefaultOptions() Options {
	return Options{
		Weights:           Weights{Skill: 0.4, Semantic: 0.3, Performance: 0.2, Level: 0.1},
		SupervisorWeights: SupervisorWeights{Expertise: 0.7, Availability: 0.3},
		Bands:             Bands{Excellent: 80, Good: 65, Fair: 50},
		Levels:            LevelScores{Equal: 100, Unspecified: 50, Mismatch: 30},
		SupersetBonus:     10,
		AvailabilityStep:  20,
		AvailabilityFloor: 20,
	}
}

const weightTolerance = 1e-9

func (o Options) Validate() error {
	if math.Abs(o.Weights.sum()-1) > weightTolerance {
		return fmt.Errorf("match weights sum to %.4f, expected 1", o.Weights.sum())
	}
	if sum := o.SupervisorWeights.Expertise + o.SupervisorWeights.Availability; math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("supervisor weights sum to %.4f, expected 1", sum)
	}
	for _, w := range []float64{o.Weights.Skill, o.Weights.Semantic, o.Weights.Performance, o.Weights.Level, o.SupervisorWeights.Expertise, o.SupervisorWeights.Availability} {
		if w < 0 {
			return errors.New("match weights must not be negative")
		}
	}
	if !(o.Bands.Excellent >= o.Bands.Good && o.Bands.Good >= o.Bands.Fair) {
		return errors.New("recommendation bands must be descending")
	}
	if o.AvailabilityStep < 0 || o.AvailabilityFloor < 0 || o.AvailabilityFloor > 100 {
		return errors.New("availability step and floor must be within 0..100")
	}
	return nil
}
