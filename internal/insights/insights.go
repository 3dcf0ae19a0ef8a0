// Package insights turns HR data into AI-generated analyses: turnover risk,
// anomalies, evaluation insights, check-in sentiment, assistant answers and
// document drafts.
package insights

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/ai"
	"github.com/ensa-hoceima/hr-assistant/internal/jsonparse"
	"github.com/ensa-hoceima/hr-assistant/internal/logger"
	"github.com/ensa-hoceima/hr-assistant/internal/metrics"
)

//go:embed prompts/*.md
var promptFS embed.FS

// Options tunes the heuristics applied on top of model output.
type Options struct {
	// AIEnabled switches check-in analysis to keyword detection when false.
	AIEnabled bool
	// HighRisk and MediumRisk are the score cutoffs used when the model
	// returns no usable risk level.
	HighRisk   int
	MediumRisk int
	// MaxLogLength bounds response previews.
	MaxLogLength int
}

func DefaultOptions() Options {
	return Options{
		AIEnabled:    true,
		HighRisk:     70,
		MediumRisk:   40,
		MaxLogLength: logger.DefaultMaxLength,
	}
}

type Analyzer struct {
	gen     ai.TextGenerator
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewAnalyzer(gen ai.TextGenerator, opts Options, log *zap.Logger, m *metrics.Metrics) *Analyzer {
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = logger.DefaultMaxLength
	}
	return &Analyzer{
		gen:     gen,
		opts:    opts,
		logger:  logger.OrNop(log).Named("insights"),
		metrics: m,
	}
}

func (a *Analyzer) generate(ctx context.Context, operation, prompt string, maxTokens int, temperature float64) (string, error) {
	if a.gen == nil {
		return "", fmt.Errorf("%s: %w", operation, ErrAIDisabled)
	}
	raw, err := a.gen.GenerateText(ctx, prompt, maxTokens, temperature)
	if err != nil {
		return "", fmt.Errorf("%s: %w", operation, err)
	}
	a.logger.Debug("ai response received",
		append(logger.TextPreview("response", raw, a.opts.MaxLogLength), logger.OperationFields(operation)...)...,
	)
	return raw, nil
}

func (a *Analyzer) parseOptions(operation string, extra ...jsonparse.Option) []jsonparse.Option {
	opts := []jsonparse.Option{
		jsonparse.WithLogger(a.logger.With(logger.OperationFields(operation)...)),
		jsonparse.OnFailure(func(error) { a.metrics.ParseFailed(operation) }),
	}
	return append(opts, extra...)
}

func prompt(name string, vars map[string]string) string {
	data, err := promptFS.ReadFile("prompts/" + name + ".md")
	if err != nil {
		panic(fmt.Sprintf("missing embedded prompt %q", name))
	}
	// One pass, so substituted values are never scanned for placeholders.
	text := placeholder.ReplaceAllStringFunc(string(data), func(match string) string {
		if value, ok := vars[placeholder.FindStringSubmatch(match)[1]]; ok {
			return value
		}
		return match
	})
	return strings.TrimSpace(text)
}

var placeholder = regexp.MustCompile(`\{\{(\w+)\}\}`)

// fill replaces {{key}} placeholders with values from data. Missing keys render
// as N/A.
func fill(template string, data map[string]any) string {
	return placeholder.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholder.FindStringSubmatch(match)[1]
		value, ok := data[key]
		if !ok || value == nil {
			return "N/A"
		}
		return flatten(value)
	})
}

func marshalIndent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// flatten renders loosely typed model output as text; lists are joined.
func flatten(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	case float64, int, int64, bool:
		return fmt.Sprint(val)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
