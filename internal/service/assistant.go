package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/hr"
	"github.com/ensa-hoceima/hr-assistant/internal/insights"
)

// storedContextLength bounds the HR context kept with each chat.
const storedContextLength = 500

// trendHistory is how many completed evaluations feed trend prediction.
const trendHistory = 50

type AssistantService struct {
	deps   Deps
	logger *zap.Logger
}

func NewAssistantService(deps Deps) *AssistantService {
	return &AssistantService{deps: deps, logger: deps.log("assistant")}
}

// Ask answers question from the current HR data and keeps the exchange in
// the chat history.
func (s *AssistantService) Ask(ctx context.Context, question string) (*hr.AssistantChat, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	start := s.deps.now()

	d, err := s.deps.Store.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	hrContext := hr.BuildAssistantContext(d, start)

	answer, err := s.deps.Analyzer.AnswerQuery(ctx, question, hrContext)
	if err != nil {
		s.logger.Error("assistant failed", zap.Error(err))
		return nil, err
	}

	encoded, err := json.Marshal(hrContext)
	if err != nil {
		return nil, fmt.Errorf("marshal hr context: %w", err)
	}
	chat := &hr.AssistantChat{
		Question:     question,
		Answer:       answer,
		AskedAt:      start,
		ResponseTime: s.deps.now().Sub(start).Seconds(),
		ContextData:  truncate(string(encoded), storedContextLength),
	}
	if err := s.deps.Store.SaveChat(ctx, chat); err != nil {
		return nil, err
	}

	s.logger.Info("question answered", zap.Float64("response_time", chat.ResponseTime))
	return chat, nil
}

func (s *AssistantService) History(ctx context.Context, limit int) ([]*hr.AssistantChat, error) {
	return s.deps.Store.Chats(ctx, limit)
}

// Suggest proposes analyses based on headcount, performance and departments.
func (s *AssistantService) Suggest(ctx context.Context) ([]insights.Suggestion, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	d, err := s.deps.Store.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	hrContext := hr.BuildAssistantContext(d, s.deps.now())

	departments := make([]string, 0, len(hrContext.Departments))
	for name := range hrContext.Departments {
		departments = append(departments, name)
	}
	sort.Strings(departments)

	return s.deps.Analyzer.Suggestions(ctx, insights.SuggestionContext{
		TotalEmployees: hrContext.TotalEmployees,
		AvgPerformance: hrContext.AvgPerformance,
		Departments:    departments,
	})
}

// Predict forecasts next quarter's performance from recent completed
// evaluations.
func (s *AssistantService) Predict(ctx context.Context) (string, error) {
	if err := s.enabled(); err != nil {
		return "", err
	}
	evaluations, err := s.deps.Store.Evaluations(ctx)
	if err != nil {
		return "", err
	}

	scores := make([]float64, 0, trendHistory)
	for _, ev := range evaluations {
		if ev.State != hr.EvaluationCompleted {
			continue
		}
		scores = append(scores, ev.OverallScore())
		if len(scores) == trendHistory {
			break
		}
	}
	return s.deps.Analyzer.PredictTrends(ctx, scores)
}

// Document drafts an HR document of the given kind.
func (s *AssistantService) Document(ctx context.Context, kind insights.DocumentKind, data map[string]any) (string, error) {
	if err := s.enabled(); err != nil {
		return "", err
	}
	return s.deps.Analyzer.GenerateDocument(ctx, kind, data)
}

func (s *AssistantService) enabled() error {
	if !s.deps.Flags.AIFeatures || s.deps.Analyzer == nil {
		return insights.ErrAIDisabled
	}
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
