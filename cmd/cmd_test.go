package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ensa-hoceima/hr-assistant/internal/ai"
	"github.com/ensa-hoceima/hr-assistant/internal/hr"
	"github.com/ensa-hoceima/hr-assistant/internal/insights"
	"github.com/ensa-hoceima/hr-assistant/internal/matching"
	"github.com/ensa-hoceima/hr-assistant/internal/scheduler"
	"github.com/ensa-hoceima/hr-assistant/internal/service"
	"github.com/ensa-hoceima/hr-assistant/internal/store"
)

func TestParseSets(t *testing.T) {
	data, err := parseSets([]string{"employee_name=Amal", "document_url=https://x/y?a=b", " score =8.5"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"employee_name": "Amal",
		"document_url":  "https://x/y?a=b",
		"score":         "8.5",
	}, data)

	for _, bad := range []string{"novalue", "=empty-key"} {
		if _, err := parseSets([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

const seedDoc = `{
  "employees": [
    {"id": "e1", "name": "Amal", "department": "IT", "first_contract_date": "2021-09-01T00:00:00Z"},
    {"id": "e2", "name": "Omar"}
  ],
  "projects": [{"title": "Vision", "supervisor_id": "e1", "status": "planning"}],
  "evaluations": [{"employee_id": "e1", "technical_score": 8, "state": "completed"}]
}`

func TestParseSeed(t *testing.T) {
	seed, err := parseSeed([]byte(seedDoc))
	require.NoError(t, err)
	require.Len(t, seed.Employees, 2)
	assert.Equal(t, "Amal", seed.Employees[0].Name)
	require.NotNil(t, seed.Employees[0].FirstContractDate)
	require.Len(t, seed.Evaluations, 1)
	assert.Equal(t, 8.0, seed.Evaluations[0].TechnicalScore)
}

func TestParseSeedRejectsSchemaViolations(t *testing.T) {
	tests := map[string]string{
		"unknown section":   `{"payroll": []}`,
		"employee no name":  `{"employees": [{"department": "IT"}]}`,
		"score above ten":   `{"evaluations": [{"employee_id": "e1", "technical_score": 11}]}`,
		"not a list":        `{"employees": {"name": "Amal"}}`,
		"training no title": `{"trainings": [{"category": "technical"}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseSeed([]byte(doc)); err == nil {
				t.Fatalf("expected schema error")
			}
		})
	}
}

func TestSeedRecords(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "hr.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	seed, err := parseSeed([]byte(seedDoc))
	require.NoError(t, err)

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	counts, err := seedRecords(ctx, st, seed, now)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"employees": 2, "projects": 1, "evaluations": 1}, counts)

	evaluations, err := st.EvaluationsFor(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, evaluations, 1)
	ev := evaluations[0]
	assert.Regexp(t, `^EVAL/2026/[0-9A-F-]{8}$`, ev.Reference)
	assert.Equal(t, hr.EvaluationCompleted, ev.State)
	assert.Equal(t, hr.Date(now), ev.Date)

	// Invalid records stop the seed.
	bad := &Seed{Employees: []*hr.Employee{{Name: "X", IdentificationNumber: "123"}}}
	_, err = seedRecords(ctx, st, bad, now)
	var verr *hr.ValidationError
	require.ErrorAs(t, err, &verr)
}

// coldGenerator reports cold starts until its budget is spent.
type coldGenerator struct {
	cold  int
	calls int
}

func (g *coldGenerator) GenerateText(context.Context, string, int, float64) (string, error) {
	g.calls++
	if g.calls <= g.cold {
		return "", &ai.ProviderError{Provider: "huggingface", StatusCode: 503}
	}
	return "Connection Successful", nil
}

type failingGenerator struct{ calls int }

func (g *failingGenerator) GenerateText(context.Context, string, int, float64) (string, error) {
	g.calls++
	return "", errors.New("unauthorized")
}

type stubProvider struct{}

func (stubProvider) Name() string  { return "stub" }
func (stubProvider) Model() string { return "stub-model" }
func (stubProvider) Generate(context.Context, ai.Request) (string, error) {
	return "[]", nil
}

func testRuntime(gen ai.TextGenerator) *runtime {
	return &runtime{
		config:   &Config{},
		logger:   zap.NewNop(),
		analyzer: insights.NewAnalyzer(gen, insights.DefaultOptions(), nil, nil),
	}
}

func TestPingRetriesColdStarts(t *testing.T) {
	gen := &coldGenerator{cold: 2}
	reply, err := ping(context.Background(), testRuntime(gen), time.Millisecond, 3)
	require.NoError(t, err)
	assert.Equal(t, "Connection Successful", reply)
	assert.Equal(t, 3, gen.calls)

	gen = &coldGenerator{cold: 5}
	_, err = ping(context.Background(), testRuntime(gen), time.Millisecond, 2)
	require.ErrorIs(t, err, ai.ErrColdStart)
	assert.Equal(t, 2, gen.calls)
}

func TestPingDoesNotRetryOtherErrors(t *testing.T) {
	gen := &failingGenerator{}
	_, err := ping(context.Background(), testRuntime(gen), time.Millisecond, 3)
	require.Error(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestRegisterJobsFollowsFeatures(t *testing.T) {
	rt := testRuntime(nil)
	rt.config.Features = service.DefaultFlags()
	rt.config.Schedule = ScheduleConfig{Checkin: "0 9 * * 1", Turnover: "0 7 1 * *"}

	// Neither twilio nor an ai provider is available.
	s := scheduler.New(nil)
	require.NoError(t, registerJobs(s, rt))
	assert.Empty(t, s.Jobs())

	rt.ai = ai.NewClient(stubProvider{})
	s = scheduler.New(nil)
	require.NoError(t, registerJobs(s, rt))
	assert.Equal(t, []string{jobTurnoverScan}, s.Jobs())

	rt.config.Schedule.Turnover = "whenever"
	if err := registerJobs(scheduler.New(nil), rt); err == nil {
		t.Fatalf("expected error for an invalid schedule")
	}
}

func outputCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	return cmd, &out
}

func TestReportTurnover(t *testing.T) {
	tests := map[string]struct {
		assessments []insights.RiskAssessment
		err         error
		warned      bool
	}{
		"provider failure":  {err: &ai.ProviderError{Provider: "huggingface", StatusCode: 401}, warned: true},
		"unparseable reply": {assessments: []insights.RiskAssessment{}},
		"nobody high": {assessments: []insights.RiskAssessment{
			{EmployeeName: "Amal", RiskScore: 45, RiskLevel: insights.RiskMedium},
		}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			cmd, out := outputCommand()

			reportTurnover(cmd, zap.New(core), tt.assessments, tt.err)

			assert.Empty(t, out.String())
			assert.Equal(t, 1, logs.FilterMessage(noHighRisk).Len())
			assert.Equal(t, tt.warned, logs.FilterMessage("turnover scan failed").Len() == 1)
		})
	}

	core, logs := observer.New(zapcore.InfoLevel)
	cmd, out := outputCommand()
	reportTurnover(cmd, zap.New(core), []insights.RiskAssessment{
		{EmployeeName: "Amal", RiskScore: 45, RiskLevel: insights.RiskMedium},
		{EmployeeName: "Omar", RiskScore: 82, RiskLevel: insights.RiskHigh},
	}, nil)
	assert.Zero(t, logs.FilterMessage(noHighRisk).Len())
	assert.Contains(t, out.String(), `"Omar"`)
	assert.NotContains(t, out.String(), `"Amal"`)
}

func TestReportRanking(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cmd, out := outputCommand()

	printed := reportRanking(cmd, zap.New(core), nil, service.ErrFeatureDisabled)
	assert.False(t, printed)
	assert.Empty(t, out.String())
	assert.Equal(t, 1, logs.FilterMessage("ranking failed").Len())
	assert.Equal(t, 1, logs.FilterMessage(noRanking).Len())

	ranking := &matching.Ranking{Kind: matching.KindInternship, Items: []matching.Ranked{{CandidateName: "Sara", TotalScore: 77}}}
	printed = reportRanking(cmd, zap.New(core), ranking, nil)
	assert.True(t, printed)
	assert.Contains(t, out.String(), `"Sara"`)
}
