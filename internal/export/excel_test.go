package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ensa-hoceima/hr-assistant/internal/hr"
	"github.com/ensa-hoceima/hr-assistant/internal/matching"
)

func fixedNow(t *testing.T) {
	t.Helper()
	prev := now
	now = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })
}

func cell(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis)
	require.NoError(t, err)
	return v
}

func TestRankingWorkbook(t *testing.T) {
	fixedNow(t)
	r := &matching.Ranking{
		Kind: matching.KindInternship,
		Items: []matching.Ranked{
			{CandidateID: "s1", CandidateName: "Salma", TotalScore: 86, Recommendation: matching.Excellent.Label(),
				Match: &matching.MatchResult{TotalScore: 86, SkillMatch: 40, SemanticMatch: 25, PerformanceBonus: 12, LevelMatch: 9, Category: matching.Excellent}},
			{CandidateID: "s2", CandidateName: "Omar", TotalScore: 52, Recommendation: matching.Fair.Label(),
				Match: &matching.MatchResult{TotalScore: 52, SkillMatch: 20, Category: matching.Fair}},
		},
	}

	path, err := Ranking(filepath.Join(t.TempDir(), "ranking"), "AI internship", r)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, rankingSheet}, f.GetSheetList())
	assert.Equal(t, "AI internship", cell(t, f, summarySheet, "A1"))
	assert.Equal(t, "internship", cell(t, f, summarySheet, "B3"))
	assert.Equal(t, "2026-10-18 09:30:00", cell(t, f, summarySheet, "B4"))
	assert.Equal(t, "2", cell(t, f, summarySheet, "B5"))
	assert.Equal(t, "1", cell(t, f, summarySheet, "B8"))
	assert.Equal(t, "0", cell(t, f, summarySheet, "B9"))
	assert.Equal(t, "1", cell(t, f, summarySheet, "B10"))
	assert.Equal(t, "69.00", cell(t, f, summarySheet, "B13"))
	assert.Equal(t, "Salma", cell(t, f, summarySheet, "B14"))

	assert.Equal(t, "Student", cell(t, f, rankingSheet, "B1"))
	assert.Equal(t, "Salma", cell(t, f, rankingSheet, "B2"))
	assert.Equal(t, "86", cell(t, f, rankingSheet, "C2"))
	assert.Equal(t, "excellent", cell(t, f, rankingSheet, "H2"))
	assert.Equal(t, "Omar", cell(t, f, rankingSheet, "B3"))
}

func TestRankingWorkbookSupervisors(t *testing.T) {
	r := &matching.Ranking{
		Kind: matching.KindProject,
		Items: []matching.Ranked{
			{CandidateID: "e1", CandidateName: "Dr. Alaoui", TotalScore: 74, Recommendation: matching.Good.Label(),
				Supervisor: &matching.SupervisorMatch{TotalScore: 74, ExpertiseMatch: 65, AvailabilityScore: 95, Category: matching.Good}},
		},
	}

	path, err := Ranking(filepath.Join(t.TempDir(), "supervisors.xlsx"), "", r)
	require.NoError(t, err)
	assert.Equal(t, "supervisors.xlsx", filepath.Base(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Matching Report", cell(t, f, summarySheet, "A1"))
	assert.Equal(t, "Supervisor", cell(t, f, rankingSheet, "B1"))
	assert.Equal(t, "65", cell(t, f, rankingSheet, "D2"))
	assert.Equal(t, "95", cell(t, f, rankingSheet, "E2"))
}

func TestRankingNil(t *testing.T) {
	if _, err := Ranking(filepath.Join(t.TempDir(), "x"), "", nil); err == nil {
		t.Fatalf("expected error for nil ranking")
	}
}

func TestDashboardWorkbook(t *testing.T) {
	fixedNow(t)
	stats := hr.DashboardStats{
		Employees: hr.EmployeeStats{
			Total:        3,
			ByDepartment: map[string]int{"IT": 2, "Finance": 1},
			BySkillLevel: map[string]int{"expert": 1, "basic": 2},
			AvgTenure:    5.1,
		},
		Evaluations:   hr.EvaluationStats{Total: 2, AvgScore: 7, Distribution: map[string]int{"5-": 0, "5-7": 1, "7-8.5": 0, "8.5+": 1}},
		Equipment:     hr.EquipmentStats{Total: 1, ByState: map[string]int{"assigned": 1}},
		Trainings:     hr.TrainingStats{ByCategory: map[string]int{}},
		TopPerformers: []string{"Amal"},
		RecentHires:   1,
	}

	path, err := Dashboard(filepath.Join(t.TempDir(), "dashboard.xlsx"), stats)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, breakdownName}, f.GetSheetList())
	assert.Equal(t, "HR Dashboard", cell(t, f, summarySheet, "A1"))
	assert.Equal(t, "3", cell(t, f, summarySheet, "B4"))
	assert.Equal(t, "5.1", cell(t, f, summarySheet, "B5"))
	assert.Equal(t, "Top Performers", cell(t, f, summarySheet, "A14"))
	assert.Equal(t, "Amal", cell(t, f, summarySheet, "A15"))

	// Department rows are sorted by name.
	assert.Equal(t, "Employees by Department", cell(t, f, breakdownName, "A1"))
	assert.Equal(t, "Finance", cell(t, f, breakdownName, "A2"))
	assert.Equal(t, "IT", cell(t, f, breakdownName, "A3"))
	assert.Equal(t, "2", cell(t, f, breakdownName, "B3"))
	assert.Equal(t, "Employees by Skill Level", cell(t, f, breakdownName, "A5"))
	assert.Equal(t, "basic", cell(t, f, breakdownName, "A6"))
}
