// Package export writes rankings and dashboard statistics to Excel workbooks.
package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ensa-hoceima/hr-assistant/internal/hr"
	"github.com/ensa-hoceima/hr-assistant/internal/matching"
)

const (
	summarySheet  = "Summary"
	rankingSheet  = "Ranking"
	breakdownName = "Breakdown"
	headerColor   = "4472C4"
)

var now = time.Now

// xlsxPath appends the .xlsx extension when missing and cleans the path.
func xlsxPath(path string) string {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	return filepath.Clean(path)
}

type styles struct {
	header int
	label  int
}

func newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return styles{}, fmt.Errorf("header style: %w", err)
	}
	label, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return styles{}, fmt.Errorf("label style: %w", err)
	}
	return styles{header: header, label: label}, nil
}

// sheet tracks the next free row of a worksheet.
type sheet struct {
	f    *excelize.File
	name string
	st   styles
	row  int
	err  error
}

func (s *sheet) set(col string, v any) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetCellValue(s.name, fmt.Sprintf("%s%d", col, s.row), v)
}

func (s *sheet) style(from, to string, style int) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetCellStyle(s.name, fmt.Sprintf("%s%d", from, s.row), fmt.Sprintf("%s%d", to, s.row), style)
}

// title writes a merged, styled heading across columns A..B.
func (s *sheet) title(text string) {
	s.set("A", text)
	s.style("A", "B", s.st.header)
	if s.err == nil {
		s.err = s.f.MergeCell(s.name, fmt.Sprintf("A%d", s.row), fmt.Sprintf("B%d", s.row))
	}
	s.row++
}

func (s *sheet) pair(label string, v any) {
	s.set("A", label)
	s.style("A", "A", s.st.label)
	s.set("B", v)
	s.row++
}

// header writes a styled table header row.
func (s *sheet) header(cols ...string) {
	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			s.err = err
			return
		}
		if s.err == nil {
			s.err = s.f.SetCellValue(s.name, cell, c)
		}
	}
	last, _ := excelize.ColumnNumberToName(len(cols))
	s.style("A", last, s.st.header)
	s.row++
}

func (s *sheet) line(values ...any) {
	for i, v := range values {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			s.err = err
			return
		}
		s.set(col, v)
	}
	s.row++
}

func newWorkbook(sheets ...string) (*excelize.File, styles, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheets[0]); err != nil {
		f.Close()
		return nil, styles{}, err
	}
	for _, name := range sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, styles{}, err
		}
	}
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, styles{}, err
	}
	return f, st, nil
}

// Ranking writes a ranking to path as a workbook with a summary sheet and a
// sheet of ranked candidates with their score breakdown. It returns the path
// actually written.
func Ranking(path, title string, r *matching.Ranking) (string, error) {
	if r == nil {
		return "", fmt.Errorf("nil ranking")
	}
	path = xlsxPath(path)

	f, st, err := newWorkbook(summarySheet, rankingSheet)
	if err != nil {
		return "", fmt.Errorf("failed to create workbook: %w", err)
	}
	defer f.Close()

	if err := rankingSummary(&sheet{f: f, name: summarySheet, st: st, row: 1}, title, r); err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := rankingDetails(&sheet{f: f, name: rankingSheet, st: st, row: 1}, r); err != nil {
		return "", fmt.Errorf("failed to create ranking sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}

func rankingSummary(s *sheet, title string, r *matching.Ranking) error {
	s.f.SetColWidth(s.name, "A", "A", 28)
	s.f.SetColWidth(s.name, "B", "B", 40)

	if title == "" {
		title = "Matching Report"
	}
	s.title(title)
	s.row++
	s.pair("Kind:", string(r.Kind))
	s.pair("Generated:", now().Format("2006-01-02 15:04:05"))
	s.pair("Candidates:", len(r.Items))
	s.row++

	s.title("Categories")
	counts := map[matching.Category]int{}
	var total float64
	for _, it := range r.Items {
		counts[category(it)]++
		total += it.TotalScore
	}
	for _, c := range []matching.Category{matching.Excellent, matching.Good, matching.Fair, matching.Weak} {
		s.pair(c.Label()+":", counts[c])
	}
	if len(r.Items) > 0 {
		s.row++
		s.pair("Average Score:", fmt.Sprintf("%.2f", total/float64(len(r.Items))))
		s.pair("Best Candidate:", r.Items[0].CandidateName)
	}
	return s.err
}

func category(it matching.Ranked) matching.Category {
	switch {
	case it.Match != nil:
		return it.Match.Category
	case it.Supervisor != nil:
		return it.Supervisor.Category
	}
	return ""
}

func rankingDetails(s *sheet, r *matching.Ranking) error {
	s.f.SetColWidth(s.name, "A", "A", 8)
	s.f.SetColWidth(s.name, "B", "B", 28)
	s.f.SetColWidth(s.name, "C", "H", 16)
	s.f.SetColWidth(s.name, "I", "I", 40)

	if r.Kind == matching.KindProject {
		s.header("Rank", "Supervisor", "Total", "Expertise", "Availability", "Recommendation")
		for i, it := range r.Items {
			var expertise, availability float64
			if it.Supervisor != nil {
				expertise, availability = it.Supervisor.ExpertiseMatch, it.Supervisor.AvailabilityScore
			}
			s.line(i+1, it.CandidateName, it.TotalScore, expertise, availability, it.Recommendation)
		}
		return s.err
	}

	s.header("Rank", "Student", "Total", "Skills", "Semantic", "Performance", "Level", "Category", "Recommendation")
	for i, it := range r.Items {
		m := it.Match
		if m == nil {
			m = &matching.MatchResult{}
		}
		s.line(i+1, it.CandidateName, it.TotalScore, m.SkillMatch, m.SemanticMatch,
			m.PerformanceBonus, m.LevelMatch, string(m.Category), it.Recommendation)
	}
	return s.err
}

// Dashboard writes dashboard statistics to path: a summary sheet with the
// headline figures and a breakdown sheet with every distribution.
func Dashboard(path string, stats hr.DashboardStats) (string, error) {
	path = xlsxPath(path)

	f, st, err := newWorkbook(summarySheet, breakdownName)
	if err != nil {
		return "", fmt.Errorf("failed to create workbook: %w", err)
	}
	defer f.Close()

	s := &sheet{f: f, name: summarySheet, st: st, row: 1}
	f.SetColWidth(summarySheet, "A", "A", 28)
	f.SetColWidth(summarySheet, "B", "B", 40)
	s.title("HR Dashboard")
	s.row++
	s.pair("Generated:", now().Format("2006-01-02 15:04:05"))
	s.pair("Employees:", stats.Employees.Total)
	s.pair("Average Tenure (years):", stats.Employees.AvgTenure)
	s.pair("Recent Hires:", stats.RecentHires)
	s.pair("Completed Evaluations:", stats.Evaluations.Total)
	s.pair("Average Evaluation Score:", stats.Evaluations.AvgScore)
	s.pair("Completed Trainings:", stats.Trainings.Total)
	s.pair("Upcoming Trainings:", stats.Trainings.Upcoming)
	s.pair("Equipment:", stats.Equipment.Total)
	s.pair("Active Internships:", stats.ActiveInternships)
	s.row++
	s.title("Top Performers")
	for _, name := range stats.TopPerformers {
		s.set("A", name)
		s.row++
	}
	if s.err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", s.err)
	}

	b := &sheet{f: f, name: breakdownName, st: st, row: 1}
	f.SetColWidth(breakdownName, "A", "A", 28)
	f.SetColWidth(breakdownName, "B", "B", 12)
	for _, part := range []struct {
		title  string
		counts map[string]int
	}{
		{"Employees by Department", stats.Employees.ByDepartment},
		{"Employees by Skill Level", stats.Employees.BySkillLevel},
		{"Evaluation Scores", stats.Evaluations.Distribution},
		{"Equipment by State", stats.Equipment.ByState},
		{"Trainings by Category", stats.Trainings.ByCategory},
	} {
		b.header(part.title, "Count")
		for _, k := range sortedKeys(part.counts) {
			b.line(k, part.counts[k])
		}
		b.row++
	}
	if b.err != nil {
		return "", fmt.Errorf("failed to create breakdown sheet: %w", b.err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
