package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensa-hoceima/hr-assistant/internal/hr"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "hr.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEmployeeRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	contract := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)
	e := &hr.Employee{Name: "Amal", Department: "IT", FirstContractDate: &contract, SkillLevel: hr.SkillAdvanced}
	require.NoError(t, s.SaveEmployee(ctx, e))
	require.NotEmpty(t, e.ID)

	got, err := s.Employee(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amal", got.Name)
	assert.True(t, contract.Equal(*got.FirstContractDate))

	_, err = s.Employee(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	err := s.SaveEmployee(ctx, &hr.Employee{Name: "Amal", IdentificationNumber: "12"})
	var verr *hr.ValidationError
	require.True(t, errors.As(err, &verr))

	employees, err := s.Employees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
}

func TestEvaluationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	for i, month := range []time.Month{time.March, time.January, time.June} {
		ev := hr.NewEvaluation("emp-1", time.Date(2026, month, 1, 0, 0, 0, 0, time.UTC))
		ev.TechnicalScore = float64(i + 5)
		require.NoError(t, s.SaveEvaluation(ctx, ev))
	}
	other := hr.NewEvaluation("emp-2", time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveEvaluation(ctx, other))

	evals, err := s.EvaluationsFor(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, evals, 3)
	assert.Equal(t, time.June, evals[0].Date.Month())
	assert.Equal(t, time.January, evals[2].Date.Month())

	all, err := s.Evaluations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, other.ID, all[0].ID)
}

func TestSaveEvaluationUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	ev := hr.NewEvaluation("emp-1", time.Now())
	ev.ApprovalManagerID = "mgr"
	require.NoError(t, s.SaveEvaluation(ctx, ev))
	require.NoError(t, ev.Apply(hr.ActionSubmit, time.Now()))
	require.NoError(t, s.SaveEvaluation(ctx, ev))

	got, err := s.Evaluation(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, hr.EvaluationSubmitted, got.State)

	all, err := s.Evaluations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDuplicateSerialNumber(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	laptop := &hr.Equipment{Name: "Laptop", Type: hr.EquipmentComputer, State: hr.EquipmentAvailable, SerialNumber: "SN-1"}
	require.NoError(t, s.SaveEquipment(ctx, laptop))

	// Saving the same record again keeps its own serial.
	require.NoError(t, s.SaveEquipment(ctx, laptop))

	dup := &hr.Equipment{Name: "Other laptop", Type: hr.EquipmentComputer, State: hr.EquipmentAvailable, SerialNumber: "SN-1"}
	assert.ErrorIs(t, s.SaveEquipment(ctx, dup), ErrDuplicateSerial)

	// Empty serials never collide.
	require.NoError(t, s.SaveEquipment(ctx, &hr.Equipment{Name: "Drill", Type: hr.EquipmentTools, State: hr.EquipmentAvailable}))
	require.NoError(t, s.SaveEquipment(ctx, &hr.Equipment{Name: "Saw", Type: hr.EquipmentTools, State: hr.EquipmentAvailable}))

	items, err := s.Equipment(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestInternshipsByStatus(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, st := range []hr.InternshipStatus{hr.InternshipInProgress, hr.InternshipPlanned, hr.InternshipInProgress} {
		require.NoError(t, s.SaveInternship(ctx, &hr.Internship{
			StudentName: "Omar", HostCompany: "OCP", StartDate: start, EndDate: start.AddDate(0, 2, 0),
			Status: st, Type: hr.InternshipIndustrial,
		}))
	}

	active, err := s.Internships(ctx, hr.InternshipInProgress)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := s.Internships(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCheckinsAndChats(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveCheckin(ctx, &hr.Checkin{
			InternshipID: "in-1", Date: base.AddDate(0, 0, 7*i), Message: "week update", Source: hr.SourceWhatsApp,
		}))
		require.NoError(t, s.SaveChat(ctx, &hr.AssistantChat{Question: "q", Answer: "a", AskedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	checkins, err := s.Checkins(ctx, "in-1")
	require.NoError(t, err)
	require.Len(t, checkins, 3)
	assert.True(t, checkins[0].Date.After(checkins[1].Date))

	chats, err := s.Chats(ctx, 2)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.True(t, chats[0].AskedAt.Equal(base.Add(2*time.Minute)))

	chats, err = s.Chats(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, chats, 3)
}

func TestCountProjects(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, st := range []hr.ProjectStatus{hr.ProjectInProgress, hr.ProjectCompleted, hr.ProjectPlanning} {
		require.NoError(t, s.SaveProject(ctx, &hr.Project{Title: "p", SupervisorID: "sup", Status: st, StartDate: start, EndDate: start}))
	}

	n, err := s.CountProjects(ctx, "sup", hr.ProjectInProgress, hr.ProjectPlanning)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.CountProjects(ctx, "sup")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDataset(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	require.NoError(t, s.SaveEmployee(ctx, &hr.Employee{Name: "Amal"}))
	require.NoError(t, s.SaveTraining(ctx, &hr.Training{Title: "Go", EmployeeID: "x", Category: hr.TrainingTechnical, Status: hr.TrainingPlanned}))

	d, err := s.Dataset(ctx)
	require.NoError(t, err)
	assert.Len(t, d.Employees, 1)
	assert.Len(t, d.Trainings, 1)
	assert.Empty(t, d.Evaluations)
}
