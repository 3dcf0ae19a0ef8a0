package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/hr"
)

func (s *Store) SaveEmployee(ctx context.Context, e *hr.Employee) error {
	if e.ID == "" {
		e.ID = hr.NewID()
	}
	if err := e.Validate(); err != nil {
		return err
	}
	err := s.put(ctx, `INSERT OR REPLACE INTO employees (id, name, department, data) VALUES (?, ?, ?, ?)`,
		e, e.ID, e.Name, e.Department)
	if err != nil {
		return fmt.Errorf("save employee %s: %w", e.ID, err)
	}
	return nil
}

func (s *Store) Employee(ctx context.Context, id string) (*hr.Employee, error) {
	e, err := one[hr.Employee](ctx, s.db, `SELECT data FROM employees WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("employee %s: %w", id, err)
	}
	return e, nil
}

func (s *Store) Employees(ctx context.Context) ([]*hr.Employee, error) {
	return many[hr.Employee](ctx, s.db, `SELECT data FROM employees ORDER BY name`)
}

func (s *Store) SaveEvaluation(ctx context.Context, ev *hr.Evaluation) error {
	if ev.ID == "" {
		ev.ID = hr.NewID()
	}
	if err := ev.Validate(); err != nil {
		return err
	}
	err := s.put(ctx, `INSERT OR REPLACE INTO evaluations (id, employee_id, state, date, data) VALUES (?, ?, ?, ?, ?)`,
		ev, ev.ID, ev.EmployeeID, string(ev.State), timestamp(ev.Date))
	if err != nil {
		return fmt.Errorf("save evaluation %s: %w", ev.ID, err)
	}
	return nil
}

func (s *Store) Evaluation(ctx context.Context, id string) (*hr.Evaluation, error) {
	ev, err := one[hr.Evaluation](ctx, s.db, `SELECT data FROM evaluations WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("evaluation %s: %w", id, err)
	}
	return ev, nil
}

// Evaluations lists every evaluation, newest first.
func (s *Store) Evaluations(ctx context.Context) ([]*hr.Evaluation, error) {
	return many[hr.Evaluation](ctx, s.db, `SELECT data FROM evaluations ORDER BY date DESC, id`)
}

func (s *Store) EvaluationsFor(ctx context.Context, employeeID string) ([]*hr.Evaluation, error) {
	return many[hr.Evaluation](ctx, s.db, `SELECT data FROM evaluations WHERE employee_id = ? ORDER BY date DESC, id`, employeeID)
}

func (s *Store) SaveInternship(ctx context.Context, in *hr.Internship) error {
	if in.ID == "" {
		in.ID = hr.NewID()
	}
	if err := in.Validate(); err != nil {
		return err
	}
	err := s.put(ctx, `INSERT OR REPLACE INTO internships (id, status, supervisor_id, data) VALUES (?, ?, ?, ?)`,
		in, in.ID, string(in.Status), nullable(in.SupervisorID))
	if err != nil {
		return fmt.Errorf("save internship %s: %w", in.ID, err)
	}
	return nil
}

func (s *Store) Internship(ctx context.Context, id string) (*hr.Internship, error) {
	in, err := one[hr.Internship](ctx, s.db, `SELECT data FROM internships WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("internship %s: %w", id, err)
	}
	return in, nil
}

// Internships lists internships, optionally only those with the given status.
func (s *Store) Internships(ctx context.Context, status hr.InternshipStatus) ([]*hr.Internship, error) {
	if status == "" {
		return many[hr.Internship](ctx, s.db, `SELECT data FROM internships ORDER BY id`)
	}
	return many[hr.Internship](ctx, s.db, `SELECT data FROM internships WHERE status = ? ORDER BY id`, string(status))
}

func (s *Store) SaveCheckin(ctx context.Context, c *hr.Checkin) error {
	if c.ID == "" {
		c.ID = hr.NewID()
	}
	if err := c.Validate(); err != nil {
		return err
	}
	err := s.put(ctx, `INSERT OR REPLACE INTO checkins (id, internship_id, date, data) VALUES (?, ?, ?, ?)`,
		c, c.ID, c.InternshipID, timestamp(c.Date))
	if err != nil {
		return fmt.Errorf("save checkin %s: %w", c.ID, err)
	}
	return nil
}

// Checkins lists the check-ins of one internship, newest first.
func (s *Store) Checkins(ctx context.Context, internshipID string) ([]*hr.Checkin, error) {
	return many[hr.Checkin](ctx, s.db, `SELECT data FROM checkins WHERE internship_id = ? ORDER BY date DESC, id`, internshipID)
}

func (s *Store) SaveProject(ctx context.Context, p *hr.Project) error {
	if p.ID == "" {
		p.ID = hr.NewID()
	}
	if err := p.Validate(); err != nil {
		return err
	}
	err := s.put(ctx, `INSERT OR REPLACE INTO projects (id, supervisor_id, status, data) VALUES (?, ?, ?, ?)`,
		p, p.ID, p.SupervisorID, string(p.Status))
	if err != nil {
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) Project(ctx context.Context, id string) (*hr.Project, error) {
	p, err := one[hr.Project](ctx, s.db, `SELECT data FROM projects WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) Projects(ctx context.Context) ([]*hr.Project, error) {
	return many[hr.Project](ctx, s.db, `SELECT data FROM projects ORDER BY id`)
}

// CountProjects counts the projects of one supervisor whose status is one of
// statuses, or all of them when none is given.
func (s *Store) CountProjects(ctx context.Context, supervisorID string, statuses ...hr.ProjectStatus) (int, error) {
	projects, err := many[hr.Project](ctx, s.db, `SELECT data FROM projects WHERE supervisor_id = ?`, supervisorID)
	if err != nil {
		return 0, err
	}
	if len(statuses) == 0 {
		return len(projects), nil
	}
	n := 0
	for _, p := range projects {
		for _, st := range statuses {
			if p.Status == st {
				n++
				break
			}
		}
	}
	return n, nil
}

func (s *Store) SaveTraining(ctx context.Context, t *hr.Training) error {
	if t.ID == "" {
		t.ID = hr.NewID()
	}
	if err := t.Validate(); err != nil {
		return err
	}
	err := s.put(ctx, `INSERT OR REPLACE INTO trainings (id, employee_id, status, data) VALUES (?, ?, ?, ?)`,
		t, t.ID, t.EmployeeID, string(t.Status))
	if err != nil {
		return fmt.Errorf("save training %s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) Trainings(ctx context.Context) ([]*hr.Training, error) {
	return many[hr.Training](ctx, s.db, `SELECT data FROM trainings ORDER BY id`)
}

// SaveEquipment stores eq. A serial number already used by another piece of
// equipment is refused with ErrDuplicateSerial.
func (s *Store) SaveEquipment(ctx context.Context, eq *hr.Equipment) error {
	if eq.ID == "" {
		eq.ID = hr.NewID()
	}
	if err := eq.Validate(); err != nil {
		return err
	}

	if eq.SerialNumber != "" {
		var other string
		err := s.db.QueryRowContext(ctx, `SELECT id FROM equipment WHERE serial_number = ? AND id != ?`, eq.SerialNumber, eq.ID).Scan(&other)
		switch {
		case err == nil:
			s.logger.Warn("duplicate serial number", zap.String("serial", eq.SerialNumber), zap.String("existing", other))
			return fmt.Errorf("save equipment %s: %w", eq.ID, ErrDuplicateSerial)
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check serial number: %w", err)
		}
	}

	err := s.put(ctx, `INSERT OR REPLACE INTO equipment (id, serial_number, state, data) VALUES (?, ?, ?, ?)`,
		eq, eq.ID, nullable(eq.SerialNumber), string(eq.State))
	if err != nil {
		return fmt.Errorf("save equipment %s: %w", eq.ID, err)
	}
	return nil
}

func (s *Store) Equipment(ctx context.Context) ([]*hr.Equipment, error) {
	return many[hr.Equipment](ctx, s.db, `SELECT data FROM equipment ORDER BY id`)
}

func (s *Store) SaveChat(ctx context.Context, c *hr.AssistantChat) error {
	if c.ID == "" {
		c.ID = hr.NewID()
	}
	err := s.put(ctx, `INSERT OR REPLACE INTO assistant_chats (id, asked_at, data) VALUES (?, ?, ?)`,
		c, c.ID, timestamp(c.AskedAt))
	if err != nil {
		return fmt.Errorf("save chat %s: %w", c.ID, err)
	}
	return nil
}

// Chats returns the most recent assistant exchanges, newest first. A limit of
// zero or less returns all of them.
func (s *Store) Chats(ctx context.Context, limit int) ([]*hr.AssistantChat, error) {
	if limit <= 0 {
		limit = -1
	}
	return many[hr.AssistantChat](ctx, s.db, `SELECT data FROM assistant_chats ORDER BY asked_at DESC LIMIT ?`, limit)
}

// Dataset loads every record the dashboard aggregates over.
func (s *Store) Dataset(ctx context.Context) (hr.Dataset, error) {
	var d hr.Dataset
	var err error
	if d.Employees, err = s.Employees(ctx); err != nil {
		return d, fmt.Errorf("load employees: %w", err)
	}
	if d.Evaluations, err = s.Evaluations(ctx); err != nil {
		return d, fmt.Errorf("load evaluations: %w", err)
	}
	if d.Trainings, err = s.Trainings(ctx); err != nil {
		return d, fmt.Errorf("load trainings: %w", err)
	}
	if d.Equipment, err = s.Equipment(ctx); err != nil {
		return d, fmt.Errorf("load equipment: %w", err)
	}
	if d.Internships, err = s.Internships(ctx, ""); err != nil {
		return d, fmt.Errorf("load internships: %w", err)
	}
	return d, nil
}
