// Package service holds the student record operations: list, create,
// lookup, grade entry and the report card. It sits between the HTTP
// handlers and storage.Storage and owns validation and grading.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aanand-mishra/report-card/internal/grading"
	"github.com/aanand-mishra/report-card/internal/storage"
	"github.com/aanand-mishra/report-card/internal/types"
	"github.com/aanand-mishra/report-card/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_card_reports_total",
		Help: "Report cards produced, by result.",
	}, []string{"result"})

	updateConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_card_update_conflicts_total",
		Help: "Grade entries rejected by the version check, by resolution.",
	}, []string{"resolution"})
)

// ReportCard is what the report page shows for one student.
type ReportCard struct {
	Student types.Student `json:"student"`
	Average float64       `json:"average"`
	Passed  bool          `json:"passed"`
	Result  string        `json:"result"`
}

// Students runs the record lifecycle over a storage backend.
type Students struct {
	store storage.Storage
	log   *slog.Logger
}

// New returns a Students service. A nil logger falls back to slog.Default.
func New(store storage.Storage, log *slog.Logger) *Students {
	if log == nil {
		log = slog.Default()
	}
	return &Students{store: store, log: log}
}

// List returns every student.
func (s *Students) List(ctx context.Context) ([]types.Student, error) {
	students, err := s.store.GetStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return students, nil
}

// Create registers a student. Only the identity fields are taken from
// req; both grades start at zero. On invalid input the returned error is
// a validation.Errors and nothing is stored.
func (s *Students) Create(ctx context.Context, req types.CreateStudentRequest) (types.Student, error) {
	student := types.NewStudent(
		strings.TrimSpace(req.FirstName),
		strings.TrimSpace(req.LastName),
		strings.TrimSpace(req.StudentNumber),
	)

	if errs := validation.All(student); len(errs) > 0 {
		s.log.Debug("create rejected", slog.String("errors", errs.Error()))
		return types.Student{}, errs
	}

	id, err := s.store.CreateStudent(ctx, student)
	if err != nil {
		return types.Student{}, fmt.Errorf("Create: %w", err)
	}

	created, err := s.store.GetStudentByID(ctx, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("Create: reload: %w", err)
	}

	s.log.Info("student created",
		slog.Int64("id", id),
		slog.String("student_number", created.StudentNumber))

	return created, nil
}

// Get returns the student with id, or an error wrapping
// storage.ErrNotFound.
func (s *Students) Get(ctx context.Context, id int64) (types.Student, error) {
	student, err := s.store.GetStudentByID(ctx, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("Get: %w", err)
	}
	return student, nil
}

// Update is grade entry. The payload is the whole record including id
// and version.
//
//   - pathID and student.ID disagree: storage.ErrNotFound, nothing written.
//   - invalid fields: validation.Errors, nothing written.
//   - version check fails and the row is gone: storage.ErrNotFound.
//   - version check fails and the row is still there: storage.ErrConflict.
func (s *Students) Update(ctx context.Context, pathID int64, student types.Student) (types.Student, error) {
	if pathID != student.ID {
		return types.Student{}, fmt.Errorf("Update: path id %d does not match record id %d: %w",
			pathID, student.ID, storage.ErrNotFound)
	}

	student.FirstName = strings.TrimSpace(student.FirstName)
	student.LastName = strings.TrimSpace(student.LastName)
	student.StudentNumber = strings.TrimSpace(student.StudentNumber)

	if errs := validation.All(student); len(errs) > 0 {
		s.log.Debug("update rejected",
			slog.Int64("id", student.ID),
			slog.String("errors", errs.Error()))
		return types.Student{}, errs
	}

	updated, err := s.store.UpdateStudent(ctx, student)
	if err == nil {
		s.log.Info("grades saved",
			slog.Int64("id", updated.ID),
			slog.Int("math_grade", updated.MathGrade),
			slog.Int("turkish_grade", updated.TurkishGrade))
		return updated, nil
	}
	if !errors.Is(err, storage.ErrConflict) {
		return types.Student{}, fmt.Errorf("Update: %w", err)
	}

	exists, existsErr := s.store.StudentExists(ctx, student.ID)
	if existsErr != nil {
		return types.Student{}, fmt.Errorf("Update: check existence after conflict: %w", existsErr)
	}
	if !exists {
		updateConflictsTotal.WithLabelValues("not_found").Inc()
		return types.Student{}, fmt.Errorf("Update: student %d was deleted: %w", student.ID, storage.ErrNotFound)
	}

	updateConflictsTotal.WithLabelValues("conflict").Inc()
	s.log.Warn("grade entry lost a concurrent update",
		slog.Int64("id", student.ID),
		slog.Int64("version", student.Version))
	return types.Student{}, fmt.Errorf("Update: %w", err)
}

// Report grades the stored student with id.
func (s *Students) Report(ctx context.Context, id int64) (ReportCard, error) {
	student, err := s.store.GetStudentByID(ctx, id)
	if err != nil {
		return ReportCard{}, fmt.Errorf("Report: %w", err)
	}

	r := grading.Compute(student.MathGrade, student.TurkishGrade)
	card := ReportCard{
		Student: student,
		Average: r.Average,
		Passed:  r.Passed,
		Result:  r.Label(),
	}

	result := "failed"
	if r.Passed {
		result = "passed"
	}
	reportsTotal.WithLabelValues(result).Inc()

	return card, nil
}
