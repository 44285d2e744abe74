// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// Handlers and the service depend only on this interface, so the SQLite
// backend and the in-memory backend are interchangeable, and tests run
// without a database file.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/report-card/internal/types"
)

var (
	// ErrNotFound is returned when no student has the requested id.
	ErrNotFound = errors.New("student not found")

	// ErrConflict is returned by UpdateStudent when the stored row no
	// longer matches the id and version being written: someone else
	// updated it, or it is gone.
	ErrConflict = errors.New("student was modified or deleted concurrently")
)

// Storage is the database contract.
type Storage interface {
	// CreateStudent inserts a new student record and returns the
	// generated id. Ids are never reused.
	CreateStudent(ctx context.Context, student types.Student) (int64, error)

	// GetStudentByID fetches a single student. Returns ErrNotFound
	// (wrapped) if there is none.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// GetStudents returns every student in the store's natural order.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// UpdateStudent overwrites the row whose id and version both match
	// student, bumps its version and returns the stored record. Returns
	// ErrConflict (wrapped) when no such row exists.
	UpdateStudent(ctx context.Context, student types.Student) (types.Student, error)

	// StudentExists reports whether a row with id is present.
	StudentExists(ctx context.Context, id int64) (bool, error)
}
