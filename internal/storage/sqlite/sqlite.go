// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// The blank import below registers the sqlite3 driver with database/sql.
// The driver's init() function does this automatically when the package
// is loaded — we never call anything from it directly.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aanand-mishra/report-card/internal/config"
	"github.com/aanand-mishra/report-card/internal/storage"
	"github.com/aanand-mishra/report-card/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db *sql.DB
}

// schema is idempotent and safe to run on every startup.
//
//	id             — AUTOINCREMENT so a deleted id is never handed out again
//	student_number — deliberately not UNIQUE
//	*_grade        — CHECK constraints reject out-of-range grades even if a
//	                 caller bypasses validation
//	version        — optimistic-concurrency token, bumped on every update
const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name     TEXT    NOT NULL,
		last_name      TEXT    NOT NULL,
		student_number TEXT    NOT NULL,
		math_grade     INTEGER NOT NULL DEFAULT 0 CHECK (math_grade BETWEEN 0 AND 100),
		turkish_grade  INTEGER NOT NULL DEFAULT 0 CHECK (turkish_grade BETWEEN 0 AND 100),
		version        INTEGER NOT NULL DEFAULT 1
	)
`

const selectColumns = "id, first_name, last_name, student_number, math_grade, turkish_grade, version"

// New opens the SQLite database at cfg.StoragePath, creates the parent
// directory and the students table if needed, and returns a ready-to-use
// *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	if dir := filepath.Dir(cfg.StoragePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	// busy_timeout makes a second writer wait instead of failing with
	// SQLITE_BUSY.
	db, err := sql.Open("sqlite3", cfg.StoragePath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// CreateStudent inserts a new row. The version always starts at 1,
// whatever the caller passed.
func (s *SQLite) CreateStudent(ctx context.Context, student types.Student) (int64, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		`INSERT INTO students (first_name, last_name, student_number, math_grade, turkish_grade, version)
		 VALUES (?, ?, ?, ?, ?, 1)`,
	)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		student.FirstName,
		student.LastName,
		student.StudentNumber,
		student.MathGrade,
		student.TurkishGrade,
	)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	return lastID, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (types.Student, error) {
	var student types.Student
	err := row.Scan(
		&student.ID,
		&student.FirstName,
		&student.LastName,
		&student.StudentNumber,
		&student.MathGrade,
		&student.TurkishGrade,
		&student.Version,
	)
	return student, err
}

// GetStudentByID fetches exactly one student row matched by primary key.
func (s *SQLite) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT "+selectColumns+" FROM students WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	student, err := scanStudent(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("no student found with id %d: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

// GetStudents returns all student rows ordered by id.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT "+selectColumns+" FROM students ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// UpdateStudent writes the student only if the row still carries the
// version the caller read. Zero affected rows means the row changed or
// vanished in between, and the caller gets storage.ErrConflict.
func (s *SQLite) UpdateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		`UPDATE students
		    SET first_name = ?, last_name = ?, student_number = ?,
		        math_grade = ?, turkish_grade = ?, version = version + 1
		  WHERE id = ? AND version = ?`,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		student.FirstName,
		student.LastName,
		student.StudentNumber,
		student.MathGrade,
		student.TurkishGrade,
		student.ID,
		student.Version,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudent: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudent: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Student{}, fmt.Errorf("UpdateStudent: id %d version %d: %w",
			student.ID, student.Version, storage.ErrConflict)
	}

	// Re-fetch the record so we return exactly what is stored in the DB.
	return s.GetStudentByID(ctx, student.ID)
}

// StudentExists reports whether a row with the given id is present.
func (s *SQLite) StudentExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.Db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM students WHERE id = ?)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("StudentExists: %w", err)
	}
	return exists, nil
}

// DeleteStudentByID removes a student row by primary key. Not routed over
// HTTP.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id int64) error {
	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM students WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, id); err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	return nil
}
