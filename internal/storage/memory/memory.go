// Package memory is an in-process storage.Storage. Nothing survives a
// restart; it backs the "memory" storage driver and the handler tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aanand-mishra/report-card/internal/storage"
	"github.com/aanand-mishra/report-card/internal/types"
)

// Memory keeps students in a map guarded by a mutex. Ids come from a
// monotonically increasing counter and are never reused.
type Memory struct {
	mu       sync.RWMutex
	students map[int64]types.Student
	order    []int64
	nextID   int64
}

// New returns an empty store.
func New() *Memory {
	return &Memory{
		students: make(map[int64]types.Student),
		nextID:   1,
	}
}

func (m *Memory) CreateStudent(_ context.Context, student types.Student) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++

	student.ID = id
	student.Version = 1
	m.students[id] = student
	m.order = append(m.order, id)

	return id, nil
}

func (m *Memory) GetStudentByID(_ context.Context, id int64) (types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	student, ok := m.students[id]
	if !ok {
		return types.Student{}, fmt.Errorf("no student found with id %d: %w", id, storage.ErrNotFound)
	}
	return student, nil
}

func (m *Memory) GetStudents(_ context.Context) ([]types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	students := make([]types.Student, 0, len(m.students))
	for _, id := range m.order {
		if s, ok := m.students[id]; ok {
			students = append(students, s)
		}
	}
	return students, nil
}

func (m *Memory) UpdateStudent(_ context.Context, student types.Student) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.students[student.ID]
	if !ok || current.Version != student.Version {
		return types.Student{}, fmt.Errorf("UpdateStudent: id %d version %d: %w",
			student.ID, student.Version, storage.ErrConflict)
	}

	student.Version = current.Version + 1
	m.students[student.ID] = student
	return student, nil
}

func (m *Memory) StudentExists(_ context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.students[id]
	return ok, nil
}

// DeleteStudentByID removes a student. Not routed over HTTP.
func (m *Memory) DeleteStudentByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.students, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
