// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, the service, storage and validation can all import types
// without depending on each other.
package types

// Student represents one student's stored identity and grade data.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON.
//     The validation package also reports field errors under these names.
//
//  2. validate:"..." — declarative rules checked by the go-playground/validator
//     package. "max" on a string counts characters, not bytes, so "Ayşe"
//     has length 4.
type Student struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"firstName"     validate:"required,max=50"`
	LastName      string `json:"lastName"      validate:"required,max=50"`
	StudentNumber string `json:"studentNumber" validate:"required,max=20"`
	MathGrade     int    `json:"mathGrade"     validate:"min=0,max=100"`
	TurkishGrade  int    `json:"turkishGrade"  validate:"min=0,max=100"`

	// Version is the optimistic-concurrency token. It starts at 1 and is
	// bumped by storage on every successful update; an update carrying a
	// stale version is rejected as a conflict.
	Version int64 `json:"version"`
}

// NewStudent builds a record ready to be inserted. Both grades start at
// zero whatever the caller had in mind; grades are only ever set through
// grade entry.
func NewStudent(firstName, lastName, studentNumber string) Student {
	return Student{
		FirstName:     firstName,
		LastName:      lastName,
		StudentNumber: studentNumber,
		MathGrade:     0,
		TurkishGrade:  0,
	}
}

// FullName is the first and last name joined by a single space.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// CreateStudentRequest is the only input accepted when registering a
// student. It has no grade fields, so a client cannot smuggle grades in
// at creation time.
type CreateStudentRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	StudentNumber string `json:"studentNumber"`
}
