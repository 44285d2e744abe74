// Package grading turns a student's two subject grades into a report card
// result.
package grading

// PassingAverage is the lowest average that passes. An average of exactly
// 50 passes.
const PassingAverage = 50.0

// Result labels shown on the report card.
const (
	LabelPassed = "Geçti"
	LabelFailed = "Kaldı"
)

// Report is the computed outcome for one student.
type Report struct {
	Average float64 `json:"average"`
	Passed  bool    `json:"passed"`
}

// Compute averages the math and Turkish grades. Halves are kept, so 70
// and 81 average to 75.5.
func Compute(mathGrade, turkishGrade int) Report {
	average := float64(mathGrade+turkishGrade) / 2.0
	return Report{
		Average: average,
		Passed:  average >= PassingAverage,
	}
}

// Label is "Geçti" for a pass and "Kaldı" for a fail.
func (r Report) Label() string {
	if r.Passed {
		return LabelPassed
	}
	return LabelFailed
}
