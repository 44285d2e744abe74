// Package validation checks a candidate student record and reports every
// field-level problem it finds.
//
// Two layers run independently and must each reject bad input on their own:
//
//   - Declared: the validate:"..." struct tags on types.Student, evaluated by
//     go-playground/validator.
//   - Check: plain Go comparisons, no reflection.
//
// All runs both and merges the results.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/aanand-mishra/report-card/internal/types"
	"github.com/go-playground/validator/v10"
)

// Field names, matching the json tags on types.Student.
const (
	FieldFirstName     = "firstName"
	FieldLastName      = "lastName"
	FieldStudentNumber = "studentNumber"
	FieldMathGrade     = "mathGrade"
	FieldTurkishGrade  = "turkishGrade"
)

// Rule names.
const (
	RuleRequired  = "required"
	RuleMaxLength = "max"
	RuleRange     = "range"
	RuleNumber    = "number"
)

// Limits.
const (
	MaxNameLength          = 50
	MaxStudentNumberLength = 20
	MinGrade               = 0
	MaxGrade               = 100
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Errors is the full set of problems found on a record. An empty set
// means the record is valid.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, ", ")
}

// Has reports whether any error was recorded for field.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// For returns the messages recorded for field, in order.
func (e Errors) For(field string) []string {
	var msgs []string
	for _, fe := range e {
		if fe.Field == field {
			msgs = append(msgs, fe.Message)
		}
	}
	return msgs
}

// AsErrors unwraps err into Errors when it carries one.
func AsErrors(err error) (Errors, bool) {
	var verrs Errors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

var messages = map[string]map[string]string{
	FieldFirstName: {
		RuleRequired:  "Ad alanı zorunludur",
		RuleMaxLength: "Ad en fazla 50 karakter olabilir",
	},
	FieldLastName: {
		RuleRequired:  "Soyad alanı zorunludur",
		RuleMaxLength: "Soyad en fazla 50 karakter olabilir",
	},
	FieldStudentNumber: {
		RuleRequired:  "Numara alanı zorunludur",
		RuleMaxLength: "Numara en fazla 20 karakter olabilir",
	},
	FieldMathGrade: {
		RuleRange:  "Matematik notu 0-100 arasında olmalıdır",
		RuleNumber: "Matematik notu sayı olmalıdır",
	},
	FieldTurkishGrade: {
		RuleRange:  "Türkçe notu 0-100 arasında olmalıdır",
		RuleNumber: "Türkçe notu sayı olmalıdır",
	},
}

// NewFieldError builds a FieldError with the standard message for the
// field and rule.
func NewFieldError(field, rule string) FieldError {
	msg, ok := messages[field][rule]
	if !ok {
		msg = fmt.Sprintf("%s alanı geçersiz", field)
	}
	return FieldError{Field: field, Rule: rule, Message: msg}
}

// Check is the explicit pre-save check.
func Check(s types.Student) Errors {
	var errs Errors

	checkText := func(field, value string, max int) {
		switch {
		case value == "":
			errs = append(errs, NewFieldError(field, RuleRequired))
		case utf8.RuneCountInString(value) > max:
			errs = append(errs, NewFieldError(field, RuleMaxLength))
		}
	}
	checkText(FieldFirstName, s.FirstName, MaxNameLength)
	checkText(FieldLastName, s.LastName, MaxNameLength)
	checkText(FieldStudentNumber, s.StudentNumber, MaxStudentNumberLength)

	if s.MathGrade < MinGrade || s.MathGrade > MaxGrade {
		errs = append(errs, NewFieldError(FieldMathGrade, RuleRange))
	}
	if s.TurkishGrade < MinGrade || s.TurkishGrade > MaxGrade {
		errs = append(errs, NewFieldError(FieldTurkishGrade, RuleRange))
	}

	return errs
}

// validate is shared; validator caches struct metadata and is safe for
// concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields under their json names so both layers agree on naming.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Declared evaluates the validate:"..." tags on s.
func Declared(s types.Student) Errors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError only happens for non-struct input.
		panic(fmt.Sprintf("validation.Declared: %v", err))
	}

	errs := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, NewFieldError(fe.Field(), ruleFor(fe)))
	}
	return errs
}

// ruleFor maps a validator tag onto our rule names. On grades both "min"
// and "max" are the one range rule.
func ruleFor(fe validator.FieldError) string {
	switch fe.Field() {
	case FieldMathGrade, FieldTurkishGrade:
		return RuleRange
	}
	switch fe.ActualTag() {
	case "required":
		return RuleRequired
	case "max":
		return RuleMaxLength
	default:
		return fe.ActualTag()
	}
}

// All runs both layers and merges their findings, keeping the first
// occurrence of each (field, rule) pair.
func All(s types.Student) Errors {
	return Merge(Declared(s), Check(s))
}

// Merge concatenates error sets, dropping duplicate (field, rule) pairs.
func Merge(sets ...Errors) Errors {
	seen := make(map[[2]string]bool)
	var out Errors
	for _, set := range sets {
		for _, fe := range set {
			key := [2]string{fe.Field, fe.Rule}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, fe)
		}
	}
	return out
}
