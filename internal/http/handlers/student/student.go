// Package student contains the JSON API handlers for the Student resource.
//
// Each exported function is a factory: it receives the service once at
// route registration and returns the http.HandlerFunc that runs on every
// request.
//
//	router.HandleFunc("POST /api/students", student.New(svc))
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/report-card/internal/service"
	"github.com/aanand-mishra/report-card/internal/storage"
	"github.com/aanand-mishra/report-card/internal/types"
	"github.com/aanand-mishra/report-card/internal/utils/response"
	"github.com/aanand-mishra/report-card/internal/validation"
)

// New handles POST /api/students
// Registers a student. Grade fields in the body are ignored.
//
// Request body (JSON):
//
//	{ "firstName": "Ayşe", "lastName": "Yılmaz", "studentNumber": "2024001" }
//
// Success response (201 Created):
//
//	{ "id": 1 }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	500 Internal     — database error
func New(svc *service.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var req types.CreateStudentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		created, err := svc.Create(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": created.ID})
	}
}

// GetByID handles GET /api/students/{id}
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	404 Not Found    — no such student
func GetByID(svc *service.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		student, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /api/students
// Returns a JSON array of all students; [] (not null) when there are none.
func GetList(svc *service.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// Update handles PUT /api/students/{id}
// Grade entry. The body is the full record as returned by GetByID,
// including "id" and "version".
//
//	{ "id": 1, "firstName": "Ayşe", "lastName": "Yılmaz",
//	  "studentNumber": "2024001", "mathGrade": 70, "turkishGrade": 81, "version": 1 }
//
// Error responses:
//
//	400 Bad Request  — invalid id, empty body, or validation failure
//	404 Not Found    — body id differs from path id, or the student is gone
//	409 Conflict     — the student was changed since it was read
func Update(svc *service.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a student", slog.Int64("id", id))

		var student types.Student
		if !decodeBody(w, r, &student) {
			return
		}

		updated, err := svc.Update(r.Context(), id, student)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Report handles GET /api/students/{id}/report
//
// Success response (200 OK):
//
//	{ "student": {...}, "average": 75.5, "passed": true, "result": "Geçti" }
func Report(svc *service.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("building report card", slog.Int64("id", id))

		card, err := svc.Report(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, card)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}
	return true
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	if verrs, ok := validation.AsErrors(err); ok {
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verrs))
		return
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(storage.ErrNotFound))
	case errors.Is(err, storage.ErrConflict):
		response.WriteJSON(w, http.StatusConflict, response.GeneralError(storage.ErrConflict))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
	}
}
