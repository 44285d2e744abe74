// Package router builds the application's route table.
package router

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/report-card/internal/http/handlers/pages"
	"github.com/aanand-mishra/report-card/internal/http/handlers/student"
	"github.com/aanand-mishra/report-card/internal/http/middleware"
	"github.com/aanand-mishra/report-card/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New registers every route on a fresh ServeMux and wraps it in the
// request middleware.
//
// Route table:
//
//	GET  /                            → redirect to /students
//	GET  /students                    → student list
//	GET  /students/new                → registration form
//	POST /students                    → register a student
//	GET  /students/{id}/edit          → grade entry form
//	POST /students/{id}/edit          → save grades
//	GET  /students/{id}/report        → report card
//
//	POST /api/students                → register a student (JSON)
//	GET  /api/students                → list students (JSON)
//	GET  /api/students/{id}           → one student (JSON)
//	PUT  /api/students/{id}           → grade entry (JSON)
//	GET  /api/students/{id}/report    → report card (JSON)
//
//	GET  /health                      → liveness
//	GET  /metrics                     → Prometheus metrics
func New(svc *service.Students, log *slog.Logger) (http.Handler, error) {
	p, err := pages.New(svc, log)
	if err != nil {
		return nil, fmt.Errorf("router.New: %w", err)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", p.Home)
	mux.HandleFunc("GET /students", p.List)
	mux.HandleFunc("GET /students/new", p.CreateForm)
	mux.HandleFunc("POST /students", p.Create)
	mux.HandleFunc("GET /students/{id}/edit", p.EditForm)
	mux.HandleFunc("POST /students/{id}/edit", p.Edit)
	mux.HandleFunc("GET /students/{id}/report", p.Report)

	mux.HandleFunc("POST /api/students", student.New(svc))
	mux.HandleFunc("GET /api/students", student.GetList(svc))
	mux.HandleFunc("GET /api/students/{id}", student.GetByID(svc))
	mux.HandleFunc("PUT /api/students/{id}", student.Update(svc))
	mux.HandleFunc("GET /api/students/{id}/report", student.Report(svc))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Chain(log, mux), nil
}
