// Package pages serves the HTML side of the application: the student
// list, the registration form, grade entry and the report card.
package pages

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aanand-mishra/report-card/internal/service"
	"github.com/aanand-mishra/report-card/internal/storage"
	"github.com/aanand-mishra/report-card/internal/types"
	"github.com/aanand-mishra/report-card/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

// Notices shown on the list page after a successful redirect, keyed by
// the ?notice= value.
const (
	NoticeCreated = "created"
	NoticeGraded  = "graded"
)

var notices = map[string]string{
	NoticeCreated: "Öğrenci başarıyla kaydedildi.",
	NoticeGraded:  "Notlar başarıyla kaydedildi.",
}

// Pages renders the HTML views on top of the student service.
type Pages struct {
	svc       *service.Students
	log       *slog.Logger
	templates map[string]*template.Template
}

// New parses the embedded templates.
func New(svc *service.Students, log *slog.Logger) (*Pages, error) {
	if log == nil {
		log = slog.Default()
	}

	p := &Pages{
		svc:       svc,
		log:       log,
		templates: make(map[string]*template.Template),
	}
	for _, name := range []string{"list", "create", "edit", "report", "error"} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("pages.New: parse %s: %w", name, err)
		}
		p.templates[name] = tmpl
	}
	return p, nil
}

type listView struct {
	Notice   string
	Students []types.Student
}

type formView struct {
	Student types.Student
	// Grades as typed, so a rejected non-number is shown back unchanged.
	MathGrade    string
	TurkishGrade string
	Errors       validation.Errors
}

type errorView struct {
	Title   string
	Message string
}

// Home handles GET / by sending the browser to the list.
func (p *Pages) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/students", http.StatusFound)
}

// List handles GET /students
func (p *Pages) List(w http.ResponseWriter, r *http.Request) {
	students, err := p.svc.List(r.Context())
	if err != nil {
		p.fail(w, r, err)
		return
	}

	p.render(w, http.StatusOK, "list", listView{
		Notice:   notices[r.URL.Query().Get("notice")],
		Students: students,
	})
}

// CreateForm handles GET /students/new
func (p *Pages) CreateForm(w http.ResponseWriter, r *http.Request) {
	p.render(w, http.StatusOK, "create", formView{})
}

// Create handles POST /students
func (p *Pages) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	req := types.CreateStudentRequest{
		FirstName:     r.PostForm.Get("firstName"),
		LastName:      r.PostForm.Get("lastName"),
		StudentNumber: r.PostForm.Get("studentNumber"),
	}

	if _, err := p.svc.Create(r.Context(), req); err != nil {
		if verrs, ok := validation.AsErrors(err); ok {
			p.render(w, http.StatusUnprocessableEntity, "create", formView{
				Student: types.NewStudent(req.FirstName, req.LastName, req.StudentNumber),
				Errors:  verrs,
			})
			return
		}
		p.fail(w, r, err)
		return
	}

	http.Redirect(w, r, "/students?notice="+NoticeCreated, http.StatusSeeOther)
}

// EditForm handles GET /students/{id}/edit
func (p *Pages) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := p.pathID(w, r)
	if !ok {
		return
	}

	student, err := p.svc.Get(r.Context(), id)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	p.render(w, http.StatusOK, "edit", formView{
		Student:      student,
		MathGrade:    strconv.Itoa(student.MathGrade),
		TurkishGrade: strconv.Itoa(student.TurkishGrade),
	})
}

// Edit handles POST /students/{id}/edit
func (p *Pages) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := p.pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	view := formView{
		MathGrade:    strings.TrimSpace(r.PostForm.Get("mathGrade")),
		TurkishGrade: strings.TrimSpace(r.PostForm.Get("turkishGrade")),
	}
	student, parseErrs := parseEditForm(r, view)
	view.Student = student

	if len(parseErrs) > 0 {
		if student.ID != id {
			p.notFound(w)
			return
		}
		view.Errors = validation.Merge(parseErrs, validation.All(student))
		p.render(w, http.StatusUnprocessableEntity, "edit", view)
		return
	}

	if _, err := p.svc.Update(r.Context(), id, student); err != nil {
		if verrs, ok := validation.AsErrors(err); ok {
			view.Errors = verrs
			p.render(w, http.StatusUnprocessableEntity, "edit", view)
			return
		}
		p.fail(w, r, err)
		return
	}

	http.Redirect(w, r, "/students?notice="+NoticeGraded, http.StatusSeeOther)
}

// parseEditForm reads the posted record. A grade that is not a whole
// number is reported and left at zero so the remaining rules still run.
// A missing or malformed id or version parses as zero, which the
// service then rejects as not found or as a conflict.
func parseEditForm(r *http.Request, view formView) (types.Student, validation.Errors) {
	id, _ := strconv.ParseInt(r.PostForm.Get("id"), 10, 64)
	version, _ := strconv.ParseInt(r.PostForm.Get("version"), 10, 64)

	student := types.Student{
		ID:            id,
		FirstName:     r.PostForm.Get("firstName"),
		LastName:      r.PostForm.Get("lastName"),
		StudentNumber: r.PostForm.Get("studentNumber"),
		Version:       version,
	}

	var errs validation.Errors
	if n, err := strconv.Atoi(view.MathGrade); err == nil {
		student.MathGrade = n
	} else {
		errs = append(errs, validation.NewFieldError(validation.FieldMathGrade, validation.RuleNumber))
	}
	if n, err := strconv.Atoi(view.TurkishGrade); err == nil {
		student.TurkishGrade = n
	} else {
		errs = append(errs, validation.NewFieldError(validation.FieldTurkishGrade, validation.RuleNumber))
	}

	return student, errs
}

// Report handles GET /students/{id}/report
func (p *Pages) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := p.pathID(w, r)
	if !ok {
		return
	}

	card, err := p.svc.Report(r.Context(), id)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	p.render(w, http.StatusOK, "report", card)
}

// pathID treats a malformed id like a missing student.
func (p *Pages) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		p.notFound(w)
		return 0, false
	}
	return id, true
}

func (p *Pages) notFound(w http.ResponseWriter) {
	p.render(w, http.StatusNotFound, "error", errorView{
		Title:   "Bulunamadı",
		Message: "Aradığınız öğrenci bulunamadı.",
	})
}

func (p *Pages) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		p.notFound(w)
	case errors.Is(err, storage.ErrConflict):
		p.render(w, http.StatusConflict, "error", errorView{
			Title:   "Kayıt değişti",
			Message: "Bu öğrenci siz düzenlerken başka biri tarafından değiştirildi. Lütfen sayfayı yenileyip tekrar deneyin.",
		})
	default:
		p.log.Error("page request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		p.render(w, http.StatusInternalServerError, "error", errorView{
			Title:   "Hata",
			Message: "Beklenmeyen bir hata oluştu.",
		})
	}
}

// render executes into a buffer first so a template error never leaves
// a half-written page behind a 200.
func (p *Pages) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := p.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		p.log.Error("render failed", slog.String("template", name), slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
