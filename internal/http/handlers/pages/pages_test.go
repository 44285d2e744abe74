package pages

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aanand-mishra/report-card/internal/service"
	"github.com/aanand-mishra/report-card/internal/storage/memory"
	"github.com/aanand-mishra/report-card/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T) (*http.ServeMux, *memory.Memory) {
	t.Helper()
	store := memory.New()
	p, err := New(service.New(store, nil), nil)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", p.Home)
	mux.HandleFunc("GET /students", p.List)
	mux.HandleFunc("GET /students/new", p.CreateForm)
	mux.HandleFunc("POST /students", p.Create)
	mux.HandleFunc("GET /students/{id}/edit", p.EditForm)
	mux.HandleFunc("POST /students/{id}/edit", p.Edit)
	mux.HandleFunc("GET /students/{id}/report", p.Report)
	return mux, store
}

func get(mux http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func post(mux http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func seed(t *testing.T, store *memory.Memory, math, turkish int) types.Student {
	t.Helper()
	ctx := context.Background()
	id, err := store.CreateStudent(ctx, types.NewStudent("Ayşe", "Yılmaz", "2024001"))
	require.NoError(t, err)
	s, err := store.GetStudentByID(ctx, id)
	require.NoError(t, err)
	s.MathGrade, s.TurkishGrade = math, turkish
	s, err = store.UpdateStudent(ctx, s)
	require.NoError(t, err)
	return s
}

func editForm(s types.Student, math, turkish string) url.Values {
	return url.Values{
		"id":            {"1"},
		"version":       {"2"},
		"firstName":     {s.FirstName},
		"lastName":      {s.LastName},
		"studentNumber": {s.StudentNumber},
		"mathGrade":     {math},
		"turkishGrade":  {turkish},
	}
}

func TestHomeRedirects(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := get(mux, "/")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/students", rec.Header().Get("Location"))
}

func TestList(t *testing.T) {
	mux, store := newTestMux(t)

	empty := get(mux, "/students")
	assert.Equal(t, http.StatusOK, empty.Code)
	assert.Contains(t, empty.Body.String(), "Henüz kayıtlı öğrenci yok.")

	seed(t, store, 70, 81)
	rec := get(mux, "/students?notice=created")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ayşe Yılmaz")
	assert.Contains(t, rec.Body.String(), "Öğrenci başarıyla kaydedildi.")
}

func TestCreate(t *testing.T) {
	mux, store := newTestMux(t)

	form := get(mux, "/students/new")
	assert.Equal(t, http.StatusOK, form.Code)

	rec := post(mux, "/students", url.Values{
		"firstName":     {"Ayşe"},
		"lastName":      {"Yılmaz"},
		"studentNumber": {"2024001"},
		"mathGrade":     {"100"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/students?notice=created", rec.Header().Get("Location"))

	all, err := store.GetStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 0, all[0].MathGrade)
}

func TestCreate_ValidationRerendersForm(t *testing.T) {
	mux, store := newTestMux(t)

	rec := post(mux, "/students", url.Values{
		"firstName":     {""},
		"lastName":      {"Yılmaz"},
		"studentNumber": {"2024001"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ad alanı zorunludur")
	assert.Contains(t, rec.Body.String(), `value="Yılmaz"`)

	all, _ := store.GetStudents(context.Background())
	assert.Empty(t, all)
}

func TestEditForm(t *testing.T) {
	mux, store := newTestMux(t)
	seed(t, store, 70, 81)

	rec := get(mux, "/students/1/edit")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="version" value="2"`)

	assert.Equal(t, http.StatusNotFound, get(mux, "/students/2/edit").Code)
	assert.Equal(t, http.StatusNotFound, get(mux, "/students/abc/edit").Code)
}

func TestEdit(t *testing.T) {
	mux, store := newTestMux(t)
	s := seed(t, store, 0, 0)

	rec := post(mux, "/students/1/edit", editForm(s, "70", "81"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/students?notice=graded", rec.Header().Get("Location"))

	stored, err := store.GetStudentByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 70, stored.MathGrade)
	assert.Equal(t, 81, stored.TurkishGrade)
}

func TestEdit_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		math    string
		turkish string
		mutate  func(url.Values)
		status  int
		body    string
	}{
		{"math too high", "/students/1/edit", "101", "50", nil,
			http.StatusUnprocessableEntity, "Matematik notu 0-100 arasında olmalıdır"},
		{"turkish negative", "/students/1/edit", "50", "-1", nil,
			http.StatusUnprocessableEntity, "Türkçe notu 0-100 arasında olmalıdır"},
		{"not a number", "/students/1/edit", "abc", "50", nil,
			http.StatusUnprocessableEntity, "Matematik notu sayı olmalıdır"},
		{"id mismatch", "/students/1/edit", "50", "50", func(v url.Values) { v.Set("id", "2") },
			http.StatusNotFound, "bulunamadı"},
		{"id mismatch with bad grade", "/students/1/edit", "x", "50", func(v url.Values) { v.Set("id", "2") },
			http.StatusNotFound, "bulunamadı"},
		{"stale version", "/students/1/edit", "50", "50", func(v url.Values) { v.Set("version", "1") },
			http.StatusConflict, "başka biri tarafından değiştirildi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, store := newTestMux(t)
			s := seed(t, store, 10, 20)
			form := editForm(s, tt.math, tt.turkish)
			if tt.mutate != nil {
				tt.mutate(form)
			}

			rec := post(mux, tt.path, form)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)

			stored, err := store.GetStudentByID(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, 10, stored.MathGrade)
			assert.Equal(t, 20, stored.TurkishGrade)
		})
	}
}

func TestEdit_DeletedStudentIsNotFound(t *testing.T) {
	mux, store := newTestMux(t)
	s := seed(t, store, 10, 20)
	require.NoError(t, store.DeleteStudentByID(context.Background(), s.ID))

	rec := post(mux, "/students/1/edit", editForm(s, "50", "50"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReport(t *testing.T) {
	tests := []struct {
		math, turkish int
		average       string
		result        string
	}{
		{70, 81, "75.5", "Geçti"},
		{40, 60, "50.0", "Geçti"},
		{0, 99, "49.5", "Kaldı"},
	}

	for _, tt := range tests {
		t.Run(tt.result+tt.average, func(t *testing.T) {
			mux, store := newTestMux(t)
			seed(t, store, tt.math, tt.turkish)

			rec := get(mux, "/students/1/report")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "Ayşe Yılmaz")
			assert.Contains(t, rec.Body.String(), "<td>"+tt.average+"</td>")
			assert.Contains(t, rec.Body.String(), tt.result)
		})
	}
}

func TestReport_NotFound(t *testing.T) {
	mux, _ := newTestMux(t)

	assert.Equal(t, http.StatusNotFound, get(mux, "/students/7/report").Code)
}
