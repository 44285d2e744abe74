package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aanand-mishra/report-card/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteJSON(rec, http.StatusCreated, map[string]int64{"id": 3}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":3}`, rec.Body.String())
}

func TestGeneralError(t *testing.T) {
	r := GeneralError(errors.New("boom"))

	assert.Equal(t, Response{Status: StatusError, Error: "boom"}, r)

	body, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","error":"boom"}`, string(body))
}

func TestValidationError(t *testing.T) {
	errs := validation.Errors{validation.NewFieldError(validation.FieldMathGrade, validation.RuleRange)}

	body, err := json.Marshal(ValidationError(errs))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"status": "error",
		"error": "mathGrade: Matematik notu 0-100 arasında olmalıdır",
		"fields": [{"field": "mathGrade", "rule": "range", "message": "Matematik notu 0-100 arasında olmalıdır"}]
	}`, string(body))
}
