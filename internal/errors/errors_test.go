package errors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
}

func TestRenderError_WritesEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	RenderError(rec, req, ErrValidation("baseline", "must be YYYY-MM"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"success":false`)
	assert.Contains(t, body, "VALIDATION_FAILED")
	assert.Contains(t, body, `"field":"baseline"`)
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("metrics table")

	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "metrics table not found", err.Message)
}

func TestInternalError_CarriesCause(t *testing.T) {
	err := InternalError(assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, assert.AnError.Error(), err.Details)
}
