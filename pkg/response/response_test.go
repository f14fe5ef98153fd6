package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, "created", map[string]string{"id": "a1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "created", body.Message)
	assert.Equal(t, map[string]interface{}{"id": "a1"}, body.Data)
}

func TestErrorHelpers(t *testing.T) {
	cases := []struct {
		write func(w http.ResponseWriter)
		code  int
		msg   string
	}{
		{func(w http.ResponseWriter) { Conflict(w, "") }, http.StatusConflict, "Conflict"},
		{func(w http.ResponseWriter) { Unauthorized(w, "nope") }, http.StatusUnauthorized, "nope"},
		{func(w http.ResponseWriter) { TooManyRequests(w, "") }, http.StatusTooManyRequests, "Too many requests"},
		{func(w http.ResponseWriter) { BadGateway(w, "") }, http.StatusBadGateway, "Upstream service failed"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		tc.write(rec)
		assert.Equal(t, tc.code, rec.Code)
		body := decode(t, rec)
		assert.False(t, body.Success)
		assert.Equal(t, tc.msg, body.Message)
	}
}

func TestValidationErrorCarriesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"Name": "Name is required"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, map[string]interface{}{"Name": "Name is required"}, body.Error)
}
