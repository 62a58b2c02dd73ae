package helpers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"wikihub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	return r
}

func TestFromError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{services.ErrArticleNotFound, http.StatusNotFound, "Article not found"},
		{services.ErrTitleRequired, http.StatusBadRequest, "Title is required"},
		{services.ErrTokenExpired, http.StatusUnauthorized, "Token has expired"},
		{services.ErrNotArticleOwner, http.StatusForbidden, "You can only edit your own articles"},
		{services.ErrVersionConflict, http.StatusConflict, services.ErrVersionConflict.Message},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		FromError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.msg)
		assert.Equal(t, tc.msg, decode(t, rec).Error)
	}
}

func TestJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"n": 1})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"n":1}}`, rec.Body.String())
}
