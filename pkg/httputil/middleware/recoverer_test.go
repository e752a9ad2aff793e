package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverer(t *testing.T) {
	logger, logs := newTestLogger()
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), LoggerWithOptions(&LoggerOptions{Logger: logger}), Recoverer)

	req := httptest.NewRequest(http.MethodGet, "http://example.com/send/1", nil)
	rr := httptest.NewRecorder()
	require.NotPanics(t, func() { handler.ServeHTTP(rr, req) })

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"code":500,"message":"Internal Server Error"}`, rr.Body.String())

	panics := logs.FilterMessage("panic recovered").All()
	require.Len(t, panics, 1)
	assert.Equal(t, "boom", panics[0].ContextMap()["panic"])
}

func TestRecovererAbortHandler(t *testing.T) {
	handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	})
}
