package engine

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/airplane-mode/internal/infra/auth"
)

func TestTracingMiddleware(t *testing.T) {
	var seen string
	h := TracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TraceIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "trace-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "trace-1", seen)
	assert.Equal(t, "trace-1", rec.Header().Get("X-Trace-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "trace-1", seen)
	assert.Equal(t, seen, rec.Header().Get("X-Trace-ID"))
}

func TestToggleMiddleware(t *testing.T) {
	g, _ := newTestGate(t)
	token, err := g.nonces.Issue(t.Context(), NonceAction, admin.UserID)
	require.NoError(t, err)

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	})
	h := ToggleMiddleware(g)(next)

	// Анонимный запрос проходит дальше без изменений
	req := httptest.NewRequest(http.MethodGet, "/wp-admin/?airplane-mode=off&airmde_nonce="+token, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.True(t, nextCalled)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, g.Enabled(t.Context()))

	nextCalled = false
	req = httptest.NewRequest(http.MethodGet, "/wp-admin/?tab=1&airplane-mode=off&airmde_nonce="+token, nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), admin))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/wp-admin/?tab=1", rec.Header().Get("Location"))
	assert.False(t, g.Enabled(t.Context()))
}
