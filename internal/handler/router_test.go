package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/einfratech/chatwidget/backend/internal/config"
	widgetService "github.com/einfratech/chatwidget/backend/internal/service/widget"
)

func newTestRouter(t *testing.T) (http.Handler, *widgetService.Manager) {
	t.Helper()
	mgr := widgetService.NewManager(widgetService.Options{Clock: widgetService.NewManualClock(), Logger: zerolog.Nop()}, 0)
	t.Cleanup(mgr.Close)
	cfg := config.ServerConfig{CORSAllowedOrigins: []string{"https://einfratech.com"}}
	return NewRouter(cfg, mgr, zerolog.Nop()), mgr
}

func TestRouterMountsAPIAndPage(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, tc := range []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/faq", http.StatusOK},
		{http.MethodPost, "/api/widget", http.StatusCreated},
		{http.MethodGet, "/api/healthz", http.StatusOK},
		{http.MethodGet, "/api/widget/missing", http.StatusNotFound},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		assert.Equal(t, tc.want, resp.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/widget", nil)
	req.Header.Set("Origin", "https://einfratech.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Less(t, resp.Code, 300)
	assert.Equal(t, "https://einfratech.com", resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterAccessLogIsComponentTagged(t *testing.T) {
	var buf bytes.Buffer
	mgr := widgetService.NewManager(widgetService.Options{Clock: widgetService.NewManualClock(), Logger: zerolog.Nop()}, 0)
	t.Cleanup(mgr.Close)
	r := NewRouter(config.ServerConfig{CORSAllowedOrigins: []string{"*"}}, mgr, zerolog.New(&buf))

	req := httptest.NewRequest(http.MethodGet, "/api/faq", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"component":"http"`)
	assert.Contains(t, buf.String(), "/api/faq")
}
