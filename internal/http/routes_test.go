package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dogs_webapp/internal/config"
	"dogs_webapp/internal/repository"
	"dogs_webapp/internal/service"
	"dogs_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewGameService(repository.NewMemoryStore(), nil)
	hub := ws.NewHub(svc)
	svc.Subscribe(hub)

	r := gin.New()
	RegisterRoutes(r, svc, hub, nil, cfg)
	return r
}

func testConfig() *config.Config {
	return &config.Config{
		AppVersion:       "test",
		APIRateLimit:     100,
		APIRateWindow:    time.Minute,
		PlayerRateLimit:  100,
		PlayerRateWindow: time.Minute,
	}
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_BothPrefixes(t *testing.T) {
	r := newTestEngine(t, testConfig())

	w := serve(r, http.MethodGet, "/api/v1/player-info/1/alice", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the legacy prefix reaches the same state
	w = serve(r, http.MethodGet, "/api/dogs/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"virtual_dog"`)

	w = serve(r, http.MethodPost, "/api/v1/daily-bonus", `{"tg_id":1}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterRoutes_Probes(t *testing.T) {
	r := newTestEngine(t, testConfig())

	for _, path := range []string{"/health", "/healthz", "/readyz", "/api/health"} {
		w := serve(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := serve(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ws_connections")
}

func TestRegisterRoutes_PlayerRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.PlayerRateLimit = 1
	r := newTestEngine(t, cfg)

	serve(r, http.MethodGet, "/api/v1/player-info/1/alice", "")

	w := serve(r, http.MethodPost, "/api/v1/dogs/1", "")
	assert.NotEqual(t, http.StatusTooManyRequests, w.Code)

	w = serve(r, http.MethodPost, "/api/v1/dogs/1", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// another player has its own budget
	serve(r, http.MethodGet, "/api/v1/player-info/2/bob", "")
	w = serve(r, http.MethodPost, "/api/v1/dogs/2", "")
	assert.NotEqual(t, http.StatusTooManyRequests, w.Code)
}
