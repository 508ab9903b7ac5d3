package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studynotes/studynotes/internal/adapters/http/handlers"
	"github.com/studynotes/studynotes/internal/app"
	"github.com/studynotes/studynotes/internal/platform/config"
	"github.com/studynotes/studynotes/internal/ports"
	"github.com/studynotes/studynotes/internal/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFullRouter wires the complete application stack against the
// in-memory store and returns the configured engine.
func newFullRouter(t *testing.T) *gin.Engine {
	t.Helper()

	logger := discardLogger()
	store := memory.New(logger)

	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(store))

	subjectService := app.NewSubjectService(app.SubjectServiceConfig{
		Storage: store,
		Logger:  logger,
	})
	noteService := app.NewNoteService(app.NoteServiceConfig{
		Storage: store,
		Logger:  logger,
	})

	appCfg := &config.AppConfig{
		Name:        "studynotes-test",
		Version:     "test",
		Environment: "test",
	}

	engine := gin.New()
	SetupRouter(engine, NewDefaultRouterConfig(
		logger,
		appCfg,
		handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now")),
		handlers.NewSubjectHandler(subjectService),
		handlers.NewNoteHandler(noteService),
	))

	return engine
}

func TestSetupRouter_RegistersRoutes(t *testing.T) {
	engine := newFullRouter(t)

	expected := map[string]string{
		"GET /api/subjects":        "",
		"POST /api/subjects":       "",
		"PUT /api/subjects/:id":    "",
		"DELETE /api/subjects/:id": "",
		"GET /api/notes":           "",
		"POST /api/notes":          "",
		"GET /api/notes/:id":       "",
		"PUT /api/notes/:id":       "",
		"DELETE /api/notes/:id":    "",
		"GET /api/health":          "",
		"GET /-/live":              "",
		"GET /-/ready":             "",
	}

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for route := range expected {
		assert.True(t, registered[route], "route %s should be registered", route)
	}
}

func TestSetupRouter_EndToEnd(t *testing.T) {
	engine := newFullRouter(t)

	t.Run("list seeded subjects", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/subjects", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Mathematics")
		assert.Contains(t, w.Body.String(), "noteCount")
	})

	t.Run("create and fetch a note", func(t *testing.T) {
		body := `{"title":"Router Test Note","content":"full stack","subjectId":1}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/notes", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/api/notes?search=router+test", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Router Test Note")
	})

	t.Run("api health", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ok")
	})

	t.Run("liveness probe", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/-/live", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("request id header set", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/subjects", nil)
		engine.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("unknown route", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSetupMinimalRouter(t *testing.T) {
	logger := discardLogger()
	store := memory.New(logger)
	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(store))

	engine := gin.New()
	SetupMinimalRouter(engine, logger, handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now")))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/-/live", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Business routes are not registered
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/subjects", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewDefaultRouterConfig(t *testing.T) {
	logger := discardLogger()
	appCfg := &config.AppConfig{Name: "test", Version: "1", Environment: "test"}

	cfg := NewDefaultRouterConfig(logger, appCfg, nil, nil, nil)

	assert.Equal(t, logger, cfg.Logger)
	assert.Equal(t, appCfg, cfg.AppConfig)
	assert.Equal(t, DefaultRequestTimeout, cfg.Timeout)
}

func TestServer_New(t *testing.T) {
	cfg := &config.ServerConfig{
		Port:           8080,
		Host:           "127.0.0.1",
		ReadTimeout:    time.Second,
		WriteTimeout:   time.Second,
		IdleTimeout:    time.Second,
		MaxRequestSize: 1024,
	}

	srv := New(cfg, discardLogger())
	require.NotNil(t, srv)
	assert.NotNil(t, srv.Engine())
	assert.Equal(t, cfg, srv.Config())
	assert.Equal(t, "127.0.0.1:8080", srv.Addr())
}

func TestServer_MaxBodySize(t *testing.T) {
	cfg := &config.ServerConfig{
		Port:           8080,
		Host:           "127.0.0.1",
		ReadTimeout:    time.Second,
		WriteTimeout:   time.Second,
		IdleTimeout:    time.Second,
		MaxRequestSize: 16,
	}

	srv := New(cfg, discardLogger())
	srv.Engine().POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	t.Run("under limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("small"))
		srv.Engine().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
		srv.Engine().ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestServer_StartAndShutdown(t *testing.T) {
	cfg := &config.ServerConfig{
		Port:           0, // random free port
		Host:           "127.0.0.1",
		ReadTimeout:    time.Second,
		WriteTimeout:   time.Second,
		IdleTimeout:    time.Second,
		MaxRequestSize: 1024,
	}

	srv := New(cfg, discardLogger())
	errCh := srv.Start()

	// Give the listener a moment to come up, then stop it.
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err, ok := <-errCh:
		if ok {
			assert.NoError(t, err)
		}
	case <-time.After(time.Second):
		t.Fatal("server did not stop in time")
	}
}
