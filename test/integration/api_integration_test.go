//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/studynotes/studynotes/internal/adapters/http"
	"github.com/studynotes/studynotes/internal/adapters/http/handlers"
	"github.com/studynotes/studynotes/internal/app"
	"github.com/studynotes/studynotes/internal/platform/config"
	"github.com/studynotes/studynotes/internal/ports"
	"github.com/studynotes/studynotes/internal/storage/memory"
)

// newTestServer builds the full application stack on the in-memory store
// and exposes it over a real listener.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New(logger)

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(store))

	subjectService := app.NewSubjectService(app.SubjectServiceConfig{Storage: store, Logger: logger})
	noteService := app.NewNoteService(app.NoteServiceConfig{Storage: store, Logger: logger})

	engine := gin.New()
	apphttp.SetupRouter(engine, apphttp.NewDefaultRouterConfig(
		logger,
		&config.AppConfig{Name: "studynotes-integration", Version: "test", Environment: "test"},
		handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now")),
		handlers.NewSubjectHandler(subjectService),
		handlers.NewNoteHandler(noteService),
	))

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	return server
}

func doRequest(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	return resp, data
}

// TestAPI_SubjectLifecycle exercises the full subject CRUD flow over HTTP.
func TestAPI_SubjectLifecycle(t *testing.T) {
	server := newTestServer(t)

	// Create
	resp, body := doRequest(t, http.MethodPost, server.URL+"/api/subjects",
		`{"name":"Biology","icon":"fas fa-dna","color":"green"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	var created struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Biology", created.Name)
	assert.Positive(t, created.ID)

	// Update
	resp, body = doRequest(t, http.MethodPut,
		fmt.Sprintf("%s/api/subjects/%d", server.URL, created.ID),
		`{"color":"teal"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "teal")

	// List includes the new subject with a note count
	resp, body = doRequest(t, http.MethodGet, server.URL+"/api/subjects", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Biology")
	assert.Contains(t, string(body), "noteCount")

	// Delete
	resp, _ = doRequest(t, http.MethodDelete,
		fmt.Sprintf("%s/api/subjects/%d", server.URL, created.ID), "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Deleting again reports not found
	resp, _ = doRequest(t, http.MethodDelete,
		fmt.Sprintf("%s/api/subjects/%d", server.URL, created.ID), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestAPI_NoteLifecycleAndSearch exercises note CRUD, filtering, and search.
func TestAPI_NoteLifecycleAndSearch(t *testing.T) {
	server := newTestServer(t)

	// Create two notes in different subjects
	resp, body := doRequest(t, http.MethodPost, server.URL+"/api/notes",
		`{"title":"Photosynthesis basics","content":"light reactions","subjectId":1,"tags":["plants"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	var firstNote struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &firstNote))

	resp, _ = doRequest(t, http.MethodPost, server.URL+"/api/notes",
		`{"title":"Newton laws","content":"force equals mass times acceleration","subjectId":2}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Filter by subject
	resp, body = doRequest(t, http.MethodGet, server.URL+"/api/notes?subjectId=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Photosynthesis basics")
	assert.NotContains(t, string(body), "Newton laws")

	// Search matches tags case-insensitively
	resp, body = doRequest(t, http.MethodGet, server.URL+"/api/notes?search=PLANTS", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Photosynthesis basics")

	// Search with no matches returns an empty array
	resp, body = doRequest(t, http.MethodGet, server.URL+"/api/notes?search=zzzznomatch", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", string(body))

	// Update refreshes the note
	resp, body = doRequest(t, http.MethodPut,
		fmt.Sprintf("%s/api/notes/%d", server.URL, firstNote.ID),
		`{"content":"light and dark reactions"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "dark reactions")

	// Delete
	resp, _ = doRequest(t, http.MethodDelete,
		fmt.Sprintf("%s/api/notes/%d", server.URL, firstNote.ID), "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doRequest(t, http.MethodGet,
		fmt.Sprintf("%s/api/notes/%d", server.URL, firstNote.ID), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestAPI_CascadeDelete verifies that deleting a subject removes its notes.
func TestAPI_CascadeDelete(t *testing.T) {
	server := newTestServer(t)

	resp, body := doRequest(t, http.MethodPost, server.URL+"/api/notes",
		`{"title":"Doomed note","subjectId":3}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var note struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &note))

	resp, _ = doRequest(t, http.MethodDelete, server.URL+"/api/subjects/3", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doRequest(t, http.MethodGet,
		fmt.Sprintf("%s/api/notes/%d", server.URL, note.ID), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestAPI_ConcurrentRequests verifies the stack handles parallel traffic
// without races or lost writes.
func TestAPI_ConcurrentRequests(t *testing.T) {
	server := newTestServer(t)

	const numGoroutines = 50

	var wg sync.WaitGroup
	var successCount int32

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			body := fmt.Sprintf(`{"title":"Concurrent note %d","subjectId":1}`, id)
			resp, err := http.Post(server.URL+"/api/notes", "application/json", strings.NewReader(body))
			if err != nil {
				return
			}
			resp.Body.Close()

			if resp.StatusCode == http.StatusCreated {
				atomic.AddInt32(&successCount, 1)
			}
		}(i)
	}

	wg.Wait()

	assert.Equal(t, int32(numGoroutines), atomic.LoadInt32(&successCount), "all creates should succeed")

	// All notes are visible and ids are unique
	resp, body := doRequest(t, http.MethodGet, server.URL+"/api/notes?subjectId=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var notes []struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &notes))
	assert.Len(t, notes, numGoroutines)

	seen := make(map[int]bool, len(notes))
	for _, n := range notes {
		assert.False(t, seen[n.ID], "duplicate note id %d", n.ID)
		seen[n.ID] = true
	}
}
