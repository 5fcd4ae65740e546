package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/lectern/lectern/internal/profile"
	"github.com/lectern/lectern/plugin/generator"
	"github.com/lectern/lectern/server/service/chat"
	"github.com/lectern/lectern/store"
	"github.com/lectern/lectern/store/db/sqlite"
)

type fixedGenerator struct {
	reply string
	err   error
}

func (g *fixedGenerator) Generate(_ context.Context, _ *generator.Request) (*generator.Result, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &generator.Result{Content: g.reply}, nil
}

func newTestServer(t *testing.T, gen generator.Service) *echo.Echo {
	t.Helper()

	p := &profile.Profile{
		Mode:    "prod",
		Driver:  "sqlite",
		DSN:     filepath.Join(t.TempDir(), "lectern_test.db"),
		Version: "0.2.0",
	}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	st := store.New(driver, p)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	orchestrator := chat.NewOrchestrator(st, gen, chat.Config{GenerationTimeout: time.Second})

	e := echo.New()
	NewAPIV1Service(p, st, orchestrator, time.Now().Unix()).RegisterRoutes(e)
	return e
}

func doRequest(e *echo.Echo, method, path, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, map[string]any) {
	t.Helper()
	var body struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Success, body.Data
}

func TestChatEndpointsFlow(t *testing.T) {
	e := newTestServer(t, &fixedGenerator{reply: "A stack is LIFO."})

	// Create a session.
	rec := doRequest(e, http.MethodPost, "/api/chat/session", `{}`, "alice")
	require.Equal(t, http.StatusCreated, rec.Code)
	ok, data := decodeEnvelope(t, rec)
	require.True(t, ok)
	require.Equal(t, "New Chat", data["title"])
	sessionID := data["id"].(string)

	// Send a message.
	rec = doRequest(e, http.MethodPost, "/api/chat/message",
		`{"sessionId":"`+sessionID+`","message":"What is a stack?"}`, "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	ok, data = decodeEnvelope(t, rec)
	require.True(t, ok)
	message := data["message"].(map[string]any)
	require.Equal(t, "assistant", message["role"])
	require.Equal(t, "A stack is LIFO.", message["content"])
	session := data["session"].(map[string]any)
	require.Equal(t, "What is a stack?", session["title"])
	require.Len(t, session["messages"], 2)

	// History contains the session.
	rec = doRequest(e, http.MethodGet, "/api/chat/history", "", "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Data, 1)

	// Another user sees nothing.
	rec = doRequest(e, http.MethodGet, "/api/chat/history", "", "bob")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Empty(t, history.Data)

	// Fetch then delete the session.
	rec = doRequest(e, http.MethodGet, "/api/chat/session/"+sessionID, "", "alice")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodDelete, "/api/chat/session/"+sessionID, "", "alice")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/chat/session/"+sessionID, "", "alice")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendMessageValidation(t *testing.T) {
	e := newTestServer(t, &fixedGenerator{reply: "x"})

	rec := doRequest(e, http.MethodPost, "/api/chat/message", `{"message":"hi"}`, "alice")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/chat/message", `{"sessionId":"abc"}`, "alice")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/chat/message",
		`{"sessionId":"missing","message":"hi"}`, "alice")
	require.Equal(t, http.StatusNotFound, rec.Code)
	ok, _ := decodeEnvelope(t, rec)
	require.False(t, ok)
}

func TestSendMessageFallbackStillSucceeds(t *testing.T) {
	e := newTestServer(t, &fixedGenerator{err: context.DeadlineExceeded})

	rec := doRequest(e, http.MethodPost, "/api/chat/session", `{}`, "alice")
	_, data := decodeEnvelope(t, rec)
	sessionID := data["id"].(string)

	rec = doRequest(e, http.MethodPost, "/api/chat/message",
		`{"sessionId":"`+sessionID+`","message":"hello"}`, "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	ok, data := decodeEnvelope(t, rec)
	require.True(t, ok)
	message := data["message"].(map[string]any)
	require.Equal(t, chat.DefaultFallbackReply, message["content"])
}

func TestDeleteSessionNotFound(t *testing.T) {
	e := newTestServer(t, &fixedGenerator{reply: "x"})

	rec := doRequest(e, http.MethodDelete, "/api/chat/session/nope", "", "alice")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategorySlugGeneration(t *testing.T) {
	e := newTestServer(t, &fixedGenerator{reply: "x"})

	rec := doRequest(e, http.MethodPost, "/api/categories",
		`{"title":"Operating Systems: Part 2"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	ok, data := decodeEnvelope(t, rec)
	require.True(t, ok)
	require.Equal(t, "operating-systems-part-2", data["slug"])
	require.Equal(t, false, data["isPublished"])
}

func TestContentCRUDAndRendering(t *testing.T) {
	e := newTestServer(t, &fixedGenerator{reply: "x"})

	rec := doRequest(e, http.MethodPost, "/api/cms/content",
		`{"title":"Week 1","description":"**bold** intro","category":"theory","metadata":{"topic":"Intro","week":1,"tags":["basics"],"contentType":"slides"}}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	_, data := decodeEnvelope(t, rec)
	id := data["id"].(string)

	// Invalid category rejected.
	rec = doRequest(e, http.MethodPost, "/api/cms/content",
		`{"title":"Bad","category":"quiz","metadata":{"contentType":"slides"}}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// List filters by category.
	rec = doRequest(e, http.MethodGet, "/api/cms/content?category=lab", "", "")
	var list struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Empty(t, list.Data)

	// Detail renders markdown.
	rec = doRequest(e, http.MethodGet, "/api/cms/content/"+id, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, data = decodeEnvelope(t, rec)
	require.Contains(t, data["descriptionHtml"], "<strong>bold</strong>")

	// Update week via metadata.
	rec = doRequest(e, http.MethodPut, "/api/cms/content/"+id, `{"metadata":{"week":2}}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, data = decodeEnvelope(t, rec)
	metadata := data["metadata"].(map[string]any)
	require.Equal(t, float64(2), metadata["week"])

	rec = doRequest(e, http.MethodDelete, "/api/cms/content/"+id, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(e, http.MethodDelete, "/api/cms/content/"+id, "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserEndpointsHidePasswordHash(t *testing.T) {
	e := newTestServer(t, &fixedGenerator{reply: "x"})

	rec := doRequest(e, http.MethodPost, "/api/users",
		`{"email":"Alice@Example.com","password":"secret123","fullName":"Alice","role":1}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	ok, data := decodeEnvelope(t, rec)
	require.True(t, ok)
	require.Equal(t, "alice@example.com", data["email"])
	require.NotContains(t, rec.Body.String(), "passwordHash")
	require.NotContains(t, rec.Body.String(), "$2a$")

	// Duplicate email.
	rec = doRequest(e, http.MethodPost, "/api/users",
		`{"email":"alice@example.com","password":"secret123"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	// Short password.
	rec = doRequest(e, http.MethodPost, "/api/users",
		`{"email":"bob@example.com","password":"short"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	e := newTestServer(t, &fixedGenerator{reply: "x"})

	rec := doRequest(e, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ok, data := decodeEnvelope(t, rec)
	require.True(t, ok)
	require.Equal(t, "ok", data["status"])
	require.Equal(t, "0.2.0", data["version"])

	rec = doRequest(e, http.MethodGet, "/api/health/live", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/health/ready", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Operating Systems", "operating-systems"},
		{"  C++ & Go!  ", "c-go"},
		{"already-slugged", "already-slugged"},
		{"Week 3: Scheduling", "week-3-scheduling"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, slugify(tt.in), tt.in)
	}
}
