package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskboard/auth"
	"taskboard/board"
	"taskboard/store"
)

type fakeAuth struct {
	user auth.User
}

func (a fakeAuth) UserFromAuthHeader(h string) (auth.User, error) {
	if h == "Bearer good" {
		return a.user, nil
	}
	return auth.User{}, errors.New("bad token")
}

type memBackend struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func newMemBackend() *memBackend { return &memBackend{data: map[string]json.RawMessage{}} }

func mkey(userID, collection, id string) string { return userID + "/" + collection + "/" + id }

func (m *memBackend) List(_ context.Context, userID, collection string) (store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := store.Snapshot{}
	prefix := userID + "/" + collection + "/"
	for k, doc := range m.data {
		if strings.HasPrefix(k, prefix) {
			snap[k[len(prefix):]] = doc
		}
	}
	return snap, nil
}

func (m *memBackend) Get(_ context.Context, userID, collection, id string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.data[mkey(userID, collection, id)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return doc, nil
}

func (m *memBackend) Put(_ context.Context, userID, collection, id string, doc json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[mkey(userID, collection, id)] = append(json.RawMessage{}, doc...)
	return nil
}

func (m *memBackend) Merge(_ context.Context, userID, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.data[mkey(userID, collection, id)]
	if !ok {
		return store.ErrNotFound
	}
	var current map[string]any
	if err := json.Unmarshal(doc, &current); err != nil {
		return err
	}
	for k, v := range fields {
		current[k] = v
	}
	merged, err := json.Marshal(current)
	if err != nil {
		return err
	}
	m.data[mkey(userID, collection, id)] = merged
	return nil
}

func (m *memBackend) Delete(_ context.Context, userID, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := mkey(userID, collection, id)
	if _, ok := m.data[k]; !ok {
		return store.ErrNotFound
	}
	delete(m.data, k)
	return nil
}

func newTestServer(t *testing.T) (*echo.Echo, *memBackend) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	backend := newMemBackend()
	hub := board.NewHub(backend, store.NewBus(rc), nil)
	authn := fakeAuth{user: auth.User{ID: "u1", Email: "anna@example.com", Name: "Anna Young"}}

	logger := log.New()
	logger.SetOutput(io.Discard)

	e := echo.New()
	Register(e, hub, authn, logger)
	return e, backend
}

func doJSON(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestLoginMessage(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/api/login-message?code=auth/wrong-password", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != auth.Message(auth.CodeWrongPassword) {
		t.Fatalf("message %q", body["message"])
	}
}

func TestMutationsRequireAuth(t *testing.T) {
	e, _ := newTestServer(t)
	for _, route := range []struct {
		method, path string
	}{
		{http.MethodPost, "/api/tasks"},
		{http.MethodPatch, "/api/tasks/t1"},
		{http.MethodDelete, "/api/tasks/t1"},
		{http.MethodPost, "/api/contacts"},
		{http.MethodGet, "/api/summary"},
		{http.MethodGet, "/stream"},
	} {
		rec := doJSON(e, route.method, route.path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status %d", route.method, route.path, rec.Code)
		}
	}
}

func TestPostTaskLifecycle(t *testing.T) {
	e, backend := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/tasks", "good",
		`{"title":"Build the API","dueDate":"2999-12-31","category":"Technical Task"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	snap, err := backend.List(context.Background(), "u1", "tasks")
	if err != nil || len(snap) != 1 {
		t.Fatalf("stored tasks %v err %v", snap, err)
	}

	var taskID string
	for id := range snap {
		taskID = id
	}
	rec = doJSON(e, http.MethodPatch, "/api/tasks/"+taskID+"/status", "good", `{"status":"done"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("move: status %d body %s", rec.Code, rec.Body.String())
	}
	doc, _ := backend.Get(context.Background(), "u1", "tasks", taskID)
	var task struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(doc, &task); err != nil || task.Status != "done" {
		t.Fatalf("status after move %q err %v", task.Status, err)
	}

	rec = doJSON(e, http.MethodDelete, "/api/tasks/"+taskID, "good", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}
	snap, _ = backend.List(context.Background(), "u1", "tasks")
	if len(snap) != 0 {
		t.Fatalf("tasks after delete %v", snap)
	}
}

func TestPostTaskValidationErrors(t *testing.T) {
	e, backend := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/tasks", "good",
		`{"title":"","dueDate":"2000-01-01","category":"Nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	var body fieldErrorsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Errors) != 3 {
		t.Fatalf("errors %+v, want title, dueDate and category", body.Errors)
	}
	snap, _ := backend.List(context.Background(), "u1", "tasks")
	if len(snap) != 0 {
		t.Fatalf("invalid form reached the store: %v", snap)
	}
}

func TestPostTaskRejectsMalformedBody(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/tasks", "good", `{"title":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	rec = doJSON(e, http.MethodPost, "/api/tasks", "good", `{"title":"x","unknownField":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field accepted: status %d", rec.Code)
	}
}

func TestContactRoutes(t *testing.T) {
	e, backend := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/contacts", "good",
		`{"name":"Anna Young","email":"anna.y@example.com","phone":"+491234"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	snap, _ := backend.List(context.Background(), "u1", "contacts")
	if len(snap) != 1 {
		t.Fatalf("contacts %v", snap)
	}

	rec = doJSON(e, http.MethodPost, "/api/contacts", "good",
		`{"name":"Bad Mail","email":"not-an-address"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid email accepted: status %d", rec.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/tasks", "good",
		`{"title":"Urgent thing","dueDate":"2999-12-31","category":"User Story","priority":"urgent"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed: status %d", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/api/summary", "good", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var sum board.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Total != 1 || sum.ToDo != 1 || sum.Urgent != 1 {
		t.Fatalf("summary %+v", sum)
	}
	if sum.UpcomingDeadline != "2999-12-31" {
		t.Fatalf("deadline %q", sum.UpcomingDeadline)
	}
	if !strings.HasPrefix(sum.Greeting, "Good ") {
		t.Fatalf("greeting %q", sum.Greeting)
	}
}

func TestSelectionRoutes(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/selection/toggle", "good", `{"id":"c1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: status %d", rec.Code)
	}
	rec = doJSON(e, http.MethodPost, "/api/selection/toggle", "good", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty id accepted: status %d", rec.Code)
	}
	rec = doJSON(e, http.MethodPost, "/api/selection/reset", "good", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: status %d", rec.Code)
	}
}

func TestStreamFirstFrame(t *testing.T) {
	e, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/stream?token=good&view=board", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if ct := rec.Header().Get(echo.HeaderContentType); ct != "text/event-stream" {
		t.Fatalf("content type %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "data: ") {
		t.Fatalf("body %q is not an SSE frame", body)
	}
	frame := strings.TrimPrefix(strings.SplitN(body, "\n\n", 2)[0], "data: ")
	var payload struct {
		View    string            `json:"view"`
		Notices []json.RawMessage `json:"notices"`
	}
	if err := json.Unmarshal([]byte(frame), &payload); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if payload.View != "board" {
		t.Fatalf("view %q", payload.View)
	}
	if payload.Notices == nil {
		t.Fatal("notices must serialize as an empty array, not null")
	}
}
