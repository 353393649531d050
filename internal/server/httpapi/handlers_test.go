package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/selfplanner/internal/logging"
	"github.com/dmitrijs2005/selfplanner/internal/server/auth"
	"github.com/dmitrijs2005/selfplanner/internal/server/models"
	"github.com/dmitrijs2005/selfplanner/internal/server/repo/postgres"
)

type fakeUsers struct {
	byCreds  map[string]models.User // key: email+"\x00"+password
	upserted []models.User
	known    map[string]bool
}

func (f *fakeUsers) GetByCredentials(_ context.Context, email, password string) (models.User, error) {
	u, ok := f.byCreds[email+"\x00"+password]
	if !ok {
		return models.User{}, postgres.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Upsert(_ context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = "generated-id"
	}
	f.upserted = append(f.upserted, u)
	return u, nil
}

func (f *fakeUsers) Exists(_ context.Context, id string) (bool, error) {
	return f.known[id], nil
}

type fakePlanner struct {
	saved map[string]map[string]json.RawMessage // userID -> day -> doc
	err   error
}

func (f *fakePlanner) SaveDay(_ context.Context, userID, day string, doc json.RawMessage) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = map[string]map[string]json.RawMessage{}
	}
	if f.saved[userID] == nil {
		f.saved[userID] = map[string]json.RawMessage{}
	}
	f.saved[userID][day] = doc
	return nil
}

func (f *fakePlanner) GetAllForUser(_ context.Context, userID string) (map[string]json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	planner := f.saved[userID]
	if planner == nil {
		planner = map[string]json.RawMessage{}
	}
	return planner, nil
}

var testSecret = []byte("test-secret")

func newTestRouter(users *fakeUsers, planner *fakePlanner) *gin.Engine {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewHandler(users, planner, log, nil, testSecret, time.Hour)
	return NewRouter(h, log, "test", testSecret)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&fakeUsers{}, &fakePlanner{})
	w := doJSON(t, r, http.MethodGet, "/api/health", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestLogin_Success(t *testing.T) {
	stored := models.User{ID: "u1", Email: "a@b.c", Password: "pw", CreatedAt: "2025-01-01T00:00:00Z"}
	users := &fakeUsers{byCreds: map[string]models.User{"a@b.c\x00pw": stored}}
	r := newTestRouter(users, &fakePlanner{})

	w := doJSON(t, r, http.MethodPost, "/api/login", gin.H{"email": "a@b.c", "password": "pw"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, stored, got)

	token := w.Header().Get("X-Auth-Token")
	require.NotEmpty(t, token)
	userID, err := auth.GetUserIDFromToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestLogin_WrongCredentials(t *testing.T) {
	r := newTestRouter(&fakeUsers{}, &fakePlanner{})

	w := doJSON(t, r, http.MethodPost, "/api/login", gin.H{"email": "a@b.c", "password": "nope"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
}

func TestLogin_MissingFields(t *testing.T) {
	r := newTestRouter(&fakeUsers{}, &fakePlanner{})

	w := doJSON(t, r, http.MethodPost, "/api/login", gin.H{"email": "a@b.c"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSync_StoresUserAndDays(t *testing.T) {
	users := &fakeUsers{}
	planner := &fakePlanner{}
	r := newTestRouter(users, planner)

	doc := json.RawMessage(`{"tasks":{},"lastUpdated":"2025-03-01T10:00:00Z"}`)
	payload := models.SyncPayload{
		User:    models.User{Email: "a@b.c", Password: "pw"},
		Planner: map[string]json.RawMessage{"2025-03-01": doc, "2025-03-02": doc},
	}

	w := doJSON(t, r, http.MethodPost, "/api/sync", payload, nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, users.upserted, 1)
	// days are stored under the server-assigned id
	require.Contains(t, planner.saved, "generated-id")
	assert.Len(t, planner.saved["generated-id"], 2)
}

func TestSync_MissingUser(t *testing.T) {
	r := newTestRouter(&fakeUsers{}, &fakePlanner{})

	w := doJSON(t, r, http.MethodPost, "/api/sync", gin.H{"planner": gin.H{}}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSync_StorageFailure(t *testing.T) {
	planner := &fakePlanner{err: errors.New("boom")}
	r := newTestRouter(&fakeUsers{}, planner)

	payload := models.SyncPayload{
		User:    models.User{Email: "a@b.c", Password: "pw"},
		Planner: map[string]json.RawMessage{"2025-03-01": json.RawMessage(`{}`)},
	}
	w := doJSON(t, r, http.MethodPost, "/api/sync", payload, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetPlanner_KnownUser(t *testing.T) {
	users := &fakeUsers{known: map[string]bool{"u1": true}}
	planner := &fakePlanner{saved: map[string]map[string]json.RawMessage{
		"u1": {"2025-03-01": json.RawMessage(`{"tasks":{}}`)},
	}}
	r := newTestRouter(users, planner)

	w := doJSON(t, r, http.MethodGet, "/api/planner/u1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Contains(t, got, "2025-03-01")
}

func TestGetPlanner_UnknownUser(t *testing.T) {
	r := newTestRouter(&fakeUsers{}, &fakePlanner{})

	w := doJSON(t, r, http.MethodGet, "/api/planner/ghost", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestOptionalAuth(t *testing.T) {
	users := &fakeUsers{known: map[string]bool{"u1": true}}
	r := newTestRouter(users, &fakePlanner{})

	t.Run("no header passes through", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/planner/u1", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("valid token passes", func(t *testing.T) {
		token, err := auth.GenerateToken("u1", testSecret, time.Hour)
		require.NoError(t, err)
		w := doJSON(t, r, http.MethodGet, "/api/planner/u1", nil,
			map[string]string{"Authorization": "Bearer " + token})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/planner/u1", nil,
			map[string]string{"Authorization": "Bearer not.a.jwt"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/planner/u1", nil,
			map[string]string{"Authorization": "Token abc"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequestID_EchoedAndGenerated(t *testing.T) {
	r := newTestRouter(&fakeUsers{}, &fakePlanner{})

	w := doJSON(t, r, http.MethodGet, "/api/health", nil,
		map[string]string{"X-Request-Id": "req-42"})
	assert.Equal(t, "req-42", w.Header().Get("X-Request-Id"))

	w = doJSON(t, r, http.MethodGet, "/api/health", nil, nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
