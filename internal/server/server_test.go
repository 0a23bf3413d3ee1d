package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/filmorate/internal/config"
	"github.com/sakif/filmorate/internal/model"
)

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	s, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func request(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, reader))
	return rr
}

// Both backends must produce byte-identical responses to the same request
// sequence.
func TestBackendsAgree(t *testing.T) {
	memoryCfg := config.Default()
	memoryCfg.Storage = config.StorageMemory

	sqliteCfg := config.Default()
	sqliteCfg.DBPath = filepath.Join(t.TempDir(), "nested", "filmorate.db")

	steps := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/users", `{"login":"a","email":"a@mail.ru","birthday":"1990-01-01"}`},
		{http.MethodPost, "/users", `{"login":"b","name":"Bee","email":"b@mail.ru","birthday":"1991-01-01"}`},
		{http.MethodPost, "/users", `{"login":"c","email":"c@mail.ru","birthday":"1992-01-01"}`},
		{http.MethodPost, "/films", `{"name":"One","releaseDate":"2000-01-01","duration":90,"genres":[{"id":3},{"id":1}]}`},
		{http.MethodPost, "/films", `{"name":"Two","description":"second","releaseDate":"2001-01-01","duration":95,"mpa":{"id":3}}`},
		{http.MethodPut, "/films/2/like/1", ""},
		{http.MethodPut, "/films/2/like/1", ""},
		{http.MethodPut, "/films/1/like/3", ""},
		{http.MethodPut, "/films/2/like/2", ""},
		{http.MethodPut, "/users/1/friends/2", ""},
		{http.MethodPut, "/users/3/friends/2", ""},
		{http.MethodPut, "/users/2/friends/2", ""},
		{http.MethodGet, "/films/popular?count=2", ""},
		{http.MethodGet, "/users/1/friends/common/3", ""},
		{http.MethodGet, "/users/2/friends", ""},
		{http.MethodPut, "/films", `{"id":1,"name":"One v2","releaseDate":"2000-01-01","duration":91,"genres":[]}`},
		{http.MethodDelete, "/users/3", ""},
		{http.MethodGet, "/films", ""},
		{http.MethodGet, "/users", ""},
		{http.MethodDelete, "/films/9", ""},
		{http.MethodDelete, "/films", ""},
		{http.MethodDelete, "/films", ""},
		{http.MethodPost, "/films", `{"name":"Three","releaseDate":"2002-01-01","duration":60}`},
		{http.MethodGet, "/mpa/3", ""},
	}

	mem := newTestServer(t, memoryCfg).Handler()
	sql := newTestServer(t, sqliteCfg).Handler()

	for _, step := range steps {
		want := request(t, mem, step.method, step.path, step.body)
		got := request(t, sql, step.method, step.path, step.body)

		assert.Equal(t, want.Code, got.Code, "%s %s", step.method, step.path)
		assert.Equal(t, want.Body.String(), got.Body.String(), "%s %s", step.method, step.path)
	}
}

func TestPopularEndToEnd(t *testing.T) {
	cfg := config.Default()
	cfg.Storage = config.StorageMemory
	h := newTestServer(t, cfg).Handler()

	for _, name := range []string{"a", "b", "c"} {
		rr := request(t, h, http.MethodPost, "/films", `{"name":"`+name+`","releaseDate":"2000-01-01","duration":1}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	require.Equal(t, http.StatusCreated,
		request(t, h, http.MethodPost, "/users", `{"login":"u","email":"u@x","birthday":"2000-01-01"}`).Code)
	require.Equal(t, http.StatusOK, request(t, h, http.MethodPut, "/films/3/like/1", "").Code)

	rr := request(t, h, http.MethodGet, "/films/popular", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var films []model.Film
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&films))
	require.Len(t, films, 3)
	assert.Equal(t, int64(3), films[0].ID)
	assert.Equal(t, int64(1), films[1].ID)
}

func TestDescriptionMinimumFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage = config.StorageMemory
	cfg.DescriptionMinLength = 3
	h := newTestServer(t, cfg).Handler()

	rr := request(t, h, http.MethodPost, "/films", `{"name":"x","description":"ab","releaseDate":"2000-01-01","duration":1}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = request(t, h, http.MethodPost, "/films", `{"name":"x","description":"abc","releaseDate":"2000-01-01","duration":1}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestUnknownRoute(t *testing.T) {
	cfg := config.Default()
	cfg.Storage = config.StorageMemory
	h := newTestServer(t, cfg).Handler()

	assert.Equal(t, http.StatusNotFound, request(t, h, http.MethodGet, "/reviews", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, request(t, h, http.MethodPatch, "/films", "").Code)
}

func TestOpenStorageRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage = "cassandra"
	_, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorContains(t, err, "unknown storage")
}
