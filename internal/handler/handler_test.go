package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/filmorate/internal/handler"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
	"github.com/sakif/filmorate/internal/repository/memory"
	"github.com/sakif/filmorate/internal/service"
	"github.com/sakif/filmorate/internal/validation"
)

// newTestRouter wires the handlers over a fresh memory store. Routes are
// registered on a chi router so chi.URLParam resolves path ids exactly as
// in production.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := memory.New(&repository.Counter{}, &repository.Counter{})
	rules := validation.New(validation.WithClock(func() time.Time {
		return time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	}))

	films := handler.NewFilmHandler(service.NewFilmService(db.Films(), rules, logger), logger)
	users := handler.NewUserHandler(service.NewUserService(db.Users(), rules, logger), logger)
	catalog := handler.NewCatalogHandler(service.NewCatalogService())

	r := chi.NewRouter()
	r.Get("/films", films.HandleList)
	r.Post("/films", films.HandleCreate)
	r.Put("/films", films.HandleUpdate)
	r.Delete("/films", films.HandleDeleteAll)
	r.Get("/films/popular", films.HandlePopular)
	r.Get("/films/{id}", films.HandleGetByID)
	r.Delete("/films/{id}", films.HandleDelete)
	r.Put("/films/{id}/like/{userId}", films.HandleAddLike)
	r.Delete("/films/{id}/like/{userId}", films.HandleRemoveLike)

	r.Get("/users", users.HandleList)
	r.Post("/users", users.HandleCreate)
	r.Put("/users", users.HandleUpdate)
	r.Delete("/users", users.HandleDeleteAll)
	r.Get("/users/{id}", users.HandleGetByID)
	r.Delete("/users/{id}", users.HandleDelete)
	r.Get("/users/{id}/friends", users.HandleFriends)
	r.Put("/users/{id}/friends/{friendId}", users.HandleAddFriend)
	r.Delete("/users/{id}/friends/{friendId}", users.HandleRemoveFriend)
	r.Get("/users/{id}/friends/common/{otherId}", users.HandleCommonFriends)

	r.Get("/genres", catalog.HandleGenres)
	r.Get("/genres/{id}", catalog.HandleGenre)
	r.Get("/mpa", catalog.HandleRatings)
	r.Get("/mpa/{id}", catalog.HandleRating)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

const filmBody = `{"name":"nisi eiusmod","description":"adipisicing","releaseDate":"1967-03-25","duration":100,"mpa":{"id":1}}`

func userBody(login string) string {
	return `{"login":"` + login + `","name":"","email":"` + login + `@mail.ru","birthday":"1946-08-20"}`
}

// =========================================================================
// FILMS
// =========================================================================

func TestFilmHandler_Create(t *testing.T) {
	h := newTestRouter(t)

	t.Run("valid film", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/films", filmBody)
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		film := decode[model.Film](t, rr)
		assert.Equal(t, int64(1), film.ID)
		assert.Equal(t, "G", film.MPA.Name)
		assert.Equal(t, "1967-03-25", film.ReleaseDate.String())
		assert.Empty(t, film.Likes)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/films", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", decode[handler.ErrorResponse](t, rr).Error)
	})

	t.Run("malformed date", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/films", `{"name":"x","releaseDate":"25.03.1967","duration":1}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/films", `{"name":"","releaseDate":"1967-03-25","duration":100}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		res := decode[handler.ErrorResponse](t, rr)
		assert.Equal(t, "validation_error", res.Error)
		assert.Equal(t, "film name must not be blank", res.Message)
	})
}

func TestFilmHandler_GetUpdateDelete(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/films", filmBody).Code)

	rr := do(t, h, http.MethodGet, "/films/1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nisi eiusmod", decode[model.Film](t, rr).Name)

	rr = do(t, h, http.MethodGet, "/films/9999", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	res := decode[handler.ErrorResponse](t, rr)
	assert.Equal(t, "not_found", res.Error)
	assert.Contains(t, res.Message, "9999")

	rr = do(t, h, http.MethodGet, "/films/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPut, "/films",
		`{"id":1,"name":"Film Updated","description":"New film update decription","releaseDate":"1989-04-17","duration":190,"mpa":{"id":5},"genres":[{"id":2},{"id":1}]}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	updated := decode[model.Film](t, rr)
	assert.Equal(t, "Film Updated", updated.Name)
	assert.Equal(t, "NC-17", updated.MPA.Name)
	assert.Equal(t, []model.Genre{{ID: 1, Name: "Комедия"}, {ID: 2, Name: "Драма"}}, updated.Genres)

	rr = do(t, h, http.MethodPut, "/films", `{"id":9999,"name":"Ghost","releaseDate":"1989-04-17","duration":190}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodDelete, "/films/1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "film 1 deleted", decode[model.Confirmation](t, rr).Info)

	rr = do(t, h, http.MethodDelete, "/films", "")
	assert.Equal(t, http.StatusNotFound, rr.Code, "nothing left to delete")
}

func TestFilmHandler_Likes(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/films", filmBody)
	do(t, h, http.MethodPost, "/users", userBody("liker"))

	rr := do(t, h, http.MethodPut, "/films/1/like/1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []int64{1}, decode[model.Film](t, rr).Likes)

	rr = do(t, h, http.MethodPut, "/films/1/like/1", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "conflict", decode[handler.ErrorResponse](t, rr).Error)

	rr = do(t, h, http.MethodPut, "/films/1/like/-1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodDelete, "/films/1/like/1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[model.Film](t, rr).Likes)

	rr = do(t, h, http.MethodDelete, "/films/1/like/1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFilmHandler_Popular(t *testing.T) {
	h := newTestRouter(t)
	for range 3 {
		do(t, h, http.MethodPost, "/films", filmBody)
	}
	do(t, h, http.MethodPost, "/users", userBody("a"))
	do(t, h, http.MethodPost, "/users", userBody("b"))
	do(t, h, http.MethodPut, "/films/2/like/1", "")
	do(t, h, http.MethodPut, "/films/2/like/2", "")
	do(t, h, http.MethodPut, "/films/3/like/1", "")

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantIDs    []int64
	}{
		{"default count", "", http.StatusOK, []int64{2, 3, 1}},
		{"explicit count", "?count=1", http.StatusOK, []int64{2}},
		{"zero count falls back to default", "?count=0", http.StatusOK, []int64{2, 3, 1}},
		{"negative count falls back to default", "?count=-3", http.StatusOK, []int64{2, 3, 1}},
		{"non-numeric count falls back to default", "?count=many", http.StatusOK, []int64{2, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, "/films/popular"+tt.query, "")
			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantIDs == nil {
				return
			}
			var ids []int64
			for _, f := range decode[[]model.Film](t, rr) {
				ids = append(ids, f.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

// =========================================================================
// USERS
// =========================================================================

func TestUserHandler_CRUD(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodPost, "/users", userBody("dolore"))
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[model.User](t, rr)
	assert.Equal(t, "dolore", created.Name, "blank name falls back to login")
	assert.Equal(t, "1946-08-20", created.Birthday.String())

	rr = do(t, h, http.MethodPost, "/users", `{"login":"dolore ullamco","email":"yandex@mail.ru","birthday":"2446-08-20"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPut, "/users",
		`{"id":1,"login":"doloreUpdate","name":"est adipisicing","email":"mail@yandex.ru","birthday":"1976-09-20"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "est adipisicing", decode[model.User](t, rr).Name)

	rr = do(t, h, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]model.User](t, rr), 1)

	rr = do(t, h, http.MethodDelete, "/users/1", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/users/1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodGet, "/users", "")
	assert.Equal(t, "[]\n", rr.Body.String(), "an empty list is [] not null")
}

func TestUserHandler_Friends(t *testing.T) {
	h := newTestRouter(t)
	for _, login := range []string{"a", "b", "c"} {
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/users", userBody(login)).Code)
	}

	rr := do(t, h, http.MethodPut, "/users/1/friends/2", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []int64{2}, decode[model.User](t, rr).Friends)

	do(t, h, http.MethodPut, "/users/3/friends/2", "")

	rr = do(t, h, http.MethodGet, "/users/2/friends", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	friends := decode[[]model.User](t, rr)
	require.Len(t, friends, 2)
	assert.Equal(t, int64(1), friends[0].ID)
	assert.Equal(t, int64(3), friends[1].ID)

	rr = do(t, h, http.MethodGet, "/users/1/friends/common/3", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	common := decode[[]model.User](t, rr)
	require.Len(t, common, 1)
	assert.Equal(t, int64(2), common[0].ID)

	rr = do(t, h, http.MethodPut, "/users/1/friends/1", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPut, "/users/2/friends/1", "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodPut, "/users/1/friends/-1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodDelete, "/users/1/friends/2", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[model.User](t, rr).Friends)

	rr = do(t, h, http.MethodGet, "/users/1/friends/common/x", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// =========================================================================
// CATALOG
// =========================================================================

func TestCatalogHandler(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/genres/1", http.StatusOK, `{"id":1,"name":"Комедия"}`},
		{"/mpa/4", http.StatusOK, `{"id":4,"name":"R","minAge":17}`},
		{"/genres/99", http.StatusNotFound, ""},
		{"/mpa/6", http.StatusNotFound, ""},
		{"/mpa/x", http.StatusBadRequest, ""},
		{"/genres/4294967297", http.StatusBadRequest, ""},
		{"/mpa/4294967300", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rr.Body.String())
			}
		})
	}

	assert.Len(t, decode[[]model.Genre](t, do(t, h, http.MethodGet, "/genres", "")), 6)
	assert.Len(t, decode[[]model.MPA](t, do(t, h, http.MethodGet, "/mpa", "")), 5)
}
