package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/service"
)

// FilmHandler serves /films: CRUD, likes and the popularity ranking.
//
// The handler only translates between HTTP and the service: it parses path
// ids and bodies, calls one service method, and writes the result or the
// mapped error. All rules live in service.FilmService.
type FilmHandler struct {
	films  *service.FilmService
	logger *slog.Logger
}

func NewFilmHandler(films *service.FilmService, logger *slog.Logger) *FilmHandler {
	return &FilmHandler{films: films, logger: logger}
}

// HandleList returns every film ordered by id.
//
// HTTP: GET /films
func (h *FilmHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	films, err := h.films.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, films)
}

// HTTP: GET /films/{id}
func (h *FilmHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	film, err := h.films.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, film)
}

// HandleCreate stores a new film. The id and any likes in the body are
// ignored.
//
// HTTP: POST /films
// REQUEST BODY: {"name": "...", "description": "...", "releaseDate": "1999-03-31",
//
//	"duration": 136, "mpa": {"id": 4}, "genres": [{"id": 6}]}
func (h *FilmHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var film model.Film
	if err := decodeJSON(r, &film); err != nil {
		h.logger.Warn("invalid film JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	film.ID = 0

	created, err := h.films.Create(r.Context(), &film)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate replaces the film whose id is given in the body.
//
// HTTP: PUT /films
func (h *FilmHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var film model.Film
	if err := decodeJSON(r, &film); err != nil {
		h.logger.Warn("invalid film JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	updated, err := h.films.Update(r.Context(), &film)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HTTP: DELETE /films/{id}
func (h *FilmHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	conf, err := h.films.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

// HTTP: DELETE /films
func (h *FilmHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	conf, err := h.films.DeleteAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

// HTTP: PUT /films/{id}/like/{userId}
func (h *FilmHandler) HandleAddLike(w http.ResponseWriter, r *http.Request) {
	filmID, userID, err := pathIDs(r, "id", "userId")
	if err != nil {
		writeError(w, err)
		return
	}

	film, err := h.films.AddLike(r.Context(), filmID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, film)
}

// HTTP: DELETE /films/{id}/like/{userId}
func (h *FilmHandler) HandleRemoveLike(w http.ResponseWriter, r *http.Request) {
	filmID, userID, err := pathIDs(r, "id", "userId")
	if err != nil {
		writeError(w, err)
		return
	}

	film, err := h.films.RemoveLike(r.Context(), filmID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, film)
}

// HandlePopular returns the most liked films.
//
// HTTP: GET /films/popular?count=N
//
// count falls back to 10 when it is absent, not an integer, or below 1.
func (h *FilmHandler) HandlePopular(w http.ResponseWriter, r *http.Request) {
	count := service.DefaultPopularCount
	if n, err := strconv.Atoi(r.URL.Query().Get("count")); err == nil && n >= 1 {
		count = n
	}

	films, err := h.films.Popular(r.Context(), count)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, films)
}
