package handler

import (
	"net/http"

	"github.com/sakif/filmorate/internal/service"
)

// CatalogHandler serves the read-only reference tables under /genres and /mpa.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// HTTP: GET /genres
func (h *CatalogHandler) HandleGenres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Genres())
}

// HTTP: GET /genres/{id}
func (h *CatalogHandler) HandleGenre(w http.ResponseWriter, r *http.Request) {
	id, err := pathIndex(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	genre, err := h.catalog.Genre(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genre)
}

// HTTP: GET /mpa
func (h *CatalogHandler) HandleRatings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Ratings())
}

// HTTP: GET /mpa/{id}
func (h *CatalogHandler) HandleRating(w http.ResponseWriter, r *http.Request) {
	id, err := pathIndex(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	rating, err := h.catalog.Rating(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}
