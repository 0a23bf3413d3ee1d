package service

import (
	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
)

// CatalogService serves the static genre and rating tables.
type CatalogService struct{}

func NewCatalogService() *CatalogService {
	return &CatalogService{}
}

func (s *CatalogService) Genres() []model.Genre {
	return model.AllGenres()
}

func (s *CatalogService) Genre(id int) (model.Genre, error) {
	g, ok := model.GenreByID(id)
	if !ok {
		return model.Genre{}, apperror.NotFound("genre", id)
	}
	return g, nil
}

func (s *CatalogService) Ratings() []model.MPA {
	return model.AllMPA()
}

func (s *CatalogService) Rating(id int) (model.MPA, error) {
	r, ok := model.MPAByID(id)
	if !ok {
		return model.MPA{}, apperror.NotFound("mpa rating", id)
	}
	return r, nil
}
