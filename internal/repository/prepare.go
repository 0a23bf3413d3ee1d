package repository

import (
	"cmp"
	"slices"

	"github.com/sakif/filmorate/internal/model"
)

// PrepareFilm brings a film's reference fields into the shape every backend
// stores and returns: rating and genres resolved against the static tables,
// genres deduplicated and sorted by id, nothing nil. An id that does not
// resolve is kept with empty names, exactly as a relational read would
// produce it.
func PrepareFilm(f *model.Film) {
	ratingID := model.DefaultMPAID
	if f.MPA != nil {
		ratingID = f.MPA.ID
	}
	f.MPA = ResolveRating(ratingID)

	genres := make([]model.Genre, 0, len(f.Genres))
	for _, g := range f.Genres {
		if slices.ContainsFunc(genres, func(seen model.Genre) bool { return seen.ID == g.ID }) {
			continue
		}
		genres = append(genres, ResolveGenre(g.ID))
	}
	slices.SortFunc(genres, func(a, b model.Genre) int { return cmp.Compare(a.ID, b.ID) })
	f.Genres = genres
}

func ResolveRating(id int) *model.MPA {
	if r, ok := model.MPAByID(id); ok {
		return &r
	}
	return &model.MPA{ID: id}
}

func ResolveGenre(id int) model.Genre {
	if g, ok := model.GenreByID(id); ok {
		return g
	}
	return model.Genre{ID: id}
}
