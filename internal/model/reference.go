package model

import "slices"

// Genre and MPA are static reference data: the tables below are fixed at
// compile time and never change while the process runs. Films refer to them
// by id.

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MPA is a Motion Picture Association age rating.
type MPA struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	MinAge int    `json:"minAge"`
}

// DefaultMPAID is assigned to films created without a rating ("G").
const DefaultMPAID = 1

var ratings = []MPA{
	{ID: 1, Name: "G", MinAge: 0},
	{ID: 2, Name: "PG", MinAge: 0},
	{ID: 3, Name: "PG-13", MinAge: 13},
	{ID: 4, Name: "R", MinAge: 17},
	{ID: 5, Name: "NC-17", MinAge: 18},
}

var genres = []Genre{
	{ID: 1, Name: "Комедия"},
	{ID: 2, Name: "Драма"},
	{ID: 3, Name: "Мультфильм"},
	{ID: 4, Name: "Триллер"},
	{ID: 5, Name: "Документальный"},
	{ID: 6, Name: "Боевик"},
}

// AllMPA returns every rating ordered by id.
func AllMPA() []MPA {
	return slices.Clone(ratings)
}

func MPAByID(id int) (MPA, bool) {
	for _, r := range ratings {
		if r.ID == id {
			return r, true
		}
	}
	return MPA{}, false
}

// AllGenres returns every genre ordered by id.
func AllGenres() []Genre {
	return slices.Clone(genres)
}

func GenreByID(id int) (Genre, bool) {
	for _, g := range genres {
		if g.ID == id {
			return g, true
		}
	}
	return Genre{}, false
}
