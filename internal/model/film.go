// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data: similar to classes in other
// languages, but without inheritance.
package model

import "slices"

// Film is a film in the catalogue.
//
// Genres and Likes are sets. Repositories always return them sorted by id
// (ascending) and never nil once a film has been validated, so the JSON
// output is stable: "genres": [] rather than "genres": null.
type Film struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ReleaseDate Date    `json:"releaseDate"`
	Duration    int     `json:"duration"` // minutes
	MPA         *MPA    `json:"mpa"`
	Genres      []Genre `json:"genres"`
	Likes       []int64 `json:"likes"` // ids of users who liked the film
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// mutate what is stored.
func (f *Film) Clone() *Film {
	c := *f
	if f.MPA != nil {
		mpa := *f.MPA
		c.MPA = &mpa
	}
	c.Genres = slices.Clone(f.Genres)
	c.Likes = slices.Clone(f.Likes)
	return &c
}

// LikedBy reports whether userID is among the film's likes.
func (f *Film) LikedBy(userID int64) bool {
	return slices.Contains(f.Likes, userID)
}

// Popularity is the film's like count, the only ranking key for the
// popular films list.
func (f *Film) Popularity() int {
	return len(f.Likes)
}

// Confirmation is returned by delete operations.
type Confirmation struct {
	Info string `json:"info"`
}
