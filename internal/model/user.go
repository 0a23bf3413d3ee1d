package model

import "slices"

// User is a registered member of the service.
//
// Name defaults to Login when left blank; see the validation package.
// Friends holds the ids of the user's friends. Friendship is symmetric, so
// if 2 is in user 1's Friends then 1 is in user 2's Friends.
type User struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	Login    string  `json:"login"`
	Name     string  `json:"name"`
	Birthday Date    `json:"birthday"`
	Friends  []int64 `json:"friends"`
}

func (u *User) Clone() *User {
	c := *u
	c.Friends = slices.Clone(u.Friends)
	return &c
}

func (u *User) IsFriend(id int64) bool {
	return slices.Contains(u.Friends, id)
}
