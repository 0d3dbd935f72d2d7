package entity

import "advanced-blog/pkg/roles"

// User is the slice of an account the blog needs to identify an actor.
type User struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Role     roles.Role `json:"role"`
	IsActive bool       `json:"is_active"`
}

// Actor is whoever issued the current request. The zero value is anonymous.
type Actor struct {
	ID   string
	Role roles.Role
}

func Anonymous() Actor {
	return Actor{}
}

func (a Actor) IsAuthenticated() bool {
	return a.ID != ""
}

func (a Actor) IsAdmin() bool {
	return a.IsAuthenticated() && a.Role == roles.Admin
}
