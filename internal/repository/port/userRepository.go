package repository

import "context"

// User is the public projection of an account: the display fields attached
// to outbound chat events. Secret fields (password hash) never leave the
// persistence layer.
type User struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// UserRepository resolves user identities to their public projection.
type UserRepository interface {
	// FindByID returns ErrUserNotFound when no such user exists.
	FindByID(ctx context.Context, id string) (*User, error)
}

// ErrUserNotFound is returned when an identity resolves to no stored user.
var ErrUserNotFound = errUserNotFound{}

type errUserNotFound struct{}

func (errUserNotFound) Error() string { return "user: not found" }
