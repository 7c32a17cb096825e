// Package models defines the server-side records persisted in the database
// and the identity types that flow between the session layer and services.
package models

import "time"

// User is a registered account. PasswordHash is an opaque encoded token
// produced by the credentials package.
type User struct {
	ID           int64
	UserName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Principal is anything that can own a login session.
type Principal interface {
	PrincipalID() int64
	SessionEligible() bool
}

// PrincipalID returns the user id.
func (u *User) PrincipalID() int64 { return u.ID }

// SessionEligible reports whether the account may log in. Every persisted
// user is eligible; an unsaved record (ID 0) is not.
func (u *User) SessionEligible() bool { return u.ID > 0 }
