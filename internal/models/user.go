// Package models defines the user and task records shared by the store
// adapters, the services and the command-line client, together with the
// field validation rules applied before anything reaches the store.
package models

import "time"

// User is a row of the users table.
type User struct {
	ID           int64
	UserName     string
	PasswordHash string
	Email        string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Profile returns a copy of u without the password hash, suitable for
// handing to the presentation layer.
func (u User) Profile() User {
	u.PasswordHash = ""
	return u
}
