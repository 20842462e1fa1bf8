// Package models defines the data types of the notes service.
package models

import "time"

// User is a stored identity. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"admin_status"`
	CreatedAt    time.Time `json:"-"`
}

// Public returns a copy of u with the password hash removed.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// UserCount is the body of the admin user count response.
type UserCount struct {
	Total int64 `json:"total_users"`
}
