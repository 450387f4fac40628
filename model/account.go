package model

import "time"

// Account is a registered user. PasswordHash is never serialized.
type Account struct {
	ID           int       `json:"id"`
	UserName     string    `json:"user_name"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	Title        string    `json:"title"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
