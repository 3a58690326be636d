// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a stored credential. Email is the unique identity key.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
}
