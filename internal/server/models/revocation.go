package models

import "time"

// Revocation marks a token id as no longer acceptable until ExpiresAt.
// A zero ExpiresAt means the revoked token never expires on its own.
type Revocation struct {
	TokenID   string
	ExpiresAt time.Time
}
