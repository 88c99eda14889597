package model

import (
	"github.com/google/uuid"
)

// Actor is the authenticated identity threaded into every service call.
// It is built by the auth middleware from verified token claims, never
// from request payloads.
type Actor struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}

// TokenResponse is returned by login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}
