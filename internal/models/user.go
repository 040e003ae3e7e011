package models

import "time"

// User is the profile as served by the backend. Identity fields never
// change; username, phone and avatar are mutable through the profile
// update call. The server copy is authoritative, the locally cached one
// may be stale until the next refresh.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	IsAdmin   bool      `json:"is_admin,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult is what login and register return: the authenticated user
// plus the bearer token for subsequent calls.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
