package domain

import "time"

// User is an authenticated account established through the OAuth login flow.
// Provider plus Subject identify the account at the identity provider.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	Subject     string    `json:"-"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserSettings is an opaque per-user settings blob. The backend does not
// interpret it; storage is a thin pass-through.
type UserSettings struct {
	UserID    string         `json:"userId"`
	Settings  map[string]any `json:"settings"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Session is a server-side login session referenced by the signed token a
// client presents.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
