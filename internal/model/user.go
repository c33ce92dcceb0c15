package model

import "time"

// User is the profile of an account as returned by the backend.
type User struct {
	// ID is the backend-assigned numeric identifier.
	ID int `json:"id"`

	// Email is the login identifier, unique per account.
	Email string `json:"email"`

	// FullName is the optional display name.
	FullName string `json:"fullName,omitempty"`

	// CreatedAt is when the account was registered.
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is the payload returned by the login and register endpoints.
type AuthResponse struct {
	// Token is the opaque bearer credential for subsequent requests.
	Token string `json:"token"`

	// User is the authenticated account's profile.
	User User `json:"user"`
}

// LoginForm carries validated login input.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterForm carries validated registration input.
type RegisterForm struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileForm carries a partial profile update. Nil fields are left
// unchanged by the backend.
type ProfileForm struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
}
