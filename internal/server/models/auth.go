package models

import "time"

// LoginResult is the outcome of a login attempt. Token is empty and User
// is nil on every failure; Message says which branch was taken.
type LoginResult struct {
	Token   string       `json:"token"`
	User    *UserProfile `json:"user"`
	Message string       `json:"message"`
}

// Succeeded reports whether the login produced a token.
func (r *LoginResult) Succeeded() bool {
	return r != nil && r.Token != ""
}

// TokenClaims are the identity claims carried in an access token.
// ExpiresAt is filled when a token is parsed and ignored when issuing.
type TokenClaims struct {
	UserID    string
	UserName  string
	Role      string
	ExpiresAt time.Time
}

// RegisterRequest is the input of a registration. Name and Role are
// optional; an empty Role means the default role.
type RegisterRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}
