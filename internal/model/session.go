// Package model defines domain types for tally users, categories, transactions and budgets.
package model

import "time"

// User is the authenticated account. One per session.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// AuthResult is returned by login and register.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Credentials identify an existing user.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration creates a new user.
type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}
