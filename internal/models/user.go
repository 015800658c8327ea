package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultRole is assigned on signup when the client does not pick one.
const DefaultRole = "student"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PublicUser is the projection of a user returned to clients.
type PublicUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Claims defines the structure of the JWT claims.
type Claims struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest accepts either an email or a username alongside the password.
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and login. Token is omitted when the
// server is configured for cookie-only sessions.
type AuthResponse struct {
	User  *PublicUser `json:"user"`
	Token string      `json:"token,omitempty"`
}
