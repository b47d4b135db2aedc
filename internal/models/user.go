package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account document in the "users" collection.
// Email is unique and doubles as the invite key.
type User struct {
	ID           primitive.ObjectID `json:"_id"        bson:"_id,omitempty"`
	Name         string             `json:"name"       bson:"name"`
	Email        string             `json:"email"      bson:"email"`
	PasswordHash string             `json:"-"          bson:"password"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// Identity is the sanitized view of a user returned by the auth routes.
// The password hash never leaves the server.
type Identity struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Identity returns the public view of u.
func (u *User) Identity() Identity {
	return Identity{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	}
}

// SignupRequest is the JSON body for POST /api/auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
