package model

import (
	"time"
)

// User is the persisted account record. PasswordHash is an argon2id
// encoded hash and must never leave the service layer.
type User struct {
	ID           uint64 `gorm:"primaryKey"`
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// Identity is the public-safe projection of a User handed to endpoint
// handlers after a bearer token resolves.
type Identity struct {
	ID       uint64 `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Identity returns the public-safe projection of the account.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, Email: u.Email}
}

// IssuedSession is what Register and Login hand back: the signed bearer
// token plus the public summary of the account it was issued for.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
	User      Identity
}
