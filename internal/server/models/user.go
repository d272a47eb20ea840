package models

import "time"

// User is a registered credential: a unique username plus a bcrypt password
// hash and profile fields. The username is the immutable identity of the
// credential for its lifetime.
type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	FullName     string
	Email        string
	CreatedAt    time.Time
}
