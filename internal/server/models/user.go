package models

import "time"

// User is a registered account. Verifier is a hash of the client-derived
// master key; the server never sees the password.
type User struct {
	ID        string
	UserName  string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}
