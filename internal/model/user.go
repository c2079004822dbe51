package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User owns a private ledger. All entity lookups and mutations are
// scoped to a user id; nothing is shared between users.
type User struct {
	CreatedAt    time.Time
	Email        string
	PasswordHash string
	ID           int64
}

// SetPassword hashes the plaintext password and stores the hash.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the plaintext password matches the
// stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
