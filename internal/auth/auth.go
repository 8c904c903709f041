// Package auth checks administrator credentials and issues the Session that
// store mutations require.
package auth

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/catalog/pkg/types"
)

// DefaultSecret is accepted for the default user when no password hash is
// configured.
const DefaultSecret = "CS499"

// Authenticator holds one administrator account.
type Authenticator struct {
	user string
	hash []byte
}

// New returns an Authenticator for user. An empty passwordHash hashes
// DefaultSecret instead.
func New(user, passwordHash string) (*Authenticator, error) {
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("%w: admin.password_hash: %v", types.ErrInvalidConfig, err)
		}
		return &Authenticator{user: user, hash: []byte(passwordHash)}, nil
	}

	hash, err := HashSecret(DefaultSecret)
	if err != nil {
		return nil, err
	}
	return &Authenticator{user: user, hash: []byte(hash)}, nil
}

// Login returns an admin Session when user and secret match. Otherwise it
// returns the zero Session and types.ErrInvalidCredentials.
func (a *Authenticator) Login(user, secret string) (types.Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.user)) == 1
	secretOK := bcrypt.CompareHashAndPassword(a.hash, []byte(secret)) == nil
	if !userOK || !secretOK {
		return types.Session{}, types.ErrInvalidCredentials
	}

	return types.Session{
		ID:        newSessionID(),
		User:      user,
		Admin:     true,
		StartedAt: time.Now().UTC(),
	}, nil
}

// HashSecret returns the bcrypt hash to store in admin.password_hash.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing secret: %w", err)
	}
	return string(hash), nil
}

// newSessionID generates a UUID v7, falling back to v4.
func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
