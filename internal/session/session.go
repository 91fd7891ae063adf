// Package session implements the login gate. A successful login stores an
// opaque token; its presence is all that protected views check. The token
// has no expiry and no signature.
package session

import (
	"errors"

	"github.com/google/uuid"
)

const tokenKey = "token"

var (
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrLoginRequired      = errors.New("please log in first")
)

// Credentials is the single accepted username and password.
type Credentials struct {
	Username string
	Password string
}

type Session struct {
	store Store
	creds Credentials
}

func New(store Store, creds Credentials) *Session {
	return &Session{store: store, creds: creds}
}

// Login checks the credentials and stores a fresh token.
func (s *Session) Login(username, password string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if username != s.creds.Username || password != s.creds.Password {
		return ErrInvalidCredentials
	}
	return s.store.Set(tokenKey, uuid.NewString())
}

// Logout forgets the token. Logging out twice is not an error.
func (s *Session) Logout() error {
	return s.store.Delete(tokenKey)
}

func (s *Session) Token() (string, bool, error) {
	token, ok, err := s.store.Get(tokenKey)
	if err != nil {
		return "", false, err
	}
	return token, ok && token != "", nil
}

// Require returns ErrLoginRequired unless a token is stored.
func (s *Session) Require() error {
	_, ok, err := s.Token()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLoginRequired
	}
	return nil
}
