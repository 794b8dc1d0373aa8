package services

import (
	"errors"
	"fmt"

	"github.com/tmaziere/taskboard/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// ErrWrongPassword reports a credential check against a known user whose
// stored hash does not match the supplied password.
var ErrWrongPassword = errors.New("wrong password")

// AuthServiceProvider defines the interface for credential services.
type AuthServiceProvider interface {
	Register(username, password string) error
	Verify(username, password string) error
}

// AuthService provides business logic for account credentials.
type AuthService struct {
	store    store.Store
	eventSvc EventServiceProvider
}

// NewAuthService creates a new AuthService.
func NewAuthService(st store.Store, eventSvc EventServiceProvider) *AuthService {
	return &AuthService{store: st, eventSvc: eventSvc}
}

// Register hashes the password and stores the new credential. The store
// also initializes the user's empty task list. Fails with
// store.ErrUsernameTaken on a duplicate username; the existing user's hash
// is untouched in that case.
func (s *AuthService) Register(username, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.CreateUser(username, string(hashedPassword)); err != nil {
		return err
	}

	s.eventSvc.Record("user.register", "info", fmt.Sprintf("User %q registered.", username), &username)
	return nil
}

// Verify checks a credential without establishing a session. It fails with
// store.ErrUnknownUser for an absent username and ErrWrongPassword for a
// hash mismatch.
func (s *AuthService) Verify(username, password string) error {
	hash, err := s.store.PasswordHash(username)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}
