package services

import (
	"errors"
	"testing"

	"github.com/tmaziere/taskboard/internal/store"
)

func newAuthService(t *testing.T) (*AuthService, store.Store) {
	t.Helper()
	st := store.NewMemory()
	return NewAuthService(st, NewEventService(st)), st
}

func TestRegister_HashesPassword(t *testing.T) {
	svc, st := newAuthService(t)

	if err := svc.Register("alice", "pw1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	hash, err := st.PasswordHash("alice")
	if err != nil {
		t.Fatalf("PasswordHash: %v", err)
	}
	if hash == "pw1" || hash == "" {
		t.Fatalf("plaintext or empty hash stored: %q", hash)
	}
}

func TestRegister_DuplicateKeepsFirstHash(t *testing.T) {
	svc, st := newAuthService(t)

	if err := svc.Register("alice", "pw1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	first, _ := st.PasswordHash("alice")

	err := svc.Register("alice", "pw2")
	if !errors.Is(err, store.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	second, _ := st.PasswordHash("alice")
	if second != first {
		t.Fatalf("failed duplicate changed the stored hash")
	}
}

func TestVerify(t *testing.T) {
	svc, _ := newAuthService(t)
	if err := svc.Register("alice", "pw1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.Verify("alice", "pw1"); err != nil {
		t.Fatalf("Verify with correct password: %v", err)
	}
	if err := svc.Verify("alice", "pw2"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if err := svc.Verify("bob", "pw1"); !errors.Is(err, store.ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestVerify_DoesNotEstablishAnything(t *testing.T) {
	// Verify is a pure credential check; a failed one must not create a
	// user either.
	svc, st := newAuthService(t)

	svc.Verify("ghost", "pw")
	exists, err := st.UserExists("ghost")
	if err != nil {
		t.Fatalf("UserExists: %v", err)
	}
	if exists {
		t.Fatalf("Verify created a user")
	}
}
