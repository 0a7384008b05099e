package user

import (
	"errors"
	"testing"

	"github.com/FleetDesk/FleetDesk/internal/apperrors"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong password!") {
		t.Fatal("expected mismatch to fail")
	}
}

func TestHashPasswordRejectsShort(t *testing.T) {
	_, err := HashPassword("short")
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
