package auth

import (
	"testing"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/common/config"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "fleetdesk",
		Audience:  "fleetdesk",
	}

	token, exp, err := GenerateAccessToken(cfg, "u-1", "employee", "d-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if claims.Role != "employee" {
		t.Fatalf("role mismatch: %s", claims.Role)
	}
	if claims.DealershipID != "d-1" {
		t.Fatalf("dealership mismatch: %s", claims.DealershipID)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret-a", Issuer: "fleetdesk"}
	token, _, err := GenerateAccessToken(cfg, "u-1", "admin", "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	other := config.AuthConfig{JWTSecret: "secret-b", Issuer: "fleetdesk"}
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected parse failure with wrong secret")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret", Issuer: "someone-else"}
	token, _, err := GenerateAccessToken(cfg, "u-1", "admin", "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	verify := config.AuthConfig{JWTSecret: "secret", Issuer: "fleetdesk"}
	if _, err := ParseAccessToken(verify, token); err == nil {
		t.Fatalf("expected issuer mismatch")
	}
}
