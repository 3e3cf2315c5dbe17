package security

import (
	"testing"
	"time"

	"ceoacademy/internal/common"
)

func TestGenerateAndParse(t *testing.T) {
	provider := NewJWTProvider("test-secret")
	userID := common.NewUUID()

	token, expiresAt, err := provider.Generate(userID, time.Hour)
	if err != nil {
		t.Fatalf("expected token, got %v", err)
	}
	if time.Until(expiresAt) > time.Hour || time.Until(expiresAt) < 55*time.Minute {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	claims, err := provider.Parse(token)
	if err != nil {
		t.Fatalf("expected claims, got %v", err)
	}
	if claims.UserID != string(userID) {
		t.Fatalf("expected user id %q, got %q", userID, claims.UserID)
	}
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTProvider("one").Generate(common.NewUUID(), time.Hour)
	if err != nil {
		t.Fatalf("expected token, got %v", err)
	}
	if _, err := NewJWTProvider("two").Parse(token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestParse_RejectsExpiredToken(t *testing.T) {
	provider := NewJWTProvider("test-secret")
	token, _, err := provider.Generate(common.NewUUID(), -time.Minute)
	if err != nil {
		t.Fatalf("expected token, got %v", err)
	}
	if _, err := provider.Parse(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
