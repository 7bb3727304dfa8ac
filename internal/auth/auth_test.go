package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"answerhub/internal/config"
)

func testService() *Service {
	return NewService(&config.JWTConfig{
		Secret:     "test-secret-key-for-testing-only",
		Expiration: time.Hour,
	})
}

func TestHashPassword(t *testing.T) {
	svc := testService()

	hash, err := svc.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "" {
		t.Fatal("Expected a non-empty hash")
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash must not equal the plaintext password")
	}
}

func TestVerifyPassword(t *testing.T) {
	svc := testService()

	hash, err := svc.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	// Test correct password
	if err := svc.VerifyPassword(hash, "secret123"); err != nil {
		t.Errorf("Expected correct password to verify, got %v", err)
	}

	// Test wrong password
	if err := svc.VerifyPassword(hash, "wrong-password"); err == nil {
		t.Error("Expected wrong password to fail verification")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := testService()

	userID := uuid.New()
	token, err := svc.GenerateToken(userID, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("Expected a non-empty token")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("Expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("Expected email to round-trip, got %q", claims.Email)
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	svc := testService()

	if _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Error("Expected garbage token to be rejected")
	}

	// Token signed with a different secret must be rejected
	other := NewService(&config.JWTConfig{
		Secret:     "a-completely-different-secret",
		Expiration: time.Hour,
	})
	token, err := other.GenerateToken(uuid.New(), "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("Expected token with wrong signature to be rejected")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewService(&config.JWTConfig{
		Secret:     "test-secret-key-for-testing-only",
		Expiration: -time.Hour,
	})

	token, err := svc.GenerateToken(uuid.New(), "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}
