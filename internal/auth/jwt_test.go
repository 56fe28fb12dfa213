package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ragforge-labs/ragforge/internal/config"
)

func newTestTokenService(ttl time.Duration) *TokenService {
	return NewTokenService(config.JWTConfig{Secret: "test-secret", TTL: ttl})
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := newTestTokenService(time.Hour)
	userID := uuid.New()

	token, err := svc.Issue(userID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("expected user %s, got %s", userID, claims.UserID)
	}
}

func TestTokenService_Verify_Expired(t *testing.T) {
	svc := newTestTokenService(-time.Minute)
	token, err := svc.Issue(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.Verify(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestTokenService_Verify_WrongSecret(t *testing.T) {
	token, err := newTestTokenService(time.Hour).Issue(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewTokenService(config.JWTConfig{Secret: "other-secret", TTL: time.Hour})
	if _, err := other.Verify(token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestTokenService_Verify_Empty(t *testing.T) {
	if _, err := newTestTokenService(time.Hour).Verify(""); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("expected matching password to verify")
	}
	if CheckPassword("wrong", hash) {
		t.Error("expected mismatched password to fail")
	}
}
