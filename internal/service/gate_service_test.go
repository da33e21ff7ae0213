package service

import (
	"errors"
	"testing"
	"time"

	"github.com/suneung/mocktrack-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func gateConfig() *config.Config {
	return &config.Config{
		GatePassword:    "open-sesame",
		GateTokenSecret: "test-secret",
		GateTokenExpiry: time.Hour,
	}
}

func TestVerifyPasswordPlaintext(t *testing.T) {
	svc := NewGateService(gateConfig())

	if err := svc.VerifyPassword("open-sesame"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := svc.VerifyPassword("wrong"); !errors.Is(err, ErrGatePasswordMismatch) {
		t.Errorf("err = %v, want ErrGatePasswordMismatch", err)
	}
}

func TestVerifyPasswordBcryptHashTakesPrecedence(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	cfg := gateConfig()
	cfg.GatePasswordHash = string(hash)
	svc := NewGateService(cfg)

	if err := svc.VerifyPassword("hashed-secret"); err != nil {
		t.Errorf("hashed password rejected: %v", err)
	}
	// The plaintext fallback must be ignored once a hash is configured.
	if err := svc.VerifyPassword("open-sesame"); !errors.Is(err, ErrGatePasswordMismatch) {
		t.Errorf("plaintext fallback should not apply, got %v", err)
	}
}

func TestVerifyPasswordUnconfigured(t *testing.T) {
	cfg := gateConfig()
	cfg.GatePassword = ""
	svc := NewGateService(cfg)

	if err := svc.VerifyPassword("anything"); !errors.Is(err, ErrGateNotConfigured) {
		t.Errorf("err = %v, want ErrGateNotConfigured", err)
	}
}

func TestGateTokenRoundTrip(t *testing.T) {
	svc := NewGateService(gateConfig())

	token, err := svc.IssueToken()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.TokenType != gateTokenType {
		t.Errorf("token type = %q, want %q", claims.TokenType, gateTokenType)
	}
}

func TestGateTokenWrongSecretRejected(t *testing.T) {
	issuer := NewGateService(gateConfig())
	token, err := issuer.IssueToken()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := gateConfig()
	other.GateTokenSecret = "a-different-secret"
	if _, err := NewGateService(other).ParseToken(token); err == nil {
		t.Error("token signed with another secret should be rejected")
	}
}
