package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/suneung/mocktrack-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Gate errors.
var (
	ErrGatePasswordMismatch = errors.New("gate password mismatch")
	ErrGateNotConfigured    = errors.New("no gate password configured")
	ErrGateTokenInvalid     = errors.New("gate token invalid")
)

// GateClaims are the JWT claims of a gate token. The token carries no
// identity; it only proves the shared password was entered this session.
type GateClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

const gateTokenType = "gate"

// GateService implements the shared-secret confirmation step that guards
// mutating operations. This is deliberately not an authentication system:
// a single password, no accounts, no lockout, no rate limiting.
type GateService struct {
	cfg *config.Config
}

// NewGateService creates a new GateService.
func NewGateService(cfg *config.Config) *GateService {
	return &GateService{cfg: cfg}
}

// VerifyPassword checks the entered password against the configured
// secret. A bcrypt hash takes precedence; otherwise the plaintext secret
// is compared in constant time.
func (s *GateService) VerifyPassword(password string) error {
	if s.cfg.GatePasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.GatePasswordHash), []byte(password)); err != nil {
			return ErrGatePasswordMismatch
		}
		return nil
	}
	if s.cfg.GatePassword == "" {
		return ErrGateNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(s.cfg.GatePassword), []byte(password)) != 1 {
		return ErrGatePasswordMismatch
	}
	return nil
}

// IssueToken creates a signed gate token valid for the configured expiry.
func (s *GateService) IssueToken() (string, error) {
	now := time.Now()
	claims := GateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.GateTokenExpiry)),
		},
		TokenType: gateTokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.GateTokenSecret))
	if err != nil {
		return "", fmt.Errorf("sign gate token: %w", err)
	}
	return signed, nil
}

// TokenExpiry returns the configured token lifetime.
func (s *GateService) TokenExpiry() time.Duration {
	return s.cfg.GateTokenExpiry
}

// ParseToken validates a gate token string.
func (s *GateService) ParseToken(tokenStr string) (*GateClaims, error) {
	claims := &GateClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.GateTokenSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.TokenType != gateTokenType {
		return nil, ErrGateTokenInvalid
	}
	return claims, nil
}
