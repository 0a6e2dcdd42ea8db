package realtime

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the capability-scoped token handed to realtime clients.
type TokenClaims struct {
	jwt.RegisteredClaims
	ClientID   string              `json:"clientId"`
	Capability map[string][]string `json:"capability"`
}

// TokenService issues capability-scoped realtime tokens.
type TokenService interface {
	IssueToken(identity string, leagueIDs []string, ttl time.Duration) (string, *TokenClaims, error)
	ValidateToken(tokenString string) (*TokenClaims, error)
}

type tokenService struct {
	secret     []byte
	defaultTTL time.Duration
}

// NewTokenService creates a TokenService signing with the given HMAC secret.
func NewTokenService(secret string, defaultTTL time.Duration) TokenService {
	return &tokenService{secret: []byte(secret), defaultTTL: defaultTTL}
}

func (s *tokenService) IssueToken(identity string, leagueIDs []string, ttl time.Duration) (string, *TokenClaims, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := time.Now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		ClientID:   "user_" + identity,
		Capability: Capabilities(identity, leagueIDs),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign realtime token: %w", err)
	}
	return signed, claims, nil
}

func (s *tokenService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid realtime token: %w", err)
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid realtime token claims")
	}
	return claims, nil
}
