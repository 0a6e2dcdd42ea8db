package authjwt

import "time"

// Provider issues and validates the session tokens the HTTP layer trusts.
// The subject is the identity provider's opaque identifier.
type Provider interface {
	GenerateToken(identity string, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (string, error)
}
