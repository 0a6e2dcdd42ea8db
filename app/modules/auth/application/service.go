// Package authservice issues capability-scoped realtime tokens for
// authenticated users.
package authservice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
	"github.com/fairway-collective/moneygames/internal/observability/attr"
	"github.com/fairway-collective/moneygames/realtime"
)

// ErrUnknownUser indicates the identity has no account.
var ErrUnknownUser = errors.New("unknown user")

// ErrNoLeagueMembership indicates the user belongs to no league, so there
// are no channels to grant.
var ErrNoLeagueMembership = errors.New("no league membership")

// RealtimeToken is a signed token plus the metadata clients need to connect.
type RealtimeToken struct {
	Token      string              `json:"token"`
	ClientID   string              `json:"clientId"`
	ExpiresAt  time.Time           `json:"expiresAt"`
	Capability map[string][]string `json:"capability"`
}

// Service defines the auth application surface.
type Service interface {
	IssueRealtimeToken(ctx context.Context, identity string) (*RealtimeToken, error)
}

// AuthService implements the Service interface.
type AuthService struct {
	roster rosterdb.Repository
	tokens realtime.TokenService
	logger *slog.Logger
	db     *bun.DB
}

// NewAuthService creates a new AuthService.
func NewAuthService(roster rosterdb.Repository, tokens realtime.TokenService, logger *slog.Logger, db *bun.DB) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		roster: roster,
		tokens: tokens,
		logger: logger,
		db:     db,
	}
}

// IssueRealtimeToken computes the caller's channel capabilities from their
// league memberships and signs a token granting them.
func (s *AuthService) IssueRealtimeToken(ctx context.Context, identity string) (*RealtimeToken, error) {
	if _, err := s.roster.GetUserByIdentity(ctx, nil, identity); err != nil {
		if errors.Is(err, rosterdb.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	leagueUUIDs, err := s.roster.GetLeagueIDsForIdentity(ctx, nil, identity)
	if err != nil {
		return nil, err
	}
	if len(leagueUUIDs) == 0 {
		return nil, ErrNoLeagueMembership
	}
	leagueIDs := make([]string, 0, len(leagueUUIDs))
	for _, id := range leagueUUIDs {
		leagueIDs = append(leagueIDs, id.String())
	}

	signed, claims, err := s.tokens.IssueToken(identity, leagueIDs, 0)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Issued realtime token",
		attr.ExtractCorrelationID(ctx),
		attr.String("identity", identity),
		attr.Int("league_count", len(leagueIDs)),
	)

	return &RealtimeToken{
		Token:      signed,
		ClientID:   claims.ClientID,
		ExpiresAt:  claims.ExpiresAt.Time,
		Capability: claims.Capability,
	}, nil
}
