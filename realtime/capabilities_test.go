package realtime

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestCapabilities(t *testing.T) {
	tests := []struct {
		name      string
		identity  string
		leagueIDs []string
		want      map[string][]string
	}{
		{
			name:      "no leagues still grants private channel",
			identity:  "user-1",
			leagueIDs: nil,
			want: map[string][]string{
				"private-user-user-1": {"*"},
			},
		},
		{
			name:      "single league grants scoped patterns",
			identity:  "user-1",
			leagueIDs: []string{"lg1"},
			want: map[string][]string{
				"private-user-user-1": {"*"},
				"league-lg1":          {"publish", "subscribe", "presence"},
				"chapter-lg1-*":       {"publish", "subscribe", "presence"},
				"game-lg1-*":          {"publish", "subscribe", "presence"},
				"tournament-lg1-*":    {"subscribe", "presence"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Capabilities(tt.identity, tt.leagueIDs)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Capabilities mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCapabilities_TournamentIsReadOnly(t *testing.T) {
	got := Capabilities("u", []string{"lg"})
	assert.NotContains(t, got["tournament-lg-*"], "publish")
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	signed, claims, err := svc.IssueToken("user-42", []string{"lg9"}, 0)
	assert.NoError(t, err)
	assert.Equal(t, "user_user-42", claims.ClientID)

	parsed, err := svc.ValidateToken(signed)
	assert.NoError(t, err)
	assert.Equal(t, "user-42", parsed.Subject)
	assert.Contains(t, parsed.Capability, "private-user-user-42")
	assert.Contains(t, parsed.Capability, "game-lg9-*")
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	signed, _, err := NewTokenService("secret-a", time.Hour).IssueToken("u", nil, 0)
	assert.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).ValidateToken(signed)
	assert.Error(t, err)
}
