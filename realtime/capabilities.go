package realtime

import "fmt"

// Capabilities computes the channel patterns a user may access, keyed by
// pattern with the allowed operations as values. Pure function of identity
// and league memberships; consumed only by the auth boundary.
func Capabilities(identity string, leagueIDs []string) map[string][]string {
	capabilities := map[string][]string{
		PrivateChannelName(identity): {"*"},
	}

	for _, leagueID := range leagueIDs {
		capabilities[fmt.Sprintf("league-%s", leagueID)] = []string{"publish", "subscribe", "presence"}
		capabilities[fmt.Sprintf("chapter-%s-*", leagueID)] = []string{"publish", "subscribe", "presence"}
		capabilities[fmt.Sprintf("game-%s-*", leagueID)] = []string{"publish", "subscribe", "presence"}
		capabilities[fmt.Sprintf("tournament-%s-*", leagueID)] = []string{"subscribe", "presence"}
	}

	return capabilities
}
