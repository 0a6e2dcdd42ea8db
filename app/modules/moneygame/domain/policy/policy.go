// Package policy maps game types to required participant counts. "Others"
// counts everyone except the creator.
package policy

import (
	"fmt"

	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
)

// Requirement describes how many other players a game type needs. Fixed
// formats require exactly Others; ranged formats accept MinOthers through
// MaxOthers.
type Requirement struct {
	Fixed     bool
	Others    int
	MinOthers int
	MaxOthers int
}

var requirements = map[moneygametypes.GameType]Requirement{
	moneygametypes.GameTypeTwoVsTwoAutoPress:    {Fixed: true, Others: 3},
	moneygametypes.GameTypeTeamScramble:         {Fixed: true, Others: 3},
	moneygametypes.GameTypeIndividualStrokePlay: {MinOthers: 1, MaxOthers: 7},
	moneygametypes.GameTypeSkinsGame:            {MinOthers: 1, MaxOthers: 7},
}

// ForGameType returns the requirement for a game type.
func ForGameType(gt moneygametypes.GameType) (Requirement, bool) {
	r, ok := requirements[gt]
	return r, ok
}

// RequiredTotal is the total player count a client should display: the exact
// total for fixed formats, the maximum for ranged ones.
func (r Requirement) RequiredTotal() int {
	if r.Fixed {
		return r.Others + 1
	}
	return r.MaxOthers + 1
}

// MinimumTotal is the smallest accepted-count at which the game is playable,
// creator included.
func (r Requirement) MinimumTotal() int {
	if r.Fixed {
		return r.Others + 1
	}
	return r.MinOthers + 1
}

// Evaluation is the outcome of checking a count against a requirement.
type Evaluation struct {
	// SatisfiesExact gates creation-time admission: the selected invitee and
	// guest count must exactly match a fixed format, or fall inside a ranged
	// format's bounds.
	SatisfiesExact bool
	// SatisfiesMinimum gates readiness: ranged formats are playable as soon
	// as the minimum accepts; the upper bound is a creation-time cap only.
	SatisfiesMinimum bool
}

// Evaluate checks otherCount (players besides the creator) against the game
// type's requirement.
func Evaluate(gt moneygametypes.GameType, otherCount int) (Evaluation, error) {
	r, ok := ForGameType(gt)
	if !ok {
		return Evaluation{}, fmt.Errorf("unknown game type %q", gt)
	}
	if r.Fixed {
		return Evaluation{
			SatisfiesExact:   otherCount == r.Others,
			SatisfiesMinimum: otherCount >= r.Others,
		}, nil
	}
	return Evaluation{
		SatisfiesExact:   otherCount >= r.MinOthers && otherCount <= r.MaxOthers,
		SatisfiesMinimum: otherCount >= r.MinOthers,
	}, nil
}

// IsReady reports whether acceptedTotal (creator and guests included)
// satisfies the game type's readiness rule: exact for fixed formats, at
// least the minimum for ranged ones.
func IsReady(gt moneygametypes.GameType, acceptedTotal int) (bool, error) {
	r, ok := ForGameType(gt)
	if !ok {
		return false, fmt.Errorf("unknown game type %q", gt)
	}
	if r.Fixed {
		return acceptedTotal == r.Others+1, nil
	}
	return acceptedTotal >= r.MinOthers+1, nil
}

// ExpectedOthers renders the player-count requirement for error messages,
// e.g. "exactly 3" or "1-7".
func (r Requirement) ExpectedOthers() string {
	if r.Fixed {
		return fmt.Sprintf("exactly %d", r.Others)
	}
	return fmt.Sprintf("%d-%d", r.MinOthers, r.MaxOthers)
}
