// Package lifecycle owns the game status transition table and the readiness
// recomputation rule.
package lifecycle

import (
	moneygamepolicy "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/policy"
	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
)

// manualTransitions lists the user-invoked transitions. The automatic
// WAITING_FOR_PLAYERS <-> READY_TO_START flips happen only through
// Recompute, never through a status-change request.
var manualTransitions = map[moneygametypes.GameStatus][]moneygametypes.GameStatus{
	moneygametypes.GameStatusWaitingForPlayers: {
		moneygametypes.GameStatusCancelled,
	},
	moneygametypes.GameStatusReadyToStart: {
		moneygametypes.GameStatusInProgress,
		moneygametypes.GameStatusCancelled,
	},
	moneygametypes.GameStatusInProgress: {
		moneygametypes.GameStatusCompleted,
		moneygametypes.GameStatusCancelled,
	},
	moneygametypes.GameStatusCompleted: {},
	moneygametypes.GameStatusCancelled: {},
}

// CanTransition reports whether a manual from -> to transition is allowed.
func CanTransition(from, to moneygametypes.GameStatus) bool {
	for _, allowed := range manualTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outbound transitions.
func IsTerminal(s moneygametypes.GameStatus) bool {
	return s == moneygametypes.GameStatusCompleted || s == moneygametypes.GameStatusCancelled
}

// AcceptsResponses reports whether invitation responses may still be
// recorded while the game is in this status.
func AcceptsResponses(s moneygametypes.GameStatus) bool {
	return s == moneygametypes.GameStatusWaitingForPlayers || s == moneygametypes.GameStatusReadyToStart
}

// Recompute applies the readiness rule after a ledger change. It returns the
// status the game should hold given the accepted count, and whether that
// differs from current. Only the two pre-start states ever flip; anything
// else is left alone.
func Recompute(current moneygametypes.GameStatus, gameType moneygametypes.GameType, acceptedTotal int) (moneygametypes.GameStatus, bool, error) {
	ready, err := moneygamepolicy.IsReady(gameType, acceptedTotal)
	if err != nil {
		return current, false, err
	}

	switch {
	case ready && current == moneygametypes.GameStatusWaitingForPlayers:
		return moneygametypes.GameStatusReadyToStart, true, nil
	case !ready && current == moneygametypes.GameStatusReadyToStart:
		return moneygametypes.GameStatusWaitingForPlayers, true, nil
	}
	return current, false, nil
}
