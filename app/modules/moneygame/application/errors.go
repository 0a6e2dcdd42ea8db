package moneygameservice

import "fmt"

// FailureCode classifies domain failures so the transport layer can map them
// to response codes without string matching.
type FailureCode string

const (
	FailureInvalidInput          FailureCode = "INVALID_INPUT"
	FailureInvalidPlayerCount    FailureCode = "INVALID_PLAYER_COUNT"
	FailureSelfInvitation        FailureCode = "SELF_INVITATION"
	FailureDuplicateInvitee      FailureCode = "DUPLICATE_INVITEE"
	FailureInviteeOutOfScope     FailureCode = "INVITEE_OUT_OF_SCOPE"
	FailureNotChapterMember      FailureCode = "NOT_CHAPTER_MEMBER"
	FailureNotInvited            FailureCode = "NOT_INVITED"
	FailureGuestCannotRespond    FailureCode = "GUEST_CANNOT_RESPOND"
	FailureNoOp                  FailureCode = "NO_OP"
	FailureNotAcceptingResponses FailureCode = "GAME_NOT_ACCEPTING_RESPONSES"
	FailureInvalidTransition     FailureCode = "INVALID_TRANSITION"
	FailureNotCreator            FailureCode = "NOT_CREATOR"
	FailureQuorumNotMet          FailureCode = "QUORUM_NOT_MET"
	FailureNotFound              FailureCode = "NOT_FOUND"
)

// Failure is a rejected request: validation, authorization, state conflict,
// or not-found. It commits no writes and maps to a 4xx at the HTTP edge.
type Failure struct {
	Code    FailureCode
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

func newFailure(code FailureCode, format string, args ...any) *Failure {
	return &Failure{Code: code, Message: fmt.Sprintf(format, args...)}
}
