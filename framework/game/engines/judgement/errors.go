package judgement

import (
	"errors"
	"fmt"
)

var ErrDeckExhausted = errors.New("not enough cards left in deck")

type ErrorCode string

const (
	CodeWrongPhase     ErrorCode = "wrong_phase"
	CodeNoActiveRound  ErrorCode = "no_active_round"
	CodeOutOfTurn      ErrorCode = "out_of_turn"
	CodeOutOfRange     ErrorCode = "out_of_range"
	CodeForbiddenBid   ErrorCode = "forbidden_bid"
	CodeNoActiveTrick  ErrorCode = "no_active_trick"
	CodeCardNotInHand  ErrorCode = "card_not_in_hand"
	CodeMustFollowSuit ErrorCode = "must_follow_suit"
	CodeUnknownPlayer  ErrorCode = "unknown_player"

	CodeNotEnoughPlayers ErrorCode = "not_enough_players"
	CodeNoMoreRounds     ErrorCode = "no_more_rounds"
)

// ValidationError rejects a move without touching game state.
// errors.Is matches on Code, so callers compare against the Err* sentinels.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	var t *ValidationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func newValidationError(code ErrorCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrWrongPhase     = &ValidationError{Code: CodeWrongPhase, Message: "wrong phase"}
	ErrNoActiveRound  = &ValidationError{Code: CodeNoActiveRound, Message: "No active round"}
	ErrOutOfTurn      = &ValidationError{Code: CodeOutOfTurn, Message: "Not your turn"}
	ErrOutOfRange     = &ValidationError{Code: CodeOutOfRange, Message: "bid out of range"}
	ErrForbiddenBid   = &ValidationError{Code: CodeForbiddenBid, Message: "forbidden bid"}
	ErrNoActiveTrick  = &ValidationError{Code: CodeNoActiveTrick, Message: "No active trick"}
	ErrCardNotInHand  = &ValidationError{Code: CodeCardNotInHand, Message: "You don't have that card"}
	ErrMustFollowSuit = &ValidationError{Code: CodeMustFollowSuit, Message: "You must follow suit"}
	ErrUnknownPlayer  = &ValidationError{Code: CodeUnknownPlayer, Message: "Player not found"}

	ErrNotEnoughPlayers = &ValidationError{Code: CodeNotEnoughPlayers, Message: fmt.Sprintf("Need at least %d players to start", MinPlayers)}
	ErrNoMoreRounds     = &ValidationError{Code: CodeNoMoreRounds, Message: "No more rounds available"}
)
