package server

import (
	"errors"

	"chessserver/internal/app"
	"chessserver/internal/match"
	"chessserver/internal/matchmaking"
	"chessserver/internal/session"
	"chessserver/internal/store"
	"chessserver/internal/wire"
)

// classify maps a Service/registry sentinel error to the wire error-kind
// vocabulary of spec §7. Errors not recognized here are IO_ERROR: the
// router treats them as unexpected storage/runtime failures, not
// request-shaped problems the client caused.
func classify(err error) (wire.ErrorKind, string) {
	switch {
	case errors.Is(err, errMissingData):
		return wire.ErrMissingField, "Missing data field"
	case errors.Is(err, errInvalidJSON):
		return wire.ErrInvalidJSON, "Invalid JSON payload"
	case errors.Is(err, app.ErrNotLoggedIn):
		return wire.ErrNotLoggedIn, "Not logged in"
	case errors.Is(err, app.ErrUserNotFound), errors.Is(err, store.ErrNotFound):
		return wire.ErrUserNotFound, "User not found"
	case errors.Is(err, app.ErrOpponentOffline):
		return wire.ErrOpponentOffline, "Opponent offline"
	case errors.Is(err, app.ErrOpponentBusy):
		return wire.ErrOpponentBusy, "Opponent busy"
	case errors.Is(err, app.ErrMatchNotFound), errors.Is(err, match.ErrNotFound):
		return wire.ErrMatchNotFound, "Match not found"
	case errors.Is(err, app.ErrNotInMatch):
		return wire.ErrNotInMatch, "Not a participant in this match"
	case errors.Is(err, app.ErrNotYourPiece):
		return wire.ErrNotYourPiece, "Square does not hold your piece"
	case errors.Is(err, app.ErrInvalidNotation):
		return wire.ErrInvalidNotation, "Invalid square notation"
	case errors.Is(err, app.ErrRematchUnavailable), errors.Is(err, match.ErrNotInWindow):
		return wire.ErrMatchNotFound, "Rematch not available"
	case errors.Is(err, app.ErrAbortResponseUnsupported):
		return wire.ErrUnknownAction, "Abort is immediate and cannot be accepted or declined"
	case errors.Is(err, store.ErrUsernameTaken):
		return wire.ErrUsernameTaken, "Username already taken"
	case errors.Is(err, store.ErrBadPassword):
		return wire.ErrBadCredentials, "Incorrect password"
	case errors.Is(err, store.ErrAlreadyLoggedIn):
		return wire.ErrAlreadyOnline, "Already logged in"
	case errors.Is(err, store.ErrCapacity), errors.Is(err, session.ErrCapacity), errors.Is(err, match.ErrNoSlot):
		return wire.ErrCapacity, "Server at capacity"
	case errors.Is(err, matchmaking.ErrCapacity):
		return wire.ErrCapacity, "Matchmaking queue at capacity"
	case errors.Is(err, matchmaking.ErrAlreadyQueued):
		return wire.ErrAlreadyQueued, "Already queued"
	case errors.Is(err, session.ErrSlotClosed), errors.Is(err, session.ErrOutOfRange):
		return wire.ErrIOError, "Session closed"
	default:
		return wire.ErrIOError, "Internal error"
	}
}

func errorEvent(slot int, kind wire.ErrorKind, reason string) app.Event {
	return app.Event{
		Action:     wire.OutError,
		Payload:    wire.ErrorPayload{Reason: reason},
		Recipients: []int{slot},
	}
}
