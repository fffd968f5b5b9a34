package app

import (
	"errors"
	"fmt"

	"chessserver/internal/domain"
)

// ErrAbortResponseUnsupported is returned by AcceptAbort/DeclineAbort,
// which exist only for forward compatibility (spec §4.6: resignation is
// immediate, there is nothing to accept or decline).
var ErrAbortResponseUnsupported = errors.New("abort is immediate and cannot be accepted or declined")

// OfferAbort implements spec §4.6 OFFER_ABORT: resignation is an immediate
// loss for the sender, reason "Opponent resigned".
func (s *Service) OfferAbort(callerSlot int, matchID string) ([]Event, error) {
	caller, err := s.Sessions.Get(callerSlot)
	if err != nil {
		return nil, fmt.Errorf("offer abort: %w", err)
	}

	var arg terminalParams
	err = s.Matches.WithMatch(matchID, func(m *domain.Match) error {
		mySide, ok := sideOf(m, caller.Username)
		if !ok {
			return ErrNotInMatch
		}
		winner := m.Black
		if mySide == domain.Black {
			winner = m.White
		}
		arg = terminalParams{
			matchID: m.MatchID,
			white:   m.White,
			black:   m.Black,
			winner:  winner,
			reason:  "Opponent resigned",
			board:   boardString(m),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.runTerminalFlow(arg)
}

// AcceptAbort exists for forward compatibility only (spec §4.6) and always
// errors: OFFER_ABORT already ends the match.
func (s *Service) AcceptAbort(callerSlot int, matchID string) ([]Event, error) {
	return nil, ErrAbortResponseUnsupported
}

// DeclineAbort exists for forward compatibility only (spec §4.6) and
// always errors: OFFER_ABORT already ends the match.
func (s *Service) DeclineAbort(callerSlot int, matchID string) ([]Event, error) {
	return nil, ErrAbortResponseUnsupported
}
