package app

import (
	"fmt"

	"chessserver/internal/domain"
	"chessserver/internal/wire"
)

type drawOfferedPayload struct {
	MatchID string `json:"matchId"`
	From    string `json:"from"`
}

type drawDeclinedPayload struct {
	MatchID string `json:"matchId"`
}

// OfferDraw implements spec §4.6 OFFER_DRAW: forwards DRAW_OFFERED to the
// opponent. Draw offers are transient; the server keeps no offer state
// (spec §8 Open Questions).
func (s *Service) OfferDraw(callerSlot int, matchID string) ([]Event, error) {
	caller, err := s.Sessions.Get(callerSlot)
	if err != nil {
		return nil, fmt.Errorf("offer draw: %w", err)
	}

	var opponentSlot int
	err = s.Matches.WithMatch(matchID, func(m *domain.Match) error {
		mySide, ok := sideOf(m, caller.Username)
		if !ok {
			return ErrNotInMatch
		}
		opponentSlot = m.BlackSession
		if mySide == domain.Black {
			opponentSlot = m.WhiteSession
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return []Event{{
		Action:     wire.OutDrawOffered,
		Payload:    drawOfferedPayload{MatchID: matchID, From: caller.Username},
		Recipients: []int{opponentSlot},
	}}, nil
}

// AcceptDraw implements spec §4.6 ACCEPT_DRAW: runs the terminal flow with
// winner "DRAW", reason "Draw by agreement".
func (s *Service) AcceptDraw(callerSlot int, matchID string) ([]Event, error) {
	caller, err := s.Sessions.Get(callerSlot)
	if err != nil {
		return nil, fmt.Errorf("accept draw: %w", err)
	}

	var arg terminalParams
	err = s.Matches.WithMatch(matchID, func(m *domain.Match) error {
		if _, ok := sideOf(m, caller.Username); !ok {
			return ErrNotInMatch
		}
		arg = terminalParams{
			matchID: m.MatchID,
			white:   m.White,
			black:   m.Black,
			winner:  "DRAW",
			reason:  "Draw by agreement",
			board:   boardString(m),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.runTerminalFlow(arg)
}

// DeclineDraw implements spec §4.6 DECLINE_DRAW: notifies the offerer that
// the draw was declined.
func (s *Service) DeclineDraw(callerSlot int, matchID string) ([]Event, error) {
	caller, err := s.Sessions.Get(callerSlot)
	if err != nil {
		return nil, fmt.Errorf("decline draw: %w", err)
	}

	var offererSlot int
	err = s.Matches.WithMatch(matchID, func(m *domain.Match) error {
		mySide, ok := sideOf(m, caller.Username)
		if !ok {
			return ErrNotInMatch
		}
		offererSlot = m.BlackSession
		if mySide == domain.Black {
			offererSlot = m.WhiteSession
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return []Event{{
		Action:     wire.OutDrawDeclined,
		Payload:    drawDeclinedPayload{MatchID: matchID},
		Recipients: []int{offererSlot},
	}}, nil
}
