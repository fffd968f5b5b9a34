package app

import (
	"fmt"

	"chessserver/internal/match"
	"chessserver/internal/session"
	"chessserver/internal/wire"
)

type rematchOfferedPayload struct {
	MatchID string `json:"matchId"`
	From    string `json:"from"`
}

type rematchDeclinedPayload struct {
	MatchID string `json:"matchId"`
}

type rematchErrorPayload struct {
	Reason string `json:"reason"`
}

// OfferRematch implements spec §4.6 OFFER_REMATCH: marks the RecentMatch
// entry and forwards REMATCH_OFFERED to the other side of that finished
// match.
func (s *Service) OfferRematch(callerSlot int, matchID string) ([]Event, error) {
	caller, err := s.Sessions.Get(callerSlot)
	if err != nil {
		return nil, fmt.Errorf("offer rematch: %w", err)
	}

	rm, err := s.Matches.RecentFind(matchID)
	if err != nil {
		return nil, ErrRematchUnavailable
	}

	opponentSlot := rm.WhiteSession
	if callerSlot == rm.WhiteSession {
		opponentSlot = rm.BlackSession
	}

	if err := s.Matches.OfferRematch(matchID, callerSlot); err != nil {
		return nil, fmt.Errorf("offer rematch: %w", err)
	}

	return []Event{{
		Action:     wire.OutRematchOffered,
		Payload:    rematchOfferedPayload{MatchID: matchID, From: caller.Username},
		Recipients: []int{opponentSlot},
	}}, nil
}

// AcceptRematch implements spec §4.6 ACCEPT_REMATCH: creates a new match
// with FIXED colors where the former black plays white, provided both
// sides are still ONLINE; the RecentMatch entry is invalidated regardless
// of outcome.
func (s *Service) AcceptRematch(callerSlot int, matchID string) ([]Event, error) {
	rm, err := s.Matches.RecentFind(matchID)
	if err != nil {
		return nil, ErrRematchUnavailable
	}

	defer s.Matches.InvalidateRecent(matchID)

	whiteEntry, errW := s.Sessions.Get(rm.WhiteSession)
	blackEntry, errB := s.Sessions.Get(rm.BlackSession)
	if errW != nil || errB != nil || whiteEntry.State != session.Online || blackEntry.State != session.Online {
		return []Event{{
			Action:     wire.OutError,
			Payload:    rematchErrorPayload{Reason: "Opponent is no longer online"},
			Recipients: []int{callerSlot},
		}}, nil
	}

	// Former black plays white: swap roles, Fixed so the registry does not
	// re-flip a coin.
	return s.startMatchWithColors(rm.Black, rm.White, match.Fixed)
}

// DeclineRematch implements spec §4.6 DECLINE_REMATCH: notifies the
// offerer and invalidates the RecentMatch entry.
func (s *Service) DeclineRematch(callerSlot int, matchID string) ([]Event, error) {
	rm, err := s.Matches.RecentFind(matchID)
	if err != nil {
		return nil, ErrRematchUnavailable
	}

	s.Matches.InvalidateRecent(matchID)

	offererSlot := rm.WhiteSession
	if rm.RematchOfferedBy == rm.BlackSession {
		offererSlot = rm.BlackSession
	}

	return []Event{{
		Action:     wire.OutRematchDeclined,
		Payload:    rematchDeclinedPayload{MatchID: matchID},
		Recipients: []int{offererSlot},
	}}, nil
}
