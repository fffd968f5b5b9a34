package app

import (
	"fmt"

	"go.uber.org/zap"

	"chessserver/internal/match"
	"chessserver/internal/session"
	"chessserver/internal/wire"
)

type incomingChallengePayload struct {
	From string `json:"from"`
}

type challengeDeclinedPayload struct {
	From string `json:"from"`
}

// Challenge implements spec §4.6 CHALLENGE: the sender (from) challenges
// an online, available opponent (to); the opponent receives
// INCOMING_CHALLENGE.
func (s *Service) Challenge(from, to string) ([]Event, error) {
	opponentSlot, ok := s.Sessions.FindByUsername(to)
	if !ok {
		return nil, ErrOpponentOffline
	}
	opponentEntry, err := s.Sessions.Get(opponentSlot)
	if err != nil {
		return nil, fmt.Errorf("challenge: %w", err)
	}
	if opponentEntry.State != session.Online {
		return nil, ErrOpponentBusy
	}

	return []Event{{
		Action:     wire.OutIncomingChallenge,
		Payload:    incomingChallengePayload{From: from},
		Recipients: []int{opponentSlot},
	}}, nil
}

// Decline implements spec §4.6 DECLINE: notifies the original challenger
// that `from` declined their challenge.
func (s *Service) Decline(from, to string) ([]Event, error) {
	challengerSlot, ok := s.Sessions.FindByUsername(to)
	if !ok {
		return nil, nil
	}
	return []Event{{
		Action:     wire.OutChallengeDeclined,
		Payload:    challengeDeclinedPayload{From: from},
		Recipients: []int{challengerSlot},
	}}, nil
}

type startGamePayload struct {
	MatchID    string `json:"matchId"`
	Color      string `json:"color"`
	Opponent   string `json:"opponent"`
	Board      string `json:"board"`
	SideToMove int    `json:"sideToMove"`
}

// Accept implements spec §4.6 ACCEPT: from is the acceptor, to is the
// original challenger. A match is created with a coin-flip color
// assignment and both sides are moved to IN_MATCH.
func (s *Service) Accept(from, to string) ([]Event, error) {
	return s.startMatch(to, from)
}

// FindMatch implements spec §4.5 enqueue.
func (s *Service) FindMatch(callerSlot int) ([]Event, error) {
	entry, err := s.Sessions.Get(callerSlot)
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	profile, ok := s.Users.Find(entry.Username)
	if !ok {
		return nil, ErrUserNotFound
	}
	if err := s.Queue.Enqueue(callerSlot, profile.Elo); err != nil {
		return nil, err
	}
	return nil, nil
}

// CancelFindMatch implements spec §4.5 dequeue.
func (s *Service) CancelFindMatch(callerSlot int) ([]Event, error) {
	s.Queue.Dequeue(callerSlot)
	return nil, nil
}

type matchmakingStatusPayload struct {
	Status   string `json:"status"`
	Opponent string `json:"opponent,omitempty"`
}

// Tick drives spec §4.5's matchmaking tick: it pairs waiting sessions and
// creates a match for each pairing (spec §4.6 data flow: matchmaking
// creates matches with random color).
func (s *Service) Tick() []Event {
	var events []Event
	for _, pairing := range s.Queue.Tick() {
		entryA, errA := s.Sessions.Get(pairing.SlotA)
		entryB, errB := s.Sessions.Get(pairing.SlotB)
		if errA != nil || errB != nil {
			continue
		}

		events = append(events,
			Event{Action: wire.OutMatchmakingStatus, Payload: matchmakingStatusPayload{Status: "FOUND", Opponent: entryB.Username}, Recipients: []int{pairing.SlotA}},
			Event{Action: wire.OutMatchmakingStatus, Payload: matchmakingStatusPayload{Status: "FOUND", Opponent: entryA.Username}, Recipients: []int{pairing.SlotB}},
		)

		startEvents, err := s.startMatch(entryA.Username, entryB.Username)
		if err != nil {
			if s.Log != nil {
				s.Log.Error("matchmaking: failed to create match", zap.Error(err))
			}
			continue
		}
		events = append(events, startEvents...)
	}
	return events
}

// startMatch creates a match between challenger and opponent (by
// username), assigning colors by coin flip, and moves both sessions to
// IN_MATCH, per spec §4.4 create.
func (s *Service) startMatch(challenger, opponent string) ([]Event, error) {
	return s.startMatchWithColors(challenger, opponent, match.Coin)
}

// startMatchWithColors is startMatch generalized to the caller's choice of
// ColorAssignment, used by rematch (spec §4.6: former black plays white,
// Fixed so no coin flip re-randomizes it).
func (s *Service) startMatchWithColors(challenger, opponent string, colors match.ColorAssignment) ([]Event, error) {
	challengerSlot, ok := s.Sessions.FindByUsername(challenger)
	if !ok {
		return nil, ErrOpponentOffline
	}
	opponentSlot, ok := s.Sessions.FindByUsername(opponent)
	if !ok {
		return nil, ErrOpponentOffline
	}

	m, err := s.Matches.Create(challenger, opponent, challengerSlot, opponentSlot, colors)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	if err := s.Rec.Start(m.MatchID); err != nil {
		return nil, fmt.Errorf("start recording: %w", err)
	}

	s.Sessions.SetState(m.WhiteSession, session.InMatch)
	s.Sessions.SetState(m.BlackSession, session.InMatch)

	board := boardString(m)
	return []Event{
		{Action: wire.OutStartGame, Payload: startGamePayload{MatchID: m.MatchID, Color: "white", Opponent: m.Black, Board: board, SideToMove: int(m.SideToMove)}, Recipients: []int{m.WhiteSession}},
		{Action: wire.OutStartGame, Payload: startGamePayload{MatchID: m.MatchID, Color: "black", Opponent: m.White, Board: board, SideToMove: int(m.SideToMove)}, Recipients: []int{m.BlackSession}},
	}, nil
}
