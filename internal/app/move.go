package app

import (
	"fmt"

	"go.uber.org/zap"

	"chessserver/internal/domain"
	"chessserver/internal/session"
	"chessserver/internal/wire"
)

type moveOkPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type moveInvalidPayload struct {
	Reason string `json:"reason"`
}

type opponentMovePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Move implements spec §4.6's move-handling sequence: resolve the match,
// enforce turn and legality, apply it, record it, and notify both sides,
// finishing with the shared terminal flow if the move ended the game.
func (s *Service) Move(callerSlot int, matchID, fromNotation, toNotation, promotion string) ([]Event, error) {
	caller, err := s.Sessions.Get(callerSlot)
	if err != nil {
		return nil, fmt.Errorf("move: %w", err)
	}

	var (
		events      []Event
		terminalArg *terminalParams
	)

	err = s.Matches.WithMatch(matchID, func(m *domain.Match) error {
		mySide, ok := sideOf(m, caller.Username)
		if !ok {
			return ErrNotInMatch
		}
		if mySide != m.SideToMove {
			events = []Event{{Action: wire.OutMoveInvalid, Payload: moveInvalidPayload{Reason: "Not your turn"}, Recipients: []int{callerSlot}}}
			return nil
		}

		fromR, fromC, toR, toC, perr := domain.ParseMoveToken(fromNotation + toNotation)
		if perr != nil {
			events = []Event{{Action: wire.OutMoveInvalid, Payload: moveInvalidPayload{Reason: "Invalid notation"}, Recipients: []int{callerSlot}}}
			return nil
		}

		if !domain.IsLegal(m, fromR, fromC, toR, toC, mySide) {
			events = []Event{{Action: wire.OutMoveInvalid, Payload: moveInvalidPayload{Reason: "Illegal move"}, Recipients: []int{callerSlot}}}
			return nil
		}

		var promo byte
		if len(promotion) > 0 {
			promo = promotion[0]
		}
		domain.Apply(m, fromR, fromC, toR, toC, promo)

		m.SideToMove = m.SideToMove.Opponent()
		if m.SideToMove == domain.White {
			m.FullmoveNumber++
		}

		token, _ := domain.MoveToken(fromR, fromC, toR, toC)
		if err := s.Rec.RecordMove(m.MatchID, token); err != nil && s.Log != nil {
			s.Log.Warn("record move failed", zap.Error(err))
		}

		opponentSlot := m.BlackSession
		if mySide == domain.Black {
			opponentSlot = m.WhiteSession
		}

		events = []Event{
			{Action: wire.OutMoveOk, Payload: moveOkPayload{From: fromNotation, To: toNotation}, Recipients: []int{callerSlot}},
			{Action: wire.OutOpponentMove, Payload: opponentMovePayload{From: fromNotation, To: toNotation}, Recipients: []int{opponentSlot}},
		}

		verdict := domain.CheckGameEnd(m)
		if verdict.Kind != domain.NotTerminal {
			terminalArg = &terminalParams{
				matchID: m.MatchID,
				white:   m.White,
				black:   m.Black,
				winner:  terminalWinner(m, verdict),
				reason:  terminalReason(verdict),
				board:   boardString(m),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if terminalArg != nil {
		terminalEvents, terr := s.runTerminalFlow(*terminalArg)
		if terr != nil {
			return nil, terr
		}
		events = append(events, terminalEvents...)
	}

	return events, nil
}

func sideOf(m *domain.Match, username string) (domain.Side, bool) {
	switch username {
	case m.White:
		return domain.White, true
	case m.Black:
		return domain.Black, true
	default:
		return 0, false
	}
}

func terminalWinner(m *domain.Match, v domain.Verdict) string {
	switch v.Kind {
	case domain.Checkmate:
		if v.Winner == domain.White {
			return m.White
		}
		return m.Black
	default:
		return "DRAW"
	}
}

func terminalReason(v domain.Verdict) string {
	switch v.Kind {
	case domain.Checkmate:
		return "Checkmate"
	case domain.Stalemate:
		return "Stalemate"
	case domain.Insufficient:
		return "Insufficient material"
	default:
		return ""
	}
}

type gameResultPayload struct {
	Winner  string `json:"winner"`
	Reason  string `json:"reason"`
	MatchID string `json:"matchId"`
}

type terminalParams struct {
	matchID string
	white   string
	black   string
	winner  string
	reason  string
	board   string
}

// runTerminalFlow implements spec §4.6's terminal flow, shared by
// move-driven end, agreed draw, and resignation: deactivate the match, set
// both sessions back online, notify both sides, finalize the recording,
// and apply Elo/W-L-D (skipped for "ABORT").
func (s *Service) runTerminalFlow(p terminalParams) ([]Event, error) {
	m, err := s.Matches.FindByID(p.matchID)
	if err != nil {
		return nil, fmt.Errorf("terminal flow: %w", err)
	}
	whiteSession, blackSession := m.WhiteSession, m.BlackSession

	if err := s.Matches.Deactivate(p.matchID); err != nil {
		return nil, fmt.Errorf("terminal flow: deactivate: %w", err)
	}

	s.Sessions.SetState(whiteSession, session.Online)
	s.Sessions.SetState(blackSession, session.Online)

	if _, err := s.Rec.Finalize(p.matchID, p.white, p.black, p.winner, p.reason, p.board); err != nil && s.Log != nil {
		s.Log.Error("finalize match recording failed", zap.Error(err))
	}

	if err := s.Users.ApplyResult(p.white, p.black, p.winner); err != nil && s.Log != nil {
		s.Log.Error("apply match result failed", zap.Error(err))
	}

	return []Event{
		{Action: wire.OutGameResult, Payload: gameResultPayload{Winner: p.winner, Reason: p.reason, MatchID: p.matchID}, Recipients: []int{whiteSession, blackSession}},
	}, nil
}
