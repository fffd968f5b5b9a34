package app

import (
	"fmt"

	"chessserver/internal/domain"
	"chessserver/internal/wire"
)

type validMovesPayload struct {
	Position string   `json:"position"`
	Moves    []string `json:"moves"`
}

// GetValidMoves implements spec §4.6 GET_VALID_MOVES: validates the caller
// is a participant and the square holds one of their own pieces, then
// enumerates legal destinations regardless of whose turn it is.
func (s *Service) GetValidMoves(callerSlot int, matchID, position string) ([]Event, error) {
	caller, err := s.Sessions.Get(callerSlot)
	if err != nil {
		return nil, fmt.Errorf("get valid moves: %w", err)
	}

	var payload validMovesPayload
	err = s.Matches.WithMatch(matchID, func(m *domain.Match) error {
		mySide, ok := sideOf(m, caller.Username)
		if !ok {
			return ErrNotInMatch
		}

		row, col, perr := domain.NotationToCoords(position)
		if perr != nil {
			return ErrInvalidNotation
		}

		lowerPosition, perr := domain.CoordsToLowerNotation(row, col)
		if perr != nil {
			return ErrInvalidNotation
		}

		if m.Board[row][col] == domain.Empty {
			payload = validMovesPayload{Position: lowerPosition}
			return nil
		}
		side, ok := domain.PieceSide(m.Board[row][col])
		if !ok || side != mySide {
			return ErrNotYourPiece
		}

		dests := domain.ValidMovesFrom(m, row, col, mySide)
		moves := make([]string, 0, len(dests))
		for _, d := range dests {
			notation, nerr := domain.CoordsToLowerNotation(d[0], d[1])
			if nerr != nil {
				continue
			}
			moves = append(moves, notation)
		}
		payload = validMovesPayload{Position: lowerPosition, Moves: moves}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return []Event{{Action: wire.OutValidMoves, Payload: payload, Recipients: []int{callerSlot}}}, nil
}
