package domain

import (
	"fmt"
)

// CoordsToNotation converts a (row, col) board coordinate into algebraic
// notation, e.g. row=6, col=4 -> "E2" (file E, rank 2).
func CoordsToNotation(row, col int) (string, error) {
	if !onBoard(row, col) {
		return "", fmt.Errorf("coordinate out of range: row=%d col=%d", row, col)
	}
	file := byte('A' + col)
	rank := byte('0' + (8 - row))
	return string([]byte{file, rank}), nil
}

// CoordsToLowerNotation converts a (row, col) board coordinate into
// lowercase algebraic notation, e.g. row=6, col=4 -> "e2" — the case spec
// §4.6's GET_VALID_MOVES reply uses for its position/moves fields, matching
// `original_source/TCP/game_manager_handlers.c`'s coord_to_notation
// ('a' + col).
func CoordsToLowerNotation(row, col int) (string, error) {
	notation, err := CoordsToNotation(row, col)
	if err != nil {
		return "", err
	}
	return string([]byte{notation[0] + ('a' - 'A'), notation[1]}), nil
}

// NotationToCoords parses a two-character algebraic square like "E2" into
// (row, col). It is the inverse of CoordsToNotation.
func NotationToCoords(square string) (row, col int, err error) {
	if len(square) != 2 {
		return 0, 0, fmt.Errorf("invalid square notation %q", square)
	}
	file := square[0]
	rank := square[1]
	if file >= 'a' && file <= 'h' {
		file = file - 'a' + 'A'
	}
	if file < 'A' || file > 'H' {
		return 0, 0, fmt.Errorf("invalid file in %q", square)
	}
	if rank < '1' || rank > '8' {
		return 0, 0, fmt.Errorf("invalid rank in %q", square)
	}
	col = int(file - 'A')
	row = 8 - int(rank-'0')
	return row, col, nil
}

// ParseMoveToken parses a 4-character move token like "E2E4" (spec §3's
// ActiveRecording format) into from/to coordinates.
func ParseMoveToken(token string) (fromR, fromC, toR, toC int, err error) {
	if len(token) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("invalid move token %q", token)
	}
	fromR, fromC, err = NotationToCoords(token[0:2])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	toR, toC, err = NotationToCoords(token[2:4])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return fromR, fromC, toR, toC, nil
}

// MoveToken renders a from/to coordinate pair as the uppercase 4-character
// token recorded by internal/recorder.
func MoveToken(fromR, fromC, toR, toC int) (string, error) {
	from, err := CoordsToNotation(fromR, fromC)
	if err != nil {
		return "", err
	}
	to, err := CoordsToNotation(toR, toC)
	if err != nil {
		return "", err
	}
	return from + to, nil
}
