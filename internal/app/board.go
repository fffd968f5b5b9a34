package app

import "chessserver/internal/domain"

// boardString renders m's board as the 64-character row-major string used
// in wire payloads and match history files.
func boardString(m *domain.Match) string {
	return domain.BoardString(m.Board)
}
