package domain

// VerdictKind is a tagged terminal-state variant, per spec §9
// ("Checkmate(winner) | Stalemate | Insufficient | NotTerminal").
type VerdictKind int

const (
	NotTerminal VerdictKind = iota
	Checkmate
	Stalemate
	Insufficient
)

// Verdict is the result of CheckGameEnd. Winner is meaningful only for
// Checkmate (the side that delivered it) — Stalemate and Insufficient are
// always draws, and NotTerminal carries no winner.
type Verdict struct {
	Kind   VerdictKind
	Winner Side
}

// CheckGameEnd evaluates whether the side to move has no legal reply, or
// the material on board cannot force checkmate, per spec §4.1.
func CheckGameEnd(match *Match) Verdict {
	side := match.SideToMove
	if !hasAnyLegalMove(match, side) {
		if inCheck(match.Board, side) {
			return Verdict{Kind: Checkmate, Winner: side.Opponent()}
		}
		return Verdict{Kind: Stalemate}
	}

	if isInsufficientMaterial(match.Board) {
		return Verdict{Kind: Insufficient}
	}

	return Verdict{Kind: NotTerminal}
}

func hasAnyLegalMove(match *Match, side Side) bool {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if !sameSide(match.Board[r][c], side) {
				continue
			}
			if len(ValidMovesFrom(match, r, c, side)) > 0 {
				return true
			}
		}
	}
	return false
}

// isInsufficientMaterial reports K vs K, K vs K+B, K vs K+N, or K+B vs K+B
// (any bishop present), per spec §4.1. Any pawn, rook, or queen on the
// board rules this out; two knights on the same side does not qualify
// either (spec lists only the named combinations).
func isInsufficientMaterial(board [8][8]byte) bool {
	var whiteMinor, blackMinor []byte
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			b := board[r][c]
			if b == Empty {
				continue
			}
			k := pieceKind(b)
			switch k {
			case 'K':
				continue
			case 'B', 'N':
				if isWhitePiece(b) {
					whiteMinor = append(whiteMinor, k)
				} else {
					blackMinor = append(blackMinor, k)
				}
			default:
				return false // pawn, rook, or queen present
			}
		}
	}

	if len(whiteMinor) == 0 && len(blackMinor) == 0 {
		return true // K vs K
	}
	if len(whiteMinor) == 1 && len(blackMinor) == 0 {
		return true // K+minor vs K
	}
	if len(blackMinor) == 1 && len(whiteMinor) == 0 {
		return true // K vs K+minor
	}
	if len(whiteMinor) == 1 && len(blackMinor) == 1 &&
		whiteMinor[0] == 'B' && blackMinor[0] == 'B' {
		return true // K+B vs K+B
	}
	return false
}
