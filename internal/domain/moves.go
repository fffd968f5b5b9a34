package domain

// IsLegal reports whether moving the piece at (fromR, fromC) to
// (toR, toC) is legal for sideToMove, per spec §4.1. It does not mutate
// match; any tentative execution used to test for a resulting check is
// fully undone before returning.
func IsLegal(match *Match, fromR, fromC, toR, toC int, sideToMove Side) bool {
	if !onBoard(fromR, fromC) || !onBoard(toR, toC) {
		return false
	}
	if fromR == toR && fromC == toC {
		return false
	}

	board := &match.Board
	moving := board[fromR][fromC]
	if !sameSide(moving, sideToMove) {
		return false
	}

	dest := board[toR][toC]
	if sameSide(dest, sideToMove) {
		return false
	}

	kind := pieceKind(moving)

	var motionOK bool
	isEnPassant := false
	switch kind {
	case 'P':
		motionOK, isEnPassant = pawnMotionLegal(match, fromR, fromC, toR, toC, sideToMove)
	case 'N':
		motionOK = knightMotionLegal(fromR, fromC, toR, toC)
	case 'B':
		motionOK = slidingMotionLegal(board, fromR, fromC, toR, toC, bishopDirs[:])
	case 'R':
		motionOK = slidingMotionLegal(board, fromR, fromC, toR, toC, rookDirs[:])
	case 'Q':
		motionOK = slidingMotionLegal(board, fromR, fromC, toR, toC, append(append([][2]int{}, bishopDirs[:]...), rookDirs[:]...))
	case 'K':
		if isCastlingAttempt(fromR, fromC, toR, toC) {
			return castlingLegal(match, sideToMove, fromC, toC)
		}
		motionOK = kingMotionLegal(fromR, fromC, toR, toC)
	default:
		return false
	}

	if !motionOK {
		return false
	}

	return !leavesKingInCheck(match, fromR, fromC, toR, toC, sideToMove, isEnPassant)
}

func isCastlingAttempt(fromR, fromC, toR, toC int) bool {
	return fromR == toR && (toC-fromC == 2 || toC-fromC == -2)
}

func knightMotionLegal(fromR, fromC, toR, toC int) bool {
	dr, dc := abs(toR-fromR), abs(toC-fromC)
	return (dr == 1 && dc == 2) || (dr == 2 && dc == 1)
}

func kingMotionLegal(fromR, fromC, toR, toC int) bool {
	dr, dc := abs(toR-fromR), abs(toC-fromC)
	return dr <= 1 && dc <= 1
}

func slidingMotionLegal(board *[8][8]byte, fromR, fromC, toR, toC int, dirs [][2]int) bool {
	dr, dc := toR-fromR, toC-fromC
	dir, ok := normalizedDirection(dr, dc, dirs)
	if !ok {
		return false
	}
	r, c := fromR+dir[0], fromC+dir[1]
	for r != toR || c != toC {
		if board[r][c] != Empty {
			return false
		}
		r += dir[0]
		c += dir[1]
	}
	return true
}

// normalizedDirection reports whether (dr, dc) is a straight line along one
// of dirs, and returns that unit direction.
func normalizedDirection(dr, dc int, dirs [][2]int) ([2]int, bool) {
	if dr == 0 && dc == 0 {
		return [2]int{}, false
	}
	for _, d := range dirs {
		if d[0] == 0 {
			if dr != 0 {
				continue
			}
			if (dc > 0) == (d[1] > 0) {
				return d, true
			}
			continue
		}
		if d[1] == 0 {
			if dc != 0 {
				continue
			}
			if (dr > 0) == (d[0] > 0) {
				return d, true
			}
			continue
		}
		// diagonal direction: dr and dc must be equal in magnitude and
		// match the sign of d.
		if abs(dr) != abs(dc) {
			continue
		}
		if (dr > 0) == (d[0] > 0) && (dc > 0) == (d[1] > 0) {
			return d, true
		}
	}
	return [2]int{}, false
}

// pawnMotionLegal checks pawn-specific movement (push, double push,
// diagonal capture, en passant). Returns isEnPassant so the caller can
// simulate victim removal when testing for self-check.
func pawnMotionLegal(match *Match, fromR, fromC, toR, toC int, side Side) (ok bool, isEnPassant bool) {
	board := &match.Board
	dir := pawnDirection(side)
	dr := toR - fromR
	dc := toC - fromC

	if dc == 0 {
		if dr == dir && board[toR][toC] == Empty {
			return true, false
		}
		startRow := 1
		if side == White {
			startRow = 6
		}
		if fromR == startRow && dr == 2*dir {
			midRow := fromR + dir
			if board[midRow][fromC] == Empty && board[toR][toC] == Empty {
				return true, false
			}
		}
		return false, false
	}

	if (dc == 1 || dc == -1) && dr == dir {
		dest := board[toR][toC]
		if dest != Empty && !sameSide(dest, side) {
			return true, false
		}
		// En passant: destination empty, capturing pawn on its fifth
		// rank, target file matches en_passant_file, adjacent pawn is
		// the opponent's.
		// Rank 5 is row 3 for white, row 4 for black, in this
		// row-0-is-rank-8 layout.
		fifthRank := 3
		if side == Black {
			fifthRank = 4
		}
		if dest == Empty && fromR == fifthRank && toC == match.EnPassantFile {
			victim := board[fromR][toC]
			if sameSide(victim, side.Opponent()) && pieceKind(victim) == 'P' {
				return true, true
			}
		}
		return false, false
	}

	return false, false
}

// castlingLegal checks every condition of spec §4.1 rule 3.
func castlingLegal(match *Match, side Side, fromC, toC int) bool {
	rank := homeRank(side)
	rights := castlingFor(match, side)
	if rights.KingMoved {
		return false
	}
	if inCheck(match.Board, side) {
		return false
	}

	kingside := toC > fromC
	var rookCol int
	if kingside {
		rookCol = 7
		if rights.HRookMoved {
			return false
		}
	} else {
		rookCol = 0
		if rights.ARookMoved {
			return false
		}
	}

	expectedRook := byte('r')
	if side == Black {
		expectedRook = 'R'
	}
	if match.Board[rank][rookCol] != expectedRook {
		return false
	}

	// Squares the king crosses and lands on must be empty and unattacked;
	// for queenside the b-file square must also be empty (but need not be
	// unattacked, since the king never crosses it).
	step := 1
	if !kingside {
		step = -1
	}
	crossCols := []int{fromC + step, fromC + 2*step}
	for _, c := range crossCols {
		if match.Board[rank][c] != Empty {
			return false
		}
	}
	if !kingside {
		bFileCol := fromC - 3
		if match.Board[rank][bFileCol] != Empty {
			return false
		}
	}

	opponentIsWhite := side.Opponent() == White
	for _, c := range crossCols {
		if isSquareAttacked(match.Board, rank, c, opponentIsWhite) {
			return false
		}
	}

	return true
}

// leavesKingInCheck tentatively executes the move (handling en-passant
// victim removal) and reports whether the mover's own king would then be
// attacked. Board state is restored exactly before returning, per spec
// §4.1 rule 4.
func leavesKingInCheck(match *Match, fromR, fromC, toR, toC int, side Side, isEnPassant bool) bool {
	board := &match.Board
	moving := board[fromR][fromC]
	captured := board[toR][toC]

	var victimR, victimC int
	var victim byte
	if isEnPassant {
		victimR, victimC = fromR, toC
		victim = board[victimR][victimC]
		board[victimR][victimC] = Empty
	}

	board[toR][toC] = moving
	board[fromR][fromC] = Empty

	result := inCheck(*board, side)

	board[fromR][fromC] = moving
	board[toR][toC] = captured
	if isEnPassant {
		board[victimR][victimC] = victim
	}

	return result
}

// ValidMovesFrom enumerates every destination square satisfying IsLegal for
// the piece at (fromR, fromC), treated as belonging to asSide regardless of
// whose turn it actually is (spec §4.1: clients may preview out of turn).
func ValidMovesFrom(match *Match, fromR, fromC int, asSide Side) [][2]int {
	var dests [][2]int
	if !onBoard(fromR, fromC) {
		return dests
	}
	if !sameSide(match.Board[fromR][fromC], asSide) {
		return dests
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if IsLegal(match, fromR, fromC, r, c, asSide) {
				dests = append(dests, [2]int{r, c})
			}
		}
	}
	return dests
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
