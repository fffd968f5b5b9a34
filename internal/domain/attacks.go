package domain

var knightOffsets = [8][2]int{
	{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2},
	{1, -2}, {1, 2}, {2, -1}, {2, 1},
}

var kingOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

var bishopDirs = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
var rookDirs = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// isSquareAttacked reports whether the square at (row, col) is attacked by
// any piece of the given color, per spec §4.1: sliding pieces stop at the
// first occupant, knights/kings use fixed offsets, pawns attack diagonally
// forward.
func isSquareAttacked(board [8][8]byte, row, col int, byWhite bool) bool {
	attacker := Black
	if byWhite {
		attacker = White
	}

	// Pawns: a pawn of `attacker` color attacks diagonally toward the
	// target square, i.e. the pawn sits one step behind (from the
	// attacker's forward direction) along both diagonals.
	pawnRow := row - pawnDirection(attacker)
	for _, dc := range [2]int{-1, 1} {
		pc := col + dc
		if onBoard(pawnRow, pc) {
			b := board[pawnRow][pc]
			if sameSide(b, attacker) && pieceKind(b) == 'P' {
				return true
			}
		}
	}

	for _, off := range knightOffsets {
		r, c := row+off[0], col+off[1]
		if onBoard(r, c) {
			b := board[r][c]
			if sameSide(b, attacker) && pieceKind(b) == 'N' {
				return true
			}
		}
	}

	for _, off := range kingOffsets {
		r, c := row+off[0], col+off[1]
		if onBoard(r, c) {
			b := board[r][c]
			if sameSide(b, attacker) && pieceKind(b) == 'K' {
				return true
			}
		}
	}

	for _, dir := range bishopDirs {
		if slidingAttacks(board, row, col, dir, attacker, 'B', 'Q') {
			return true
		}
	}
	for _, dir := range rookDirs {
		if slidingAttacks(board, row, col, dir, attacker, 'R', 'Q') {
			return true
		}
	}

	return false
}

// slidingAttacks walks from (row, col) along dir until it hits the board
// edge or an occupied square, reporting whether that first occupant is an
// `attacker`-colored piece of kind1 or kind2.
func slidingAttacks(board [8][8]byte, row, col int, dir [2]int, attacker Side, kind1, kind2 byte) bool {
	r, c := row+dir[0], col+dir[1]
	for onBoard(r, c) {
		b := board[r][c]
		if b != Empty {
			if sameSide(b, attacker) {
				k := pieceKind(b)
				return k == kind1 || k == kind2
			}
			return false
		}
		r += dir[0]
		c += dir[1]
	}
	return false
}

// findKing locates the king of the given side. Returns ok=false if absent
// (should not happen in a reachable state per spec's board invariant).
func findKing(board [8][8]byte, side Side) (row, col int, ok bool) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			b := board[r][c]
			if sameSide(b, side) && pieceKind(b) == 'K' {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// inCheck reports whether side's king is currently attacked.
func inCheck(board [8][8]byte, side Side) bool {
	r, c, ok := findKing(board, side)
	if !ok {
		return false
	}
	return isSquareAttacked(board, r, c, side.Opponent() == White)
}
