package domain

// Apply executes a move already confirmed legal by IsLegal. It handles
// en-passant capture, castling rook relocation, promotion, and castling-
// rights bookkeeping, per spec §4.1. It does not flip SideToMove or touch
// the move counters — the caller (internal/app) does that explicitly so
// that move recording and turn advancement stay visible at the call site.
func Apply(match *Match, fromR, fromC, toR, toC int, promotionLetter byte) {
	board := &match.Board
	moving := board[fromR][fromC]
	side, _ := pieceSide(moving)
	kind := pieceKind(moving)

	isEnPassantCapture := kind == 'P' && fromC != toC && board[toR][toC] == Empty
	if isEnPassantCapture {
		board[fromR][toC] = Empty
	}

	isDoublePush := kind == 'P' && abs(toR-fromR) == 2
	if isDoublePush {
		match.EnPassantFile = fromC
	} else {
		match.EnPassantFile = -1
	}

	isCastle := kind == 'K' && abs(toC-fromC) == 2
	if isCastle {
		rank := homeRank(side)
		if toC > fromC {
			rook := board[rank][7]
			board[rank][7] = Empty
			board[rank][5] = rook
		} else {
			rook := board[rank][0]
			board[rank][0] = Empty
			board[rank][3] = rook
		}
	}

	board[toR][toC] = moving
	board[fromR][fromC] = Empty

	if kind == 'P' && (toR == 0 || toR == 7) {
		promo := promotionLetter
		if promo == 0 {
			promo = 'q'
		}
		promoKind := pieceKind(promo)
		if side == White {
			board[toR][toC] = toLowerPiece(promoKind)
		} else {
			board[toR][toC] = promoKind
		}
	}

	updateCastlingRights(match, side, fromR, fromC)
	// A rook captured on its home corner also forfeits that side's
	// castling rights, even though the rook that moved belongs to the
	// other color.
	updateCastlingRightsOnCapture(match, toR, toC)

	match.LastMoveFromRow, match.LastMoveFromCol = fromR, fromC
	match.LastMoveToRow, match.LastMoveToCol = toR, toC
}

func toLowerPiece(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

func updateCastlingRights(match *Match, side Side, fromR, fromC int) {
	rights := castlingFor(match, side)
	rank := homeRank(side)
	if fromR != rank {
		return
	}
	switch fromC {
	case 4:
		rights.KingMoved = true
	case 0:
		rights.ARookMoved = true
	case 7:
		rights.HRookMoved = true
	}
}

func updateCastlingRightsOnCapture(match *Match, row, col int) {
	if row == 7 && col == 0 {
		match.WhiteCastling.ARookMoved = true
	}
	if row == 7 && col == 7 {
		match.WhiteCastling.HRookMoved = true
	}
	if row == 0 && col == 0 {
		match.BlackCastling.ARookMoved = true
	}
	if row == 0 && col == 7 {
		match.BlackCastling.HRookMoved = true
	}
}
