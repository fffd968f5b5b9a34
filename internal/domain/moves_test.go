package domain

import "testing"

// playToken applies an algebraic move token (e.g. "F2F3") to m, asserting it
// is legal for side first, then flips SideToMove the way internal/app would.
func playToken(t *testing.T, m *Match, side Side, token string, promo byte) {
	t.Helper()
	fromR, fromC, toR, toC, err := ParseMoveToken(token)
	if err != nil {
		t.Fatalf("ParseMoveToken(%q): %v", token, err)
	}
	if !IsLegal(m, fromR, fromC, toR, toC, side) {
		t.Fatalf("move %q illegal for side %v in position %+v", token, side, m.Board)
	}
	Apply(m, fromR, fromC, toR, toC, promo)
	m.SideToMove = side.Opponent()
}

func TestFoolsMateCheckmate(t *testing.T) {
	m := NewMatch("M0000001", "alice", "bob", 1, 2)

	playToken(t, m, White, "F2F3", 0)
	playToken(t, m, Black, "E7E5", 0)
	playToken(t, m, White, "G2G4", 0)
	playToken(t, m, Black, "D8H4", 0)

	verdict := CheckGameEnd(m)
	if verdict.Kind != Checkmate {
		t.Fatalf("CheckGameEnd = %v, want Checkmate", verdict.Kind)
	}
	if verdict.Winner != Black {
		t.Errorf("Winner = %v, want Black", verdict.Winner)
	}
}

func TestEnPassantCapture(t *testing.T) {
	m := NewMatch("M0000002", "alice", "bob", 1, 2)
	// Advance white's e-pawn to e5, black plays d7-d5, white captures en
	// passant with exd6.
	playToken(t, m, White, "E2E4", 0)
	playToken(t, m, Black, "A7A6", 0)
	playToken(t, m, White, "E4E5", 0)
	playToken(t, m, Black, "D7D5", 0)

	if m.EnPassantFile != 3 {
		t.Fatalf("EnPassantFile = %d, want 3 (d-file)", m.EnPassantFile)
	}

	fromR, fromC, toR, toC, err := ParseMoveToken("E5D6")
	if err != nil {
		t.Fatalf("ParseMoveToken: %v", err)
	}
	if !IsLegal(m, fromR, fromC, toR, toC, White) {
		t.Fatalf("en passant capture E5D6 should be legal")
	}
	Apply(m, fromR, fromC, toR, toC, 0)

	// Captured black pawn's origin square (d5) must now be empty.
	if m.Board[3][3] != Empty {
		t.Errorf("captured pawn square d5 not cleared, got %q", m.Board[3][3])
	}
	if m.Board[2][3] != 'p' {
		t.Errorf("white pawn not on d6, got %q", m.Board[2][3])
	}
}

func TestKingsideCastlingLegal(t *testing.T) {
	m := NewMatch("M0000003", "alice", "bob", 1, 2)
	// Clear the squares between white king and h-rook, and put both kings
	// out of check, to isolate the castling rule itself.
	m.Board[7][5] = Empty // f1 bishop
	m.Board[7][6] = Empty // g1 knight

	fromR, fromC, toR, toC, err := ParseMoveToken("E1G1")
	if err != nil {
		t.Fatalf("ParseMoveToken: %v", err)
	}
	if !IsLegal(m, fromR, fromC, toR, toC, White) {
		t.Fatalf("kingside castling should be legal")
	}
	Apply(m, fromR, fromC, toR, toC, 0)

	if m.Board[7][6] != 'k' {
		t.Errorf("king did not land on g1, got %q", m.Board[7][6])
	}
	if m.Board[7][5] != 'r' {
		t.Errorf("rook did not land on f1, got %q", m.Board[7][5])
	}
	if m.Board[7][7] != Empty {
		t.Errorf("h1 should be vacated, got %q", m.Board[7][7])
	}
	if !m.WhiteCastling.KingMoved {
		t.Error("WhiteCastling.KingMoved should be set after castling")
	}
}

func TestCastlingThroughCheckIllegal(t *testing.T) {
	m := NewMatch("M0000004", "alice", "bob", 1, 2)
	m.Board[7][5] = Empty // f1 bishop
	m.Board[7][6] = Empty // g1 knight
	// Put a black rook on the f-file, attacking f1 — the square the white
	// king must cross to castle kingside.
	m.Board[6][5] = Empty // remove white's f2 pawn so the rook has a clear file
	m.Board[4][5] = 'R'   // black rook on f4

	fromR, fromC, toR, toC, err := ParseMoveToken("E1G1")
	if err != nil {
		t.Fatalf("ParseMoveToken: %v", err)
	}
	if IsLegal(m, fromR, fromC, toR, toC, White) {
		t.Fatalf("castling through an attacked square should be illegal")
	}
}

func TestPawnCannotMoveThroughBlocker(t *testing.T) {
	m := NewMatch("M0000005", "alice", "bob", 1, 2)
	m.Board[5][4] = 'P' // black pawn blocking e3
	if IsLegal(m, 6, 4, 4, 4, White) {
		t.Error("double push through a blocker should be illegal")
	}
}

func TestCannotMoveIntoOwnCheck(t *testing.T) {
	m := NewMatch("M0000006", "alice", "bob", 1, 2)
	// Strip the board to king-and-rook-only endgame so a pin is easy to set up.
	m.Board = [8][8]byte{
		{'.', '.', '.', '.', 'K', '.', '.', '.'},
		{'.', '.', '.', '.', 'R', '.', '.', '.'},
		{'.', '.', '.', '.', '.', '.', '.', '.'},
		{'.', '.', '.', '.', '.', '.', '.', '.'},
		{'.', '.', '.', '.', '.', '.', '.', '.'},
		{'.', '.', '.', '.', '.', '.', '.', '.'},
		{'.', '.', '.', '.', '.', '.', '.', '.'},
		{'.', '.', '.', '.', 'k', '.', '.', '.'},
	}
	if !IsLegal(m, 7, 4, 7, 5, White) {
		t.Error("stepping off the e-file should be legal")
	}
	if IsLegal(m, 7, 4, 6, 4, White) {
		t.Error("king moving onto a file attacked by the rook should be illegal")
	}
}
