// Package domain implements the chess rules engine: pure functions over a
// Match snapshot. Nothing here performs I/O or takes a lock — callers own
// concurrency control (see internal/match for the registry that does).
package domain

// Side identifies which color is to move. 0 is white, 1 is black, matching
// spec's side_to_move encoding.
type Side int

const (
	White Side = 0
	Black Side = 1
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// CastlingRights tracks whether the pieces needed for castling have moved,
// per side. A corner rook that has moved (or been captured and replaced)
// never regains castling rights even if another rook reaches the corner.
type CastlingRights struct {
	KingMoved  bool
	ARookMoved bool // a-file (queenside) rook
	HRookMoved bool // h-file (kingside) rook
}

// Match is the authoritative state of one game in progress. Board rows run
// 0..7 top-to-bottom where row 0 is rank 8 and row 7 is rank 1; columns run
// 0..7 left-to-right where column 0 is file A.
type Match struct {
	MatchID string

	White string
	Black string

	WhiteSession int
	BlackSession int

	Board [8][8]byte

	SideToMove Side

	WhiteCastling CastlingRights
	BlackCastling CastlingRights

	// EnPassantFile is the file (0-7) a pawn just double-advanced through,
	// or -1 if the last move was not a double pawn push.
	EnPassantFile int

	LastMoveFromRow, LastMoveFromCol int
	LastMoveToRow, LastMoveToCol     int

	HalfmoveClock   int
	FullmoveNumber  int

	Active bool
}

// Empty is the board square byte for no piece.
const Empty = '.'

// NewStartingBoard returns the standard initial chess position. Lowercase
// letters are white, uppercase are black, matching spec §4.1.
func NewStartingBoard() [8][8]byte {
	return [8][8]byte{
		{'R', 'N', 'B', 'Q', 'K', 'B', 'N', 'R'},
		{'P', 'P', 'P', 'P', 'P', 'P', 'P', 'P'},
		{'.', '.', '.', '.', '.', '.', '.', '.'},
		{'.', '.', '.', '.', '.', '.', '.', '.'},
		{'.', '.', '.', '.', '.', '.', '.', '.'},
		{'.', '.', '.', '.', '.', '.', '.', '.'},
		{'p', 'p', 'p', 'p', 'p', 'p', 'p', 'p'},
		{'r', 'n', 'b', 'q', 'k', 'b', 'n', 'r'},
	}
}

// NewMatch builds a Match in the starting position for the given players
// and sessions. matchID is assigned by the caller (internal/match owns id
// generation so it can guarantee registry-wide uniqueness).
func NewMatch(matchID, white, black string, whiteSession, blackSession int) *Match {
	return &Match{
		MatchID:        matchID,
		White:          white,
		Black:          black,
		WhiteSession:   whiteSession,
		BlackSession:   blackSession,
		Board:          NewStartingBoard(),
		SideToMove:     White,
		EnPassantFile:  -1,
		HalfmoveClock:  0,
		FullmoveNumber: 1,
		Active:         true,
	}
}

// onBoard reports whether (row, col) is a valid board coordinate.
func onBoard(row, col int) bool {
	return row >= 0 && row < 8 && col >= 0 && col < 8
}

// isWhitePiece reports whether b is a white piece byte (lowercase letter).
func isWhitePiece(b byte) bool {
	return b >= 'a' && b <= 'z'
}

// isBlackPiece reports whether b is a black piece byte (uppercase letter).
func isBlackPiece(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// pieceSide returns the side owning b and true, or false if b is Empty.
func pieceSide(b byte) (Side, bool) {
	switch {
	case isWhitePiece(b):
		return White, true
	case isBlackPiece(b):
		return Black, true
	default:
		return 0, false
	}
}

// sameSide reports whether piece b belongs to side.
func sameSide(b byte, side Side) bool {
	s, ok := pieceSide(b)
	return ok && s == side
}

// PieceSide returns the side owning the piece byte at a board square, or
// false if the square is empty. Exported for callers outside the package
// that need to check square ownership, e.g. GET_VALID_MOVES.
func PieceSide(b byte) (Side, bool) {
	return pieceSide(b)
}

// pieceKind returns the uppercase letter identifying the piece type
// (K Q R B N P), regardless of color.
func pieceKind(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func castlingFor(m *Match, side Side) *CastlingRights {
	if side == White {
		return &m.WhiteCastling
	}
	return &m.BlackCastling
}

// homeRank returns the back-rank row for side (row 7 for white, row 0 for
// black, matching NewStartingBoard's layout).
func homeRank(side Side) int {
	if side == White {
		return 7
	}
	return 0
}

// pawnDirection returns the row delta a pawn of side advances by (white
// moves toward row 0, per spec's "white forward = -1 row").
func pawnDirection(side Side) int {
	if side == White {
		return -1
	}
	return 1
}
