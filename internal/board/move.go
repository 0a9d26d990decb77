package board

import "fmt"

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-15: flag nibble
//
// Flag nibble values:
//
//	 0  quiet
//	 1  double pawn push
//	 2  short castle
//	 3  long castle
//	 4  capture
//	 5  en passant
//	 8  promote knight (quiet)
//	 9  promote bishop (quiet)
//	10  promote rook   (quiet)
//	11  promote queen  (quiet)
//	12  promote knight (capture)
//	13  promote bishop (capture)
//	14  promote rook   (capture)
//	15  promote queen  (capture)
//
// Bit 14 of the move data (bit 2 of the flag nibble) marks a capture;
// bit 15 (bit 3 of the flag nibble) marks a promotion.
type Move uint16

// Move flag nibble values (shifted into bits 12-15 by NewMoveFlag).
const (
	FlagQuiet          uint16 = 0
	FlagDoublePawnPush uint16 = 1
	FlagShortCastle    uint16 = 2
	FlagLongCastle     uint16 = 3
	FlagCapture        uint16 = 4
	FlagEnPassant      uint16 = 5
	FlagPromoKnight    uint16 = 8
	FlagPromoBishop    uint16 = 9
	FlagPromoRook      uint16 = 10
	FlagPromoQueen     uint16 = 11
	FlagPromoKnightCap uint16 = 12
	FlagPromoBishopCap uint16 = 13
	FlagPromoRookCap   uint16 = 14
	FlagPromoQueenCap  uint16 = 15
)

const (
	moveMaskFrom Move = 0x003F
	moveMaskTo   Move = 0x0FC0
	moveMaskFlag Move = 0xF000

	moveBitCapture   Move = 1 << 14
	moveBitPromotion Move = 1 << 15
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

func newMoveRaw(from, to Square, flag uint16) Move {
	return Move(from) | Move(to)<<6 | Move(flag)<<12
}

// NewMove creates a quiet (non-capture, non-special) move.
func NewMove(from, to Square) Move {
	return newMoveRaw(from, to, FlagQuiet)
}

// NewCapture creates a plain capture move.
func NewCapture(from, to Square) Move {
	return newMoveRaw(from, to, FlagCapture)
}

// NewDoublePawnPush creates a two-square pawn push move.
func NewDoublePawnPush(from, to Square) Move {
	return newMoveRaw(from, to, FlagDoublePawnPush)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return newMoveRaw(from, to, FlagEnPassant)
}

// NewCastling creates a castling move (king's movement only).
// kingSide distinguishes short (O-O) from long (O-O-O) castling.
func NewCastling(from, to Square, kingSide bool) Move {
	if kingSide {
		return newMoveRaw(from, to, FlagShortCastle)
	}
	return newMoveRaw(from, to, FlagLongCastle)
}

// promoFlagFor returns the promotion flag nibble for a piece type and
// capture status. promo must be Knight, Bishop, Rook, or Queen.
func promoFlagFor(promo PieceType, capture bool) uint16 {
	base := uint16(promo) - uint16(Knight) // 0..3
	if capture {
		return 12 + base
	}
	return 8 + base
}

// NewPromotion creates a non-capturing promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return newMoveRaw(from, to, promoFlagFor(promo, false))
}

// NewPromotionCapture creates a capturing promotion move.
func NewPromotionCapture(from, to Square, promo PieceType) Move {
	return newMoveRaw(from, to, promoFlagFor(promo, true))
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & moveMaskFrom)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m & moveMaskTo) >> 6)
}

// Flag returns the raw flag nibble (0-15).
func (m Move) Flag() uint16 {
	return uint16((m & moveMaskFlag) >> 12)
}

// IsCapture returns true if the move's flag marks it a capture,
// including en passant and capturing promotions.
func (m Move) IsCapture() bool {
	return m&moveBitCapture != 0
}

// IsPromotion returns true if the move's flag marks it a promotion.
func (m Move) IsPromotion() bool {
	return m&moveBitPromotion != 0
}

// IsCastle returns true if this move is a short or long castle.
func (m Move) IsCastle() bool {
	flag := m.Flag()
	return flag == FlagShortCastle || flag == FlagLongCastle
}

// IsShortCastle returns true if this move is kingside castling.
func (m Move) IsShortCastle() bool {
	return m.Flag() == FlagShortCastle
}

// IsLongCastle returns true if this move is queenside castling.
func (m Move) IsLongCastle() bool {
	return m.Flag() == FlagLongCastle
}

// IsDoublePawnPush returns true if this move is a two-square pawn push.
func (m Move) IsDoublePawnPush() bool {
	return m.Flag() == FlagDoublePawnPush
}

// IsEnPassant returns true if this move is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsNull returns true if the move carries no data.
func (m Move) IsNull() bool {
	return m == NoMove
}

// IsQuiet returns true if the move is neither a capture nor a promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// PromotionPieceType returns the promoted-to piece type. Only valid
// when IsPromotion() is true.
func (m Move) PromotionPieceType() PieceType {
	if !m.IsPromotion() {
		return NoPieceType
	}
	return PieceType(m.Flag()&0b011) + Knight
}

// String returns the UCI format of the move (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}

	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		promoChars := " nbrq"
		s += string(promoChars[m.PromotionPieceType()])
	}
	return s
}

// ParseMove parses a UCI format move string against a board, inferring
// the correct flag (capture/en-passant/castle/promotion) from context.
func ParseMove(s string, b *Board) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := b.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()
	capture := !b.IsEmpty(to)

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		if capture {
			return NewPromotionCapture(from, to, promo), nil
		}
		return NewPromotion(from, to, promo), nil
	}

	if pt == King && abs(int(to)-int(from)) == 2 {
		return NewCastling(from, to, to > from), nil
	}

	if pt == Pawn && to == b.EnPassant {
		return NewEnPassant(from, to), nil
	}

	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		return NewDoublePawnPush(from, to), nil
	}

	if capture {
		return NewCapture(from, to), nil
	}
	return NewMove(from, to), nil
}

// ScoredMove pairs a move with an ordering score. The engine's move
// picker does not use it; it keeps its scores in a parallel slice.
type ScoredMove struct {
	Move  Move
	Score int32
}

// Less reports whether m has a lower ordering score than other.
func (m ScoredMove) Less(other ScoredMove) bool {
	return m.Score < other.Score
}

// Greater reports whether m has a higher ordering score than other.
func (m ScoredMove) Greater(other ScoredMove) bool {
	return m.Score > other.Score
}

// MoveList is a fixed-size list of moves to avoid heap allocations
// during move generation.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear empties the list without reallocating.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Remove removes the first occurrence of m, shifting later moves down.
func (ml *MoveList) Remove(m Move) {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			copy(ml.moves[i:ml.count-1], ml.moves[i+1:ml.count])
			ml.count--
			return
		}
	}
}

// Slice returns the moves as a slice sharing the list's backing array.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// PVLine is a principal variation: an ordered sequence of moves from
// the root, together with the search score that produced it.
type PVLine struct {
	Moves [MaxPly]Move
	Count int
	Score int32
}

// SetMoves replaces the PV with the given sequence.
func (pv *PVLine) SetMoves(moves []Move) {
	pv.Count = copy(pv.Moves[:], moves)
}

// Shrink truncates the PV to n moves.
func (pv *PVLine) Shrink(n int) {
	pv.Count = n
}

// Prepend puts move at the front, followed by the moves of child.
// Used when a new best move is found at a node: the parent PV becomes
// [move, child.Moves...].
func (pv *PVLine) Prepend(move Move, child *PVLine) {
	pv.Moves[0] = move
	n := copy(pv.Moves[1:], child.Moves[:child.Count])
	pv.Count = n + 1
}

// Slice returns the PV's moves as a slice sharing the backing array.
func (pv *PVLine) Slice() []Move {
	return pv.Moves[:pv.Count]
}

// String renders the PV in UCI move-list format.
func (pv *PVLine) String() string {
	s := ""
	for i := 0; i < pv.Count; i++ {
		if i > 0 {
			s += " "
		}
		s += pv.Moves[i].String()
	}
	return s
}

// StateInfo is the lightweight per-ply undo record pushed by MakeMove
// and popped by UnmakeMove. It intentionally does not snapshot the
// full board: every field it carries is exactly what MakeMove cannot
// recompute by reversing its own bit toggles.
type StateInfo struct {
	Hash           uint64
	PawnKey        uint64
	HalfMoveClock  int
	EnPassant      Square
	CastlingRights CastlingRights
	Captured       Piece
	Checkers       Bitboard
}
