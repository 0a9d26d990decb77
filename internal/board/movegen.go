package board

// GenerateLegalMoves generates all legal moves for the side to move.
func (b *Board) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	b.generateAllMoves(ml)
	return b.filterLegalMoves(ml)
}

// GeneratePseudoLegalMoves generates all pseudo-legal moves (may leave
// the mover's king in check).
func (b *Board) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	b.generateAllMoves(ml)
	return ml
}

// GenerateCaptures generates all legal capture moves (including
// capturing promotions and en passant) plus all legal non-capturing
// promotions, for use in quiescence search.
func (b *Board) GenerateCaptures() *MoveList {
	ml := NewMoveList()
	b.generateCaptures(ml)
	return b.filterLegalMoves(ml)
}

// GenerateQuiets generates all legal non-capturing moves: pawn pushes
// (promotions excepted, since those are captures-or-not alike and are
// generated by GenerateCaptures), piece moves to empty squares, and
// castling. Disjoint from GenerateCaptures; the two together reproduce
// GenerateLegalMoves.
func (b *Board) GenerateQuiets() *MoveList {
	ml := NewMoveList()
	b.generateQuiets(ml)
	return b.filterLegalMoves(ml)
}

func (b *Board) generateQuiets(ml *MoveList) {
	us := b.SideToMove
	occupied := b.AllOccupied
	empty := ^occupied

	pawns := b.Pieces[us][Pawn]
	var push1, push2 Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		promotionRank = Rank1
		pushDir = -8
	}

	nonPromo := push1 & ^promotionRank
	for nonPromo != 0 {
		to := nonPromo.PopLSB()
		ml.Add(NewMove(Square(int(to)-pushDir), to))
	}

	for push2 != 0 {
		to := push2.PopLSB()
		ml.Add(NewDoublePawnPush(Square(int(to)-2*pushDir), to))
	}

	// Quiet promotion pushes are generated by generateCaptures (its own
	// push1&promotionRank branch), so GenerateQuiets stops at non-promoting
	// pushes to keep GenerateQuiets and GenerateCaptures disjoint.

	knights := b.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & empty
		for attacks != 0 {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}

	for pt := Bishop; pt <= Queen; pt++ {
		if !pt.IsSlider() {
			continue
		}
		pieces := b.Pieces[us][pt]
		for pieces != 0 {
			from := pieces.PopLSB()
			attacks := sliderAttacks(pt, from, occupied) & empty
			for attacks != 0 {
				ml.Add(NewMove(from, attacks.PopLSB()))
			}
		}
	}

	from := b.KingSquare[us]
	attacks := KingAttacks(from) & empty
	for attacks != 0 {
		ml.Add(NewMove(from, attacks.PopLSB()))
	}

	b.generateCastlingMoves(ml, us)
}

// sliderAttacks dispatches to the right magic-bitboard lookup for a
// slider piece type, letting generateQuiets drive bishop/rook/queen
// generation from one IsSlider-filtered loop instead of three
// near-identical blocks.
func sliderAttacks(pt PieceType, sq Square, occupied Bitboard) Bitboard {
	switch pt {
	case Bishop:
		return BishopAttacks(sq, occupied)
	case Rook:
		return RookAttacks(sq, occupied)
	default:
		return QueenAttacks(sq, occupied)
	}
}

func (b *Board) generateAllMoves(ml *MoveList) {
	us := b.SideToMove
	occupied := b.AllOccupied
	enemies := b.Occupied[us.Other()]

	b.generatePawnMoves(ml, us, enemies, occupied)

	knights := b.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		addPieceMoves(b, ml, from, KnightAttacks(from)&^b.Occupied[us], enemies)
	}

	bishops := b.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		addPieceMoves(b, ml, from, BishopAttacks(from, occupied)&^b.Occupied[us], enemies)
	}

	rooks := b.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		addPieceMoves(b, ml, from, RookAttacks(from, occupied)&^b.Occupied[us], enemies)
	}

	queens := b.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		addPieceMoves(b, ml, from, QueenAttacks(from, occupied)&^b.Occupied[us], enemies)
	}

	b.generateKingMoves(ml, us, enemies)
	b.generateCastlingMoves(ml, us)
}

// addPieceMoves emits a quiet or capturing move for every destination
// square set in targets, distinguishing capture from quiet by whether
// the destination is occupied by an enemy piece.
func addPieceMoves(b *Board, ml *MoveList, from Square, targets, enemies Bitboard) {
	for targets != 0 {
		to := targets.PopLSB()
		if enemies.IsSet(to) {
			ml.Add(NewCapture(from, to))
		} else {
			ml.Add(NewMove(from, to))
		}
	}
}

func (b *Board) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := b.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	nonPromo := push1 & ^promotionRank
	for nonPromo != 0 {
		to := nonPromo.PopLSB()
		ml.Add(NewMove(Square(int(to)-pushDir), to))
	}

	for push2 != 0 {
		to := push2.PopLSB()
		ml.Add(NewDoublePawnPush(Square(int(to)-2*pushDir), to))
	}

	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		ml.Add(NewCapture(Square(int(to)-pushDir+1), to))
	}

	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		ml.Add(NewCapture(Square(int(to)-pushDir-1), to))
	}

	promoPush := push1 & promotionRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		addPromotions(ml, Square(int(to)-pushDir), to, false)
	}

	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		addPromotions(ml, Square(int(to)-pushDir+1), to, true)
	}

	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		addPromotions(ml, Square(int(to)-pushDir-1), to, true)
	}

	if b.EnPassant != NoSquare {
		epBB := SquareBB(b.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			ml.Add(NewEnPassant(from, b.EnPassant))
		}
	}
}

// addPromotions adds all four promotion moves for a pawn reaching the
// back rank, either quiet or capturing depending on capture.
func addPromotions(ml *MoveList, from, to Square, capture bool) {
	if capture {
		ml.Add(NewPromotionCapture(from, to, Queen))
		ml.Add(NewPromotionCapture(from, to, Rook))
		ml.Add(NewPromotionCapture(from, to, Bishop))
		ml.Add(NewPromotionCapture(from, to, Knight))
		return
	}
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

func (b *Board) generateKingMoves(ml *MoveList, us Color, enemies Bitboard) {
	kingBB := b.Pieces[us][King]
	if kingBB == 0 {
		return
	}
	from := kingBB.LSB()
	addPieceMoves(b, ml, from, KingAttacks(from)&^b.Occupied[us], enemies)
}

func (b *Board) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()

	if us == White {
		if b.CastlingRights&WhiteKingSideCastle != 0 &&
			b.AllOccupied&(SquareBB(F1)|SquareBB(G1)) == 0 &&
			!b.IsSquareAttacked(E1, them) && !b.IsSquareAttacked(F1, them) && !b.IsSquareAttacked(G1, them) {
			ml.Add(NewCastling(E1, G1, true))
		}
		if b.CastlingRights&WhiteQueenSideCastle != 0 &&
			b.AllOccupied&(SquareBB(B1)|SquareBB(C1)|SquareBB(D1)) == 0 &&
			!b.IsSquareAttacked(E1, them) && !b.IsSquareAttacked(D1, them) && !b.IsSquareAttacked(C1, them) {
			ml.Add(NewCastling(E1, C1, false))
		}
	} else {
		if b.CastlingRights&BlackKingSideCastle != 0 &&
			b.AllOccupied&(SquareBB(F8)|SquareBB(G8)) == 0 &&
			!b.IsSquareAttacked(E8, them) && !b.IsSquareAttacked(F8, them) && !b.IsSquareAttacked(G8, them) {
			ml.Add(NewCastling(E8, G8, true))
		}
		if b.CastlingRights&BlackQueenSideCastle != 0 &&
			b.AllOccupied&(SquareBB(B8)|SquareBB(C8)|SquareBB(D8)) == 0 &&
			!b.IsSquareAttacked(E8, them) && !b.IsSquareAttacked(D8, them) && !b.IsSquareAttacked(C8, them) {
			ml.Add(NewCastling(E8, C8, false))
		}
	}
}

// generateCaptures generates pseudo-legal captures only (including
// capturing promotions, non-capturing promotions, and en passant).
func (b *Board) generateCaptures(ml *MoveList) {
	us := b.SideToMove
	them := us.Other()
	enemies := b.Occupied[them]
	occupied := b.AllOccupied

	pawns := b.Pieces[us][Pawn]
	var attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		ml.Add(NewCapture(Square(int(to)-pushDir+1), to))
	}
	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		ml.Add(NewCapture(Square(int(to)-pushDir-1), to))
	}

	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		addPromotions(ml, Square(int(to)-pushDir+1), to, true)
	}
	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		addPromotions(ml, Square(int(to)-pushDir-1), to, true)
	}

	empty := ^occupied
	var push1 Bitboard
	if us == White {
		push1 = pawns.North() & empty & Rank8
	} else {
		push1 = pawns.South() & empty & Rank1
	}
	for push1 != 0 {
		to := push1.PopLSB()
		addPromotions(ml, Square(int(to)-pushDir), to, false)
	}

	if b.EnPassant != NoSquare {
		epBB := SquareBB(b.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			ml.Add(NewEnPassant(from, b.EnPassant))
		}
	}

	knights := b.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & enemies
		for attacks != 0 {
			ml.Add(NewCapture(from, attacks.PopLSB()))
		}
	}

	bishops := b.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		attacks := BishopAttacks(from, occupied) & enemies
		for attacks != 0 {
			ml.Add(NewCapture(from, attacks.PopLSB()))
		}
	}

	rooks := b.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		attacks := RookAttacks(from, occupied) & enemies
		for attacks != 0 {
			ml.Add(NewCapture(from, attacks.PopLSB()))
		}
	}

	queens := b.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		attacks := QueenAttacks(from, occupied) & enemies
		for attacks != 0 {
			ml.Add(NewCapture(from, attacks.PopLSB()))
		}
	}

	from := b.KingSquare[us]
	attacks := KingAttacks(from) & enemies
	for attacks != 0 {
		ml.Add(NewCapture(from, attacks.PopLSB()))
	}
}

// filterLegalMoves filters out illegal moves using Stockfish's
// optimization: non-pinned, non-king, non-en-passant moves are
// automatically legal when not in check.
func (b *Board) filterLegalMoves(ml *MoveList) *MoveList {
	result := NewMoveList()
	pinned := b.ComputePinned()
	ksq := b.KingSquare[b.SideToMove]
	inCheck := b.Checkers != 0

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		from := m.From()

		if inCheck {
			if b.IsLegalFast(m, pinned) {
				result.Add(m)
			}
			continue
		}

		if from != ksq && !m.IsEnPassant() && pinned&SquareBB(from) == 0 {
			result.Add(m)
			continue
		}

		if b.IsLegalFast(m, pinned) {
			result.Add(m)
		}
	}

	return result
}

// IsLegalFast returns true if the move is legal, without a full
// make/unmake, using the pin/check information already computed for
// the position.
func (b *Board) IsLegalFast(m Move, pinned Bitboard) bool {
	from := m.From()
	to := m.To()
	us := b.SideToMove
	them := us.Other()
	ksq := b.KingSquare[us]
	checkers := b.Checkers

	if from == ksq {
		if m.IsCastle() {
			return checkers == 0
		}
		occ := b.AllOccupied &^ SquareBB(from)
		return b.AttackersByColor(to, them, occ) == 0
	}

	if checkers != 0 {
		if checkers.PopCount() > 1 {
			return false
		}

		checker := checkers.LSB()
		validTargets := SquareBB(checker) | Between(checker, ksq)

		if m.IsEnPassant() {
			var capturedSq Square
			if us == White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
			if capturedSq == checker {
				return b.isLegalEnPassant(m)
			}
			return false
		}

		if validTargets&SquareBB(to) == 0 {
			return false
		}
		if pinned&SquareBB(from) != 0 && !Aligned(from, to, ksq) {
			return false
		}
		return true
	}

	if m.IsEnPassant() {
		return b.isLegalEnPassant(m)
	}

	if pinned&SquareBB(from) == 0 {
		return true
	}
	return Aligned(from, to, ksq)
}

// isLegalEnPassant validates en passant with make/unmake, since it can
// expose a horizontal pin that normal pin detection misses (two pawns
// removed from the same rank as the king in one move).
func (b *Board) isLegalEnPassant(m Move) bool {
	us := b.SideToMove
	them := us.Other()
	ksq := b.KingSquare[us]

	b.MakeMove(m)
	attacked := b.IsSquareAttacked(ksq, them)
	b.UnmakeMove(m)

	return !attacked
}

// HasLegalMoves returns true if the side to move has any legal move.
func (b *Board) HasLegalMoves() bool {
	ml := b.GeneratePseudoLegalMoves()
	pinned := b.ComputePinned()
	for i := 0; i < ml.Len(); i++ {
		if b.IsLegalFast(ml.Get(i), pinned) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the side to move is checkmated.
func (b *Board) IsCheckmate() bool {
	return b.InCheck() && !b.HasLegalMoves()
}

// IsStalemate returns true if the side to move is stalemated.
func (b *Board) IsStalemate() bool {
	return !b.InCheck() && !b.HasLegalMoves()
}

// IsDraw returns true if the position is drawn by stalemate, the
// fifty-move rule, two-fold repetition, or insufficient material.
func (b *Board) IsDraw() bool {
	if b.IsStalemate() {
		return true
	}
	if b.HalfMoveClock >= 100 {
		return true
	}
	if b.IsRepetition() {
		return true
	}
	return b.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side has enough
// material to force checkmate.
func (b *Board) IsInsufficientMaterial() bool {
	if b.Pieces[White][Pawn]|b.Pieces[Black][Pawn] != 0 ||
		b.Pieces[White][Rook]|b.Pieces[Black][Rook] != 0 ||
		b.Pieces[White][Queen]|b.Pieces[Black][Queen] != 0 {
		return false
	}

	wMinors := b.Pieces[White][Knight].PopCount() + b.Pieces[White][Bishop].PopCount()
	bMinors := b.Pieces[Black][Knight].PopCount() + b.Pieces[Black][Bishop].PopCount()

	if wMinors+bMinors == 0 {
		return true
	}
	if wMinors <= 1 && bMinors == 0 {
		return true
	}
	if bMinors <= 1 && wMinors == 0 {
		return true
	}
	return false
}

// Perft counts the leaf nodes of the legal move tree to the given
// depth, used as a move generation correctness regression.
func (b *Board) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}

	ml := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(ml.Len())
	}

	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		b.MakeMove(m)
		nodes += b.Perft(depth - 1)
		b.UnmakeMove(m)
	}
	return nodes
}
