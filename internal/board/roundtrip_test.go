package board

import "testing"

// TestFENRoundTrip checks that parsing a FEN and re-serializing it
// reproduces the same FEN, for a spread of positions covering castling
// rights, en passant, and non-default move counters.
func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2",
		"4k3/8/8/8/8/8/8/4K2R w K - 12 34",
		"r3k2r/8/8/8/8/8/8/R3K2R b Qk - 3 17",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			b, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN(%q): %v", fen, err)
			}
			got := b.ToFEN()
			if got != fen {
				t.Errorf("round trip mismatch: ParseFEN(%q).ToFEN() = %q", fen, got)
			}

			b2, err := ParseFEN(got)
			if err != nil {
				t.Fatalf("re-parsing own output %q: %v", got, err)
			}
			if b2.ToFEN() != got {
				t.Errorf("second round trip mismatch: %q != %q", b2.ToFEN(), got)
			}
		})
	}
}

// boardSnapshot captures every field MakeMove/UnmakeMove must restore
// bit-for-bit, so a round trip can be checked by plain equality.
type boardSnapshot struct {
	pieces         [2][6]Bitboard
	occupied       [2]Bitboard
	allOccupied    Bitboard
	sideToMove     Color
	castlingRights CastlingRights
	enPassant      Square
	halfMoveClock  int
	fullMoveNumber int
	hash           uint64
	pawnKey        uint64
	kingSquare     [2]Square
	checkers       Bitboard
}

func snapshot(b *Board) boardSnapshot {
	return boardSnapshot{
		pieces:         b.Pieces,
		occupied:       b.Occupied,
		allOccupied:    b.AllOccupied,
		sideToMove:     b.SideToMove,
		castlingRights: b.CastlingRights,
		enPassant:      b.EnPassant,
		halfMoveClock:  b.HalfMoveClock,
		fullMoveNumber: b.FullMoveNumber,
		hash:           b.Hash,
		pawnKey:        b.PawnKey,
		kingSquare:     b.KingSquare,
		checkers:       b.Checkers,
	}
}

// TestMakeUnmakeRoundTrip walks every pseudo-legal move from a handful of
// positions one ply deep and checks that UnmakeMove restores the exact
// pre-move board, including the Zobrist and pawn keys — a hash drift
// here would silently corrupt the transposition table and repetition
// detection without ever producing an illegal move.
func TestMakeUnmakeRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2",
	}

	for _, fen := range fens {
		b, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}

		before := snapshot(b)
		moves := b.GeneratePseudoLegalMoves()
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			b.MakeMove(m)
			b.UnmakeMove(m)

			after := snapshot(b)
			if after != before {
				t.Fatalf("%s: UnmakeMove(%s) did not restore the board\nbefore: %+v\nafter:  %+v",
					fen, m, before, after)
			}
		}
	}
}

// TestQuietsCapturesDisjoint checks that GenerateQuiets and GenerateCaptures
// partition GenerateLegalMoves: every legal move appears in exactly one of
// the two, with no move missing and none duplicated. A position with
// pending promotions is included since promotions are the one move type
// that both generators could plausibly claim.
func TestQuietsCapturesDisjoint(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1",
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			b, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN(%q): %v", fen, err)
			}

			legal := b.GenerateLegalMoves()
			legalSet := make(map[Move]bool, legal.Len())
			for i := 0; i < legal.Len(); i++ {
				legalSet[legal.Get(i)] = true
			}

			seen := make(map[Move]string, legal.Len())

			quiets := b.GenerateQuiets()
			for i := 0; i < quiets.Len(); i++ {
				m := quiets.Get(i)
				if prior, dup := seen[m]; dup {
					t.Fatalf("%s: move %s generated by both %s and quiets", fen, m, prior)
				}
				seen[m] = "quiets"
				if m.IsCapture() {
					t.Errorf("%s: GenerateQuiets produced capture %s", fen, m)
				}
			}

			captures := b.GenerateCaptures()
			for i := 0; i < captures.Len(); i++ {
				m := captures.Get(i)
				if prior, dup := seen[m]; dup {
					t.Fatalf("%s: move %s generated by both %s and captures", fen, m, prior)
				}
				seen[m] = "captures"
			}

			if len(seen) != len(legalSet) {
				t.Fatalf("%s: quiets+captures produced %d moves, legal has %d", fen, len(seen), len(legalSet))
			}
			for m := range seen {
				if !legalSet[m] {
					t.Errorf("%s: move %s not in GenerateLegalMoves", fen, m)
				}
			}
			for m := range legalSet {
				if _, ok := seen[m]; !ok {
					t.Errorf("%s: legal move %s missing from quiets+captures", fen, m)
				}
			}
		})
	}
}
