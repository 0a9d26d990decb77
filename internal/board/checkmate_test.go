package board

import "testing"

func TestCheckmate(t *testing.T) {
	// Back rank mate: White Ka1, Ra8; Black Kh8, pawns on g7/h7 blocking
	// escape. Black to move is already checkmated.
	b, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	t.Log("Checkmate position:")
	t.Log(b)
	t.Log("Checkers bitboard:", b.Checkers)
	t.Log("InCheck:", b.InCheck())

	blackMoves := b.GenerateLegalMoves()
	t.Log("Black legal moves:", blackMoves.Len())
	for i := 0; i < blackMoves.Len(); i++ {
		t.Log("  Move:", blackMoves.Get(i))
	}

	t.Log("HasLegalMoves:", b.HasLegalMoves())
	t.Log("IsCheckmate:", b.IsCheckmate())
	t.Log("IsStalemate:", b.IsStalemate())

	if !b.IsCheckmate() {
		t.Error("Expected checkmate but got false")
	}
}

func TestNotCheckmate(t *testing.T) {
	// Black king on h8, rook on g8, but the king can capture it.
	b, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	t.Log("Not checkmate position (king can capture rook):")
	t.Log(b)
	t.Log("Checkers bitboard:", b.Checkers)
	t.Log("InCheck:", b.InCheck())

	blackMoves := b.GenerateLegalMoves()
	t.Log("Black legal moves:", blackMoves.Len())
	for i := 0; i < blackMoves.Len(); i++ {
		t.Log("  Move:", blackMoves.Get(i))
	}

	t.Log("IsCheckmate:", b.IsCheckmate())

	if b.IsCheckmate() {
		t.Error("Expected NOT checkmate but got true")
	}
}

func TestStalemate(t *testing.T) {
	// Classic stalemate: Black king a8 has no legal moves, not in check.
	b, err := ParseFEN("k7/8/1Q6/8/8/8/8/7K b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	if b.InCheck() {
		t.Fatal("Expected black not to be in check")
	}
	if !b.IsStalemate() {
		t.Error("Expected stalemate but got false")
	}
	if b.IsCheckmate() {
		t.Error("Stalemate position incorrectly reported as checkmate")
	}
}

func TestTwoFoldRepetitionDraw(t *testing.T) {
	b := NewBoard()
	knightOut, _ := ParseMove("g1f3", b)
	b.MakeMove(knightOut)
	blackOut, _ := ParseMove("g8f6", b)
	b.MakeMove(blackOut)
	knightBack, _ := ParseMove("f3g1", b)
	b.MakeMove(knightBack)
	blackBack, _ := ParseMove("f6g8", b)
	b.MakeMove(blackBack)

	knightOut2, _ := ParseMove("g1f3", b)
	b.MakeMove(knightOut2)
	blackOut2, _ := ParseMove("g8f6", b)
	b.MakeMove(blackOut2)
	knightBack2, _ := ParseMove("f3g1", b)
	b.MakeMove(knightBack2)
	blackBack2, _ := ParseMove("f6g8", b)
	b.MakeMove(blackBack2)

	if !b.IsRepetition() {
		t.Error("Expected two-fold repetition to be detected")
	}
}
