package engine

import (
	"context"
	"testing"
	"time"

	"github.com/mtpham99/mpchess/internal/board"
)

// TestSearchFindsMateInOne checks both the returned best move and the
// reported principal variation against a textbook king-and-rook mate,
// where Rh8# is forced and no other move mates.
func TestSearchFindsMateInOne(t *testing.T) {
	pos, err := board.ParseFEN("5k2/8/5K2/8/8/8/8/7R w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	eng := NewEngine()
	eng.SetPosition(pos)
	limits := SearchLimits{Depth: 4, MoveTime: 2 * time.Second}

	move := eng.Go(context.Background(), limits)
	want := board.NewMove(board.H1, board.H8)
	if move != want {
		t.Fatalf("best move = %s, want %s (Rh8#)", move, want)
	}

	pvs := eng.LastPVs()
	if len(pvs) == 0 {
		t.Fatal("no PV reported")
	}
	pv := pvs[0]
	if pv.Move != want {
		t.Errorf("PV[0].Move = %s, want %s", pv.Move, want)
	}
	if len(pv.PV) == 0 || pv.PV[0] != want {
		t.Errorf("PV line does not start with %s: %v", want, pv.PV)
	}
	if pv.Score <= MateScore-board.MaxPly {
		t.Errorf("PV score %d does not register as a forced mate", pv.Score)
	}

	after := pos.Clone()
	after.MakeMove(move)
	if !after.IsCheckmate() {
		t.Fatalf("%s did not deliver checkmate", move)
	}
}

// TestSearchDeterministicAcrossTTClear runs the same position twice with
// a freshly cleared transposition table in between, and requires the
// same best move and score both times. Search correctness must not
// depend on incidental hash-table residue from a prior run.
func TestSearchDeterministicAcrossTTClear(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"

	runOnce := func() (board.Move, int) {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN: %v", err)
		}
		eng := NewEngine()
		eng.SetOption(Options{HashMB: 16, Threads: 1, MultiPV: 1})
		eng.SetPosition(pos)
		limits := SearchLimits{Depth: 5, MoveTime: 3 * time.Second}
		move := eng.Go(context.Background(), limits)
		pv := eng.LastPVs()
		if len(pv) == 0 {
			t.Fatal("no PV reported")
		}
		return move, pv[0].Score
	}

	move1, score1 := runOnce()
	move2, score2 := runOnce()

	if move1 != move2 {
		t.Errorf("best move differs across runs: %s vs %s", move1, move2)
	}
	if score1 != score2 {
		t.Errorf("score differs across runs: %d vs %d", score1, score2)
	}
}

// TestTranspositionTableRoundTrip stores an entry and checks that Probe
// returns it unchanged, including through the xor-checksum encoding used
// to detect torn concurrent reads.
func TestTranspositionTableRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(1)
	pos := board.NewBoard()

	if _, found := tt.Probe(pos.Hash); found {
		t.Error("expected miss on empty table")
	}

	move := board.NewMove(board.E2, board.E4)
	tt.Store(pos.Hash, 12, 345, TTExact, move)

	entry, found := tt.Probe(pos.Hash)
	if !found {
		t.Fatal("expected hit after store")
	}
	if entry.Move != move {
		t.Errorf("Move = %s, want %s", entry.Move, move)
	}
	if entry.Score != 345 {
		t.Errorf("Score = %d, want 345", entry.Score)
	}
	if entry.Depth != 12 {
		t.Errorf("Depth = %d, want 12", entry.Depth)
	}
	if entry.Flag != TTExact {
		t.Errorf("Flag = %v, want TTExact", entry.Flag)
	}

	tt.Store(pos.Hash, 3, -200, TTUpperBound, board.NoMove)
	entry, found = tt.Probe(pos.Hash)
	if !found {
		t.Fatal("expected hit after overwrite")
	}
	if entry.Score != -200 || entry.Flag != TTUpperBound || entry.Depth != 3 {
		t.Errorf("overwrite not reflected: got %+v", entry)
	}

	tt.Clear()
	if _, found := tt.Probe(pos.Hash); found {
		t.Error("expected miss after Clear")
	}
}
