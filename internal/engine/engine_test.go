package engine

import (
	"context"
	"testing"
	"time"

	"github.com/mtpham99/mpchess/internal/board"
)

func TestMultiPV(t *testing.T) {
	eng := NewEngine()
	eng.SetOption(Options{HashMB: 16, Threads: 1, MultiPV: 3})

	limits := SearchLimits{Depth: 4, MoveTime: 2 * time.Second}
	eng.Go(context.Background(), limits)

	results := eng.LastPVs()
	if len(results) < 2 {
		t.Fatalf("expected at least 2 PVs, got %d", len(results))
	}

	if results[0].Move == results[1].Move {
		t.Errorf("first two PVs have same move: %s", results[0].Move.String())
	}

	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("PV %d has higher score than PV %d (%d > %d)",
				i+1, i, results[i].Score, results[i-1].Score)
		}
	}

	for i, r := range results {
		t.Logf("PV %d: %s (score: %d, depth: %d)", i+1, r.Move.String(), r.Score, r.Depth)
	}
}

func TestSearchBasic(t *testing.T) {
	eng := NewEngine()
	limits := SearchLimits{Depth: 3, MoveTime: 500 * time.Millisecond}

	move := eng.Go(context.Background(), limits)
	if move == board.NoMove {
		t.Fatal("search returned NoMove for starting position")
	}
	t.Logf("best move: %s", move.String())
}

func TestSearchStop(t *testing.T) {
	eng := NewEngine()
	limits := SearchLimits{Infinite: true}

	done := make(chan board.Move, 1)
	go func() {
		done <- eng.Go(context.Background(), limits)
	}()

	time.Sleep(50 * time.Millisecond)
	eng.Stop()

	select {
	case move := <-done:
		if move == board.NoMove {
			t.Fatal("stopped search returned NoMove")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("search did not stop in time")
	}
}

func TestScoreToString(t *testing.T) {
	if got := ScoreToString(134); got != "1.34" {
		t.Errorf("ScoreToString(134) = %q, want 1.34", got)
	}
	if got := ScoreToString(-50); got != "-0.50" {
		t.Errorf("ScoreToString(-50) = %q, want -0.50", got)
	}
	if got := ScoreToString(MateScore - 3); got != "Mate in 2" {
		t.Errorf("ScoreToString(MateScore-3) = %q, want Mate in 2", got)
	}
}

func TestPawnHashTable(t *testing.T) {
	pt := NewPawnTable(1)
	pos := board.NewBoard()

	if _, _, found := pt.Probe(pos.PawnKey); found {
		t.Error("expected cache miss on first probe")
	}

	pt.Store(pos.PawnKey, -15, -20)

	mg, eg, found := pt.Probe(pos.PawnKey)
	if !found {
		t.Error("expected cache hit after store")
	}
	if mg != -15 || eg != -20 {
		t.Errorf("wrong values: got mg=%d, eg=%d, want -15, -20", mg, eg)
	}

	oldKey := pos.PawnKey
	move := board.NewMove(board.E2, board.E4)
	pos.MakeMove(move)
	if pos.PawnKey == oldKey {
		t.Error("PawnKey should change when a pawn moves")
	}

	pos.UnmakeMove(move)
	if pos.PawnKey != oldKey {
		t.Error("PawnKey should be restored on unmake")
	}

	t.Logf("PawnKey: %016x", pos.PawnKey)
}
