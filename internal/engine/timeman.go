package engine

import (
	"time"

	"github.com/mtpham99/mpchess/internal/board"
)

// UCILimits holds the time-control fields of a UCI "go" command.
type UCILimits struct {
	Time        [2]time.Duration // wtime, btime: remaining time for each color
	Inc         [2]time.Duration // winc, binc: increment per move
	MovesToGo   int              // moves until the next time control (0 = sudden death)
	MoveTime    time.Duration    // fixed time for this move, overrides the budget calculation
	Depth       int
	Nodes       uint64
	Infinite    bool
	SearchMoves []board.Move
}

// TimeManager turns a UCILimits into a concrete optimum/maximum time
// budget for one search. It is intentionally simple: time allocation
// policy is not this engine's concern, only enough budgeting to let
// iterative deepening stop at a reasonable point.
type TimeManager struct {
	optimumTime time.Duration
	maximumTime time.Duration
	startTime   time.Time
}

// NewTimeManager creates an unconfigured time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init computes the optimum and maximum time budgets for a search
// starting now, given the UCI limits and the side to move. ply is the
// current game ply, used to taper the moves-to-go estimate toward the
// endgame.
func (tm *TimeManager) Init(limits UCILimits, us board.Color, ply int) {
	tm.startTime = time.Now()

	if limits.MoveTime > 0 {
		tm.optimumTime = limits.MoveTime
		tm.maximumTime = limits.MoveTime
		return
	}

	if limits.Infinite || limits.Time[us] == 0 {
		tm.optimumTime = time.Hour
		tm.maximumTime = time.Hour
		return
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]

	mtg := limits.MovesToGo
	if mtg == 0 {
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
		if mtg > 50 {
			mtg = 50
		}
	}

	baseTime := timeLeft/time.Duration(mtg) + inc*9/10
	tm.optimumTime = baseTime
	if ply < 8 {
		tm.optimumTime = baseTime * 85 / 100
	}

	maxFromOptimum := tm.optimumTime * 5
	maxFromRemaining := timeLeft * 8 / 10
	if maxFromOptimum < maxFromRemaining {
		tm.maximumTime = maxFromOptimum
	} else {
		tm.maximumTime = maxFromRemaining
	}

	safetyMargin := timeLeft * 95 / 100
	if tm.maximumTime > safetyMargin {
		tm.maximumTime = safetyMargin
	}

	if tm.optimumTime < 10*time.Millisecond {
		tm.optimumTime = 10 * time.Millisecond
	}
	if tm.maximumTime < 50*time.Millisecond {
		tm.maximumTime = 50 * time.Millisecond
	}
}

// Elapsed returns the time elapsed since the search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// OptimumTime returns the target time for this move.
func (tm *TimeManager) OptimumTime() time.Duration { return tm.optimumTime }

// MaximumTime returns the hard ceiling for this move.
func (tm *TimeManager) MaximumTime() time.Duration { return tm.maximumTime }

// ShouldStop reports whether the maximum time budget has been exceeded.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Elapsed() >= tm.maximumTime
}

// PastOptimum reports whether the optimum time budget has been exceeded.
func (tm *TimeManager) PastOptimum() bool {
	return tm.Elapsed() >= tm.optimumTime
}
