package engine

import (
	"context"
	"fmt"

	"github.com/mtpham99/mpchess/internal/board"
)

// Options holds the engine's UCI-configurable settings.
type Options struct {
	HashMB  int
	Threads int
	MultiPV int
}

// DefaultOptions returns the engine's default configuration.
func DefaultOptions() Options {
	return Options{HashMB: 16, Threads: 1, MultiPV: 1}
}

// Engine is the top-level search context a UCI session drives: the
// current position plus the thread pool searching it. It owns no
// protocol state of its own; internal/uci is the only caller.
type Engine struct {
	opts Options
	root *board.Board
	pool *Pool

	OnInfo func(SearchInfo)
}

// NewEngine creates an engine with the default options.
func NewEngine() *Engine {
	opts := DefaultOptions()
	e := &Engine{
		opts: opts,
		root: board.NewBoard(),
		pool: NewPool(opts.Threads, opts.HashMB),
	}
	e.pool.SetMultiPV(opts.MultiPV)
	return e
}

// SetPosition replaces the position the next search starts from.
func (e *Engine) SetPosition(b *board.Board) {
	e.root = b
}

// Position returns the engine's current position.
func (e *Engine) Position() *board.Board {
	return e.root
}

// SetOption applies a new option set, resizing the thread pool or
// resetting the hash table only when those specific fields change.
func (e *Engine) SetOption(opts Options) {
	if opts.HashMB != e.opts.HashMB {
		e.pool = NewPool(opts.Threads, opts.HashMB)
	} else if opts.Threads != e.opts.Threads {
		e.pool.Resize(opts.Threads)
	}
	e.pool.SetMultiPV(opts.MultiPV)
	e.opts = opts
}

// NewGame resets the engine's tables ahead of a new game, per UCI's
// "ucinewgame".
func (e *Engine) NewGame() {
	e.pool.Clear()
}

// Go starts a search on the current position and blocks until it
// completes, is stopped, or ctx is cancelled. It returns the best move.
func (e *Engine) Go(ctx context.Context, limits SearchLimits) board.Move {
	e.pool.OnInfo = e.OnInfo
	move, _ := e.pool.Search(ctx, e.root, limits)
	return move
}

// Stop cuts the current search short.
func (e *Engine) Stop() {
	e.pool.Stop()
}

// Nodes returns the total node count of the most recent search.
func (e *Engine) Nodes() uint64 {
	return e.pool.Nodes()
}

// HashFull returns the transposition table's permille occupancy.
func (e *Engine) HashFull() int {
	return e.pool.TT().HashFull()
}

// LastPVs returns the Multi-PV lines from the most recent search,
// best-first.
func (e *Engine) LastPVs() []PVResult {
	return e.pool.LastPVs()
}

// Evaluate returns the static evaluation of the current position, from
// the side-to-move's perspective.
func (e *Engine) Evaluate() int {
	return Evaluate(e.root)
}

// ScoreToString renders a centipawn or mate score as a human-readable
// string in pawns or moves to mate, e.g. "0.34" or "Mate in 3".
func ScoreToString(score int) string {
	if score > MateScore-board.MaxPly {
		mateIn := (MateScore - score + 1) / 2
		return fmt.Sprintf("Mate in %d", mateIn)
	}
	if score < -MateScore+board.MaxPly {
		mateIn := (MateScore + score + 1) / 2
		return fmt.Sprintf("Mated in %d", mateIn)
	}
	return fmt.Sprintf("%.2f", float64(score)/100)
}
