package engine

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mtpham99/mpchess/internal/board"
)

// SearchInfo is one reportable progress update, emitted once per
// completed iterative-deepening iteration (per PV line) and forwarded
// to the UCI layer as an "info" line.
type SearchInfo struct {
	Depth    int
	MultiPV  int // 1-based PV index; 0 when MultiPV==1
	Score    int
	Nodes    uint64
	NPS      uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int
}

// SearchLimits bounds one search, mirroring the fields of the UCI "go"
// command. A zero value for any field (other than Infinite) means
// "unlimited". Nodes is recorded but does not stop the search.
type SearchLimits struct {
	Depth       int
	Nodes       uint64
	MoveTime    time.Duration
	Infinite    bool
	SearchMoves []board.Move
}

// aspirationWindow is the half-width, in centipawns, of the window
// iterative deepening re-centers on the previous iteration's score.
const aspirationWindow = PawnValue / 2

// Pool is the fixed-size goroutine pool that searches a position in
// Lazy SMP style: every worker runs its own iterative-deepening loop
// over a private copy of the root position, sharing the transposition
// table, pawn hash table, and move picker so a discovery by one worker
// immediately helps every other. Worker 0 is the main thread: only it
// reports progress and drives Multi-PV and aspiration windows; the
// other workers search full-window single-PV lines purely to diversify
// the shared tables' contents.
type Pool struct {
	tt         *TranspositionTable
	pawnTable  *PawnTable
	movePicker *MovePicker

	workers  []*Worker
	stopFlag atomic.Bool

	numPVs int

	lastResults []pvResult

	OnInfo func(SearchInfo)
}

// NewPool creates a pool of numThreads workers sharing a transposition
// table sized ttSizeMB megabytes.
func NewPool(numThreads, ttSizeMB int) *Pool {
	p := &Pool{
		tt:         NewTranspositionTable(ttSizeMB),
		pawnTable:  NewPawnTable(4),
		movePicker: NewMovePicker(),
		numPVs:     1,
	}
	p.Resize(numThreads)
	return p
}

// Resize changes the number of worker goroutines used by the next search.
func (p *Pool) Resize(numThreads int) {
	if numThreads < 1 {
		numThreads = 1
	}
	p.workers = make([]*Worker, numThreads)
	for i := range p.workers {
		p.workers[i] = newWorker(i, p.tt, p.pawnTable, p.movePicker, &p.stopFlag)
	}
}

// NumThreads returns the pool's current worker count.
func (p *Pool) NumThreads() int { return len(p.workers) }

// SetMultiPV sets the number of principal variations to search and report.
func (p *Pool) SetMultiPV(n int) {
	if n < 1 {
		n = 1
	}
	p.numPVs = n
}

// Stop signals every worker to return as soon as it next checks the
// stop flag, cutting the current search short.
func (p *Pool) Stop() {
	p.stopFlag.Store(true)
}

// IsStopped reports whether the pool's stop flag is set.
func (p *Pool) IsStopped() bool {
	return p.stopFlag.Load()
}

// Clear empties the transposition table and move-ordering tables, used
// by UCI's "ucinewgame".
func (p *Pool) Clear() {
	p.tt.Clear()
	p.movePicker.Clear()
}

// Nodes returns the total node count across every worker in the most
// recent search.
func (p *Pool) Nodes() uint64 {
	var total uint64
	for _, w := range p.workers {
		total += w.Nodes()
	}
	return total
}

// TT exposes the pool's shared transposition table, e.g. for HashFull
// reporting.
func (p *Pool) TT() *TranspositionTable { return p.tt }

// pvResult is one completed principal-variation line from a single
// iterative-deepening iteration, pending the depth's final sort.
type pvResult struct {
	moves []board.Move
	score int
	depth int
}

// PVResult is one reported principal variation from the most recent
// Multi-PV search, ordered best-first.
type PVResult struct {
	Move  board.Move
	Score int
	Depth int
	PV    []board.Move
}

// LastPVs returns the PV lines from the deepest iteration the most
// recent search completed, best-first.
func (p *Pool) LastPVs() []PVResult {
	out := make([]PVResult, len(p.lastResults))
	for i, r := range p.lastResults {
		out[i] = PVResult{Move: r.moves[0], Score: r.score, Depth: r.depth, PV: r.moves}
	}
	return out
}

// Search runs a Lazy SMP search from root, blocking until every worker
// returns — either the deepest iteration completes, a limit is hit, or
// Stop is called — and returns the best move and its score.
func (p *Pool) Search(ctx context.Context, root *board.Board, limits SearchLimits) (board.Move, int) {
	p.stopFlag.Store(false)
	p.tt.NewSearch()

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth >= board.MaxPly {
		maxDepth = board.MaxPly - 1
	}

	startTime := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if limits.MoveTime > 0 && !limits.Infinite {
		timer := time.AfterFunc(limits.MoveTime, func() { p.stopFlag.Store(true) })
		defer timer.Stop()
	}
	go func() {
		<-ctx.Done()
		p.stopFlag.Store(true)
	}()

	var bestMove board.Move
	var bestScore int

	g, _ := errgroup.WithContext(ctx)
	for i, w := range p.workers {
		w := w
		i := i
		g.Go(func() error {
			w.Reset()
			w.initSearch(root.Clone())
			if i == 0 {
				move, score := p.runMain(w, maxDepth, limits, startTime)
				bestMove, bestScore = move, score
			} else {
				p.runHelper(w, maxDepth, i)
			}
			return nil
		})
	}
	_ = g.Wait()

	return bestMove, bestScore
}

// runMain drives the pool's main thread: iterative deepening with
// aspiration windows and Multi-PV root-move removal, reporting each
// completed PV line through Pool.OnInfo.
func (p *Pool) runMain(w *Worker, maxDepth int, limits SearchLimits, startTime time.Time) (board.Move, int) {
	prevScores := make([]int, p.numPVs)
	havePrev := make([]bool, p.numPVs)

	var bestMove board.Move
	var bestScore int

	var baseRootMoves *board.MoveList
	if len(limits.SearchMoves) > 0 {
		baseRootMoves = board.NewMoveList()
		for _, m := range limits.SearchMoves {
			baseRootMoves.Add(m)
		}
	}

	for depth := 1; depth <= maxDepth; depth++ {
		if p.stopFlag.Load() {
			break
		}

		rootMoves := board.NewMoveList()
		if baseRootMoves != nil {
			for _, m := range baseRootMoves.Slice() {
				rootMoves.Add(m)
			}
		} else {
			for _, m := range w.pos.GenerateLegalMoves().Slice() {
				rootMoves.Add(m)
			}
		}

		numPVs := p.numPVs
		if rootMoves.Len() < numPVs {
			numPVs = rootMoves.Len()
		}
		if numPVs == 0 {
			break
		}

		results := make([]pvResult, 0, numPVs)
		completedAll := true

		for pvIdx := 0; pvIdx < numPVs; pvIdx++ {
			w.SetRootMoves(rootMoves)

			alpha, beta := -Infinity, Infinity
			if havePrev[pvIdx] {
				alpha = prevScores[pvIdx] - aspirationWindow
				beta = prevScores[pvIdx] + aspirationWindow
			}

			move, score := w.SearchDepth(depth, alpha, beta)
			if !p.stopFlag.Load() && (score <= alpha || score >= beta) {
				move, score = w.SearchDepth(depth, -Infinity, Infinity)
			}

			if p.stopFlag.Load() || move == board.NoMove {
				completedAll = false
				break
			}

			prevScores[pvIdx] = score
			havePrev[pvIdx] = true

			results = append(results, pvResult{moves: w.GetPV(), score: score, depth: depth})
			rootMoves.Remove(move)
		}

		if len(results) == 0 {
			break
		}

		sort.SliceStable(results, func(i, j int) bool {
			return results[i].score > results[j].score
		})

		bestMove = results[0].moves[0]
		bestScore = results[0].score
		p.lastResults = results

		if p.OnInfo != nil {
			elapsed := time.Since(startTime)
			totalNodes := p.Nodes()
			nps := uint64(0)
			if elapsed > 0 {
				nps = uint64(float64(totalNodes) / elapsed.Seconds())
			}
			for i, r := range results {
				multiPV := 0
				if numPVs > 1 {
					multiPV = i + 1
				}
				p.OnInfo(SearchInfo{
					Depth:    depth,
					MultiPV:  multiPV,
					Score:    r.score,
					Nodes:    totalNodes,
					NPS:      nps,
					Time:     elapsed,
					PV:       r.moves,
					HashFull: p.tt.HashFull(),
				})
			}
		}

		if !completedAll {
			break
		}

		if abs(bestScore) >= MateScore-board.MaxPly {
			break
		}
	}

	return bestMove, bestScore
}

// runHelper drives a non-main worker: plain single-PV iterative
// deepening with no reporting, used only to populate the pool's shared
// tables for the main thread's benefit. depthSkew staggers helpers by
// one ply so they don't all explore an identical line in lockstep.
func (p *Pool) runHelper(w *Worker, maxDepth, depthSkew int) {
	skew := depthSkew % 2
	for depth := 1 + skew; depth <= maxDepth; depth++ {
		if p.stopFlag.Load() {
			return
		}
		w.SetRootMoves(nil)
		w.SearchDepth(depth, -Infinity, Infinity)
	}
}
