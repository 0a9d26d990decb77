package engine

import (
	"sync/atomic"

	"github.com/mtpham99/mpchess/internal/board"
)

// Worker is one search thread in the Lazy SMP thread pool. It owns a
// private position and principal-variation table, and holds pointers
// to the resources the whole pool shares: the transposition table, the
// pawn hash table, and the move picker's killer/history tables. Worker
// 0 is the pool's main thread: only it reports UCI info. The search
// stops at the depth limit, on the pool's move-time timer, or on Stop;
// no node limit is enforced.
type Worker struct {
	id int

	pos *board.Board
	pv  [board.MaxPly]board.PVLine

	nodes uint64

	rootMoves *board.MoveList // nil means "all legal moves"

	tt         *TranspositionTable
	pawnTable  *PawnTable
	movePicker *MovePicker
	stopFlag   *atomic.Bool

	resultCh chan<- WorkerResult
	depth    int
}

// WorkerResult carries one worker's finished iteration back to whoever
// is driving the search (the engine, or a test).
type WorkerResult struct {
	WorkerID int
	Depth    int
	Score    int
	Move     board.Move
	PV       []board.Move
	Nodes    uint64
}

// newWorker creates a search worker bound to the pool's shared state.
func newWorker(id int, tt *TranspositionTable, pawnTable *PawnTable, movePicker *MovePicker, stopFlag *atomic.Bool) *Worker {
	return &Worker{
		id:         id,
		tt:         tt,
		pawnTable:  pawnTable,
		movePicker: movePicker,
		stopFlag:   stopFlag,
	}
}

// ID returns the worker's index within the pool.
func (w *Worker) ID() int { return w.id }

// Nodes returns the number of nodes searched by this worker during the
// current (or most recent) search.
func (w *Worker) Nodes() uint64 { return w.nodes }

// IsMain reports whether this worker is the pool's main thread.
func (w *Worker) IsMain() bool { return w.id == 0 }

// Reset clears per-search counters ahead of a new search.
func (w *Worker) Reset() {
	w.nodes = 0
}

// SetResultChannel sets the channel results are published to; may be nil.
func (w *Worker) SetResultChannel(ch chan<- WorkerResult) {
	w.resultCh = ch
}

// SetRootMoves restricts the worker to this candidate list at the root,
// used by UCI's "go searchmoves ...". A nil list means "every legal move".
func (w *Worker) SetRootMoves(moves *board.MoveList) {
	w.rootMoves = moves
}

// initSearch points the worker at its own copy of the position to search.
func (w *Worker) initSearch(pos *board.Board) {
	w.pos = pos
}

// SearchDepth runs one iterative-deepening iteration to depth, within
// [alpha, beta], and returns the root's best move and score.
func (w *Worker) SearchDepth(depth, alpha, beta int) (board.Move, int) {
	w.depth = depth

	score := w.negamax(depth, 0, alpha, beta)

	var bestMove board.Move
	if w.pv[0].Count > 0 {
		bestMove = w.pv[0].Moves[0]
	}
	if bestMove == board.NoMove && !w.stopFlag.Load() {
		moves := w.pos.GenerateLegalMoves()
		if moves.Len() > 0 {
			bestMove = moves.Get(0)
		}
	}

	if w.resultCh != nil && !w.stopFlag.Load() {
		w.resultCh <- WorkerResult{
			WorkerID: w.id,
			Depth:    depth,
			Score:    score,
			Move:     bestMove,
			PV:       append([]board.Move(nil), w.pv[0].Slice()...),
			Nodes:    w.nodes,
		}
	}

	return bestMove, score
}

// GetPV returns the principal variation found by the last completed
// SearchDepth call.
func (w *Worker) GetPV() []board.Move {
	return append([]board.Move(nil), w.pv[0].Slice()...)
}

func (w *Worker) evaluate() int {
	return EvaluateWithPawnTable(w.pos, w.pawnTable)
}

// negamax implements alpha_beta: negamax-formulated alpha-beta search
// with TT cutoffs, null-move pruning, late-move reduction, and check
// extension, per the engine's search contract.
func (w *Worker) negamax(depth, ply, alpha, beta int) int {
	if ply >= board.MaxPly-1 {
		return w.evaluate()
	}

	if w.nodes&2047 == 0 && w.stopFlag.Load() {
		return 0
	}

	w.pv[ply].Shrink(0)

	if w.pos.IsRepetition() || w.pos.HalfMoveClock > 100 {
		return 0
	}

	ttMove := board.NoMove
	ttEntry, found := w.tt.Probe(w.pos.Hash)
	if found {
		ttMove = ttEntry.Move
		if ply > 0 && int(ttEntry.Depth) >= depth {
			score := AdjustScoreFromTT(int(ttEntry.Score), ply)
			switch ttEntry.Flag {
			case TTExact:
				return score
			case TTUpperBound:
				if score <= alpha {
					return score
				}
			case TTLowerBound:
				if score >= beta {
					return score
				}
			}
		}
	}

	if depth <= 0 {
		return w.quiescence(ply, alpha, beta)
	}

	inCheck := w.pos.InCheck()

	if depth >= 4 && !inCheck && ply > 0 && w.pos.HasNonPawnMaterial() {
		const nullMoveReduction = 2
		nullUndo := w.pos.MakeNullMove()
		score := -w.negamax(depth-1-nullMoveReduction, ply+1, -beta, -beta+1)
		w.pos.UnmakeNullMove(nullUndo)
		if score >= beta {
			return beta
		}
	}

	var rootFilter func(board.Move) bool
	if ply == 0 && w.rootMoves != nil {
		rootFilter = w.rootMoves.Contains
	}

	moves := w.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	scores := w.movePicker.ScoreMoves(w.pos, moves, ply, ttMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	nodeType := TTUpperBound
	legalCount := 0

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		if rootFilter != nil && !rootFilter(move) {
			continue
		}
		legalCount++

		isCapture := move.IsCapture()
		isQuiet := !isCapture && !move.IsPromotion()
		movingPiece := w.pos.PieceAt(move.From())

		if isCapture && depth <= 3 && !inCheck && legalCount > 1 && SEE(w.pos, move) < 0 {
			legalCount--
			continue
		}

		w.pos.MakeMove(move)
		w.nodes++

		givesCheck := w.pos.InCheck()
		extension := 0
		if givesCheck {
			extension = 1
		}

		fullDepth := depth - 1 + extension

		var score int
		if legalCount > 4 && !inCheck && isQuiet && !givesCheck && !w.movePicker.IsKiller(move, ply) {
			reducedDepth := fullDepth - depth/3
			if reducedDepth < 0 {
				reducedDepth = 0
			}
			score = -w.negamax(reducedDepth, ply+1, -alpha-1, -alpha)
			if score > alpha {
				score = -w.negamax(fullDepth, ply+1, -beta, -alpha)
			}
		} else if legalCount == 1 {
			score = -w.negamax(fullDepth, ply+1, -beta, -alpha)
		} else {
			score = -w.negamax(fullDepth, ply+1, -alpha-1, -alpha)
			if score > alpha {
				score = -w.negamax(fullDepth, ply+1, -beta, -alpha)
			}
		}

		w.pos.UnmakeMove(move)

		if w.stopFlag.Load() {
			return 0
		}

		if score >= beta {
			w.tt.Store(w.pos.Hash, depth, AdjustScoreToTT(beta, ply), TTLowerBound, move)
			if isQuiet {
				w.movePicker.UpdateKillers(move, ply)
			}
			return beta
		}

		if score > alpha {
			alpha = score
			nodeType = TTExact
			w.pv[ply].Prepend(move, &w.pv[ply+1])
			if isQuiet {
				w.movePicker.UpdateHistory(movingPiece, move.To(), depth)
			}
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
		}
	}

	if legalCount == 0 {
		// Every legal move in the position was filtered at the root by
		// searchmoves/Multi-PV exclusion; treat as nothing to report.
		return alpha
	}

	w.tt.Store(w.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), nodeType, bestMove)
	return alpha
}

// quiescence searches capture sequences to the point of a quiet
// position, avoiding the horizon effect at the leaves of the main search.
func (w *Worker) quiescence(ply, alpha, beta int) int {
	if w.stopFlag.Load() {
		return 0
	}
	if ply >= board.MaxPly-1 {
		return w.evaluate()
	}

	standPat := w.evaluate()
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	moves := w.pos.GenerateCaptures()
	scores := w.movePicker.ScoreMoves(w.pos, moves, ply, board.NoMove)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		w.pos.MakeMove(move)
		w.nodes++
		score := -w.quiescence(ply+1, -beta, -alpha)
		w.pos.UnmakeMove(move)

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}
