package engine

import (
	"github.com/mtpham99/mpchess/internal/board"
)

// Move ordering score bands. Each band sits comfortably above the next
// so that, e.g., even the worst capture still outranks the best killer
// move.
const (
	ttMoveScore = 10_000_000
	captureBase = 1_000_000
)

// killerScore returns the ordering score for the killer slot at index i
// (0 = most recently stored), spaced so slot 0 outranks slot 1, etc.
func killerScore(i int) int {
	return 900_000 - i*10_000
}

// mvvLva scores a capture by (victim value band) - (attacker value band),
// so that "queen takes pawn" ranks below "pawn takes queen" despite both
// being captures.
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// MovePicker holds the move-ordering state shared by every search
// worker: the killer-move table and the quiet-move history table,
// indexed by piece (12 values) and destination square, per the engine's
// process-wide ordering tables. Workers read and update it without
// synchronization — a race perturbs ordering, never correctness, the
// same tolerance the transposition table accepts.
type MovePicker struct {
	killers [board.MaxPly][board.NumKillerMoves]board.Move
	history [12][64]int32
}

// NewMovePicker creates an empty move picker.
func NewMovePicker() *MovePicker {
	return &MovePicker{}
}

// Clear resets killer moves and history scores for a new game.
func (mp *MovePicker) Clear() {
	for i := range mp.killers {
		for j := range mp.killers[i] {
			mp.killers[i][j] = board.NoMove
		}
	}
	for i := range mp.history {
		for j := range mp.history[i] {
			mp.history[i][j] = 0
		}
	}
}

// ScoreMoves assigns an ordering score to every move in moves.
func (mp *MovePicker) ScoreMoves(b *board.Board, moves *board.MoveList, ply int, ttMove board.Move) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mp.scoreMove(b, moves.Get(i), ply, ttMove)
	}
	return scores
}

func (mp *MovePicker) scoreMove(b *board.Board, m board.Move, ply int, ttMove board.Move) int {
	if m == ttMove {
		return ttMoveScore
	}

	if m.IsCapture() {
		attackerPiece := b.PieceAt(m.From())
		attacker := attackerPiece.Type()

		var victim board.PieceType
		if m.IsEnPassant() {
			victim = board.Pawn
		} else {
			victim = b.PieceAt(m.To()).Type()
		}
		if victim >= board.King || attacker > board.King {
			return captureBase
		}

		return captureBase + mvvLva[victim][attacker]*1000
	}

	if m.IsPromotion() {
		return captureBase - 1000 + int(m.PromotionPieceType())*100
	}

	for i, k := range mp.killers[ply] {
		if m == k {
			return killerScore(i)
		}
	}

	return mp.historyScore(b.PieceAt(m.From()), m.To())
}

// IsKiller reports whether m occupies any killer slot at ply.
func (mp *MovePicker) IsKiller(m board.Move, ply int) bool {
	for _, k := range mp.killers[ply] {
		if m == k {
			return true
		}
	}
	return false
}

// SortMoves fully sorts moves by descending score (selection sort, fine
// for the handful of dozens of moves a chess position ever generates).
func SortMoves(moves *board.MoveList, scores []int) {
	n := moves.Len()
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves.Swap(i, best)
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// PickMove moves the best-scoring move among moves[index:] into index,
// allowing the search to sort lazily: only as many moves are ranked as
// the search actually visits before a cutoff.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers records m as a killer at ply, shifting older killers
// down and dropping the oldest once all slots are full.
func (mp *MovePicker) UpdateKillers(m board.Move, ply int) {
	if ply >= board.MaxPly {
		return
	}
	slots := &mp.killers[ply]
	if slots[0] == m {
		return
	}
	for i := len(slots) - 1; i > 0; i-- {
		slots[i] = slots[i-1]
	}
	slots[0] = m
}

// UpdateHistory adds depth^2 to the history score for the piece moving
// to m's destination, the bonus a quiet move earns for improving alpha.
func (mp *MovePicker) UpdateHistory(piece board.Piece, to board.Square, depth int) {
	if piece == board.NoPiece {
		return
	}
	bonus := int32(depth * depth)
	mp.history[piece][to] += bonus
	if mp.history[piece][to] > 400000 {
		for i := range mp.history {
			for j := range mp.history[i] {
				mp.history[i][j] /= 2
			}
		}
	}
}

// historyScore returns the raw history score for a piece moving to sq.
func (mp *MovePicker) historyScore(piece board.Piece, sq board.Square) int {
	if piece == board.NoPiece {
		return 0
	}
	return int(mp.history[piece][sq])
}

// GetHistoryScore returns the raw history score for a move about to be
// made from b, used by pruning decisions that need it before the move
// is played.
func (mp *MovePicker) GetHistoryScore(b *board.Board, m board.Move) int {
	return mp.historyScore(b.PieceAt(m.From()), m.To())
}
