package engine

import (
	"sync/atomic"

	"github.com/mtpham99/mpchess/internal/board"
)

// TTFlag indicates the type of bound stored in a transposition table entry.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // exact score
	TTLowerBound               // failed high (beta cutoff)
	TTUpperBound               // failed low
)

// TTEntry is the decoded view of a transposition table slot, returned
// by Probe once a slot has passed its key-checksum check.
type TTEntry struct {
	Move  board.Move
	Score int16
	Depth uint8
	Flag  TTFlag
	Age   uint8
}

const (
	ttDataMoveShift  = 0
	ttDataScoreShift = 16
	ttDataDepthShift = 32
	ttDataFlagShift  = 40
	ttDataAgeShift   = 42

	ttDataMoveMask  = 0xFFFF
	ttDataScoreMask = 0xFFFF
	ttDataDepthMask = 0xFF
	ttDataFlagMask  = 0x3
	ttDataAgeMask   = 0xFF
)

func packTTData(m board.Move, score int16, depth uint8, flag TTFlag, age uint8) uint64 {
	return uint64(m)<<ttDataMoveShift |
		uint64(uint16(score))<<ttDataScoreShift |
		uint64(depth)<<ttDataDepthShift |
		uint64(flag)<<ttDataFlagShift |
		uint64(age)<<ttDataAgeShift
}

func unpackTTData(data uint64) TTEntry {
	return TTEntry{
		Move:  board.Move(data >> ttDataMoveShift & ttDataMoveMask),
		Score: int16(uint16(data >> ttDataScoreShift & ttDataScoreMask)),
		Depth: uint8(data >> ttDataDepthShift & ttDataDepthMask),
		Flag:  TTFlag(data >> ttDataFlagShift & ttDataFlagMask),
		Age:   uint8(data >> ttDataAgeShift & ttDataAgeMask),
	}
}

// ttSlot is one transposition table cell, laid out as two independently
// atomic words rather than one atomically-updated struct (Go has no
// wide-struct atomic the way C++ can get away with std::atomic<TTEntry>
// under the right size/alignment). key stores hash^data rather than hash
// directly (the "lockless xor trick"): a concurrent Store from another
// searcher can tear a Probe's two loads apart, and XORing the data into
// the key turns that torn read into a checksum mismatch instead of a
// silently wrong hit.
type ttSlot struct {
	key  atomic.Uint64
	data atomic.Uint64
}

// TranspositionTable is a fixed-size, lock-free, always-replace hash
// table shared by every search worker. There is no locking of any kind:
// concurrent probes and stores from different goroutines race freely,
// and the key-checksum catches the resulting torn reads.
type TranspositionTable struct {
	slots []ttSlot
	size  uint64
	age   atomic.Uint32

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewTranspositionTable creates a table sized to hold roughly sizeMB
// megabytes of entries.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	const slotSize = 16 // two uint64 words
	numSlots := uint64(sizeMB) * 1024 * 1024 / slotSize
	if numSlots == 0 {
		numSlots = 1
	}
	return &TranspositionTable{
		slots: make([]ttSlot, numSlots),
		size:  numSlots,
	}
}

// Probe looks up hash in the table. The second return value is false
// if the slot is empty, holds a different position, or a concurrent
// write tore the read.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes.Add(1)

	idx := hash % tt.size
	slot := &tt.slots[idx]

	data := slot.data.Load()
	key := slot.key.Load()

	if key^data != hash {
		return TTEntry{}, false
	}

	tt.hits.Add(1)
	return unpackTTData(data), true
}

// Store writes a result into the table unconditionally (always-replace):
// every store overwrites whatever was in the slot, regardless of the
// existing entry's depth or age. This trades search stability for
// simplicity and cache-friendliness, matching the reference engine's
// strategy on the grounds that a shared, constantly-churning table makes
// more elaborate replacement schemes mostly academic.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Move) {
	idx := hash % tt.size
	slot := &tt.slots[idx]

	age := uint8(tt.age.Load())
	data := packTTData(bestMove, int16(score), uint8(depth), flag, age)

	slot.data.Store(data)
	slot.key.Store(hash ^ data)
}

// NewSearch bumps the table's generation counter, used by HashFull to
// report how much of the table is "live" for the current search.
func (tt *TranspositionTable) NewSearch() {
	tt.age.Add(1)
}

// Clear empties every slot.
func (tt *TranspositionTable) Clear() {
	for i := range tt.slots {
		tt.slots[i].key.Store(0)
		tt.slots[i].data.Store(0)
	}
	tt.age.Store(0)
	tt.hits.Store(0)
	tt.probes.Store(0)
}

// HashFull returns the permille of the table occupied by the current
// search generation, sampled from the first 1000 slots.
func (tt *TranspositionTable) HashFull() int {
	sampleSize := uint64(1000)
	if sampleSize > tt.size {
		sampleSize = tt.size
	}

	currentAge := uint8(tt.age.Load())
	used := 0
	for i := uint64(0); i < sampleSize; i++ {
		data := tt.slots[i].data.Load()
		entry := unpackTTData(data)
		if data != 0 && entry.Age == currentAge {
			used++
		}
	}
	return int(used * 1000 / int(sampleSize))
}

// HitRate returns the probe hit rate as a percentage, for UCI info logging.
func (tt *TranspositionTable) HitRate() float64 {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes) * 100
}

// Size returns the number of slots in the table.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size
}

// AdjustScoreFromTT converts a mate score read from the table (stored
// relative to the node it was found at) into one relative to the root.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-board.MaxPly {
		return score - ply
	}
	if score < -MateScore+board.MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT converts a root-relative mate score into one relative
// to the node being stored, the inverse of AdjustScoreFromTT.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-board.MaxPly {
		return score + ply
	}
	if score < -MateScore+board.MaxPly {
		return score - ply
	}
	return score
}
