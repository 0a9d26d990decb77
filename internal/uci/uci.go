// Package uci implements the Universal Chess Interface protocol on top
// of an engine.Engine: a line-oriented stdin/stdout loop, nothing more.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mtpham99/mpchess/internal/board"
	"github.com/mtpham99/mpchess/internal/engine"
	"github.com/mtpham99/mpchess/internal/logx"
)

// UCI drives one UCI session: a single engine.Engine, read from stdin
// and reported on stdout, with diagnostics on stderr.
type UCI struct {
	eng *engine.Engine
	log zerolog.Logger

	opts engine.Options

	mu        sync.Mutex
	searching bool
	cancel    context.CancelFunc
	searchDone chan struct{}

	debug bool
}

// New creates a UCI handler wrapping eng.
func New(eng *engine.Engine) *UCI {
	return &UCI{
		eng:  eng,
		log:  logx.New(),
		opts: engine.DefaultOptions(),
	}
}

// Run reads commands from stdin until "quit" or EOF.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "setoption":
			u.handleSetOption(args)
		case "debug":
			u.handleDebug(args)
		case "d", "print":
			u.handlePrint()
		case "quit", "q", "exit":
			u.handleStop()
			return
		default:
			u.log.Debug().Str("cmd", cmd).Msg("unrecognized UCI command")
		}
	}
}

func (u *UCI) handleUCI() {
	fmt.Println("id name mpchess")
	fmt.Println("id author mpchess contributors")
	fmt.Println()
	fmt.Println("option name Hash type spin default 16 min 1 max 4096")
	fmt.Println("option name Threads type spin default 1 min 1 max 64")
	fmt.Println("option name MultiPV type spin default 1 min 1 max 16")
	fmt.Println("uciok")
}

func (u *UCI) handleNewGame() {
	u.handleStop()
	u.eng.NewGame()
	u.eng.SetPosition(board.NewBoard())
}

// handlePosition implements "position [startpos|fen <fen>] [moves ...]".
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var pos *board.Board
	var moveStart int

	switch args[0] {
	case "startpos":
		pos = board.NewBoard()
		moveStart = 1
	case "fen":
		end := len(args)
		for i := 1; i < len(args); i++ {
			if args[i] == "moves" {
				end = i
				break
			}
		}
		fenStr := strings.Join(args[1:end], " ")
		parsed, err := board.ParseFEN(fenStr)
		if err != nil {
			u.log.Warn().Err(err).Str("fen", fenStr).Msg("invalid FEN")
			return
		}
		pos = parsed
		moveStart = end
	default:
		return
	}

	for i := moveStart; i < len(args); i++ {
		if args[i] == "moves" {
			moveStart = i + 1
			break
		}
	}

	for _, moveStr := range args[moveStart:] {
		move, err := board.ParseMove(moveStr, pos)
		if err != nil {
			u.log.Warn().Err(err).Str("move", moveStr).Msg("invalid move in position command")
			return
		}
		if !pos.GenerateLegalMoves().Contains(move) {
			u.log.Warn().Str("move", moveStr).Msg("illegal move in position command")
			break
		}
		pos.MakeMove(move)
	}

	u.eng.SetPosition(pos)
}

// handleGo parses "go [...]" and starts an asynchronous search.
func (u *UCI) handleGo(args []string) {
	u.mu.Lock()
	if u.searching {
		u.mu.Unlock()
		return
	}
	u.mu.Unlock()

	limits, tmLimits := u.parseGoArgs(args)

	var ctx context.Context
	var cancel context.CancelFunc
	if tmLimits != nil {
		tm := engine.NewTimeManager()
		pos := u.eng.Position()
		gamePly := 2 * (pos.FullMoveNumber - 1)
		if pos.SideToMove == board.Black {
			gamePly++
		}
		tm.Init(*tmLimits, pos.SideToMove, gamePly)
		limits.MoveTime = tm.OptimumTime()
		ctx, cancel = context.WithTimeout(context.Background(), tm.MaximumTime())
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	u.mu.Lock()
	u.searching = true
	u.cancel = cancel
	u.searchDone = make(chan struct{})
	u.mu.Unlock()

	startTime := time.Now()
	u.eng.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(info)
	}

	go func() {
		defer close(u.searchDone)
		defer cancel()

		move := u.eng.Go(ctx, limits)

		u.mu.Lock()
		u.searching = false
		u.mu.Unlock()

		if move == board.NoMove {
			fmt.Println("bestmove 0000")
			return
		}
		u.log.Debug().Str("move", move.String()).Dur("elapsed", time.Since(startTime)).Msg("search finished")
		fmt.Printf("bestmove %s\n", move.String())
	}()
}

// parseGoArgs parses "go" arguments into engine search limits, plus
// time-control fields when wtime/btime are present (nil otherwise).
func (u *UCI) parseGoArgs(args []string) (engine.SearchLimits, *engine.UCILimits) {
	var limits engine.SearchLimits
	var tm engine.UCILimits
	haveTimeControl := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				limits.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				n, _ := strconv.ParseUint(args[i+1], 10, 64)
				limits.Nodes = n
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "infinite":
			limits.Infinite = true
		case "searchmoves":
			for i+1 < len(args) {
				move, err := board.ParseMove(args[i+1], u.eng.Position())
				if err != nil {
					break
				}
				limits.SearchMoves = append(limits.SearchMoves, move)
				i++
			}
		case "wtime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				tm.Time[board.White] = time.Duration(ms) * time.Millisecond
				haveTimeControl = true
				i++
			}
		case "btime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				tm.Time[board.Black] = time.Duration(ms) * time.Millisecond
				haveTimeControl = true
				i++
			}
		case "winc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				tm.Inc[board.White] = time.Duration(ms) * time.Millisecond
				i++
			}
		case "binc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				tm.Inc[board.Black] = time.Duration(ms) * time.Millisecond
				i++
			}
		case "movestogo":
			if i+1 < len(args) {
				tm.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}

	if limits.MoveTime > 0 || limits.Infinite || !haveTimeControl {
		return limits, nil
	}
	tm.SearchMoves = limits.SearchMoves
	return limits, &tm
}

func (u *UCI) handleStop() {
	u.mu.Lock()
	if !u.searching {
		u.mu.Unlock()
		return
	}
	done := u.searchDone
	u.eng.Stop()
	if u.cancel != nil {
		u.cancel()
	}
	u.mu.Unlock()

	<-done
}

func (u *UCI) handleSetOption(args []string) {
	var name, value string
	var readingValue bool
	for _, arg := range args {
		switch arg {
		case "name":
			readingValue = false
		case "value":
			readingValue = true
		default:
			if readingValue {
				value = appendWord(value, arg)
			} else {
				name = appendWord(name, arg)
			}
		}
	}

	opts := u.opts
	switch strings.ToLower(name) {
	case "hash":
		if n, err := strconv.Atoi(value); err == nil {
			opts.HashMB = n
		}
	case "threads":
		if n, err := strconv.Atoi(value); err == nil {
			opts.Threads = n
		}
	case "multipv":
		if n, err := strconv.Atoi(value); err == nil {
			opts.MultiPV = n
		}
	default:
		u.log.Debug().Str("name", name).Str("value", value).Msg("unrecognized option")
		return
	}

	u.opts = opts
	u.eng.SetOption(opts)
}

func (u *UCI) handleDebug(args []string) {
	if len(args) == 0 {
		return
	}
	switch strings.ToLower(args[0]) {
	case "on", "yes", "y":
		u.debug = true
	case "off", "no", "n":
		u.debug = false
	}
}

func (u *UCI) handlePrint() {
	pos := u.eng.Position()
	fmt.Println(pos.String())

	moves := pos.GenerateLegalMoves()
	sanMoves := make([]string, moves.Len())
	for i, m := range moves.Slice() {
		sanMoves[i] = m.ToSAN(pos)
	}
	fmt.Printf("legal moves (%d): %s\n", len(sanMoves), strings.Join(sanMoves, " "))
	fmt.Printf("eval: %s\n", engine.ScoreToString(u.eng.Evaluate()))
}

func appendWord(s, word string) string {
	if s == "" {
		return word
	}
	return s + " " + word
}

// sendInfo renders one iteration's progress as a UCI "info" line.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	var b strings.Builder
	fmt.Fprintf(&b, "info depth %d", info.Depth)
	if info.MultiPV > 0 {
		fmt.Fprintf(&b, " multipv %d", info.MultiPV)
	}

	switch {
	case info.Score > engine.MateScore-board.MaxPly:
		fmt.Fprintf(&b, " score mate %d", (engine.MateScore-info.Score+1)/2)
	case info.Score < -engine.MateScore+board.MaxPly:
		fmt.Fprintf(&b, " score mate %d", -(engine.MateScore+info.Score+1)/2)
	default:
		fmt.Fprintf(&b, " score cp %d", info.Score)
	}

	fmt.Fprintf(&b, " nodes %d nps %d time %d hashfull %d",
		info.Nodes, info.NPS, info.Time.Milliseconds(), info.HashFull)

	if len(info.PV) > 0 {
		moves := make([]string, len(info.PV))
		for i, m := range info.PV {
			moves[i] = m.String()
		}
		fmt.Fprintf(&b, " pv %s", strings.Join(moves, " "))
	}

	fmt.Println(b.String())
}
