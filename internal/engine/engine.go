package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/othelloplay/internal/board"
)

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int32
	Move     board.Square
	Nodes    uint64
	Time     time.Duration
	HashFull int // Permille of transposition table used
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = engine default)
	MoveTime time.Duration // Time for this move (0 = no limit)
}

// SearchResult is the outcome of a move request.
type SearchResult struct {
	Move   board.Square
	Score  int32 // Heuristic value, or final disc difference when Solved
	Depth  int   // Deepest completed pass, 0 if none completed
	Nodes  uint64
	Time   time.Duration
	Solved bool // Move came from the exact endgame solver
}

// Options configures an Engine.
type Options struct {
	TableSlots     int       // Transposition slots per side to move
	MaxDepth       int       // Iterative deepening cap
	ProbeTable     bool      // Consult the transposition table during search
	EndgameEmpties int       // Solve exactly at or below this many empties, 0 disables
	Evaluator      Evaluator // nil selects a PhaseEvaluator
}

// Default sizes
const (
	DefaultEndgameEmpties = 12
	defaultStabilitySlots = 1 << 16
)

// DefaultOptions returns the tournament configuration.
func DefaultOptions() Options {
	return Options{
		TableSlots:     DefaultTableSlots,
		MaxDepth:       MaxSearchDepth,
		ProbeTable:     true,
		EndgameEmpties: DefaultEndgameEmpties,
	}
}

// Engine is the Othello search engine. It owns its transposition and
// history tables, which persist across move requests of one game.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	opts    Options
	eval    Evaluator
	tt      *TranspositionTable
	history *HistoryTable

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine with the given options.
func NewEngine(opts Options) *Engine {
	if opts.MaxDepth <= 0 || opts.MaxDepth > MaxSearchDepth {
		opts.MaxDepth = MaxSearchDepth
	}
	if opts.EndgameEmpties < 0 {
		opts.EndgameEmpties = 0
	}

	eval := opts.Evaluator
	if eval == nil {
		eval = NewPhaseEvaluator(defaultStabilitySlots)
	}

	return &Engine{
		opts:    opts,
		eval:    eval,
		tt:      NewTranspositionTable(opts.TableSlots),
		history: NewHistoryTable(),
	}
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Evaluator returns the evaluator used at leaves.
func (e *Engine) Evaluator() Evaluator {
	return e.eval
}

// Table returns the transposition table.
func (e *Engine) Table() *TranspositionTable {
	return e.tt
}

// FindBestMove searches pos for side by iterative deepening and returns the
// move of the deepest completed pass. movesPlayed is the game ply count used
// by the evaluator's phase bands.
//
// The search stops when ctx is done, when limits.MoveTime elapses or when the
// depth cap is reached. If not even depth 1 completes the first legal square
// is returned. Pass is returned only when side has no placement.
func (e *Engine) FindBestMove(ctx context.Context, pos *board.Position, side board.Side, movesPlayed int, limits SearchLimits) SearchResult {
	startTime := time.Now()

	moves := pos.LegalMoves(side)
	if moves == 0 {
		return SearchResult{Move: board.Pass}
	}

	if limits.MoveTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limits.MoveTime)
		defer cancel()
	}

	result := SearchResult{Move: moves.LSB()}

	if moves.PopCount() == 1 {
		result.Time = time.Since(startTime)
		return result
	}

	if e.opts.EndgameEmpties > 0 && pos.Empties() <= e.opts.EndgameEmpties {
		if solved, ok := e.tryEndgame(ctx, pos, side, limits.MoveTime); ok {
			solved.Time = time.Since(startTime)
			return solved
		}
	}

	maxDepth := e.opts.MaxDepth
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	e.history.Reset()
	var nodes uint64

	for depth := 1; depth <= maxDepth; depth++ {
		if ctx.Err() != nil {
			break
		}

		e.history.Decay()

		s := e.newSearcher(ctx)
		score, move, err := s.negascout(pos, side, depth, -Infinity, Infinity, movesPlayed)
		nodes += s.nodes
		if err != nil {
			log.Debug().Int("depth", depth).Uint64("nodes", s.nodes).Msg("iteration-aborted")
			break
		}

		result.Move = move
		result.Score = score
		result.Depth = depth

		elapsed := time.Since(startTime)
		log.Debug().
			Int("depth", depth).
			Int32("score", score).
			Str("move", move.String()).
			Uint64("nodes", nodes).
			Dur("elapsed", elapsed).
			Msg("iteration-complete")

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    score,
				Move:     move,
				Nodes:    nodes,
				Time:     elapsed,
				HashFull: e.tt.Fill(),
			})
		}

		// A forced result cannot change with more depth.
		if IsWinScore(score) {
			break
		}
	}

	result.Nodes = nodes
	result.Time = time.Since(startTime)
	return result
}

// SearchDepth runs a single negascout pass to the given depth with the
// current table and history state. It returns ErrSearchAborted if ctx ends
// before the pass completes.
func (e *Engine) SearchDepth(ctx context.Context, pos *board.Position, side board.Side, movesPlayed, depth int) (board.Square, int32, error) {
	s := e.newSearcher(ctx)
	score, move, err := s.negascout(pos, side, depth, -Infinity, Infinity, movesPlayed)
	if err != nil {
		return board.Pass, 0, err
	}
	return move, score, nil
}

func (e *Engine) newSearcher(ctx context.Context) *searcher {
	return &searcher{
		ctx:     ctx,
		eval:    e.eval,
		tt:      e.tt,
		history: e.history,
		probe:   e.opts.ProbeTable,
	}
}

// tryEndgame runs the exact solver on at most half of the move budget so the
// heuristic search still has time if the solve does not finish.
func (e *Engine) tryEndgame(ctx context.Context, pos *board.Position, side board.Side, budget time.Duration) (SearchResult, bool) {
	if budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget/2)
		defer cancel()
	}

	solver := newEndgameSolver(ctx)
	move, diff, err := solver.Solve(pos, side)
	if err != nil {
		log.Debug().Int("empties", pos.Empties()).Uint64("nodes", solver.nodes).Msg("endgame-solve-aborted")
		return SearchResult{}, false
	}

	log.Debug().
		Int("empties", pos.Empties()).
		Int32("disc-diff", diff).
		Str("move", move.String()).
		Uint64("nodes", solver.nodes).
		Msg("endgame-solved")

	return SearchResult{
		Move:   move,
		Score:  diff,
		Depth:  pos.Empties(),
		Nodes:  solver.nodes,
		Solved: true,
	}, true
}

// Clear clears the transposition table and other caches.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.history.Reset()
	if c, ok := e.eval.(interface{ Clear() }); ok {
		c.Clear()
	}
}
