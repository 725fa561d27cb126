// Package player keeps one side's view of a game and answers each turn with
// a move.
package player

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/hailam/othelloplay/internal/board"
	"github.com/hailam/othelloplay/internal/book"
	"github.com/hailam/othelloplay/internal/engine"
)

// Config configures a Player.
type Config struct {
	Engine     engine.Options
	Book       *book.Book // Optional, probed before searching
	FixedDepth int        // Search exactly this deep, 0 for iterative deepening
}

// DefaultConfig returns the tournament configuration without a book.
func DefaultConfig() Config {
	return Config{Engine: engine.DefaultOptions()}
}

// Player tracks the game board for one side and picks its moves.
// It is not safe for concurrent use.
type Player struct {
	side        board.Side
	pos         board.Position
	movesPlayed int
	fresh       bool // No opponent turn precedes the next TakeTurn

	engine *engine.Engine
	book   *book.Book
	tm     *engine.TimeManager
	depth  int
}

// New creates a player for side at the opening position.
func New(side board.Side, cfg Config) *Player {
	return &Player{
		side:   side,
		pos:    board.NewPosition(),
		fresh:  side == board.First,
		engine: engine.NewEngine(cfg.Engine),
		book:   cfg.Book,
		tm:     engine.NewTimeManager(),
		depth:  cfg.FixedDepth,
	}
}

// TakeTurn applies the opponent's last move and returns this side's reply.
// hasOpponentMove is false on the first move of the game or when the
// opponent passed. msLeft is the time left on this side's clock, negative
// for unlimited.
//
// Pass is returned only when no placement is legal. An illegal opponent move
// is logged and ignored.
func (p *Player) TakeTurn(ctx context.Context, opponentMove board.Square, hasOpponentMove bool, msLeft int) board.Square {
	opp := p.side.Opposite()

	switch {
	case hasOpponentMove && opponentMove.IsValid():
		if p.pos.ApplyMove(opponentMove, opp) {
			p.movesPlayed++
			log.Debug().Str("move", opponentMove.String()).Msg("opponent-moved")
		} else {
			log.Error().Str("move", opponentMove.String()).Str("side", opp.String()).Msg("illegal-opponent-move")
		}
	case !p.fresh:
		// The opponent had a turn and did not place.
		p.movesPlayed++
		log.Debug().Msg("opponent-passed")
	}
	p.fresh = false

	move := p.chooseMove(ctx, msLeft)

	if !p.pos.ApplyMove(move, p.side) {
		// Engine moves come from the legal set; this is a defect.
		log.Error().Str("move", move.String()).Msg("engine-chose-illegal-move")
		move = p.pos.LegalMoves(p.side).LSB()
		p.pos.ApplyMove(move, p.side)
	}
	p.movesPlayed++

	log.Info().
		Str("move", move.String()).
		Int32("score", p.Score()).
		Int("discs", p.pos.Count(p.side)).
		Int("opponent-discs", p.pos.Count(opp)).
		Msg("our-move")

	return move
}

func (p *Player) chooseMove(ctx context.Context, msLeft int) board.Square {
	if !p.pos.HasLegalMove(p.side) {
		return board.Pass
	}

	if move, ok := p.book.Probe(&p.pos, p.side); ok {
		log.Debug().Str("move", move.String()).Msg("book-move")
		return move
	}

	p.tm.Init(msLeft, p.pos.Empties())
	if deadline, ok := p.tm.Deadline(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}
	limits := engine.SearchLimits{
		Depth:    p.depth,
		MoveTime: p.tm.Budget(),
	}

	res := p.engine.FindBestMove(ctx, &p.pos, p.side, p.movesPlayed, limits)
	if p.tm.ShouldStop() {
		log.Warn().
			Dur("budget", p.tm.Budget()).
			Dur("elapsed", p.tm.Elapsed()).
			Msg("move-over-budget")
	}
	log.Debug().
		Int("depth", res.Depth).
		Int32("score", res.Score).
		Bool("solved", res.Solved).
		Uint64("nodes", res.Nodes).
		Dur("budget", limits.MoveTime).
		Dur("elapsed", p.tm.Elapsed()).
		Msg("search-done")

	return res.Move
}

// Side returns the side this player plays.
func (p *Player) Side() board.Side {
	return p.side
}

// Position returns a copy of the current board.
func (p *Player) Position() board.Position {
	return p.pos.Copy()
}

// MovesPlayed returns the number of plies played so far, passes included.
func (p *Player) MovesPlayed() int {
	return p.movesPlayed
}

// Score evaluates the current board for this side.
func (p *Player) Score() int32 {
	return p.engine.Evaluator().Score(&p.pos, p.side, p.movesPlayed)
}

// Engine returns the underlying search engine.
func (p *Player) Engine() *engine.Engine {
	return p.engine
}

// SetPosition replaces the board, for loading fixture positions. A missing
// opponent move on the next TakeTurn is not counted as a pass.
func (p *Player) SetPosition(pos board.Position, movesPlayed int) {
	p.pos = pos
	p.movesPlayed = movesPlayed
	p.fresh = true
}
