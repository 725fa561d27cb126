// Package protocol implements the tournament wrapper's line protocol.
//
// After start-up the engine prints "Init done". Each following line carries
// the opponent's last move and this side's remaining clock:
//
//	X Y MS
//
// where "-1 -1" means the opponent had no move (first move of the game or a
// pass) and MS is in milliseconds, negative for unlimited. The reply is the
// chosen square as "X Y", or "-1 -1" for a pass.
//
// Debug commands: "board" prints the position to the diagnostic stream and
// "quit" ends the session.
package protocol

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hailam/othelloplay/internal/board"
	"github.com/hailam/othelloplay/internal/player"
)

// ErrMalformed is returned for a line that is neither a turn nor a command.
var ErrMalformed = errors.New("malformed line")

// ReadyLine is printed once the player is ready for the first turn.
const ReadyLine = "Init done"

// Turn is one parsed "X Y MS" line.
type Turn struct {
	Move    board.Square // Pass when the opponent had no move
	HasMove bool
	MsLeft  int
}

// Handler feeds protocol lines to a player.
type Handler struct {
	player *player.Player
	in     io.Reader
	out    io.Writer // Replies
	diag   io.Writer // Board dumps and errors
}

// New creates a handler that reads turns from in, replies on out and writes
// diagnostics to diag.
func New(p *player.Player, in io.Reader, out, diag io.Writer) *Handler {
	return &Handler{
		player: p,
		in:     in,
		out:    out,
		diag:   diag,
	}
}

// Run prints the ready line and serves turns until quit, end of input or
// ctx is done. Malformed lines are reported and skipped.
func (h *Handler) Run(ctx context.Context) error {
	if _, err := fmt.Fprintln(h.out, ReadyLine); err != nil {
		return errors.Wrap(err, "write ready line")
	}

	scanner := bufio.NewScanner(h.in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "quit":
			return nil
		case "board":
			h.printBoard()
			continue
		}

		turn, err := ParseTurn(line)
		if err != nil {
			fmt.Fprintf(h.diag, "error: %v\n", err)
			log.Warn().Err(err).Msg("skipped-line")
			continue
		}

		move := h.player.TakeTurn(ctx, turn.Move, turn.HasMove, turn.MsLeft)
		if _, err := fmt.Fprintln(h.out, FormatMove(move)); err != nil {
			return errors.Wrap(err, "write reply")
		}
	}

	return errors.Wrap(scanner.Err(), "read input")
}

func (h *Handler) printBoard() {
	pos := h.player.Position()
	side := h.player.Side()

	legal := lo.Map(pos.LegalMoves(side).Squares(), func(sq board.Square, _ int) string {
		return sq.String()
	})

	fmt.Fprint(h.diag, pos.String())
	fmt.Fprintf(h.diag, "side: %s  moves played: %d  discs: %d-%d\n",
		side, h.player.MovesPlayed(), pos.Count(board.First), pos.Count(board.Second))
	fmt.Fprintf(h.diag, "legal: %s\n", strings.Join(legal, " "))
}

// ParseTurn parses an "X Y MS" line.
func ParseTurn(line string) (Turn, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Turn{}, errors.Wrapf(ErrMalformed, "%q: want 3 fields, got %d", line, len(fields))
	}

	var nums [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Turn{}, errors.Wrapf(ErrMalformed, "%q: field %d is not a number", line, i+1)
		}
		nums[i] = n
	}

	sq, err := board.FromCoords(nums[0], nums[1])
	if err != nil {
		return Turn{}, errors.Wrapf(ErrMalformed, "%q: %v", line, err)
	}

	return Turn{
		Move:    sq,
		HasMove: sq != board.Pass,
		MsLeft:  nums[2],
	}, nil
}

// FormatMove renders a reply, "-1 -1" for a pass.
func FormatMove(sq board.Square) string {
	x, y := sq.Coords()
	return fmt.Sprintf("%d %d", x, y)
}
