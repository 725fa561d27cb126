// Command testminimax runs one fixed-depth search from a fixture position
// with the disc-difference heuristic and prints the chosen move.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/othelloplay/internal/board"
	"github.com/hailam/othelloplay/internal/engine"
	"github.com/hailam/othelloplay/internal/player"
	"github.com/hailam/othelloplay/internal/protocol"
)

// Row-major cells, 'b' black, 'w' white.
const fixture = "" +
	"        " +
	"     w  " +
	"b wwwww " +
	"wbwwbw  " +
	" bbbw w " +
	"bbbwww  " +
	"  bw    " +
	"  b     "

var (
	boardFile = flag.String("board", "", "read the position from a 64-cell text file instead of the fixture")
	sideFlag  = flag.String("side", "white", "side to move")
	depth     = flag.Int("depth", 2, "search depth")
	phase     = flag.Bool("phase", false, "use the phase-weighted evaluator instead of disc difference")
	verbose   = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli}).
		With().Timestamp().Logger()

	text := fixture
	if *boardFile != "" {
		data, err := os.ReadFile(*boardFile)
		if err != nil {
			log.Fatal().Err(err).Msg("read-board")
		}
		text = string(data)
	}

	pos, err := board.ParseBoard(text)
	if err != nil {
		log.Fatal().Err(err).Msg("parse-board")
	}

	side, err := board.ParseSide(*sideFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("parse-side")
	}

	opts := engine.DefaultOptions()
	opts.TableSlots = 1 << 16
	opts.EndgameEmpties = 0
	if !*phase {
		opts.Evaluator = engine.CoinEvaluator{}
	}

	p := player.New(side, player.Config{Engine: opts, FixedDepth: *depth})
	p.SetPosition(pos, 0)

	fmt.Fprint(os.Stderr, pos.String())

	move := p.TakeTurn(context.Background(), board.Pass, false, -1)
	log.Info().Str("side", side.String()).Str("move", move.String()).Int("depth", *depth).Msg("chosen")
	fmt.Println(protocol.FormatMove(move))
}
