// Command selfplay runs engine-versus-engine matches concurrently and
// records every finished game.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/othelloplay/internal/board"
	"github.com/hailam/othelloplay/internal/book"
	"github.com/hailam/othelloplay/internal/engine"
	"github.com/hailam/othelloplay/internal/player"
	"github.com/hailam/othelloplay/internal/storage"
)

var (
	games    = flag.Int("games", 10, "number of games")
	parallel = flag.Int("parallel", runtime.NumCPU(), "games played at once")
	aDepth   = flag.Int("a-depth", 0, "fixed depth of contender A, 0 for iterative deepening")
	bDepth   = flag.Int("b-depth", 2, "fixed depth of contender B, 0 for iterative deepening")
	clock    = flag.Duration("clock", 10*time.Second, "game clock per side, 0 for unlimited")
	ttSize   = flag.Int("tt-size", 1<<18, "transposition table slots per side")
	useBook  = flag.Bool("book", true, "open from the built-in book")
	dbDir    = flag.String("db", "", "database directory, empty for the platform default")
	memory   = flag.Bool("memory", false, "keep results in memory only")
	logLevel = flag.String("log-level", "info", "log level: debug, info, warn, error")
)

// contender is one engine configuration taking part in the match.
type contender struct {
	name  string
	depth int
}

func main() {
	flag.Parse()

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli}).
		With().Timestamp().Logger()

	store, err := openStorage()
	if err != nil {
		log.Fatal().Err(err).Msg("open-storage")
	}
	defer store.Close()

	a := contender{name: contenderName("A", *aDepth), depth: *aDepth}
	b := contender{name: contenderName("B", *bDepth), depth: *bDepth}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	records := make([]storage.GameRecord, *games)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*parallel, 1))
	for i := 0; i < *games; i++ {
		i := i
		// Colours alternate so both contenders play both sides.
		black, white := a, b
		if i%2 == 1 {
			black, white = b, a
		}

		g.Go(func() error {
			rec, err := playGame(gctx, i, black, white)
			if err != nil {
				return errors.Wrapf(err, "game %d", i)
			}
			id, err := store.RecordGame(rec)
			if err != nil {
				return err
			}
			rec.ID = id
			records[i] = rec

			log.Info().
				Uint64("id", id).
				Str("black", rec.Black).
				Str("white", rec.White).
				Int("black-discs", rec.BlackDiscs).
				Int("white-discs", rec.WhiteDiscs).
				Dur("duration", rec.Duration.Round(time.Millisecond)).
				Msg("game-finished")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("match-stopped")
	}

	summarize(store, lo.Filter(records, func(r storage.GameRecord, _ int) bool { return r.ID != 0 }), a, b, time.Since(start))
}

func contenderName(label string, depth int) string {
	if depth == 0 {
		return label + "-id"
	}
	return fmt.Sprintf("%s-d%d", label, depth)
}

func openStorage() (*storage.Storage, error) {
	switch {
	case *memory:
		return storage.OpenInMemory()
	case *dbDir != "":
		return storage.Open(*dbDir)
	}
	return storage.NewStorage()
}

func newPlayer(side board.Side, c contender, game int) *player.Player {
	opts := engine.DefaultOptions()
	opts.TableSlots = *ttSize

	cfg := player.Config{Engine: opts, FixedDepth: c.depth}
	if *useBook {
		var seed [32]byte
		binary.LittleEndian.PutUint64(seed[:], uint64(game))
		seed[8] = byte(side)
		cfg.Book = book.Standard()
		cfg.Book.Seed(seed)
	}

	return player.New(side, cfg)
}

// playGame referees one game between black and white.
func playGame(ctx context.Context, game int, black, white contender) (storage.GameRecord, error) {
	players := [2]*player.Player{
		newPlayer(board.First, black, game),
		newPlayer(board.Second, white, game),
	}

	var clocks [2]time.Duration
	for i := range clocks {
		clocks[i] = *clock
	}

	referee := board.NewPosition()
	rec := storage.GameRecord{Black: black.name, White: white.name}
	start := time.Now()

	last, hasLast := board.Pass, false
	side := board.First
	for !referee.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return rec, err
		}

		msLeft := -1
		if *clock > 0 {
			msLeft = max(int(clocks[side].Milliseconds()), 0)
		}

		moveStart := time.Now()
		move := players[side].TakeTurn(ctx, last, hasLast, msLeft)
		clocks[side] -= time.Since(moveStart)

		if !referee.ApplyMove(move, side) {
			return rec, errors.Errorf("%s played illegal move %s", side, move)
		}
		rec.Moves = append(rec.Moves, move.String())

		last, hasLast = move, move != board.Pass
		side = side.Opposite()
	}

	rec.BlackDiscs = referee.Count(board.First)
	rec.WhiteDiscs = referee.Count(board.Second)
	rec.Duration = time.Since(start)
	rec.PlayedAt = time.Now()
	return rec, nil
}

func summarize(store *storage.Storage, records []storage.GameRecord, a, b contender, elapsed time.Duration) {
	winsA := lo.CountBy(records, func(r storage.GameRecord) bool { return r.Winner() == a.name })
	winsB := lo.CountBy(records, func(r storage.GameRecord) bool { return r.Winner() == b.name })
	draws := len(records) - winsA - winsB
	plies := lo.SumBy(records, func(r storage.GameRecord) int { return len(r.Moves) })

	fmt.Printf("%s vs %s: %d-%d-%d over %s games (%s plies) in %s\n",
		a.name, b.name, winsA, winsB, draws,
		humanize.Comma(int64(len(records))), humanize.Comma(int64(plies)),
		elapsed.Round(time.Millisecond))

	stats, err := store.LoadStats()
	if err != nil {
		log.Warn().Err(err).Msg("stats-unavailable")
		return
	}
	fmt.Printf("all recorded games: %s, %s wins %.1f%%, %s wins %.1f%%, %d draws\n",
		humanize.Comma(int64(stats.GamesPlayed)),
		a.name, stats.GetWinRate(a.name),
		b.name, stats.GetWinRate(b.name),
		stats.Draws)
}
