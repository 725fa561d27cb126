// Command othello plays one side of a game over the tournament line protocol.
//
// Usage:
//
//	othello [flags] Black|White
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/othelloplay/internal/board"
	"github.com/hailam/othelloplay/internal/book"
	"github.com/hailam/othelloplay/internal/engine"
	"github.com/hailam/othelloplay/internal/player"
	"github.com/hailam/othelloplay/internal/protocol"
	"github.com/hailam/othelloplay/internal/storage"
)

var (
	sideFlag   = flag.String("side", "", "side to play: black or white (or pass it as the first argument)")
	depth      = flag.Int("depth", 0, "search exactly this deep, 0 for iterative deepening")
	maxDepth   = flag.Int("max-depth", 0, "iterative deepening cap, 0 for the stored preference")
	ttSize     = flag.Int("tt-size", 0, "transposition table slots per side, 0 for the stored preference")
	endgame    = flag.Int("endgame", -1, "solve exactly at or below this many empties, -1 for the stored preference")
	probe      = flag.Bool("probe", true, "take transposition table cutoffs")
	bookPath   = flag.String("book", "", "opening book file")
	noBook     = flag.Bool("no-book", false, "never play from the opening book")
	dbDir      = flag.String("db", "", "preferences database directory, empty for the platform default")
	noDB       = flag.Bool("no-db", false, "do not open the preferences database")
	logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	setupLogging(*logLevel)

	side, err := parseSide()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("cpu-profiling")
	}

	prefs := loadPreferences()
	cfg := buildConfig(prefs)

	p := player.New(side, cfg)
	p.Engine().OnInfo = func(info engine.SearchInfo) {
		nps := uint64(0)
		if info.Time > 0 {
			nps = uint64(float64(info.Nodes) / info.Time.Seconds())
		}
		log.Debug().
			Int("depth", info.Depth).
			Int32("score", info.Score).
			Str("move", info.Move.String()).
			Str("nodes", humanize.Comma(int64(info.Nodes))).
			Str("nps", humanize.SI(float64(nps), "n/s")).
			Int("hashfull", info.HashFull).
			Dur("elapsed", info.Time).
			Msg("search-info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	h := protocol.New(p, os.Stdin, os.Stdout, os.Stderr)
	if err := h.Run(ctx); err != nil {
		log.Error().Err(err).Msg("protocol-stopped")
	}

	log.Info().
		Str("side", side.String()).
		Int("plies", p.MovesPlayed()).
		Dur("elapsed", time.Since(start).Round(time.Millisecond)).
		Msg("session-done")
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	// stdout carries protocol replies only.
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli}).
		With().Timestamp().Logger()
}

func parseSide() (board.Side, error) {
	s := *sideFlag
	if s == "" && flag.NArg() > 0 {
		s = flag.Arg(0)
	}
	if s == "" {
		return board.First, fmt.Errorf("no side given")
	}
	return board.ParseSide(s)
}

// loadPreferences reads stored preferences, falling back to defaults when
// the database is disabled or unavailable.
func loadPreferences() *storage.Preferences {
	if *noDB {
		return storage.DefaultPreferences()
	}

	var (
		store *storage.Storage
		err   error
	)
	if *dbDir != "" {
		store, err = storage.Open(*dbDir)
	} else {
		store, err = storage.NewStorage()
	}
	if err != nil {
		log.Warn().Err(err).Msg("preferences-unavailable")
		return storage.DefaultPreferences()
	}
	defer store.Close()

	prefs, err := store.LoadPreferences()
	if err != nil {
		log.Warn().Err(err).Msg("preferences-unreadable")
		return storage.DefaultPreferences()
	}
	return prefs
}

// buildConfig merges stored preferences with command-line flags.
func buildConfig(prefs *storage.Preferences) player.Config {
	cfg := player.DefaultConfig()

	cfg.Engine.MaxDepth = prefs.MaxDepth
	cfg.Engine.TableSlots = prefs.TableSlots
	cfg.Engine.EndgameEmpties = prefs.EndgameEmpties
	cfg.Engine.ProbeTable = prefs.ProbeTable

	if *maxDepth > 0 {
		cfg.Engine.MaxDepth = *maxDepth
	}
	if *ttSize > 0 {
		cfg.Engine.TableSlots = *ttSize
	}
	if *endgame >= 0 {
		cfg.Engine.EndgameEmpties = *endgame
	}
	if !*probe {
		cfg.Engine.ProbeTable = false
	}
	cfg.FixedDepth = *depth

	if !*noBook && prefs.UseBook {
		cfg.Book = loadBook(prefs.BookPath)
	}

	log.Debug().
		Int("max-depth", cfg.Engine.MaxDepth).
		Str("tt-slots", humanize.Comma(int64(cfg.Engine.TableSlots))).
		Int("endgame-empties", cfg.Engine.EndgameEmpties).
		Bool("probe", cfg.Engine.ProbeTable).
		Int("book-positions", cfg.Book.Size()).
		Msg("config")

	return cfg
}

// loadBook loads the book from the flag, the stored path or the default
// location, in that order, and falls back to the built-in lines.
func loadBook(stored string) *book.Book {
	path := *bookPath
	if path == "" {
		path = stored
	}
	if path == "" {
		if def, err := storage.DefaultBookPath(); err == nil {
			if _, err := os.Stat(def); err == nil {
				path = def
			}
		}
	}

	if path != "" {
		b, err := book.Load(path)
		if err == nil {
			log.Info().Str("path", path).Int("positions", b.Size()).Msg("book-loaded")
			return b
		}
		log.Warn().Err(err).Msg("book-unavailable")
	}

	return book.Standard()
}
