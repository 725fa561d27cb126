package storage

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	gamePrefix     = "game/"
)

// Preferences stores engine settings that outlive a single run.
// Command-line flags override them.
type Preferences struct {
	MaxDepth       int       `json:"max_depth"`
	TableSlots     int       `json:"table_slots"`
	EndgameEmpties int       `json:"endgame_empties"`
	ProbeTable     bool      `json:"probe_table"`
	BookPath       string    `json:"book_path"`
	UseBook        bool      `json:"use_book"`
	LastPlayed     time.Time `json:"last_played"`
}

// DefaultPreferences returns default preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		MaxDepth:       64,
		TableSlots:     1_000_000,
		EndgameEmpties: 12,
		ProbeTable:     true,
		UseBook:        true,
	}
}

// GameStats stores aggregate results over every recorded game.
type GameStats struct {
	GamesPlayed   int            `json:"games_played"`
	BlackWins     int            `json:"black_wins"`
	WhiteWins     int            `json:"white_wins"`
	Draws         int            `json:"draws"`
	WinsByPlayer  map[string]int `json:"wins_by_player"`
	TotalDiscDiff int            `json:"total_disc_diff"` // Sum of black minus white
	TotalPlayTime time.Duration  `json:"total_play_time"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByPlayer: make(map[string]int),
	}
}

// GameRecord is one finished game.
type GameRecord struct {
	ID         uint64        `json:"id"`
	Black      string        `json:"black"`
	White      string        `json:"white"`
	Moves      []string      `json:"moves"` // Squares in play order, "pass" included
	BlackDiscs int           `json:"black_discs"`
	WhiteDiscs int           `json:"white_discs"`
	Duration   time.Duration `json:"duration"`
	PlayedAt   time.Time     `json:"played_at"`
}

// Winner returns the winning player's name, or "" for a draw.
func (r *GameRecord) Winner() string {
	switch {
	case r.BlackDiscs > r.WhiteDiscs:
		return r.Black
	case r.WhiteDiscs > r.BlackDiscs:
		return r.White
	}
	return ""
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens the database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open database %s", dir)
	}

	return &Storage{db: db}, nil
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open in-memory database")
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePreferences saves preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return errors.Wrap(err, "encode preferences")
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
	return errors.Wrap(err, "save preferences")
}

// LoadPreferences loads preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, keyPreferences, prefs)
	})

	return prefs, errors.Wrap(err, "load preferences")
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()

	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, keyStats, stats)
	})

	return stats, errors.Wrap(err, "load stats")
}

// RecordGame stores a finished game and folds it into the statistics.
// The record's ID is assigned here and returned.
func (s *Storage) RecordGame(rec GameRecord) (uint64, error) {
	if rec.PlayedAt.IsZero() {
		rec.PlayedAt = time.Now()
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		stats := NewGameStats()
		if err := getJSON(txn, keyStats, stats); err != nil {
			return err
		}
		if stats.WinsByPlayer == nil {
			stats.WinsByPlayer = make(map[string]int)
		}

		stats.GamesPlayed++
		rec.ID = uint64(stats.GamesPlayed)
		stats.TotalPlayTime += rec.Duration
		stats.TotalDiscDiff += rec.BlackDiscs - rec.WhiteDiscs

		switch winner := rec.Winner(); {
		case winner == "":
			stats.Draws++
		case rec.BlackDiscs > rec.WhiteDiscs:
			stats.BlackWins++
			stats.WinsByPlayer[winner]++
		default:
			stats.WhiteWins++
			stats.WinsByPlayer[winner]++
		}

		if err := setJSON(txn, gameKey(rec.ID), &rec); err != nil {
			return err
		}
		return setJSON(txn, []byte(keyStats), stats)
	})
	if err != nil {
		return 0, errors.Wrap(err, "record game")
	}

	return rec.ID, nil
}

// Game loads a single game record.
func (s *Storage) Game(id uint64) (*GameRecord, error) {
	var rec GameRecord
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load game %d", id)
	}
	if !found {
		return nil, errors.Errorf("game %d not found", id)
	}

	return &rec, nil
}

// RecentGames returns up to limit records, newest first.
func (s *Storage) RecentGames(limit int) ([]GameRecord, error) {
	var games []GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(gamePrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration seeks from just past the prefix range.
		seek := append([]byte(gamePrefix), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			if limit > 0 && len(games) >= limit {
				break
			}
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			games = append(games, rec)
		}
		return nil
	})

	return games, errors.Wrap(err, "list games")
}

// GetWinRate returns the share of all games won by name, as a percentage
// (0-100).
func (s *GameStats) GetWinRate(name string) float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.WinsByPlayer[name]) / float64(s.GamesPlayed) * 100
}

func gameKey(id uint64) []byte {
	key := make([]byte, len(gamePrefix)+8)
	copy(key, gamePrefix)
	binary.BigEndian.PutUint64(key[len(gamePrefix):], id)
	return key
}

// getJSON decodes the value at key into v, leaving v untouched if absent.
func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}
