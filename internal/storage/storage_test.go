package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open in-memory storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferences(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		is := is.New(t)
		prefs, err := openTest(t).LoadPreferences()
		is.NoErr(err)
		is.Equal(prefs.MaxDepth, 64)
		is.Equal(prefs.TableSlots, 1_000_000)
		is.Equal(prefs.EndgameEmpties, 12)
		is.True(prefs.ProbeTable)
		is.True(prefs.UseBook)
	})

	t.Run("SaveLoad", func(t *testing.T) {
		is := is.New(t)
		s := openTest(t)

		prefs := DefaultPreferences()
		prefs.MaxDepth = 9
		prefs.ProbeTable = false
		prefs.BookPath = "/tmp/book.bin"
		is.NoErr(s.SavePreferences(prefs))

		loaded, err := s.LoadPreferences()
		is.NoErr(err)
		is.Equal(loaded.MaxDepth, 9)
		is.True(!loaded.ProbeTable)
		is.Equal(loaded.BookPath, "/tmp/book.bin")
		is.True(!loaded.LastPlayed.IsZero())
	})
}

func TestRecordGame(t *testing.T) {
	is := is.New(t)
	s := openTest(t)

	games := []GameRecord{
		{Black: "engine", White: "random", Moves: []string{"f5", "d6"}, BlackDiscs: 40, WhiteDiscs: 24, Duration: time.Second},
		{Black: "random", White: "engine", BlackDiscs: 10, WhiteDiscs: 54, Duration: 2 * time.Second},
		{Black: "engine", White: "engine", BlackDiscs: 32, WhiteDiscs: 32},
	}
	for i, g := range games {
		id, err := s.RecordGame(g)
		is.NoErr(err)
		is.Equal(id, uint64(i+1))
	}

	stats, err := s.LoadStats()
	is.NoErr(err)
	is.Equal(stats.GamesPlayed, 3)
	is.Equal(stats.BlackWins, 1)
	is.Equal(stats.WhiteWins, 1)
	is.Equal(stats.Draws, 1)
	is.Equal(stats.WinsByPlayer["engine"], 2)
	is.Equal(stats.TotalDiscDiff, 16-44)
	is.Equal(stats.TotalPlayTime, 3*time.Second)

	rec, err := s.Game(1)
	is.NoErr(err)
	is.Equal(rec.Moves, []string{"f5", "d6"})
	is.Equal(rec.Winner(), "engine")
	is.True(!rec.PlayedAt.IsZero())

	_, err = s.Game(42)
	is.True(err != nil)

	recent, err := s.RecentGames(2)
	is.NoErr(err)
	is.Equal(len(recent), 2)
	is.Equal(recent[0].ID, uint64(3))
	is.Equal(recent[1].ID, uint64(2))
}

func TestWinRate(t *testing.T) {
	is := is.New(t)

	stats := NewGameStats()
	is.Equal(stats.GetWinRate("engine"), 0.0)

	stats.GamesPlayed = 10
	stats.WinsByPlayer["engine"] = 5
	is.Equal(stats.GetWinRate("engine"), 50.0)
}

func TestDataPaths(t *testing.T) {
	is := is.New(t)
	t.Setenv(HomeEnv, "")
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	dataDir, err := GetDataDir()
	is.NoErr(err)
	is.Equal(filepath.Base(dataDir), appName)

	dbDir, err := GetDatabaseDir()
	is.NoErr(err)
	is.Equal(filepath.Dir(dbDir), dataDir)

	s, err := Open(dbDir)
	is.NoErr(err)
	defer s.Close()

	book, err := DefaultBookPath()
	is.NoErr(err)
	is.Equal(book, filepath.Join(dataDir, "book.bin"))
}

func TestHomeOverride(t *testing.T) {
	is := is.New(t)
	home := filepath.Join(t.TempDir(), "custom")
	t.Setenv(HomeEnv, home)

	dataDir, err := GetDataDir()
	is.NoErr(err)
	is.Equal(dataDir, home)

	info, err := os.Stat(home)
	is.NoErr(err)
	is.True(info.IsDir())
}

func TestPlatformBaseDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("APPDATA", "")

	tests := []struct {
		goos string
		want string
	}{
		{"linux", filepath.Join(home, ".local", "share")},
		{"darwin", filepath.Join(home, "Library", "Application Support")},
		{"windows", filepath.Join(home, "AppData", "Roaming")},
	}

	for _, tc := range tests {
		t.Run(tc.goos, func(t *testing.T) {
			is := is.New(t)
			got, err := platformBaseDir(tc.goos)
			is.NoErr(err)
			is.Equal(got, tc.want)
		})
	}

	t.Run("xdg", func(t *testing.T) {
		is := is.New(t)
		xdg := t.TempDir()
		t.Setenv("XDG_DATA_HOME", xdg)
		got, err := platformBaseDir("linux")
		is.NoErr(err)
		is.Equal(got, xdg)
	})
}
