// Package book implements a small opening book keyed by position and side
// to move.
package book

import (
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/hailam/othelloplay/internal/board"
)

// ErrBadRecord is returned when a book file holds a truncated or invalid record.
var ErrBadRecord = errors.New("bad book record")

// Record layout, big-endian:
// 8 bytes: position key
// 1 byte:  square (0-63)
// 2 bytes: weight
const recordSize = 11

// secondToMove is mixed into the key when Second is to move, so the same
// discs reached with a different side to move do not share entries.
const secondToMove uint64 = 0x9E3779B97F4A7C15

// Key returns the book key of pos with side to move.
func Key(pos *board.Position, side board.Side) uint64 {
	key := pos.Hash()
	if side == board.Second {
		key ^= secondToMove
	}
	return key
}

// Entry represents a single book entry.
type Entry struct {
	Move   board.Square
	Weight uint16
}

// Book represents an opening book.
type Book struct {
	entries map[uint64][]Entry
	rng     *frand.RNG
}

// New creates an empty book.
func New() *Book {
	return &Book{
		entries: make(map[uint64][]Entry),
		rng:     frand.New(),
	}
}

// Seed makes weighted selection reproducible.
func (b *Book) Seed(seed [32]byte) {
	b.rng = frand.NewCustom(seed[:], 1024, 12)
}

// Load loads a book from a file.
func Load(filename string) (*Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open book")
	}
	defer file.Close()

	b, err := Read(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read book %s", filename)
	}
	return b, nil
}

// Read loads a book from a reader.
func Read(r io.Reader) (*Book, error) {
	book := New()

	var rec [recordSize]byte
	for n := 0; ; n++ {
		_, err := io.ReadFull(r, rec[:])
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(ErrBadRecord, "record %d truncated", n)
		}
		if err != nil {
			return nil, err
		}

		key := binary.BigEndian.Uint64(rec[0:8])
		sq := board.Square(rec[8])
		weight := binary.BigEndian.Uint16(rec[9:11])

		if !sq.IsValid() {
			return nil, errors.Wrapf(ErrBadRecord, "record %d: square %d", n, rec[8])
		}

		book.entries[key] = append(book.entries[key], Entry{Move: sq, Weight: weight})
	}

	return book, nil
}

// WriteTo writes the book in record format, ordered by key then square.
func (b *Book) WriteTo(w io.Writer) (int64, error) {
	keys := lo.Keys(b.entries)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var written int64
	var rec [recordSize]byte
	for _, key := range keys {
		entries := append([]Entry(nil), b.entries[key]...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Move < entries[j].Move })

		for _, e := range entries {
			binary.BigEndian.PutUint64(rec[0:8], key)
			rec[8] = byte(e.Move)
			binary.BigEndian.PutUint16(rec[9:11], e.Weight)

			n, err := w.Write(rec[:])
			written += int64(n)
			if err != nil {
				return written, errors.Wrap(err, "write book")
			}
		}
	}

	return written, nil
}

// Add records sq as a book move for side in pos. Adding an existing move
// accumulates its weight.
func (b *Book) Add(pos *board.Position, side board.Side, sq board.Square, weight uint16) {
	key := Key(pos, side)
	for i := range b.entries[key] {
		if b.entries[key][i].Move == sq {
			b.entries[key][i].Weight += weight
			return
		}
	}
	b.entries[key] = append(b.entries[key], Entry{Move: sq, Weight: weight})
}

// Probe looks up a position in the book and returns a move using weighted
// random selection. Entries that are not legal in pos are skipped.
func (b *Book) Probe(pos *board.Position, side board.Side) (board.Square, bool) {
	entries := b.ProbeAll(pos, side)
	if len(entries) == 0 {
		return board.Pass, false
	}

	totalWeight := lo.SumBy(entries, func(e Entry) int { return int(e.Weight) })
	if totalWeight == 0 {
		// All weights are 0, just pick the first
		return entries[0].Move, true
	}

	r := b.rng.Intn(totalWeight)
	cumulative := 0
	for _, e := range entries {
		cumulative += int(e.Weight)
		if r < cumulative {
			return e.Move, true
		}
	}

	// Fallback to first entry
	return entries[0].Move, true
}

// ProbeAll returns the legal book moves for the position, sorted by weight.
func (b *Book) ProbeAll(pos *board.Position, side board.Side) []Entry {
	if b == nil {
		return nil
	}

	entries, ok := b.entries[Key(pos, side)]
	if !ok {
		return nil
	}

	result := lo.Filter(entries, func(e Entry, _ int) bool {
		return pos.CheckMove(e.Move, side) && e.Move != board.Pass
	})
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Weight != result[j].Weight {
			return result[i].Weight > result[j].Weight
		}
		return result[i].Move < result[j].Move
	})

	return result
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
