// Package book parses opening-book files (one shogi opening line of
// space-separated USI moves per line) and hands out openings to the
// tournament by index, advancing through the file the way -openings'
// order= and start= options select.
//
// This mirrors github.com/herohde/morlock's pkg/engine/book.go in shape --
// a file of lines parsed once at load time into a lookup structure -- but
// the lookup key here is the book's own line index rather than a FEN/SFEN
// position, since the tournament scheduler consumes openings by position
// in the file (advance-by-one-per-round-group, §4.5), not by matching the
// engine's current board state.
package book

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/nekoyama/usitourney/pkg/shogi"
)

// Book is an ordered, immutable list of opening lines.
type Book struct {
	lines [][]string
}

// Load reads an opening book file. Blank lines and lines starting with "#"
// are skipped.
func Load(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open opening book: %w", err)
	}
	defer f.Close()

	var lines [][]string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, strings.Fields(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read opening book: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("opening book %v has no openings", path)
	}
	return &Book{lines: lines}, nil
}

// Default is a single-opening book consisting of the standard start
// position, for callers that need a book structurally without a file
// (the tests; cmd/usitest itself requires -openings).
func Default() *Book {
	return &Book{lines: [][]string{{}}}
}

// Len returns the number of openings in the book.
func (b *Book) Len() int { return len(b.lines) }

// Opening replays the i'th opening line from the standard start position
// and returns the resulting game, ready for the match driver to continue
// from. An invalid move recorded in the book is a load-time-class error
// surfaced lazily here, since replay only happens when an opening is
// actually drawn.
func (b *Book) Opening(i int) (*shogi.Game, error) {
	if i < 0 || i >= len(b.lines) {
		return nil, fmt.Errorf("opening index %d out of range [0,%d)", i, len(b.lines))
	}
	g := shogi.NewGame()
	for _, mv := range b.lines[i] {
		if _, err := g.ApplyUSIMove(mv); err != nil {
			return nil, fmt.Errorf("opening %d: %w", i, err)
		}
	}
	return g, nil
}

// Sequence walks a Book's indices in the order an -openings configuration
// requests: sequential or shuffled-once, starting at start-1 (0-based) and
// wrapping around the book's length.
type Sequence struct {
	order []int
	pos   int
}

// NewSequence builds a Sequence. start is 1-based per the CLI's -openings
// start=N option. When randomOrder is set, the index order is permuted
// once using seed (or an OS-seeded generator if seed is absent).
func NewSequence(b *Book, randomOrder bool, start int, seed *uint64) *Sequence {
	order := make([]int, b.Len())
	for i := range order {
		order[i] = i
	}
	if randomOrder {
		var rng *rand.Rand
		if seed != nil {
			rng = rand.New(rand.NewPCG(*seed, *seed))
		} else {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	if len(order) == 0 {
		return &Sequence{order: []int{0}}
	}
	at := (start - 1) % len(order)
	if at < 0 {
		at += len(order)
	}
	rotated := append(append([]int{}, order[at:]...), order[:at]...)
	return &Sequence{order: rotated}
}

// Next returns the next opening index, wrapping around the book.
func (s *Sequence) Next() int {
	i := s.order[s.pos%len(s.order)]
	s.pos++
	return i
}
