package tournament

import (
	"fmt"

	"github.com/nekoyama/usitourney/pkg/book"
	"github.com/nekoyama/usitourney/pkg/match"
	"github.com/seekerror/stdlib/pkg/lang"
)

func pairingsCount(players int) uint64 {
	n := uint64(players)
	return n * (n - 1) / 2
}

// RoundRobin enumerates every unordered pairing of the configured engine
// roster and replays each pairing rounds times, alternating which side
// plays Sente on odd-indexed rounds so color bias cancels out over a
// pairing's block. Once a full sweep over all pairings completes it
// wraps back to the first pairing and starts again, for games-many
// total sweeps (or forever, if games is unbounded) -- this is what
// "games per pairing" means operationally: each leg through the full
// round-robin replays every pairing once more.
//
// A pairing's block of rounds shares one opening; the opening sequence
// advances by one position each time the pairing changes.
type RoundRobin struct {
	players int
	rounds  uint64

	matchIndex   uint64
	completed    uint64
	nextPlayers  [2]int
	totalMatches *uint64

	openings      *book.Book
	seq           *book.Sequence
	curOpeningIdx int
}

// NewRoundRobin builds a RoundRobin over players engine slots (indices
// [0, players)). games is nil for an unbounded tournament (the RoundRobin
// itself never stops issuing tickets; only an outer Stop, e.g. from SPRT,
// ends it).
func NewRoundRobin(players int, rounds uint64, games *uint64, openings *book.Book, seq *book.Sequence) (*RoundRobin, error) {
	if players < 2 {
		return nil, fmt.Errorf("tournament: round robin needs at least two engines, got %d", players)
	}
	if rounds == 0 {
		return nil, fmt.Errorf("tournament: rounds must be at least 1")
	}

	var total *uint64
	if games != nil {
		t := pairingsCount(players) * rounds * (*games)
		total = &t
	}

	rr := &RoundRobin{
		players:      players,
		rounds:       rounds,
		nextPlayers:  [2]int{0, 1},
		totalMatches: total,
		openings:     openings,
		seq:          seq,
	}
	rr.curOpeningIdx = seq.Next()
	if _, err := openings.Opening(rr.curOpeningIdx); err != nil {
		return nil, fmt.Errorf("tournament: %w", err)
	}
	return rr, nil
}

func (r *RoundRobin) Next() (match.MatchTicket, bool) {
	id := r.matchIndex
	if r.totalMatches != nil && id >= *r.totalMatches {
		return match.MatchTicket{}, false
	}

	players := r.nextPlayers
	if (id%r.rounds)%2 == 1 {
		players[0], players[1] = players[1], players[0]
	}
	// Opening replays into a fresh *shogi.Game every call so concurrent
	// workers playing tickets from the same round-group never share
	// mutable game state.
	opening, err := r.openings.Opening(r.curOpeningIdx)
	if err != nil {
		return match.MatchTicket{}, false
	}

	r.matchIndex++
	if r.matchIndex%r.rounds == 0 {
		r.nextPlayers[1]++
		if r.nextPlayers[1] >= r.players {
			r.nextPlayers[0]++
			r.nextPlayers[1] = r.nextPlayers[0] + 1
			if r.nextPlayers[1] >= r.players {
				r.nextPlayers = [2]int{0, 1}
			}
		}
		r.curOpeningIdx = r.seq.Next()
	}

	return match.MatchTicket{ID: id, Engines: [2]int{players[0], players[1]}, Opening: opening}, true
}

func (r *RoundRobin) MatchStarted(match.MatchTicket) {}

func (r *RoundRobin) MatchComplete(match.MatchResult) State {
	r.completed++
	if r.totalMatches != nil && r.completed >= *r.totalMatches {
		return Stop
	}
	return Continue
}

func (r *RoundRobin) ExpectedMaximumMatchCount() lang.Optional[uint64] {
	if r.totalMatches == nil {
		return lang.Optional[uint64]{}
	}
	return lang.Some(*r.totalMatches)
}

func (r *RoundRobin) PrintIntervalReport() {}
func (r *RoundRobin) TournamentComplete()  {}
