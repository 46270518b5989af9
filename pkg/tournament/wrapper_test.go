package tournament

import (
	"os"
	"testing"

	"github.com/nekoyama/usitourney/pkg/clock"
	"github.com/nekoyama/usitourney/pkg/match"
	"github.com/nekoyama/usitourney/pkg/pgn"
	"github.com/nekoyama/usitourney/pkg/shogi"
	"github.com/nekoyama/usitourney/pkg/usi"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTournament is a minimal Tournament fake recording every call it
// receives, for exercising wrapper pass-through and observer behavior.
type stubTournament struct {
	tickets       []match.MatchTicket
	started       []match.MatchTicket
	completed     []match.MatchResult
	nextState     State
	maxCount      uint64
	hasMax        bool
	intervalCalls int
	completeCalls int
}

func (s *stubTournament) Next() (match.MatchTicket, bool) {
	if len(s.tickets) == 0 {
		return match.MatchTicket{}, false
	}
	t := s.tickets[0]
	s.tickets = s.tickets[1:]
	return t, true
}
func (s *stubTournament) MatchStarted(t match.MatchTicket) { s.started = append(s.started, t) }
func (s *stubTournament) MatchComplete(r match.MatchResult) State {
	s.completed = append(s.completed, r)
	s.completeCalls++
	return s.nextState
}
func (s *stubTournament) ExpectedMaximumMatchCount() lang.Optional[uint64] {
	if !s.hasMax {
		return lang.Optional[uint64]{}
	}
	return lang.Some(s.maxCount)
}
func (s *stubTournament) PrintIntervalReport() { s.intervalCalls++ }
func (s *stubTournament) TournamentComplete()  {}

func TestReporterWrapperForwardsAndAnnouncesState(t *testing.T) {
	inner := &stubTournament{
		tickets:   []match.MatchTicket{{ID: 0, Engines: [2]int{0, 1}}},
		nextState: Continue,
		maxCount:  10,
		hasMax:    true,
	}
	w := NewReporterWrapper(inner, []string{"alpha", "beta"})

	ticket, ok := w.Next()
	require.True(t, ok)
	w.MatchStarted(ticket)
	assert.Len(t, inner.started, 1)

	state := w.MatchComplete(match.MatchResult{Ticket: ticket, Outcome: shogi.WinByCheckmate(shogi.Sente)})
	assert.Equal(t, Continue, state)
	assert.Len(t, inner.completed, 1)

	count, ok := w.ExpectedMaximumMatchCount().V()
	assert.True(t, ok)
	assert.EqualValues(t, 10, count)
}

func TestSPRTWrapperStopsOnceLLRCrosses(t *testing.T) {
	inner := &stubTournament{nextState: Continue}
	w := NewSPRTWrapper(inner, SPRTConfig{Elo0: 0, Elo1: 10, Alpha: 0.05, Beta: 0.05})

	ticket := match.MatchTicket{Engines: [2]int{0, 1}}
	state := Continue
	for i := 0; i < 2000 && state != Stop; i++ {
		// A mix of results (3 wins per loss) gives the score distribution
		// nonzero variance; an all-wins stream has zero empirical
		// variance, for which llr() returns 0, so it would never cross a
		// bound.
		outcome := shogi.WinByCheckmate(shogi.Sente)
		if i%4 == 3 {
			outcome = shogi.WinByCheckmate(shogi.Gote)
		}
		state = w.MatchComplete(match.MatchResult{Ticket: ticket, Outcome: outcome})
	}
	assert.Equal(t, Stop, state)
}

func TestSPRTWrapperContinuesAfterSingleDraw(t *testing.T) {
	inner := &stubTournament{nextState: Continue}
	w := NewSPRTWrapper(inner, SPRTConfig{Elo0: -10, Elo1: 10, Alpha: 0.05, Beta: 0.05})

	ticket := match.MatchTicket{Engines: [2]int{0, 1}}
	state := w.MatchComplete(match.MatchResult{Ticket: ticket, Outcome: shogi.DrawByAdjudication()})
	assert.Equal(t, Continue, state)
}

func TestPgnOutWrapperWritesThenForwards(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/out.pgn"
	w, err := pgn.NewWriter(path, pgn.Options{}, pgn.MetaData{EventName: "Test", SiteName: "Here"},
		[]string{"alpha", "beta"}, []clock.TimeControl{{Kind: clock.KindNone}, {Kind: clock.KindNone}})
	require.NoError(t, err)

	inner := &stubTournament{nextState: Continue}
	pw := NewPgnOutWrapper(inner, w)

	ticket := match.MatchTicket{ID: 0, Engines: [2]int{0, 1}, Opening: shogi.NewGame()}
	result := match.MatchResult{
		Ticket:  ticket,
		Outcome: shogi.WinByCheckmate(shogi.Sente),
		Moves: []match.MoveRecord{
			{Color: shogi.Sente, Raw: "7g7f", Score: usi.Score{Kind: usi.ScoreCentipawns, Centipawns: 30}, Depth: 10},
		},
	}
	state := pw.MatchComplete(result)
	assert.Equal(t, Continue, state)
	assert.Len(t, inner.completed, 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "7g7f")
	assert.Contains(t, string(data), "1-0")
}
