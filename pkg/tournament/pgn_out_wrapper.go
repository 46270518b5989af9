package tournament

import (
	"context"

	"github.com/nekoyama/usitourney/pkg/match"
	"github.com/nekoyama/usitourney/pkg/pgn"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

// PgnOutWrapper writes a PGN record for every completed match before
// forwarding it to inner.
type PgnOutWrapper struct {
	inner Tournament
	pgn   *pgn.Writer
}

func NewPgnOutWrapper(inner Tournament, w *pgn.Writer) *PgnOutWrapper {
	return &PgnOutWrapper{inner: inner, pgn: w}
}

func (w *PgnOutWrapper) Next() (match.MatchTicket, bool) { return w.inner.Next() }

func (w *PgnOutWrapper) MatchStarted(ticket match.MatchTicket) { w.inner.MatchStarted(ticket) }

func (w *PgnOutWrapper) MatchComplete(result match.MatchResult) State {
	if err := w.pgn.Write(result); err != nil {
		// A write failure here doesn't invalidate the match itself, only
		// its PGN record; the tournament keeps running.
		logw.Errorf(context.Background(), "pgn: write game %d: %v", result.Ticket.ID, err)
	}
	return w.inner.MatchComplete(result)
}

func (w *PgnOutWrapper) ExpectedMaximumMatchCount() lang.Optional[uint64] {
	return w.inner.ExpectedMaximumMatchCount()
}

func (w *PgnOutWrapper) PrintIntervalReport() { w.inner.PrintIntervalReport() }
func (w *PgnOutWrapper) TournamentComplete()  { w.inner.TournamentComplete() }
