package tournament

import (
	"fmt"

	"github.com/nekoyama/usitourney/pkg/match"
	"github.com/nekoyama/usitourney/pkg/shogi"
	"github.com/seekerror/stdlib/pkg/lang"
)

// ReporterWrapper prints one line per match start and per match
// completion, and a final summary line, forwarding every call to inner
// unchanged otherwise.
type ReporterWrapper struct {
	inner       Tournament
	engineNames []string
}

func NewReporterWrapper(inner Tournament, engineNames []string) *ReporterWrapper {
	return &ReporterWrapper{inner: inner, engineNames: engineNames}
}

func (w *ReporterWrapper) ofMaxSuffix() string {
	if count, ok := w.ExpectedMaximumMatchCount().V(); ok {
		return fmt.Sprintf(" of %d", count)
	}
	return ""
}

func (w *ReporterWrapper) Next() (match.MatchTicket, bool) { return w.inner.Next() }

func (w *ReporterWrapper) MatchStarted(ticket match.MatchTicket) {
	fmt.Printf("Started game %d%s (%s vs %s)\n",
		ticket.ID+1, w.ofMaxSuffix(),
		w.engineNames[ticket.Engines[0]], w.engineNames[ticket.Engines[1]])
	w.inner.MatchStarted(ticket)
}

func (w *ReporterWrapper) MatchComplete(result match.MatchResult) State {
	ticket := result.Ticket
	fmt.Printf("Finished game %d (%s vs %s): %s {%s}\n",
		ticket.ID+1, w.engineNames[ticket.Engines[0]], w.engineNames[ticket.Engines[1]],
		scoreString(result.Outcome), result.Outcome.String())
	return w.inner.MatchComplete(result)
}

func (w *ReporterWrapper) ExpectedMaximumMatchCount() lang.Optional[uint64] {
	return w.inner.ExpectedMaximumMatchCount()
}

func (w *ReporterWrapper) PrintIntervalReport() { w.inner.PrintIntervalReport() }

func (w *ReporterWrapper) TournamentComplete() {
	w.inner.TournamentComplete()
	fmt.Println("Tournament finished")
}

// scoreString renders a GameOutcome the way PGN result tags do.
func scoreString(o shogi.GameOutcome) string {
	winner, ok := o.Winner()
	if !ok {
		return "1/2-1/2"
	}
	if winner == shogi.Sente {
		return "1-0"
	}
	return "0-1"
}
