// Package tournament schedules match tickets across a worker pool and
// decides when a tournament run is finished. A Tournament is a small
// chain-of-wrappers stack (RoundRobin at the core, optionally wrapped by
// PgnOutWrapper, an SPRT stopper, and ReporterWrapper) driven entirely
// from the scheduler goroutine in Runner.Run.
package tournament

import (
	"github.com/nekoyama/usitourney/pkg/match"
	"github.com/seekerror/stdlib/pkg/lang"
)

// State is a Tournament's verdict after observing one completed match:
// keep issuing tickets, or wind the run down.
type State int

const (
	Continue State = iota
	Stop
)

// Tournament is the scheduler's only way to reach the pairing logic and
// any wrappers layered on top of it (PGN output, reporting, SPRT). All
// methods are called from a single goroutine (the scheduler), so
// implementations need no internal synchronization.
type Tournament interface {
	// Next returns the next ticket to issue, or ok=false once the
	// tournament has no more work to hand out. A false return is
	// advisory: the scheduler keeps draining in-flight results until a
	// MatchComplete call returns Stop.
	Next() (match.MatchTicket, bool)
	// MatchStarted observes a ticket at the moment it was actually
	// handed to a worker (not merely produced by Next).
	MatchStarted(ticket match.MatchTicket)
	// MatchComplete observes a finished match and decides whether the
	// tournament should continue.
	MatchComplete(result match.MatchResult) State
	// ExpectedMaximumMatchCount reports a bound on the total number of
	// tickets this tournament will ever issue, if known.
	ExpectedMaximumMatchCount() lang.Optional[uint64]
	// PrintIntervalReport is invoked periodically by the scheduler
	// (every report-interval completions) for progress output.
	PrintIntervalReport()
	// TournamentComplete runs once after the scheduler has joined every
	// worker, for final summaries.
	TournamentComplete()
}
