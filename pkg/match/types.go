// Package match runs one game end-to-end between two USI engines: it
// drives the per-ply USI exchange, charges each side's clock, advances
// the shogi game, and applies adjudication rules to decide a result
// before (or in place of) a natural game end.
package match

import (
	"context"
	"time"

	"github.com/nekoyama/usitourney/pkg/clock"
	"github.com/nekoyama/usitourney/pkg/shogi"
	"github.com/nekoyama/usitourney/pkg/usi"
	"github.com/seekerror/stdlib/pkg/lang"
)

// MatchTicket is an immutable unit of scheduled work: which two engines
// play (by roster index), which color each plays, and the opening to
// start from.
type MatchTicket struct {
	ID uint64
	// Engines[0] plays Sente, Engines[1] plays Gote. Must be distinct.
	Engines [2]int
	Opening *shogi.Game
}

// MoveRecord is the evidence the driver records for a single ply.
type MoveRecord struct {
	Color        shogi.Color
	Move         shogi.Move
	Raw          string
	Score        usi.Score
	Depth        int
	SelDepth     int
	Nodes        uint64
	NPS          uint64
	EngineTimeMS uint64
	Measured     time.Duration
	// Remaining is the mover's clock remaining after this move, absent
	// for time controls that do not track remaining time (None, Nodes).
	Remaining lang.Optional[time.Duration]
	HashFull  int
}

// MatchResult is the outcome of one played ticket.
type MatchResult struct {
	Ticket    MatchTicket
	StartedAt time.Time
	Outcome   shogi.GameOutcome
	Moves     []MoveRecord
}

// MoveLimitConfig enables the move-limit draw adjudication rule.
type MoveLimitConfig struct {
	Max uint64
}

// DrawConfig enables the draw-by-low-score adjudication rule.
type DrawConfig struct {
	MoveNumber uint64
	MoveCount  uint64
	Score      int32 // non-negative
}

// ResignConfig enables the resignation adjudication rule.
type ResignConfig struct {
	MoveCount uint64
	Score     int32 // non-negative
	TwoSided  bool
}

// Config bundles the optional adjudication rules for a Play call.
type Config struct {
	MaxMoves *MoveLimitConfig
	Draw     *DrawConfig
	Resign   *ResignConfig
}

// EngineSession is the subset of usi.Engine the driver needs, factored
// out as an interface so tests can substitute a scripted fake. *usi.Engine
// satisfies this interface as-is.
type EngineSession interface {
	IsReady(ctx context.Context) error
	NewGame(ctx context.Context) error
	Position(ctx context.Context, arg string) error
	Go(ctx context.Context, args string) error
	AwaitBestMove(ctx context.Context, hasDeadline bool, deadline time.Time) (usi.BestMove, usi.Outcome, error)
	Name() string
}

// EngineClock pairs one side's engine session with its time-control
// clock for the duration of a match.
type EngineClock struct {
	Engine EngineSession
	Clock  *clock.EngineTime
}
