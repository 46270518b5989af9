package match

import (
	"context"
	"testing"
	"time"

	"github.com/nekoyama/usitourney/pkg/clock"
	"github.com/nekoyama/usitourney/pkg/shogi"
	"github.com/nekoyama/usitourney/pkg/usi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedEngine replays a fixed sequence of bestmove responses, one per
// call to AwaitBestMove, standing in for usi.Engine in driver tests. Once
// the script is exhausted, finalOutcome (Timeout or Disconnected) is
// returned instead of a move; a script left empty forces that outcome on
// the very first call.
type scriptedEngine struct {
	name         string
	moves        []string
	i            int
	finalOutcome usi.Outcome
}

func (e *scriptedEngine) IsReady(ctx context.Context) error              { return nil }
func (e *scriptedEngine) NewGame(ctx context.Context) error              { return nil }
func (e *scriptedEngine) Position(ctx context.Context, arg string) error { return nil }
func (e *scriptedEngine) Go(ctx context.Context, args string) error      { return nil }
func (e *scriptedEngine) Name() string                                  { return e.name }

func (e *scriptedEngine) AwaitBestMove(ctx context.Context, hasDeadline bool, deadline time.Time) (usi.BestMove, usi.Outcome, error) {
	if e.i >= len(e.moves) {
		if e.finalOutcome != usi.OutcomeStopped {
			return usi.BestMove{}, e.finalOutcome, nil
		}
		return usi.BestMove{}, usi.OutcomeTimeout, nil
	}
	mv := e.moves[e.i]
	e.i++
	return usi.BestMove{Move: mv}, usi.OutcomeStopped, nil
}

func noneClock() *clock.EngineTime {
	e := clock.NewEngineTime(clock.TimeControl{Kind: clock.KindNone}, 0)
	return &e
}

// Four plies that checkmate Gote's king via a simple rook ladder is hard
// to script by hand, so instead this drives a short, clearly-terminating
// game using the built-in move-limit adjudication: the scripted engines
// alternate legal opening moves and the move limit cuts the game short.
func TestPlayStopsAtMoveLimit(t *testing.T) {
	sente := &scriptedEngine{name: "sente-bot", moves: []string{"7g7f", "2g2f"}}
	gote := &scriptedEngine{name: "gote-bot", moves: []string{"3c3d", "8c8d"}}

	ticket := MatchTicket{ID: 1, Engines: [2]int{0, 1}, Opening: shogi.NewGame()}
	cfg := Config{MaxMoves: &MoveLimitConfig{Max: 4}}

	result, err := Play(context.Background(), ticket,
		EngineClock{Engine: sente, Clock: noneClock()},
		EngineClock{Engine: gote, Clock: noneClock()},
		cfg)

	require.NoError(t, err)
	assert.True(t, result.Outcome.IsDraw())
	assert.Len(t, result.Moves, 4)
}

func TestPlayRejectsSelfPairedTicket(t *testing.T) {
	ticket := MatchTicket{ID: 1, Engines: [2]int{0, 0}, Opening: shogi.NewGame()}
	_, err := Play(context.Background(), ticket,
		EngineClock{Engine: &scriptedEngine{name: "a"}, Clock: noneClock()},
		EngineClock{Engine: &scriptedEngine{name: "b"}, Clock: noneClock()},
		Config{})
	assert.Error(t, err)
}

func TestPlayLossByClockOnTimeout(t *testing.T) {
	sente := &scriptedEngine{name: "sente-bot", finalOutcome: usi.OutcomeTimeout}
	gote := &scriptedEngine{name: "gote-bot"}

	ticket := MatchTicket{ID: 2, Engines: [2]int{0, 1}, Opening: shogi.NewGame()}
	mt, err := clock.Parse("movetime=1s")
	require.NoError(t, err)
	senteClock := clock.NewEngineTime(mt, 0)

	result, err := Play(context.Background(), ticket,
		EngineClock{Engine: sente, Clock: &senteClock},
		EngineClock{Engine: gote, Clock: noneClock()},
		Config{})

	require.NoError(t, err)
	loser, ok := result.Outcome.Loser()
	require.True(t, ok)
	assert.Equal(t, shogi.Sente, loser)
}

func TestPlayLossByDisconnection(t *testing.T) {
	sente := &scriptedEngine{name: "sente-bot", finalOutcome: usi.OutcomeDisconnected}
	gote := &scriptedEngine{name: "gote-bot"}

	ticket := MatchTicket{ID: 3, Engines: [2]int{0, 1}, Opening: shogi.NewGame()}

	result, err := Play(context.Background(), ticket,
		EngineClock{Engine: sente, Clock: noneClock()},
		EngineClock{Engine: gote, Clock: noneClock()},
		Config{})

	require.NoError(t, err)
	loser, ok := result.Outcome.Loser()
	require.True(t, ok)
	assert.Equal(t, shogi.Sente, loser)
}
