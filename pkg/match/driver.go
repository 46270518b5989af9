package match

import (
	"context"
	"fmt"
	"time"

	"github.com/nekoyama/usitourney/pkg/clock"
	"github.com/nekoyama/usitourney/pkg/shogi"
	"github.com/nekoyama/usitourney/pkg/usi"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Play runs one game end-to-end for ticket, using sente/gote as the
// already-spawned engine sessions and clocks for the two colors (index
// 0 plays Sente, matching ticket.Engines[0]). It returns once the game
// reaches a determined outcome, or an error for anything the driver
// cannot classify as a clock loss or disconnection.
func Play(ctx context.Context, ticket MatchTicket, sente, gote EngineClock, cfg Config) (MatchResult, error) {
	if ticket.Engines[0] == ticket.Engines[1] {
		return MatchResult{}, fmt.Errorf("match: ticket %d pairs an engine against itself", ticket.ID)
	}

	result := MatchResult{
		Ticket:    ticket,
		StartedAt: time.Now(),
		Outcome:   shogi.Undetermined,
	}

	for _, ec := range []EngineClock{sente, gote} {
		if err := ec.Engine.IsReady(ctx); err != nil {
			return MatchResult{}, err
		}
		if err := ec.Engine.NewGame(ctx); err != nil {
			return MatchResult{}, err
		}
	}

	game := ticket.Opening

	for {
		stm := game.CurSide()

		mover := sente
		if stm == shogi.Gote {
			mover = gote
		}

		deadline, hasDeadline := mover.Clock.Deadline()
		started := time.Now()
		deadlineAt := started.Add(deadline)

		if err := mover.Engine.Position(ctx, game.PositionCommand()); err != nil {
			return MatchResult{}, err
		}
		goArgs := clock.ToUSIGoArgs(stm, *sente.Clock, *gote.Clock)
		if err := mover.Engine.Go(ctx, goArgs); err != nil {
			return MatchResult{}, err
		}

		best, outcome, err := mover.Engine.AwaitBestMove(ctx, hasDeadline, deadlineAt)
		measured := time.Since(started)
		if err != nil {
			return MatchResult{}, err
		}

		switch outcome {
		case usi.OutcomeTimeout:
			result.Outcome = shogi.LossByClock(stm)
			return result, nil
		case usi.OutcomeDisconnected:
			result.Outcome = shogi.LossByDisconnection(stm)
			return result, nil
		}

		stepResult := mover.Clock.Step(measured)

		rec := MoveRecord{
			Color:        stm,
			Raw:          best.Move,
			Score:        best.Info.Score,
			Depth:        best.Info.Depth,
			SelDepth:     best.Info.SelDepth,
			Nodes:        best.Info.Nodes,
			NPS:          best.Info.NPS,
			EngineTimeMS: best.Info.TimeMS,
			Measured:     measured,
			HashFull:     best.Info.HashFull,
		}
		if _, ok := mover.Clock.Entitlement(); ok {
			rec.Remaining = lang.Some(mover.Clock.Remaining)
		}

		gameOutcome, applyErr := game.ApplyUSIMove(best.Move)
		if m, perr := shogi.ParseMove(best.Move); perr == nil {
			rec.Move = m
		}
		result.Moves = append(result.Moves, rec)
		result.Outcome = gameOutcome
		_ = applyErr // an illegal/malformed move is itself the terminal outcome above.

		if stepResult == clock.StepTimeElapsed {
			result.Outcome = shogi.LossByClock(stm)
		}

		adjudicate(stm, cfg, &result)

		if result.Outcome.IsDetermined() {
			return result, nil
		}
	}
}
