package tournament

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nekoyama/usitourney/pkg/clock"
	"github.com/nekoyama/usitourney/pkg/match"
	"github.com/nekoyama/usitourney/pkg/shogi"
	"github.com/nekoyama/usitourney/pkg/usi"
	"github.com/seekerror/logw"
)

// EngineSpec is everything a worker needs to (re)spawn one of the
// tournament's engine slots fresh for each worker, and the time control
// that slot plays under.
type EngineSpec struct {
	Config usi.Config
	TC     clock.TimeControl
	Margin time.Duration
}

// Runner is the worker-pool scheduler: it owns the two bounded
// rendezvous channels connecting the scheduler goroutine to a fixed
// pool of match-playing workers, and drives a Tournament chain from the
// scheduler goroutine only.
type Runner struct {
	engines        []EngineSpec
	concurrency    uint64
	matchConfig    match.Config
	reportInterval uint64 // 0 disables interval reports
}

func NewRunner(engines []EngineSpec, concurrency uint64, matchConfig match.Config, reportInterval uint64) *Runner {
	return &Runner{engines: engines, concurrency: concurrency, matchConfig: matchConfig, reportInterval: reportInterval}
}

// Run drives t to completion: it spawns concurrency workers (each
// owning its own set of engine processes), feeds them tickets over an
// unbuffered channel, and folds their results back into t until t
// reports Stop. It returns once every worker has exited.
func (r *Runner) Run(ctx context.Context, t Tournament) {
	tickets := make(chan match.MatchTicket)
	results := make(chan match.MatchResult)

	var wg sync.WaitGroup
	for i := uint64(0); i < r.concurrency; i++ {
		wg.Add(1)
		go r.worker(ctx, i, tickets, results, &wg)
	}

	state := Continue
	var lookahead *match.MatchTicket
	var matchCount uint64

	observe := func(result match.MatchResult) {
		state = t.MatchComplete(result)
		matchCount++
		if r.reportInterval > 0 && matchCount%r.reportInterval == 0 {
			fmt.Println("--------------------------------------------------------------")
			t.PrintIntervalReport()
			fmt.Println("--------------------------------------------------------------")
		}
	}

	for state != Stop {
		if lookahead == nil {
			if ticket, ok := t.Next(); ok {
				lookahead = &ticket
			}
		}

		if lookahead == nil {
			observe(<-results)
			continue
		}

		select {
		case result := <-results:
			observe(result)
		case tickets <- *lookahead:
			t.MatchStarted(*lookahead)
			lookahead = nil
		}
	}

	close(tickets)

	// Drain any results still in flight from workers mid-match while
	// waiting for all of them to notice the closed ticket channel and
	// exit -- the rendezvous result channel would otherwise deadlock a
	// worker trying to hand back its last result after the scheduler
	// stopped receiving.
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	for {
		select {
		case <-results:
		case <-done:
			t.TournamentComplete()
			return
		}
	}
}

func (r *Runner) worker(ctx context.Context, idx uint64, tickets <-chan match.MatchTicket, results chan<- match.MatchResult, wg *sync.WaitGroup) {
	defer wg.Done()

	engines := make([]*usi.Engine, len(r.engines))
	for i, spec := range r.engines {
		e, err := usi.Spawn(ctx, spec.Config)
		if err != nil {
			logw.Errorf(ctx, "worker %d: spawn engine %d: %v", idx, i, err)
			return
		}
		if err := e.Init(ctx); err != nil {
			logw.Errorf(ctx, "worker %d: init engine %d: %v", idx, i, err)
			e.Quit(ctx)
			return
		}
		engines[i] = e
	}
	defer func() {
		for _, e := range engines {
			if e != nil {
				e.Quit(ctx)
			}
		}
	}()

	for ticket := range tickets {
		senteSpec, goteSpec := r.engines[ticket.Engines[0]], r.engines[ticket.Engines[1]]
		senteClock := clock.NewEngineTime(senteSpec.TC, senteSpec.Margin)
		goteClock := clock.NewEngineTime(goteSpec.TC, goteSpec.Margin)

		sente := match.EngineClock{Engine: engines[ticket.Engines[0]], Clock: &senteClock}
		gote := match.EngineClock{Engine: engines[ticket.Engines[1]], Clock: &goteClock}

		result, err := match.Play(ctx, ticket, sente, gote, r.matchConfig)
		if err != nil {
			logw.Errorf(ctx, "worker %d: ticket %d: %v", idx, ticket.ID, err)
			return
		}

		select {
		case results <- result:
		case <-ctx.Done():
			return
		}

		// A disconnected engine's process has already exited; the ticket
		// still completed (as a LossByDisconnection), but the worker must
		// respawn that roster slot fresh before it can play again.
		if result.Outcome.Verdict == shogi.VerdictDisconnection {
			loser, _ := result.Outcome.Loser()
			engineIdx := ticket.Engines[0]
			if loser == shogi.Gote {
				engineIdx = ticket.Engines[1]
			}
			engines[engineIdx].Quit(ctx)
			e, err := usi.Spawn(ctx, r.engines[engineIdx].Config)
			if err != nil {
				logw.Errorf(ctx, "worker %d: respawn engine %d after disconnect: %v", idx, engineIdx, err)
				engines[engineIdx] = nil
				return
			}
			if err := e.Init(ctx); err != nil {
				logw.Errorf(ctx, "worker %d: reinit engine %d after disconnect: %v", idx, engineIdx, err)
				e.Quit(ctx)
				engines[engineIdx] = nil
				return
			}
			engines[engineIdx] = e
		}
	}
}
