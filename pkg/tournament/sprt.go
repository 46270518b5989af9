package tournament

import (
	"math"

	"github.com/nekoyama/usitourney/pkg/match"
	"github.com/nekoyama/usitourney/pkg/shogi"
	"github.com/seekerror/stdlib/pkg/lang"
)

// SPRTConfig bounds a sequential probability ratio test over engine 0's
// results against engine 1: elo0/elo1 are the null and alternative elo
// hypotheses, alpha/beta the target type-I/type-II error rates.
type SPRTConfig struct {
	Elo0, Elo1  float64
	Alpha, Beta float64
}

// eloToScore converts an elo difference to the expected match score
// (win=1, draw=0.5, loss=0) under the standard logistic elo model.
func eloToScore(elo float64) float64 {
	return 1 / (1 + math.Pow(10, -elo/400))
}

// SPRTWrapper tracks win/draw/loss counts for engine 0 vs engine 1 across
// every observed result whose ticket pairs exactly those two engines
// (in either color), and requests Stop once the log-likelihood ratio
// crosses the accept or reject boundary. It requires exactly two engines
// in the roster, enforced by the caller that constructs it.
type SPRTWrapper struct {
	inner Tournament
	cfg   SPRTConfig

	wins, draws, losses uint64

	lowerBound, upperBound float64
}

func NewSPRTWrapper(inner Tournament, cfg SPRTConfig) *SPRTWrapper {
	return &SPRTWrapper{
		inner:      inner,
		cfg:        cfg,
		lowerBound: math.Log(cfg.Beta / (1 - cfg.Alpha)),
		upperBound: math.Log((1 - cfg.Beta) / cfg.Alpha),
	}
}

func (w *SPRTWrapper) Next() (match.MatchTicket, bool) { return w.inner.Next() }

func (w *SPRTWrapper) MatchStarted(ticket match.MatchTicket) { w.inner.MatchStarted(ticket) }

func (w *SPRTWrapper) MatchComplete(result match.MatchResult) State {
	state := w.inner.MatchComplete(result)
	if state == Stop {
		return Stop
	}

	engineZeroColor := shogi.Sente
	if result.Ticket.Engines[1] == 0 {
		engineZeroColor = shogi.Gote
	}

	switch winner, ok := result.Outcome.Winner(); {
	case !ok:
		w.draws++
	case winner == engineZeroColor:
		w.wins++
	default:
		w.losses++
	}

	if llr := w.llr(); llr >= w.upperBound || llr <= w.lowerBound {
		return Stop
	}
	return state
}

// llr computes the generalized SPRT log-likelihood ratio under a
// normal approximation of match score, the formula used throughout
// engine-testing frameworks for elo-bounded sequential testing.
func (w *SPRTWrapper) llr() float64 {
	n := float64(w.wins + w.draws + w.losses)
	if n == 0 {
		return 0
	}

	s := (float64(w.wins) + 0.5*float64(w.draws)) / n
	variance := (float64(w.wins)*(1-s)*(1-s) +
		float64(w.draws)*(0.5-s)*(0.5-s) +
		float64(w.losses)*(0-s)*(0-s)) / n
	if variance == 0 {
		return 0
	}

	s0 := eloToScore(w.cfg.Elo0)
	s1 := eloToScore(w.cfg.Elo1)
	return n * (s1 - s0) * (2*s - s0 - s1) / (2 * variance)
}

func (w *SPRTWrapper) ExpectedMaximumMatchCount() lang.Optional[uint64] {
	return w.inner.ExpectedMaximumMatchCount()
}

func (w *SPRTWrapper) PrintIntervalReport() { w.inner.PrintIntervalReport() }
func (w *SPRTWrapper) TournamentComplete()  { w.inner.TournamentComplete() }
