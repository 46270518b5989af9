package match

import (
	"github.com/nekoyama/usitourney/pkg/shogi"
	"github.com/nekoyama/usitourney/pkg/usi"
)

// adjudicate runs the configured adjudication rules against the moves
// played so far, in order (move limit, draw by low score, one-sided
// resignation, two-sided resignation), mutating result.Outcome the first
// time one fires; the rules after it are then skipped. It is a no-op once
// result.Outcome is already determined. stm is taken to be the color that
// produced the last move (the resignation rules reason about it); this is
// not checked.
func adjudicate(stm shogi.Color, cfg Config, result *MatchResult) {
	if result.Outcome.IsDetermined() {
		return
	}

	if cfg.MaxMoves != nil && uint64(len(result.Moves)) >= cfg.MaxMoves.Max {
		result.Outcome = shogi.DrawByMoveLimit()
	}

	if cfg.Draw != nil && !result.Outcome.IsDetermined() &&
		uint64(len(result.Moves)) >= cfg.Draw.MoveNumber &&
		trailingRun(result.Moves, func(m MoveRecord) bool {
			return m.Score.Kind == usi.ScoreCentipawns && abs32(m.Score.Centipawns) <= cfg.Draw.Score
		}) >= cfg.Draw.MoveCount {
		result.Outcome = shogi.DrawByAdjudication()
	}

	if cfg.Resign != nil && !cfg.Resign.TwoSided && !result.Outcome.IsDetermined() {
		own := filterByColor(result.Moves, stm)
		run := trailingRun(own, func(m MoveRecord) bool {
			return losingPredicate(m.Score, cfg.Resign.Score)
		})
		if run >= cfg.Resign.MoveCount {
			result.Outcome = shogi.WinByAdjudication(stm.Inv())
		}
	}

	if cfg.Resign != nil && cfg.Resign.TwoSided && !result.Outcome.IsDetermined() {
		run := trailingRun(result.Moves, func(m MoveRecord) bool {
			if m.Color == stm {
				return losingPredicate(m.Score, cfg.Resign.Score)
			}
			return winningPredicate(m.Score, cfg.Resign.Score)
		})
		if run >= cfg.Resign.MoveCount {
			result.Outcome = shogi.WinByAdjudication(stm.Inv())
		}
	}
}

// filterByColor returns the subset of moves played by c, preserving order.
func filterByColor(moves []MoveRecord, c shogi.Color) []MoveRecord {
	var out []MoveRecord
	for _, m := range moves {
		if m.Color == c {
			out = append(out, m)
		}
	}
	return out
}

// trailingRun counts how many moves from the end of moves satisfy pred,
// stopping at the first that does not.
func trailingRun(moves []MoveRecord, pred func(MoveRecord) bool) uint64 {
	var n uint64
	for i := len(moves) - 1; i >= 0; i-- {
		if !pred(moves[i]) {
			break
		}
		n++
	}
	return n
}

// losingPredicate reports whether score indicates its side is losing
// badly enough to resign: trailing by at least the threshold in
// centipawns, or categorically being mated. None never counts.
func losingPredicate(s usi.Score, threshold int32) bool {
	switch s.Kind {
	case usi.ScoreCentipawns:
		return s.Centipawns <= -threshold
	case usi.ScoreMate:
		return s.MatePly < 0
	default:
		return false
	}
}

// winningPredicate is losingPredicate's mirror, used for the opponent's
// moves under two-sided resignation.
func winningPredicate(s usi.Score, threshold int32) bool {
	switch s.Kind {
	case usi.ScoreCentipawns:
		return s.Centipawns >= threshold
	case usi.ScoreMate:
		return s.MatePly > 0
	default:
		return false
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
