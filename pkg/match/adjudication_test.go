package match

import (
	"testing"

	"github.com/nekoyama/usitourney/pkg/shogi"
	"github.com/nekoyama/usitourney/pkg/usi"
	"github.com/stretchr/testify/assert"
)

func cp(v int32) usi.Score { return usi.Score{Kind: usi.ScoreCentipawns, Centipawns: v} }

// Resign adjudication (one-sided), per spec scenario 5.
func TestAdjudicationResignOneSided(t *testing.T) {
	moves := []MoveRecord{
		{Color: shogi.Sente, Score: cp(1)},
		{Color: shogi.Gote, Score: cp(-1)},
		{Color: shogi.Sente, Score: cp(1)},
		{Color: shogi.Gote, Score: cp(-1)},
		{Color: shogi.Sente, Score: cp(1000)},
		{Color: shogi.Gote, Score: cp(-1000)},
		{Color: shogi.Sente, Score: cp(1000)},
		{Color: shogi.Gote, Score: cp(-1000)},
	}

	result := MatchResult{Outcome: shogi.Undetermined, Moves: append([]MoveRecord(nil), moves...)}
	cfg := Config{Resign: &ResignConfig{MoveCount: 2, Score: 200, TwoSided: false}}
	adjudicate(shogi.Gote, cfg, &result)

	winner, ok := result.Outcome.Winner()
	assert.True(t, ok)
	assert.Equal(t, shogi.Sente, winner)

	result2 := MatchResult{Outcome: shogi.Undetermined, Moves: append([]MoveRecord(nil), moves...)}
	cfg2 := Config{Resign: &ResignConfig{MoveCount: 3, Score: 200, TwoSided: false}}
	adjudicate(shogi.Gote, cfg2, &result2)
	assert.False(t, result2.Outcome.IsDetermined())
}

func TestAdjudicationMoveLimit(t *testing.T) {
	result := MatchResult{Outcome: shogi.Undetermined, Moves: make([]MoveRecord, 40)}
	cfg := Config{MaxMoves: &MoveLimitConfig{Max: 40}}
	adjudicate(shogi.Sente, cfg, &result)
	assert.True(t, result.Outcome.IsDraw())
}

func TestAdjudicationDrawByLowScore(t *testing.T) {
	moves := []MoveRecord{
		{Color: shogi.Sente, Score: cp(1000)},
		{Color: shogi.Gote, Score: cp(5)},
		{Color: shogi.Sente, Score: cp(-5)},
		{Color: shogi.Gote, Score: cp(3)},
	}
	result := MatchResult{Outcome: shogi.Undetermined, Moves: moves}
	cfg := Config{Draw: &DrawConfig{MoveNumber: 4, MoveCount: 3, Score: 10}}
	adjudicate(shogi.Gote, cfg, &result)
	assert.True(t, result.Outcome.IsDraw())
}

// Each MoveRecord's score is self-referential (positive = the mover who
// produced it sees itself as winning), so a two-sided resignation where
// Sente is clearly ahead shows Sente's own moves as strongly positive and
// Gote's own moves as strongly negative.
func TestAdjudicationTwoSidedResignation(t *testing.T) {
	moves := []MoveRecord{
		{Color: shogi.Sente, Score: cp(900)},
		{Color: shogi.Gote, Score: cp(-900)},
		{Color: shogi.Sente, Score: cp(950)},
		{Color: shogi.Gote, Score: cp(-950)},
	}
	result := MatchResult{Outcome: shogi.Undetermined, Moves: moves}
	cfg := Config{Resign: &ResignConfig{MoveCount: 2, Score: 200, TwoSided: true}}
	adjudicate(shogi.Gote, cfg, &result)

	winner, ok := result.Outcome.Winner()
	assert.True(t, ok)
	assert.Equal(t, shogi.Sente, winner)
}

func TestAdjudicationNoOpWhenAlreadyDetermined(t *testing.T) {
	result := MatchResult{Outcome: shogi.WinByCheckmate(shogi.Sente), Moves: make([]MoveRecord, 100)}
	cfg := Config{MaxMoves: &MoveLimitConfig{Max: 40}}
	adjudicate(shogi.Gote, cfg, &result)
	assert.Equal(t, shogi.WinByCheckmate(shogi.Sente), result.Outcome)
}

func TestAdjudicationMateScoreCategorical(t *testing.T) {
	moves := []MoveRecord{
		{Color: shogi.Gote, Score: usi.Score{Kind: usi.ScoreMate, MatePly: -3}},
		{Color: shogi.Gote, Score: usi.Score{Kind: usi.ScoreMate, MatePly: -1}},
	}
	result := MatchResult{Outcome: shogi.Undetermined, Moves: moves}
	cfg := Config{Resign: &ResignConfig{MoveCount: 2, Score: 200, TwoSided: false}}
	adjudicate(shogi.Gote, cfg, &result)

	winner, ok := result.Outcome.Winner()
	assert.True(t, ok)
	assert.Equal(t, shogi.Sente, winner)
}
