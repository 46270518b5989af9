package shogi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoveBoard(t *testing.T) {
	m, err := ParseMove("7g7f")
	require.NoError(t, err)
	assert.False(t, m.Drop)
	assert.False(t, m.Promote)
	assert.Equal(t, "7g7f", m.String())
}

func TestParseMovePromotion(t *testing.T) {
	m, err := ParseMove("8h2b+")
	require.NoError(t, err)
	assert.True(t, m.Promote)
	assert.Equal(t, "8h2b+", m.String())
}

func TestParseMoveDrop(t *testing.T) {
	m, err := ParseMove("P*5e")
	require.NoError(t, err)
	assert.True(t, m.Drop)
	assert.Equal(t, Pawn, m.DropPiece)
	assert.Equal(t, "P*5e", m.String())
}

func TestParseMoveInvalid(t *testing.T) {
	_, err := ParseMove("x")
	assert.Error(t, err)
	_, err = ParseMove("Q*5e")
	assert.Error(t, err)
}
