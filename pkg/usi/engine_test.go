package usi

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is a thread-safe io.WriteCloser backing a fake engine's
// stdin, so writeLine never blocks on a real pipe in tests.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *lockedBuffer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *lockedBuffer) Close() error { return nil }

func (w *lockedBuffer) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

// newFakeEngine builds an Engine around an os.Pipe standing in for a
// child's stdout, with the test asserting by writing into wr.
func newFakeEngine(t *testing.T, cfg Config) (*Engine, *os.File) {
	t.Helper()
	rd, wr, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = rd.Close(); _ = wr.Close() })

	e := &Engine{
		cfg:   cfg,
		stdin: &lockedBuffer{},
		out:   NewReader(rd),
	}
	return e, wr
}

func TestEngineInitDiscoversName(t *testing.T) {
	e, wr := newFakeEngine(t, Config{Argv: []string{"fake-engine"}})

	go func() {
		_, _ = wr.WriteString("id name ShogiBot 1.0\n")
		_, _ = wr.WriteString("id author Someone\n")
		_, _ = wr.WriteString("usiok\n")
	}()

	ctx := context.Background()
	require.NoError(t, e.Init(ctx))
	assert.Equal(t, "ShogiBot 1.0", e.Name())
}

func TestEngineInitExplicitNameWins(t *testing.T) {
	e, wr := newFakeEngine(t, Config{Name: "Explicit", Argv: []string{"fake-engine"}})

	go func() {
		_, _ = wr.WriteString("id name ShogiBot 1.0\n")
		_, _ = wr.WriteString("usiok\n")
	}()

	require.NoError(t, e.Init(context.Background()))
	assert.Equal(t, "Explicit", e.Name())
}

func TestEngineReadLinesTimesOutWithoutUsiok(t *testing.T) {
	e := &Engine{cfg: Config{Argv: []string{"fake-engine"}}, stdin: &lockedBuffer{}}
	rd, wr, err := os.Pipe()
	require.NoError(t, err)
	defer rd.Close()
	defer wr.Close()
	e.out = NewReader(rd)

	deadline := time.Now().Add(20 * time.Millisecond)
	outcome, err := e.out.ReadLines(true, deadline, func(line string) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, OutcomeTimeout, outcome)
}

func TestEngineIsReady(t *testing.T) {
	e, wr := newFakeEngine(t, Config{Argv: []string{"fake-engine"}})
	go func() { _, _ = wr.WriteString("readyok\n") }()

	require.NoError(t, e.IsReady(context.Background()))
}

func TestEngineAwaitBestMoveParsesInfoAndMove(t *testing.T) {
	e, wr := newFakeEngine(t, Config{Argv: []string{"fake-engine"}})

	go func() {
		_, _ = wr.WriteString("info depth 12 seldepth 20 nodes 123456 nps 500000 time 240 score cp 35 hashfull 123\n")
		_, _ = wr.WriteString("bestmove 7g7f\n")
	}()

	best, outcome, err := e.AwaitBestMove(context.Background(), false, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeStopped, outcome)
	assert.Equal(t, "7g7f", best.Move)
	assert.Equal(t, "", best.Ponder)
	assert.Equal(t, ScoreCentipawns, best.Info.Score.Kind)
	assert.EqualValues(t, 35, best.Info.Score.Centipawns)
	assert.Equal(t, 12, best.Info.Depth)
	assert.Equal(t, 20, best.Info.SelDepth)
	assert.EqualValues(t, 123456, best.Info.Nodes)
	assert.EqualValues(t, 500000, best.Info.NPS)
	assert.EqualValues(t, 240, best.Info.TimeMS)
	assert.Equal(t, 123, best.Info.HashFull)
}

func TestEngineAwaitBestMoveWithPonder(t *testing.T) {
	e, wr := newFakeEngine(t, Config{Argv: []string{"fake-engine"}})
	go func() { _, _ = wr.WriteString("bestmove 2g2f ponder 8c8d\n") }()

	best, outcome, err := e.AwaitBestMove(context.Background(), false, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeStopped, outcome)
	assert.Equal(t, "2g2f", best.Move)
	assert.Equal(t, "8c8d", best.Ponder)
}

func TestEngineAwaitBestMoveDisconnected(t *testing.T) {
	e, wr := newFakeEngine(t, Config{Argv: []string{"fake-engine"}})
	_ = wr.Close()

	_, outcome, err := e.AwaitBestMove(context.Background(), false, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDisconnected, outcome)
}

func TestEngineAwaitBestMoveTimeout(t *testing.T) {
	e, _ := newFakeEngine(t, Config{Argv: []string{"fake-engine"}})

	deadline := time.Now().Add(20 * time.Millisecond)
	_, outcome, err := e.AwaitBestMove(context.Background(), true, deadline)
	require.NoError(t, err)
	assert.Equal(t, OutcomeTimeout, outcome)
}

func TestEngineIgnoresUnrecognizedLines(t *testing.T) {
	e, wr := newFakeEngine(t, Config{Argv: []string{"fake-engine"}})
	go func() {
		_, _ = wr.WriteString("some random chatter\n")
		_, _ = wr.WriteString("bestmove 7g7f\n")
	}()

	best, outcome, err := e.AwaitBestMove(context.Background(), false, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeStopped, outcome)
	assert.Equal(t, "7g7f", best.Move)
}

func TestEngineNameFallsBackToCommand(t *testing.T) {
	e := &Engine{cfg: Config{Argv: []string{"my-engine", "--arg"}}}
	assert.Equal(t, "my-engine --arg", e.Name())
}
