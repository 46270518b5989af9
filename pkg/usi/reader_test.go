package usi

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderSplitsCompleteLines(t *testing.T) {
	rd, wr, err := os.Pipe()
	require.NoError(t, err)
	defer rd.Close()
	defer wr.Close()

	go func() {
		_, _ = wr.WriteString("usiok\nreadyok\n")
	}()

	r := NewReader(rd)
	var got []string
	outcome, err := r.ReadLines(false, time.Time{}, func(line string) bool {
		got = append(got, line)
		return len(got) == 2
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeStopped, outcome)
	assert.Equal(t, []string{"usiok", "readyok"}, got)
}

func TestReaderPartialLineAcrossReads(t *testing.T) {
	rd, wr, err := os.Pipe()
	require.NoError(t, err)
	defer rd.Close()
	defer wr.Close()

	r := NewReader(rd)

	go func() {
		_, _ = wr.WriteString("info depth 1")
		time.Sleep(10 * time.Millisecond)
		_, _ = wr.WriteString(" nodes 99\nbestmove 1g1f\n")
	}()

	var got []string
	outcome, err := r.ReadLines(false, time.Time{}, func(line string) bool {
		got = append(got, line)
		return line == "bestmove 1g1f"
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeStopped, outcome)
	require.Len(t, got, 2)
	assert.Equal(t, "info depth 1 nodes 99", got[0])
	assert.Equal(t, "bestmove 1g1f", got[1])
}

func TestReaderTimeout(t *testing.T) {
	rd, wr, err := os.Pipe()
	require.NoError(t, err)
	defer rd.Close()
	defer wr.Close()

	r := NewReader(rd)
	deadline := time.Now().Add(30 * time.Millisecond)
	outcome, err := r.ReadLines(true, deadline, func(line string) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, OutcomeTimeout, outcome)
}

func TestReaderDisconnected(t *testing.T) {
	rd, wr, err := os.Pipe()
	require.NoError(t, err)
	defer rd.Close()

	require.NoError(t, wr.Close())

	r := NewReader(rd)
	outcome, err := r.ReadLines(false, time.Time{}, func(line string) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, OutcomeDisconnected, outcome)
}

func TestReaderPreservesCRBeforeLF(t *testing.T) {
	rd, wr, err := os.Pipe()
	require.NoError(t, err)
	defer rd.Close()
	defer wr.Close()

	go func() { _, _ = wr.WriteString("usiok\r\n") }()

	r := NewReader(rd)
	var got string
	outcome, err := r.ReadLines(false, time.Time{}, func(line string) bool {
		got = line
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeStopped, outcome)
	assert.Equal(t, "usiok\r", got)
}
