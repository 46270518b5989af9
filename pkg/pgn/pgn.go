// Package pgn renders a completed match.MatchResult as a PGN game
// record, following the USI move text convention of herohde/morlock's
// USI dialect: moves are written as-is (no SAN translation) and each is
// annotated with a brace-delimited comment carrying the engine's score,
// search depth, and whichever optional diagnostics the caller enabled.
package pgn

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/nekoyama/usitourney/pkg/clock"
	"github.com/nekoyama/usitourney/pkg/match"
	"github.com/nekoyama/usitourney/pkg/shogi"
	"github.com/nekoyama/usitourney/pkg/usi"
)

// Options toggles the optional move-comment fields, mirroring -pgnout's
// sub-options.
type Options struct {
	TrackNodes    bool
	TrackSeldepth bool
	TrackNPS      bool
	TrackHashfull bool
	TrackTimeleft bool
	TrackLatency  bool
}

// MetaData supplies the tournament-wide PGN tags that don't vary per
// game.
type MetaData struct {
	EventName string
	SiteName  string
}

// Writer appends one PGN game record per Write call to a single file,
// created fresh (refusing to overwrite an existing file, matching
// File::create_new).
type Writer struct {
	f            io.WriteCloser
	options      Options
	meta         MetaData
	engineNames  []string
	engineClocks []clock.TimeControl
}

// NewWriter creates path exclusively (failing if it already exists) and
// prepares a Writer over it. engineNames and engineClocks are indexed by
// engine roster position, matching match.MatchTicket.Engines.
func NewWriter(path string, options Options, meta MetaData, engineNames []string, engineClocks []clock.TimeControl) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("pgn: create %s: %w", path, err)
	}
	return &Writer{f: f, options: options, meta: meta, engineNames: engineNames, engineClocks: engineClocks}, nil
}

func (w *Writer) Close() error { return w.f.Close() }

func writeHeader(f io.Writer, key, value string) error {
	_, err := fmt.Fprintf(f, "[%s %q]\n", key, value)
	return err
}

// Write appends one game record for result.
func (w *Writer) Write(result match.MatchResult) error {
	f := w.f
	ticket := result.Ticket
	resultStr := resultString(result.Outcome)

	headers := [][2]string{
		{"Event", w.meta.EventName},
		{"Site", w.meta.SiteName},
		{"Date", result.StartedAt.Format("2006-01-02")},
		{"Round", fmt.Sprintf("%d", ticket.ID)},
		{"Black", w.engineNames[ticket.Engines[0]]},
		{"Sente", w.engineNames[ticket.Engines[0]]},
		{"White", w.engineNames[ticket.Engines[1]]},
		{"Gote", w.engineNames[ticket.Engines[1]]},
		{"Result", resultStr},
	}
	for _, h := range headers {
		if err := writeHeader(f, h[0], h[1]); err != nil {
			return err
		}
	}

	if ticket.Opening != nil && !ticket.Opening.IsDefaultStart() {
		if err := writeHeader(f, "FEN", ticket.Opening.InitialLabel()); err != nil {
			return err
		}
		if err := writeHeader(f, "SetUp", "1"); err != nil {
			return err
		}
	}

	tail := [][2]string{
		{"PlyCount", fmt.Sprintf("%d", len(result.Moves))},
		{"Termination", result.Outcome.ToPGNTermination()},
		{"GameStartTime", result.StartedAt.Format(time.RFC3339)},
		{"BlackTimeControl", w.engineClocks[ticket.Engines[0]].String()},
		{"WhiteTimeControl", w.engineClocks[ticket.Engines[1]].String()},
	}
	for _, h := range tail {
		if err := writeHeader(f, h[0], h[1]); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(f); err != nil {
		return err
	}

	for i, m := range result.Moves {
		mstr := m.Raw
		if mstr == "" {
			mstr = "output-was-empty"
		}

		comment := scoreComment(m.Score) + " " + fmt.Sprintf("%d", m.Depth)
		if w.options.TrackSeldepth {
			comment += fmt.Sprintf("/%d", m.SelDepth)
		}
		if w.options.TrackNodes {
			comment += fmt.Sprintf(" n=%d", m.Nodes)
		}
		if w.options.TrackNPS {
			comment += fmt.Sprintf(" nps=%d", m.NPS)
		}
		if w.options.TrackHashfull {
			comment += fmt.Sprintf(" hashfull=%d", m.HashFull)
		}
		if w.options.TrackTimeleft {
			if remaining, ok := m.Remaining.V(); ok {
				comment += fmt.Sprintf(" timeleft=%ss", trimZeros(remaining.Seconds()))
			}
		}
		if w.options.TrackLatency {
			latency := m.Measured.Seconds() - float64(m.EngineTimeMS)/1000.0
			comment += fmt.Sprintf(" latency=%ss", trimZeros(latency))
		}
		comment += fmt.Sprintf(" t=%ss", trimZeros(m.Measured.Seconds()))

		if i == len(result.Moves)-1 {
			comment += ", " + result.Outcome.String()
		}

		if _, err := fmt.Fprintf(f, "%s {%s}\n", mstr, comment); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(f, resultStr); err != nil {
		return err
	}
	_, err := fmt.Fprintln(f)
	return err
}

func resultString(o shogi.GameOutcome) string {
	winner, ok := o.Winner()
	switch {
	case ok && winner == shogi.Sente:
		return "1-0"
	case ok:
		return "0-1"
	case o.IsDraw():
		return "1/2-1/2"
	default:
		return "undetermined"
	}
}

func scoreComment(s usi.Score) string {
	switch s.Kind {
	case usi.ScoreCentipawns:
		return fmt.Sprintf("%+.2f", float64(s.Centipawns)/100.0)
	case usi.ScoreMate:
		sign := "+"
		ply := s.MatePly
		if ply < 0 {
			sign = "-"
			ply = -ply
		}
		return fmt.Sprintf("%sM%d", sign, ply)
	default:
		return "none"
	}
}

// trimZeros renders a float with no fractional part for whole numbers;
// otherwise it rounds to six decimal places and trims trailing zeros.
func trimZeros(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%d", int64(f))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", f), "0"), ".")
}
