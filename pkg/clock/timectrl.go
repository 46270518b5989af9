// Package clock implements the per-side time control clock that the match
// driver consults before sending each "go" command and charges after each
// bestmove arrives.
package clock

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/nekoyama/usitourney/pkg/shogi"
)

// Kind distinguishes the TimeControl variants.
type Kind uint8

const (
	KindNone Kind = iota
	KindNodes
	KindMoveTime
	KindByoyomi
	KindFischer
)

// TimeControl is one -each/-engine tc= value, parsed once at option-parse
// time and copied (read-only) into each EngineTime built for that engine.
type TimeControl struct {
	Kind      Kind
	Nodes     uint64
	MoveTime  time.Duration
	Base      time.Duration
	Byoyomi   time.Duration
	Increment time.Duration
}

var (
	fischerRe = regexp.MustCompile(`^(?:([0-9.]+)[:分m])?(?:([0-9.]+)秒?s?)?(?:\+([0-9.]+)秒?s?)?$`)
	byoyomiRe = regexp.MustCompile(`^(?:([0-9.]+)[:分m])?(?:([0-9.]+)秒?s?)?[,、;]([0-9.]+)(?:[秒s](?:未満)?)?$`)
	movetimeRe = regexp.MustCompile(`^(?:([0-9.]+)秒未満|movetime=([0-9.]+)[s秒]?)$`)
	nodesRe   = regexp.MustCompile(`^N=([0-9]+)$`)
)

// Parse recognizes a tc= value in one of four shapes:
//
//	"N=<u64>"               -- Nodes
//	"movetime=Xs" / "X秒未満" -- MoveTime
//	"Nm Xs,Ys"              -- Byoyomi (base time, then byoyomi per move)
//	"Nm Xs+Ys"              -- Fischer (base time, then increment per move)
//
// The four shapes are mutually exclusive by construction (nodes needs
// "N=", movetime needs "movetime=" or "未満", byoyomi needs a comma-family
// separator, and fischer, whose "+increment" is optional, allows none of
// these), so the trial order below does not affect which shape a given
// string resolves to.
func Parse(s string) (TimeControl, error) {
	if m := nodesRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return TimeControl{}, fmt.Errorf("parse nodes tc %q: %w", s, err)
		}
		return TimeControl{Kind: KindNodes, Nodes: n}, nil
	}
	if m := movetimeRe.FindStringSubmatch(s); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return TimeControl{}, fmt.Errorf("parse movetime tc %q: %w", s, err)
		}
		return TimeControl{Kind: KindMoveTime, MoveTime: secs(f)}, nil
	}
	if m := byoyomiRe.FindStringSubmatch(s); m != nil {
		min := toFloat(m[1])
		sec := toFloat(m[2])
		byo := toFloat(m[3])
		return TimeControl{
			Kind:    KindByoyomi,
			Base:    secs(min*60 + sec),
			Byoyomi: secs(byo),
		}, nil
	}
	if m := fischerRe.FindStringSubmatch(s); m != nil && s != "" {
		min := toFloat(m[1])
		sec := toFloat(m[2])
		incr := toFloat(m[3])
		return TimeControl{
			Kind:      KindFischer,
			Base:      secs(min*60 + sec),
			Increment: secs(incr),
		}, nil
	}
	return TimeControl{}, fmt.Errorf("invalid time control %q", s)
}

func toFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func secs(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// String renders the time control back to a tc= value, matching Parse's
// shapes (used in the PGN BlackTimeControl/WhiteTimeControl tags).
func (t TimeControl) String() string {
	switch t.Kind {
	case KindNone:
		return "infinite"
	case KindNodes:
		return fmt.Sprintf("N=%d", t.Nodes)
	case KindMoveTime:
		return fmt.Sprintf("movetime=%ss", formatSecs(t.MoveTime))
	case KindByoyomi:
		return formatMinSec(t.Base) + "," + formatSecs(t.Byoyomi) + "s"
	case KindFischer:
		s := ""
		if t.Base != 0 || t.Increment == 0 {
			s = formatMinSec(t.Base)
		}
		if t.Increment != 0 {
			s += "+" + formatSecs(t.Increment) + "s"
		}
		return s
	default:
		return "infinite"
	}
}

func formatMinSec(d time.Duration) string {
	total := d.Seconds()
	minutes := int64(total / 60)
	seconds := total - float64(minutes)*60
	s := ""
	if minutes > 0 {
		s += fmt.Sprintf("%dm", minutes)
	}
	if seconds > 0 {
		s += formatSecs(time.Duration(seconds * float64(time.Second))) + "s"
	}
	return s
}

func formatSecs(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'g', -1, 64)
}

// StepResult reports whether a charged duration stayed within budget.
type StepResult uint8

const (
	StepOk StepResult = iota
	StepTimeElapsed
)

// EngineTime is one side's live clock during a match: the TimeControl it
// was configured with, plus the time remaining (meaningful only for
// Byoyomi and Fischer).
type EngineTime struct {
	TC        TimeControl
	Remaining time.Duration
	// Margin is added to the computed entitlement to get the runner's
	// actual wait deadline, absorbing scheduling/IPC jitter the engine
	// itself is not charged for.
	Margin time.Duration
}

// NewEngineTime initializes a clock from a time control and margin.
// Nodes/MoveTime/None carry no persistent remaining-time state; Byoyomi
// starts at its base allotment; Fischer starts at base+increment (the
// first move already carries its increment, matching the reference
// engine).
func NewEngineTime(tc TimeControl, margin time.Duration) EngineTime {
	et := EngineTime{TC: tc, Margin: margin}
	switch tc.Kind {
	case KindByoyomi:
		et.Remaining = tc.Base
	case KindFischer:
		et.Remaining = tc.Base + tc.Increment
	}
	return et
}

// Entitlement returns the engine's nominal time budget for its next move,
// and whether a deadline applies at all (None and Nodes have none, since
// nodes-limited engines are trusted to honor the limit themselves).
func (e EngineTime) Entitlement() (time.Duration, bool) {
	switch e.TC.Kind {
	case KindNone, KindNodes:
		return 0, false
	case KindMoveTime:
		return e.TC.MoveTime, true
	case KindByoyomi:
		return e.Remaining + e.TC.Byoyomi, true
	case KindFischer:
		return e.Remaining, true
	default:
		return 0, false
	}
}

// Deadline returns the runner's wait deadline for the engine's next move:
// the entitlement plus the configured margin.
func (e EngineTime) Deadline() (time.Duration, bool) {
	d, ok := e.Entitlement()
	if !ok {
		return 0, false
	}
	return d + e.Margin, true
}

// Step charges duration against the clock after a move completes, in
// chronological order of checks: MoveTime elapses when the move exceeds
// its per-move ceiling (nothing is stored);
// Byoyomi drains the base allotment first and only then consumes the
// per-move byoyomi budget; Fischer debits then credits the increment.
// Nodes and None never elapse on wall-clock alone.
func (e *EngineTime) Step(d time.Duration) StepResult {
	switch e.TC.Kind {
	case KindNone, KindNodes:
		return StepOk
	case KindMoveTime:
		if d > e.TC.MoveTime {
			return StepTimeElapsed
		}
		return StepOk
	case KindByoyomi:
		var spent time.Duration
		if e.Remaining < d {
			rem := e.Remaining
			e.Remaining = 0
			spent = d - rem
		} else {
			e.Remaining -= d
			spent = 0
		}
		if spent > e.TC.Byoyomi {
			return StepTimeElapsed
		}
		return StepOk
	case KindFischer:
		if e.Remaining < d {
			e.Remaining = 0
			return StepTimeElapsed
		}
		e.Remaining -= d
		e.Remaining += e.TC.Increment
		return StepOk
	default:
		return StepOk
	}
}

// ToUSIGoArgs renders the USI "go" command argument for the side to move,
// given both sides' current clocks. The side-to-move's own time control
// shape picks the dominant keyword (byoyomi, nodes, or plain); the
// opponent's remaining time is appended as btime/wtime/binc/winc where the
// protocol allows it, mirroring what real USI arbiters send.
func ToUSIGoArgs(stm shogi.Color, senteTime, goteTime EngineTime) string {
	stmTime, nstmTime := senteTime, goteTime
	stmChar, nstmChar := byte('b'), byte('w')
	if stm == shogi.Gote {
		stmTime, nstmTime = goteTime, senteTime
		stmChar, nstmChar = 'w', 'b'
	}

	var stmPart string
	switch stmTime.TC.Kind {
	case KindNone:
		stmPart = ""
	case KindMoveTime:
		stmPart = fmt.Sprintf("%ctime 0 byoyomi %d", stmChar, stmTime.TC.MoveTime.Milliseconds())
	case KindNodes:
		stmPart = fmt.Sprintf("nodes %d", stmTime.TC.Nodes)
	case KindByoyomi:
		stmPart = fmt.Sprintf("%ctime %d byoyomi %d", stmChar, stmTime.Remaining.Milliseconds(), stmTime.TC.Byoyomi.Milliseconds())
	case KindFischer:
		stmPart = fmt.Sprintf("%ctime %d %cinc %d", stmChar, stmTime.Remaining.Milliseconds(), stmChar, stmTime.TC.Increment.Milliseconds())
	}

	var nstmPart string
	switch nstmTime.TC.Kind {
	case KindNone, KindMoveTime, KindNodes:
		nstmPart = ""
	case KindByoyomi:
		nstmPart = fmt.Sprintf(" %ctime %d", nstmChar, nstmTime.Remaining.Milliseconds())
	case KindFischer:
		nstmPart = fmt.Sprintf(" %ctime %d %cinc %d", nstmChar, nstmTime.Remaining.Milliseconds(), nstmChar, nstmTime.TC.Increment.Milliseconds())
	}

	return stmPart + nstmPart
}
