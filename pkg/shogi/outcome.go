package shogi

// Verdict names the reason a game ended, independent of which color it
// favors. It underlies GameOutcome and is what PGN Termination tags and
// reporter lines name.
type Verdict uint8

const (
	VerdictUndetermined Verdict = iota
	VerdictCheckmate
	VerdictIllegalMove
	VerdictResignation
	VerdictAdjudication
	VerdictClock
	VerdictDisconnection
	VerdictRepetition
	VerdictMoveLimit
)

func (v Verdict) String() string {
	switch v {
	case VerdictCheckmate:
		return "checkmate"
	case VerdictIllegalMove:
		return "illegal move"
	case VerdictResignation:
		return "resignation"
	case VerdictAdjudication:
		return "adjudication"
	case VerdictClock:
		return "time forfeit"
	case VerdictDisconnection:
		return "disconnection"
	case VerdictRepetition:
		return "repetition"
	case VerdictMoveLimit:
		return "move limit"
	default:
		return "undetermined"
	}
}

// GameOutcome is the terminal (or not-yet-terminal) condition of a game, per
// spec §3: every variant but Undetermined is "determined", every Win/Loss
// variant names a unique winner, every Draw variant is drawn.
type GameOutcome struct {
	Verdict Verdict
	// Color is meaningful only for Win* (the winner) and Loss* (the color
	// that lost) verdicts; zero value for Draw* and Undetermined.
	loss  bool // true if Color below names the LOSER rather than the winner
	Color Color
	drawn bool
}

var Undetermined = GameOutcome{Verdict: VerdictUndetermined}

func WinBy(v Verdict, winner Color) GameOutcome {
	return GameOutcome{Verdict: v, Color: winner}
}

func LossBy(v Verdict, loser Color) GameOutcome {
	return GameOutcome{Verdict: v, Color: loser, loss: true}
}

func DrawBy(v Verdict) GameOutcome {
	return GameOutcome{Verdict: v, drawn: true}
}

// Named constructors mirroring spec §3's GameOutcome variants exactly.
func WinByCheckmate(winner Color) GameOutcome     { return WinBy(VerdictCheckmate, winner) }
func WinByIllegalMove(winner Color) GameOutcome   { return WinBy(VerdictIllegalMove, winner) }
func WinByResignation(winner Color) GameOutcome   { return WinBy(VerdictResignation, winner) }
func WinByAdjudication(winner Color) GameOutcome  { return WinBy(VerdictAdjudication, winner) }
func LossByClock(loser Color) GameOutcome         { return LossBy(VerdictClock, loser) }
func LossByDisconnection(loser Color) GameOutcome { return LossBy(VerdictDisconnection, loser) }
func DrawByRepetition() GameOutcome               { return DrawBy(VerdictRepetition) }
func DrawByMoveLimit() GameOutcome                { return DrawBy(VerdictMoveLimit) }
func DrawByAdjudication() GameOutcome             { return DrawBy(VerdictAdjudication) }

// IsDetermined is true for every variant except Undetermined.
func (o GameOutcome) IsDetermined() bool {
	return o.Verdict != VerdictUndetermined
}

// IsDraw is true for every Draw* variant.
func (o GameOutcome) IsDraw() bool {
	return o.drawn
}

// Winner maps Win/Loss variants to the winning color; returns (_, false)
// for Draw and Undetermined.
func (o GameOutcome) Winner() (Color, bool) {
	if !o.IsDetermined() || o.drawn {
		return 0, false
	}
	if o.loss {
		return o.Color.Inv(), true
	}
	return o.Color, true
}

// Loser is the mirror of Winner, used by the tournament runner to find
// which engine disconnected.
func (o GameOutcome) Loser() (Color, bool) {
	w, ok := o.Winner()
	if !ok {
		return 0, false
	}
	return w.Inv(), true
}

func (o GameOutcome) String() string {
	switch {
	case !o.IsDetermined():
		return "undetermined"
	case o.IsDraw():
		return "draw by " + o.Verdict.String()
	default:
		w, _ := o.Winner()
		return w.String() + " wins by " + o.Verdict.String()
	}
}

// ToPGNTermination renders the PGN Termination tag value for the outcome.
func (o GameOutcome) ToPGNTermination() string {
	switch o.Verdict {
	case VerdictUndetermined:
		return "unterminated"
	case VerdictCheckmate:
		return "normal"
	case VerdictRepetition, VerdictMoveLimit:
		return "normal"
	case VerdictAdjudication:
		return "adjudication"
	case VerdictClock:
		return "time forfeit"
	case VerdictDisconnection:
		return "abandoned"
	default:
		return "normal"
	}
}
