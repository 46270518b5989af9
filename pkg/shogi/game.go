package shogi

import (
	"fmt"
	"strings"
)

const repetitionLimit = 4

// Game tracks a position's move history, side to move and terminal
// condition. It is the concrete "opening position" the match driver starts
// from and advances, one USI move at a time.
type Game struct {
	initial *Position
	initSFEN string // "startpos" if initial == standard start, else sfen-ish dump
	pos     *Position
	stm     Color
	moves   []Move
	moveStr []string
	outcome GameOutcome
	seen    map[string]int
}

// NewGame starts a game from the standard starting position.
func NewGame() *Game {
	return newGameFrom(NewStartPosition(), Sente, "startpos")
}

// NewGameFromPosition starts a game from an arbitrary position, e.g. loaded
// from the opening book.
func NewGameFromPosition(pos *Position, stm Color, label string) *Game {
	return newGameFrom(pos, stm, label)
}

func newGameFrom(pos *Position, stm Color, label string) *Game {
	g := &Game{
		initial:  pos.Clone(),
		initSFEN: label,
		pos:      pos.Clone(),
		stm:      stm,
		outcome:  Undetermined,
		seen:     map[string]int{},
	}
	g.seen[g.repetitionKey()]++
	return g
}

func (g *Game) repetitionKey() string {
	return fmt.Sprintf("%d|%s", g.stm, g.pos.Key())
}

// CurSide returns the color to move.
func (g *Game) CurSide() Color { return g.stm }

// Len returns the number of plies played so far.
func (g *Game) Len() int { return len(g.moves) }

// Outcome returns the current (possibly Undetermined) game outcome.
func (g *Game) Outcome() GameOutcome { return g.outcome }

// IsFinished reports whether the game has a determined outcome.
func (g *Game) IsFinished() bool { return g.outcome.IsDetermined() }

// PositionCommand renders the USI "position ..." argument for the current
// game state (everything after the literal "position " token).
func (g *Game) PositionCommand() string {
	var b strings.Builder
	b.WriteString(g.initSFEN)
	if len(g.moveStr) > 0 {
		b.WriteString(" moves ")
		b.WriteString(strings.Join(g.moveStr, " "))
	}
	return b.String()
}

// push applies a parsed move, assumed to already be known legal (its only
// caller, ApplyUSIMove, checks that first).
func (g *Game) push(m Move, raw string) {
	g.pos = g.pos.Apply(g.stm, m)
	g.moves = append(g.moves, m)
	g.moveStr = append(g.moveStr, raw)
	g.stm = g.stm.Inv()
}

// ApplyUSIMove parses and plays a USI move string reported by an engine as
// its bestmove. It returns an error for a malformed or not-legal move
// string, both of which also set the outcome to WinByIllegalMove for the
// mover's opponent, and for a game that is already finished. Otherwise the
// returned GameOutcome reflects the natural consequence of the move
// (checkmate, repetition) and may still be Undetermined.
func (g *Game) ApplyUSIMove(raw string) (GameOutcome, error) {
	if g.IsFinished() {
		return g.outcome, fmt.Errorf("game already finished")
	}

	mover := g.stm
	m, err := ParseMove(raw)
	if err != nil {
		g.outcome = WinByIllegalMove(mover.Inv())
		return g.outcome, err
	}
	if !containsMove(g.pos.LegalMoves(mover), m) {
		g.outcome = WinByIllegalMove(mover.Inv())
		return g.outcome, fmt.Errorf("illegal move %v", raw)
	}

	g.push(m, raw)
	g.outcome = g.detectTerminal()
	return g.outcome, nil
}

func containsMove(moves []Move, m Move) bool {
	for _, c := range moves {
		if c.Equals(m) {
			return true
		}
	}
	return false
}

// detectTerminal checks for checkmate (no legal moves for the side now to
// move) and repetition, after a move has just been pushed.
func (g *Game) detectTerminal() GameOutcome {
	stm := g.stm
	if len(g.pos.LegalMoves(stm)) == 0 {
		return WinByCheckmate(stm.Inv())
	}

	key := g.repetitionKey()
	g.seen[key]++
	if g.seen[key] >= repetitionLimit {
		return DrawByRepetition()
	}
	return Undetermined
}

// Finish forcibly sets the outcome, used by the match driver for clock
// losses, disconnections, adjudication and resignation -- conditions the
// board itself cannot see.
func (g *Game) Finish(o GameOutcome) {
	if !g.IsFinished() {
		g.outcome = o
	}
}

// InitialLabel returns the label of the initial position ("startpos" or
// the label given to NewGameFromPosition), used by the PGN writer's
// FEN/SetUp tags when the opening differs from the standard start position.
func (g *Game) InitialLabel() string { return g.initSFEN }

func (g *Game) InitialPosition() *Position { return g.initial.Clone() }

func (g *Game) IsDefaultStart() bool { return g.initSFEN == "startpos" }
