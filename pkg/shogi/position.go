package shogi

import "fmt"

// cell is one board square: a piece kind plus the color owning it. Empty
// squares carry the zero Color value (Sente) and Empty.
type cell struct {
	Color Color
	Piece Piece
}

// Position is the 9x9 board plus the two hands (captured pieces available
// for drop). It does not track side to move, move counters or history --
// see Game for that.
type Position struct {
	board [NumSquares]cell
	hand  [2]map[Piece]int
}

// NewEmptyPosition returns a board with no pieces and empty hands.
func NewEmptyPosition() *Position {
	return &Position{hand: [2]map[Piece]int{{}, {}}}
}

// NewStartPosition returns the standard shogi starting position.
func NewStartPosition() *Position {
	p := NewEmptyPosition()

	backRank := []Piece{Lance, Knight, Silver, Gold, King, Gold, Silver, Knight, Lance}
	for file := 1; file <= 9; file++ {
		p.Set(SquareAt(file, 1), Gote, backRank[file-1])
		p.Set(SquareAt(file, 9), Sente, backRank[file-1])
	}
	p.Set(SquareAt(2, 2), Gote, Rook)
	p.Set(SquareAt(8, 2), Gote, Bishop)
	p.Set(SquareAt(8, 8), Sente, Rook)
	p.Set(SquareAt(2, 8), Sente, Bishop)
	for file := 1; file <= 9; file++ {
		p.Set(SquareAt(file, 3), Gote, Pawn)
		p.Set(SquareAt(file, 7), Sente, Pawn)
	}
	return p
}

func (p *Position) At(sq Square) (Color, Piece) {
	c := p.board[sq]
	return c.Color, c.Piece
}

func (p *Position) Set(sq Square, c Color, pc Piece) {
	p.board[sq] = cell{Color: c, Piece: pc}
}

func (p *Position) Clear(sq Square) {
	p.board[sq] = cell{}
}

func (p *Position) Hand(c Color, pc Piece) int {
	return p.hand[c][pc]
}

func (p *Position) AddToHand(c Color, pc Piece, n int) {
	if p.hand[c] == nil {
		p.hand[c] = map[Piece]int{}
	}
	p.hand[c][pc] += n
	if p.hand[c][pc] <= 0 {
		delete(p.hand[c], pc)
	}
}

// Clone returns a deep copy.
func (p *Position) Clone() *Position {
	np := &Position{board: p.board}
	np.hand[0] = cloneHand(p.hand[0])
	np.hand[1] = cloneHand(p.hand[1])
	return np
}

func cloneHand(h map[Piece]int) map[Piece]int {
	out := make(map[Piece]int, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// InPromotionZone reports whether sq is in c's promotion zone (the far
// three ranks).
func InPromotionZone(c Color, sq Square) bool {
	r := sq.Rank()
	if c == Sente {
		return r <= 3
	}
	return r >= 7
}

// Key returns a stable string encoding of the position, used for repetition
// detection. Two positions with the same pieces, same hands produce the
// same key regardless of history.
func (p *Position) Key() string {
	b := make([]byte, 0, NumSquares*3+32)
	for sq := Square(0); sq < NumSquares; sq++ {
		c, pc := p.At(sq)
		if pc == Empty {
			b = append(b, '.')
			continue
		}
		b = append(b, byte(c)+'0')
		b = append(b, []byte(pc.String())...)
	}
	b = append(b, '|')
	for c := Sente; c <= Gote; c++ {
		for pc := Pawn; pc <= Rook; pc++ {
			if n := p.hand[c][pc]; n > 0 {
				b = append(b, []byte(fmt.Sprintf("%d%v%d", c, pc, n))...)
			}
		}
	}
	return string(b)
}
