package shogi

// dir is a (file,rank) step, expressed from Sente's perspective (decreasing
// rank goes toward Gote). Gote's steps are the mirror image.
type dir struct{ df, dr int }

var (
	goldSteps   = []dir{{0, -1}, {1, -1}, {-1, -1}, {1, 0}, {-1, 0}, {0, 1}}
	silverSteps = []dir{{0, -1}, {1, -1}, {-1, -1}, {1, 1}, {-1, 1}}
	kingSteps   = []dir{{0, -1}, {1, -1}, {-1, -1}, {1, 0}, {-1, 0}, {0, 1}, {1, 1}, {-1, 1}}
	pawnStep    = dir{0, -1}
	knightSteps = []dir{{1, -2}, {-1, -2}}

	lanceRay  = dir{0, -1}
	bishopRays = []dir{{1, -1}, {-1, -1}, {1, 1}, {-1, 1}}
	rookRays   = []dir{{0, -1}, {0, 1}, {1, 0}, {-1, 0}}
)

func flip(c Color, d dir) dir {
	if c == Sente {
		return d
	}
	return dir{d.df, -d.dr}
}

// stepsFor returns the move offsets for a stepping (non-sliding) piece, or
// nil if the piece slides or is unrecognized.
func stepsFor(pc Piece) []dir {
	switch pc {
	case King:
		return kingSteps
	case Gold, ProPawn, ProLance, ProKnight, ProSilver:
		return goldSteps
	case Silver:
		return silverSteps
	case Pawn:
		return []dir{pawnStep}
	case Knight:
		return knightSteps
	default:
		return nil
	}
}

// raysFor returns the sliding directions for a sliding piece, or nil.
func raysFor(pc Piece) []dir {
	switch pc {
	case Lance:
		return []dir{lanceRay}
	case Bishop:
		return bishopRays
	case Rook:
		return rookRays
	case Horse:
		return bishopRays
	case Dragon:
		return rookRays
	default:
		return nil
	}
}

// extraSteps returns the single-step king-adjacent squares added by a
// promoted bishop/rook (Horse/Dragon move like their base piece plus one
// step in every orthogonal/diagonal direction not already covered).
func extraSteps(pc Piece) []dir {
	switch pc {
	case Horse:
		return rookRays
	case Dragon:
		return bishopRays
	default:
		return nil
	}
}

// destinations returns every square pc (owned by c) standing on from can
// reach by board geometry alone, ignoring whether the destination is
// occupied by pc's own side (callers filter that).
func (p *Position) destinations(c Color, from Square, pc Piece) []Square {
	var out []Square

	for _, d := range stepsFor(pc) {
		d = flip(c, d)
		f, r := from.File()+d.df, from.Rank()+d.dr
		if InBounds(f, r) {
			out = append(out, SquareAt(f, r))
		}
	}
	for _, d := range raysFor(pc) {
		d = flip(c, d)
		f, r := from.File()+d.df, from.Rank()+d.dr
		for InBounds(f, r) {
			sq := SquareAt(f, r)
			out = append(out, sq)
			if p.board[sq].Piece != Empty {
				break
			}
			f += d.df
			r += d.dr
		}
	}
	for _, d := range extraSteps(pc) {
		d = flip(c, d)
		f, r := from.File()+d.df, from.Rank()+d.dr
		if InBounds(f, r) {
			out = append(out, SquareAt(f, r))
		}
	}
	return out
}

// PseudoLegalMoves returns every board move and drop for color c that obeys
// piece geometry, promotion-zone legality and the no-double-pawn drop rule,
// without checking whether the mover's own king ends up in check.
func (p *Position) PseudoLegalMoves(c Color) []Move {
	var out []Move
	for sq := Square(0); sq < NumSquares; sq++ {
		owner, pc := p.At(sq)
		if pc == Empty || owner != c {
			continue
		}
		for _, to := range p.destinations(c, sq, pc) {
			toOwner, toPc := p.At(to)
			if toPc != Empty && toOwner == c {
				continue
			}
			canPromote := pc.Promotable() && (InPromotionZone(c, sq) || InPromotionZone(c, to))
			mustPromote := mustPromoteAt(c, pc, to)
			if canPromote && !mustPromote {
				out = append(out, Move{From: sq, To: to, Promote: true})
			}
			if !mustPromote {
				out = append(out, Move{From: sq, To: to})
			}
		}
	}

	for pc := Pawn; pc <= Rook; pc++ {
		if !pc.Droppable() || p.Hand(c, pc) == 0 {
			continue
		}
		for sq := Square(0); sq < NumSquares; sq++ {
			if _, occ := p.At(sq); occ != Empty {
				continue
			}
			if mustPromoteAt(c, pc, sq) {
				continue
			}
			if pc == Pawn && p.hasPawnOnFile(c, sq.File()) {
				continue
			}
			out = append(out, Move{Drop: true, DropPiece: pc, To: sq})
		}
	}
	return out
}

// mustPromoteAt reports whether a pawn, lance or knight landing on sq would
// have no further legal moves if left unpromoted.
func mustPromoteAt(c Color, pc Piece, to Square) bool {
	r := to.Rank()
	last := 1
	edge2 := 2
	if c == Sente {
		last, edge2 = 1, 2
	} else {
		last, edge2 = 9, 8
	}
	switch pc {
	case Pawn, Lance:
		return r == last
	case Knight:
		return r == last || r == edge2
	default:
		return false
	}
}

func (p *Position) hasPawnOnFile(c Color, file int) bool {
	for rank := 1; rank <= 9; rank++ {
		owner, pc := p.At(SquareAt(file, rank))
		if pc == Pawn && owner == c {
			return true
		}
	}
	return false
}

// Attacks reports whether any piece of color c attacks sq.
func (p *Position) Attacks(c Color, sq Square) bool {
	for from := Square(0); from < NumSquares; from++ {
		owner, pc := p.At(from)
		if pc == Empty || owner != c {
			continue
		}
		for _, to := range p.destinations(c, from, pc) {
			if to == sq {
				return true
			}
		}
	}
	return false
}

// KingSquare returns the square holding c's king, and false if captured.
func (p *Position) KingSquare(c Color) (Square, bool) {
	for sq := Square(0); sq < NumSquares; sq++ {
		owner, pc := p.At(sq)
		if pc == King && owner == c {
			return sq, true
		}
	}
	return 0, false
}

// InCheck reports whether c's king is currently attacked.
func (p *Position) InCheck(c Color) bool {
	king, ok := p.KingSquare(c)
	if !ok {
		return false
	}
	return p.Attacks(c.Inv(), king)
}

// Apply plays m (assumed pseudo-legal) and returns the resulting position.
// It does not mutate p.
func (p *Position) Apply(c Color, m Move) *Position {
	np := p.Clone()
	if m.Drop {
		np.Set(m.To, c, m.DropPiece)
		np.AddToHand(c, m.DropPiece, -1)
		return np
	}

	_, moving := np.At(m.From)
	if captOwner, capt := np.At(m.To); capt != Empty {
		_ = captOwner
		np.AddToHand(c, capt.Demote(), 1)
	}
	np.Clear(m.From)
	final := moving
	if m.Promote {
		final = moving.Promote()
	}
	np.Set(m.To, c, final)
	return np
}

// LegalMoves filters PseudoLegalMoves down to moves that do not leave c's
// own king in check.
func (p *Position) LegalMoves(c Color) []Move {
	var out []Move
	for _, m := range p.PseudoLegalMoves(c) {
		next := p.Apply(c, m)
		if !next.InCheck(c) {
			out = append(out, m)
		}
	}
	return out
}
