package shogi

import "fmt"

// Square is a board square, File 1..9 (9=left/Sente's right per standard
// shogi diagrams) and Rank 1..9 (1=Gote's back rank, 9=Sente's). Index = (rank-1)*9 +
// (file-1), so Square 0 is 1a and Square 80 is 9i.
type Square uint8

const NumSquares = 81

func SquareAt(file, rank int) Square {
	return Square((rank-1)*9 + (file - 1))
}

func (s Square) File() int { return int(s)%9 + 1 }
func (s Square) Rank() int { return int(s)/9 + 1 }

// ParseSquare parses a USI square such as "7g" (file 7, rank g=7th rank).
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid square %q", s)
	}
	file := int(s[0] - '0')
	rank := int(s[1]-'a') + 1
	if file < 1 || file > 9 || rank < 1 || rank > 9 {
		return 0, fmt.Errorf("invalid square %q", s)
	}
	return SquareAt(file, rank), nil
}

func (s Square) String() string {
	return fmt.Sprintf("%d%c", s.File(), 'a'+s.Rank()-1)
}

// InBounds reports whether (file, rank) is a valid board coordinate.
func InBounds(file, rank int) bool {
	return file >= 1 && file <= 9 && rank >= 1 && rank <= 9
}
