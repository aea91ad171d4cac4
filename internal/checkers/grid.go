package checkers

import "fmt"

// Grid is the persisted board snapshot, indexed [x][y].
//
//	0 empty, 1 black man, 2 red man; KingOffset is added for kings.
type Grid [Size][Size]int

const (
	EmptySquare = 0
	KingOffset  = 3
)

// EncodeSquare returns the snapshot value for p.
func EncodeSquare(p Piece) int {
	v := int(p.Color)
	if p.King {
		v += KingOffset
	}
	return v
}

// DecodeSquare is the inverse of EncodeSquare. v must be non-empty.
func DecodeSquare(v int) (Color, bool, error) {
	switch v {
	case int(Black), int(Red):
		return Color(v), false, nil
	case int(Black) + KingOffset, int(Red) + KingOffset:
		return Color(v - KingOffset), true, nil
	default:
		return NoColor, false, fmt.Errorf("%w: unknown square value %d", ErrInvalidGrid, v)
	}
}

// LoadBoard builds a board from a snapshot. Pieces on light squares and
// unknown values are rejected.
func LoadBoard(g Grid) (*Board, error) {
	b := &Board{}
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			v := g[x][y]
			if v == EmptySquare {
				continue
			}
			pos := Pos(x, y)
			if !IsPlayableSquare(pos) {
				return nil, fmt.Errorf("%w: piece on light square %s", ErrInvalidGrid, pos)
			}
			c, king, err := DecodeSquare(v)
			if err != nil {
				return nil, fmt.Errorf("square %s: %w", pos, err)
			}
			b.place(pos, c, king)
		}
	}
	return b, nil
}

// Save returns the snapshot of b. Piece identity is not persisted.
func (b *Board) Save() Grid {
	var g Grid
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if p, ok := b.PieceAt(Pos(x, y)); ok {
				g[x][y] = EncodeSquare(p)
			}
		}
	}
	return g
}
