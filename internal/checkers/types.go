package checkers

import "fmt"

// Size is the board width and height.
const Size = 8

// Color identifies a side.
type Color uint8

const (
	NoColor Color = iota
	Black
	Red
)

func (c Color) Opponent() Color {
	switch c {
	case Black:
		return Red
	case Red:
		return Black
	default:
		return NoColor
	}
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case Red:
		return "red"
	default:
		return "none"
	}
}

// ParseColor accepts "black" or "red" (case-sensitive lower).
func ParseColor(s string) (Color, bool) {
	switch s {
	case "black":
		return Black, true
	case "red":
		return Red, true
	default:
		return NoColor, false
	}
}

// Position is a board coordinate. Arithmetic is unbounded; membership is
// checked separately by Board.IsPlayableSquare.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func Pos(x, y int) Position { return Position{X: x, Y: y} }

func (p Position) Plus(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// PieceID is a stable handle to a piece owned by a Board. The zero value
// never refers to a piece.
type PieceID int

const NoPiece PieceID = 0

// Piece is a read-only view of an arena slot.
type Piece struct {
	ID    PieceID
	Color Color
	King  bool
}

func (p Piece) IsKing() bool { return p.King }

var (
	redDirections   = []Position{{-1, 1}, {1, 1}}
	blackDirections = []Position{{-1, -1}, {1, -1}}
	kingDirections  = []Position{{-1, 1}, {1, 1}, {-1, -1}, {1, -1}}
)

func directions(c Color, king bool) []Position {
	switch {
	case king:
		return kingDirections
	case c == Red:
		return redDirections
	case c == Black:
		return blackDirections
	default:
		return nil
	}
}

// farRank is the row on which a man of color c is promoted.
func farRank(c Color) int {
	if c == Red {
		return Size - 1
	}
	return 0
}
