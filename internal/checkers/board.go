package checkers

import (
	"fmt"
	"strings"
)

type pieceSlot struct {
	color Color
	king  bool
}

// Board is the 8x8 grid. Pieces live in an arena owned by the board; squares
// and callers refer to them only by PieceID.
type Board struct {
	grid   [Size][Size]PieceID // [x][y]
	pieces []pieceSlot         // PieceID n lives at index n-1
	counts [3]int              // indexed by Color
}

// NewBoard returns the standard starting position: red men on rows 0-2,
// black men on rows 5-7.
func NewBoard() *Board {
	b := &Board{}
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if !IsPlayableSquare(Pos(x, y)) {
				continue
			}
			switch {
			case y < 3:
				b.place(Pos(x, y), Red, false)
			case y > 4:
				b.place(Pos(x, y), Black, false)
			}
		}
	}
	return b
}

// IsPlayableSquare reports whether pos is one of the 32 dark squares.
func IsPlayableSquare(pos Position) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < Size && pos.Y < Size && (pos.X+pos.Y)%2 != 0
}

func (b *Board) IsPlayableSquare(pos Position) bool { return IsPlayableSquare(pos) }

func (b *Board) place(pos Position, c Color, king bool) PieceID {
	b.pieces = append(b.pieces, pieceSlot{color: c, king: king})
	id := PieceID(len(b.pieces))
	b.grid[pos.X][pos.Y] = id
	b.counts[c]++
	return id
}

func (b *Board) slot(id PieceID) *pieceSlot {
	if id <= NoPiece || int(id) > len(b.pieces) {
		return nil
	}
	return &b.pieces[id-1]
}

func (b *Board) idAt(pos Position) PieceID {
	if !IsPlayableSquare(pos) {
		return NoPiece
	}
	return b.grid[pos.X][pos.Y]
}

// PieceAt returns the piece on pos. Off-board, light and empty squares
// report false.
func (b *Board) PieceAt(pos Position) (Piece, bool) {
	id := b.idAt(pos)
	if id == NoPiece {
		return Piece{}, false
	}
	s := b.slot(id)
	return Piece{ID: id, Color: s.color, King: s.king}, true
}

// Piece looks a piece up by handle. Captured pieces are no longer on the
// board and report false.
func (b *Board) Piece(id PieceID) (Piece, bool) {
	if _, ok := b.FindPosition(id); !ok {
		return Piece{}, false
	}
	s := b.slot(id)
	return Piece{ID: id, Color: s.color, King: s.king}, true
}

// FindPosition scans the grid for the square holding id.
func (b *Board) FindPosition(id PieceID) (Position, bool) {
	if id == NoPiece {
		return Position{}, false
	}
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if b.grid[x][y] == id {
				return Pos(x, y), true
			}
		}
	}
	return Position{}, false
}

// Count returns the number of live pieces of color c.
func (b *Board) Count(c Color) int {
	if c != Black && c != Red {
		return 0
	}
	return b.counts[c]
}

func (b *Board) promote(id PieceID) {
	if s := b.slot(id); s != nil {
		s.king = true
	}
}

// LegalMoves lists the simple steps followed by the maximal capture chains
// available to the piece on start. Captures are not made mandatory here.
func (b *Board) LegalMoves(start Position) []*Move {
	p, ok := b.PieceAt(start)
	if !ok {
		return nil
	}
	var moves []*Move
	for _, dir := range directions(p.Color, p.King) {
		dest := start.Plus(dir)
		if !IsPlayableSquare(dest) || b.idAt(dest) != NoPiece {
			continue
		}
		moves = append(moves, &Move{
			Positions: []Position{start, dest},
			Kings:     !p.King && dest.Y == farRank(p.Color),
		})
	}
	return append(moves, b.captureChains(start, p)...)
}

// ApplyMove performs m. The move must be one LegalMoves currently produces
// for its start square; anything else (fabricated or stale) is rejected with
// ErrInvalidMove and the board is left untouched.
func (b *Board) ApplyMove(m *Move) error {
	if m == nil || len(m.Positions) < 2 {
		return fmt.Errorf("%w: move has fewer than two squares", ErrInvalidMove)
	}
	start := m.Start()
	p, ok := b.PieceAt(start)
	if !ok {
		return fmt.Errorf("%w: no piece on %s", ErrInvalidMove, start)
	}
	if !containsMove(b.LegalMoves(start), m) {
		return fmt.Errorf("%w: %s is not legal in the current position", ErrInvalidMove, m)
	}

	for _, pos := range m.Positions {
		b.grid[pos.X][pos.Y] = NoPiece
	}
	opponent := p.Color.Opponent()
	for _, pos := range m.Captures {
		b.grid[pos.X][pos.Y] = NoPiece
		b.counts[opponent]--
	}
	end := m.End()
	b.grid[end.X][end.Y] = p.ID
	if m.Kings {
		b.promote(p.ID)
	}
	return nil
}

func containsMove(moves []*Move, m *Move) bool {
	for _, cand := range moves {
		if sameMove(cand, m) {
			return true
		}
	}
	return false
}

func sameMove(a, b *Move) bool {
	if a.Kings != b.Kings || len(a.Positions) != len(b.Positions) || len(a.Captures) != len(b.Captures) {
		return false
	}
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			return false
		}
	}
	// capture order is not significant
	for _, c := range b.Captures {
		if !a.captured(c) {
			return false
		}
	}
	return true
}

// String draws the board with y=0 on top: b/B black man/king, r/R red
// man/king, '.' empty dark square, ' ' light square.
func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			pos := Pos(x, y)
			if !IsPlayableSquare(pos) {
				sb.WriteByte(' ')
				continue
			}
			p, ok := b.PieceAt(pos)
			if !ok {
				sb.WriteByte('.')
				continue
			}
			ch := byte('b')
			if p.Color == Red {
				ch = 'r'
			}
			if p.King {
				ch -= 'a' - 'A'
			}
			sb.WriteByte(ch)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
