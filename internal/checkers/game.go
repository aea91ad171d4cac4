package checkers

import "fmt"

// Game owns a Board and the side to move.
type Game struct {
	board            *Board
	turn             Color
	over             bool
	winner           Color
	mandatoryCapture bool
}

type Option func(*Game)

// WithMandatoryCapture drops non-capturing moves from LegalMoves whenever a
// capture is available. Off by default.
func WithMandatoryCapture(on bool) Option {
	return func(g *Game) { g.mandatoryCapture = on }
}

// NewGame starts a match from the standard position with black to move.
func NewGame(opts ...Option) *Game {
	g := &Game{board: NewBoard(), turn: Black}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGameFromBoard resumes a match. The end-of-game state is evaluated
// immediately.
func NewGameFromBoard(board *Board, turn Color, opts ...Option) (*Game, error) {
	if board == nil {
		return nil, fmt.Errorf("%w: nil board", ErrInvalidGame)
	}
	if turn != Black && turn != Red {
		return nil, fmt.Errorf("%w: turn %q", ErrInvalidGame, turn)
	}
	g := &Game{board: board, turn: turn}
	for _, opt := range opts {
		opt(g)
	}
	g.checkOver()
	return g, nil
}

func (g *Game) Board() *Board { return g.board }

func (g *Game) Turn() Color { return g.turn }

func (g *Game) Over() bool { return g.over }

// Winner reports the winning side once the game is over.
func (g *Game) Winner() (Color, bool) {
	if !g.over {
		return NoColor, false
	}
	return g.winner, true
}

func (g *Game) MandatoryCapture() bool { return g.mandatoryCapture }

// LegalMoves lists every move for the side to move, scanning x then y.
func (g *Game) LegalMoves() []*Move {
	return g.movesFor(g.turn)
}

func (g *Game) movesFor(c Color) []*Move {
	var moves []*Move
	anyCapture := false
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			pos := Pos(x, y)
			p, ok := g.board.PieceAt(pos)
			if !ok || p.Color != c {
				continue
			}
			for _, m := range g.board.LegalMoves(pos) {
				anyCapture = anyCapture || m.IsCapture()
				moves = append(moves, m)
			}
		}
	}
	if !g.mandatoryCapture || !anyCapture {
		return moves
	}
	captures := moves[:0]
	for _, m := range moves {
		if m.IsCapture() {
			captures = append(captures, m)
		}
	}
	return captures
}

// MovesFrom filters LegalMoves to those starting on start.
func (g *Game) MovesFrom(start Position) []*Move {
	var out []*Move
	for _, m := range g.LegalMoves() {
		if m.Start() == start {
			out = append(out, m)
		}
	}
	return out
}

// Destinations returns the distinct end squares reachable from start.
func (g *Game) Destinations(start Position) []Position {
	var out []Position
	seen := make(map[Position]struct{})
	for _, m := range g.MovesFrom(start) {
		end := m.End()
		if _, ok := seen[end]; ok {
			continue
		}
		seen[end] = struct{}{}
		out = append(out, end)
	}
	return out
}

// Selectable returns the distinct start squares of the legal moves.
func (g *Game) Selectable() []Position {
	var out []Position
	seen := make(map[Position]struct{})
	for _, m := range g.LegalMoves() {
		start := m.Start()
		if _, ok := seen[start]; ok {
			continue
		}
		seen[start] = struct{}{}
		out = append(out, start)
	}
	return out
}

// LongestMove picks, among the legal moves from start to end, the one with
// the most captures. The first of equally long moves wins.
func (g *Game) LongestMove(start, end Position) (*Move, bool) {
	m := longestMove(g.LegalMoves(), start, end)
	return m, m != nil
}

func longestMove(moves []*Move, start, end Position) *Move {
	var longest *Move
	for _, m := range moves {
		if m.Start() != start || m.End() != end {
			continue
		}
		if longest == nil || len(longest.Captures) < len(m.Captures) {
			longest = m
		}
	}
	return longest
}

// ApplyMove plays m for the side to move and passes the turn.
func (g *Game) ApplyMove(m *Move) error {
	if g.over {
		return ErrGameOver
	}
	if m == nil || len(m.Positions) == 0 {
		return fmt.Errorf("%w: empty move", ErrInvalidMove)
	}
	p, ok := g.board.PieceAt(m.Start())
	if !ok {
		return fmt.Errorf("%w: no piece on %s", ErrInvalidMove, m.Start())
	}
	if p.Color != g.turn {
		return fmt.Errorf("%w: %s piece on %s, %s to move", ErrWrongTurn, p.Color, m.Start(), g.turn)
	}
	if g.mandatoryCapture && !m.IsCapture() && g.hasCapture() {
		return fmt.Errorf("%w: a capture is available", ErrInvalidMove)
	}
	if err := g.board.ApplyMove(m); err != nil {
		return err
	}
	g.turn = g.turn.Opponent()
	g.checkOver()
	return nil
}

func (g *Game) hasCapture() bool {
	for _, m := range g.LegalMoves() {
		if m.IsCapture() {
			return true
		}
	}
	return false
}

// checkOver ends the game when the side to move has no legal move.
func (g *Game) checkOver() {
	if len(g.LegalMoves()) > 0 {
		return
	}
	g.over = true
	g.winner = g.turn.Opponent()
}
