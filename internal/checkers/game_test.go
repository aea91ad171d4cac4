package checkers

import (
	"errors"
	"math/rand"
	"testing"
)

func TestInitialLegalMoves(t *testing.T) {
	g := NewGame()
	if g.Turn() != Black {
		t.Fatalf("expected black to move first, got %v", g.Turn())
	}
	moves := g.LegalMoves()
	if len(moves) != 7 {
		t.Fatalf("expected 7 opening moves, got %d: %v", len(moves), moves)
	}
	for _, m := range moves {
		if m.IsCapture() || len(m.Positions) != 2 {
			t.Fatalf("unexpected opening move %v", m)
		}
		if m.Start().Y != 5 || m.End().Y != 4 {
			t.Fatalf("opening move not from the front row: %v", m)
		}
	}
	dests := g.Destinations(Pos(2, 5))
	if !samePositions(dests, []Position{Pos(1, 4), Pos(3, 4)}) {
		t.Fatalf("unexpected destinations from (2,5): %v", dests)
	}
	if got := len(g.Selectable()); got != 4 {
		t.Fatalf("expected 4 selectable pieces, got %d", got)
	}
	if len(g.MovesFrom(Pos(1, 6))) != 0 {
		t.Fatalf("blocked back-row piece should have no moves")
	}
}

func TestTurnAlternates(t *testing.T) {
	g := NewGame()
	m, ok := g.LongestMove(Pos(2, 5), Pos(3, 4))
	if !ok {
		t.Fatalf("expected a move (2,5)->(3,4)")
	}
	if err := g.ApplyMove(m); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if g.Turn() != Red {
		t.Fatalf("expected red to move, got %v", g.Turn())
	}
	for _, mv := range g.LegalMoves() {
		p, _ := g.Board().PieceAt(mv.Start())
		if p.Color != Red {
			t.Fatalf("legal move for wrong side: %v", mv)
		}
	}
}

func TestApplyWrongTurn(t *testing.T) {
	g := NewGame()
	red := &Move{Positions: []Position{Pos(1, 2), Pos(0, 3)}}
	if err := g.ApplyMove(red); !errors.Is(err, ErrWrongTurn) {
		t.Fatalf("expected ErrWrongTurn, got %v", err)
	}
	if g.Turn() != Black {
		t.Fatalf("turn changed after rejected move")
	}
}

func TestLongestMovePicksMostCaptures(t *testing.T) {
	s, e := Pos(1, 4), Pos(3, 2)
	one := &Move{Positions: []Position{s, e}, Captures: []Position{Pos(2, 3)}}
	three := &Move{
		Positions: []Position{s, Pos(3, 6), Pos(5, 4), e},
		Captures:  []Position{Pos(2, 5), Pos(4, 5), Pos(4, 3)},
	}
	otherEnd := &Move{
		Positions: []Position{s, Pos(3, 6), Pos(5, 4), Pos(7, 2), Pos(5, 0)},
		Captures:  []Position{Pos(2, 5), Pos(4, 5), Pos(6, 3), Pos(6, 1)},
	}
	if got := longestMove([]*Move{one, otherEnd, three}, s, e); got != three {
		t.Fatalf("expected the three-capture chain, got %v", got)
	}
	if got := longestMove([]*Move{three, one}, s, e); got != three {
		t.Fatalf("expected the three-capture chain, got %v", got)
	}
	tie := &Move{Positions: []Position{s, Pos(3, 6), Pos(5, 4), e}, Captures: three.Captures}
	if got := longestMove([]*Move{three, tie}, s, e); got != three {
		t.Fatalf("ties must keep the first found")
	}
	if got := longestMove([]*Move{one}, s, Pos(0, 0)); got != nil {
		t.Fatalf("expected no match, got %v", got)
	}
}

func TestMandatoryCapture(t *testing.T) {
	squares := map[Position]int{
		Pos(2, 5): 1,
		Pos(6, 5): 1,
		Pos(3, 4): 2,
		Pos(0, 1): 2,
	}
	permissive, err := NewGameFromBoard(boardWith(t, squares), Black)
	if err != nil {
		t.Fatalf("NewGameFromBoard: %v", err)
	}
	strict, err := NewGameFromBoard(boardWith(t, squares), Black, WithMandatoryCapture(true))
	if err != nil {
		t.Fatalf("NewGameFromBoard: %v", err)
	}
	if len(permissive.LegalMoves()) <= len(strict.LegalMoves()) {
		t.Fatalf("permissive game should offer steps alongside captures")
	}
	for _, m := range strict.LegalMoves() {
		if !m.IsCapture() {
			t.Fatalf("non-capture offered under mandatory capture: %v", m)
		}
	}
	step := &Move{Positions: []Position{Pos(6, 5), Pos(5, 4)}}
	if err := strict.ApplyMove(step); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected step to be refused, got %v", err)
	}
	if err := permissive.ApplyMove(step); err != nil {
		t.Fatalf("permissive step: %v", err)
	}
}

func TestGameOverWhenOpponentCaptured(t *testing.T) {
	b := boardWith(t, map[Position]int{
		Pos(5, 2): 1,
		Pos(4, 1): 2,
		Pos(2, 1): 2,
	})
	g, err := NewGameFromBoard(b, Black)
	if err != nil {
		t.Fatalf("NewGameFromBoard: %v", err)
	}
	m, ok := g.LongestMove(Pos(5, 2), Pos(1, 2))
	if !ok {
		t.Fatalf("expected capture chain to (1,2)\n%s", b)
	}
	if err := g.ApplyMove(m); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	winner, over := g.Winner()
	if !g.Over() || !over || winner != Black {
		t.Fatalf("expected black win, got over=%v winner=%v", g.Over(), winner)
	}
	if err := g.ApplyMove(m); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestGameOverWhenBlocked(t *testing.T) {
	// the lone red man on (0,7) has nowhere to go
	b := boardWith(t, map[Position]int{
		Pos(0, 7): 2,
		Pos(6, 5): 1,
	})
	g, err := NewGameFromBoard(b, Red)
	if err != nil {
		t.Fatalf("NewGameFromBoard: %v", err)
	}
	if winner, over := g.Winner(); !over || winner != Black {
		t.Fatalf("expected blocked red to lose, got over=%v winner=%v", over, winner)
	}
}

func TestNewGameFromBoardRejectsBadSetup(t *testing.T) {
	cases := []struct {
		name  string
		board *Board
		turn  Color
	}{
		{"nil board", nil, Black},
		{"no side to move", NewBoard(), NoColor},
		{"unknown color", NewBoard(), Color(9)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewGameFromBoard(tc.board, tc.turn); !errors.Is(err, ErrInvalidGame) {
				t.Fatalf("expected ErrInvalidGame, got %v", err)
			}
		})
	}
	if _, err := NewGameFromBoard(NewBoard(), Red); err != nil {
		t.Fatalf("valid setup rejected: %v", err)
	}
}

// Random playouts check the piece counters and capture geometry on every
// reachable position.
func TestRandomPlayoutInvariants(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g := NewGame(WithMandatoryCapture(seed%2 == 0))
		for ply := 0; ply < 300 && !g.Over(); ply++ {
			moves := g.LegalMoves()
			for _, m := range moves {
				checkMoveGeometry(t, m)
			}
			m := moves[rng.Intn(len(moves))]
			mover, _ := g.Board().PieceAt(m.Start())
			opp := mover.Color.Opponent()
			ownBefore, oppBefore := g.Board().Count(mover.Color), g.Board().Count(opp)
			if err := g.ApplyMove(m); err != nil {
				t.Fatalf("seed %d ply %d: ApplyMove(%v): %v\n%s", seed, ply, m, err, g.Board())
			}
			if got := g.Board().Count(opp); got != oppBefore-len(m.Captures) {
				t.Fatalf("seed %d: opponent count %d, want %d", seed, got, oppBefore-len(m.Captures))
			}
			if got := g.Board().Count(mover.Color); got != ownBefore {
				t.Fatalf("seed %d: own count changed %d -> %d", seed, ownBefore, got)
			}
			checkCounts(t, g.Board())
			if m.Kings {
				if p, ok := g.Board().PieceAt(m.End()); !ok || !p.King {
					t.Fatalf("seed %d: promotion not applied for %v", seed, m)
				}
			}
		}
	}
}

func checkMoveGeometry(t *testing.T, m *Move) {
	t.Helper()
	if !m.IsCapture() {
		if len(m.Positions) != 2 {
			t.Fatalf("step with %d squares: %v", len(m.Positions), m)
		}
		return
	}
	if len(m.Captures) != len(m.Positions)-1 {
		t.Fatalf("capture count mismatch in %v", m)
	}
	seen := map[Position]bool{}
	for i, c := range m.Captures {
		if seen[c] {
			t.Fatalf("duplicate capture in %v", m)
		}
		seen[c] = true
		from, to := m.Positions[i], m.Positions[i+1]
		if mid := Pos((from.X+to.X)/2, (from.Y+to.Y)/2); mid != c {
			t.Fatalf("capture %v is not the midpoint of %v->%v", c, from, to)
		}
		for _, p := range m.Positions {
			if p == c {
				t.Fatalf("capture square %v also visited in %v", c, m)
			}
		}
	}
}

func checkCounts(t *testing.T, b *Board) {
	t.Helper()
	var counts [3]int
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if p, ok := b.PieceAt(Pos(x, y)); ok {
				counts[p.Color]++
			}
		}
	}
	if counts[Black] != b.Count(Black) || counts[Red] != b.Count(Red) {
		t.Fatalf("counter drift: grid black=%d red=%d, counters black=%d red=%d\n%s",
			counts[Black], counts[Red], b.Count(Black), b.Count(Red), b)
	}
}
