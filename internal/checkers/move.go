package checkers

import "strings"

// Move is one turn: the squares visited in order, the squares jumped over,
// and whether the moving man is promoted by it.
type Move struct {
	Positions []Position `json:"positions"`
	Captures  []Position `json:"captures,omitempty"`
	Kings     bool       `json:"kings,omitempty"`
}

func (m *Move) Start() Position { return m.Positions[0] }

func (m *Move) End() Position { return m.Positions[len(m.Positions)-1] }

func (m *Move) IsCapture() bool { return len(m.Captures) > 0 }

func (m *Move) captured(pos Position) bool {
	for _, c := range m.Captures {
		if c == pos {
			return true
		}
	}
	return false
}

// jump returns a copy of m extended by one jump over target onto dest.
func (m *Move) jump(target, dest Position, kings bool) *Move {
	next := &Move{
		Positions: make([]Position, len(m.Positions), len(m.Positions)+1),
		Captures:  make([]Position, len(m.Captures), len(m.Captures)+1),
		Kings:     m.Kings || kings,
	}
	copy(next.Positions, m.Positions)
	copy(next.Captures, m.Captures)
	next.Positions = append(next.Positions, dest)
	next.Captures = append(next.Captures, target)
	return next
}

func (m *Move) String() string {
	if m == nil || len(m.Positions) == 0 {
		return "<empty>"
	}
	parts := make([]string, len(m.Positions))
	for i, p := range m.Positions {
		parts[i] = p.String()
	}
	sep := "-"
	if m.IsCapture() {
		sep = "x"
	}
	s := strings.Join(parts, sep)
	if m.Kings {
		s += "K"
	}
	return s
}
