package checkers

// captureChains enumerates every maximal jump sequence for piece p standing
// on start. The search is depth-first over an explicit stack; a chain is
// emitted only when no further jump extends it.
func (b *Board) captureChains(start Position, p Piece) []*Move {
	var chains []*Move
	stack := []*Move{{Positions: []Position{start}}}
	for len(stack) > 0 {
		chain := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		next := b.extendChain(chain, p)
		if len(next) == 0 {
			if chain.IsCapture() {
				chains = append(chains, chain)
			}
			continue
		}
		// reversed so the first direction is expanded first
		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}
	return chains
}

// extendChain returns every one-jump extension of chain. Directions follow
// the chain's rank so far: a man promoted mid-chain continues as a king.
func (b *Board) extendChain(chain *Move, p Piece) []*Move {
	king := p.King || chain.Kings
	current := chain.End()
	var out []*Move
	for _, dir := range directions(p.Color, king) {
		target := current.Plus(dir)
		dest := target.Plus(dir)
		if !IsPlayableSquare(dest) || b.idAt(dest) != NoPiece {
			continue
		}
		victim, ok := b.PieceAt(target)
		if !ok || victim.Color == p.Color || chain.captured(target) {
			continue
		}
		out = append(out, chain.jump(target, dest, !king && dest.Y == farRank(p.Color)))
	}
	return out
}
