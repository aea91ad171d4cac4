package computer

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/park285/cheese-checkers/internal/checkers"
)

var ErrNoMoves = errors.New("no legal moves to choose from")

// DefaultDelay matches the pause before the computer answers a human move.
const DefaultDelay = 800 * time.Millisecond

// Player picks uniformly among the legal moves after a short pause.
type Player struct {
	delay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Player. A nil rng is seeded from the clock.
func New(delay time.Duration, rng *rand.Rand) *Player {
	if delay < 0 {
		delay = 0
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Player{delay: delay, rng: rng}
}

// Choose waits for the think delay and returns one of moves.
func (p *Player) Choose(ctx context.Context, moves []*checkers.Move) (*checkers.Move, error) {
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	// *rand.Rand is not safe for concurrent use
	p.mu.Lock()
	idx := p.rng.Intn(len(moves))
	p.mu.Unlock()
	return moves[idx], nil
}
