package game

import "math/rand/v2"

// MoveSelector picks one move from a non-empty candidate list. The
// orchestrator consults it for primary moves in self-play and for forced
// and reactive replies; an error from Select resigns the selector's side.
type MoveSelector interface {
	Select(pos *Position, moves []Move) (Move, error)
}

// SelectorFunc adapts a plain function to the MoveSelector interface.
type SelectorFunc func(pos *Position, moves []Move) (Move, error)

func (f SelectorFunc) Select(pos *Position, moves []Move) (Move, error) {
	return f(pos, moves)
}

// RandomSelector picks uniformly from the candidates. The same seed over
// the same game yields the same choices.
type RandomSelector struct {
	rng *rand.Rand
}

func NewRandomSelector(seed uint64) *RandomSelector {
	return &RandomSelector{rng: rand.New(rand.NewPCG(seed, seed^0x6a09e667f3bcc909))}
}

func (s *RandomSelector) Select(_ *Position, moves []Move) (Move, error) {
	if len(moves) == 0 {
		return Move{}, ErrInvalidMove
	}
	return moves[s.rng.IntN(len(moves))], nil
}

// FirstSelector always picks the first candidate. Deterministic without a
// seed; handy as a baseline opponent.
type FirstSelector struct{}

func (FirstSelector) Select(_ *Position, moves []Move) (Move, error) {
	if len(moves) == 0 {
		return Move{}, ErrInvalidMove
	}
	return moves[0], nil
}
