package game

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestRandomSetupIsValidAndDeterministic(t *testing.T) {
	for seed := uint64(1); seed <= 8; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed))
		setup := RandomSetup(rng)

		pos := StartingPosition()
		if _, err := NewEntanglementMap(&pos, setup); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		again := RandomSetup(rand.New(rand.NewPCG(seed, seed)))
		if setup.WhiteFree != again.WhiteFree || setup.BlackFree != again.BlackFree {
			t.Fatalf("seed %d: free pawns differ", seed)
		}
		for pawn, target := range setup.WhiteLinks {
			if again.WhiteLinks[pawn] != target {
				t.Fatalf("seed %d: white link %s differs", seed, pawn)
			}
		}
		for pawn, target := range setup.BlackLinks {
			if again.BlackLinks[pawn] != target {
				t.Fatalf("seed %d: black link %s differs", seed, pawn)
			}
		}
	}
}

func TestRandomSetupLinkMembersAreDisjoint(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		setup := RandomSetup(rand.New(rand.NewPCG(seed, 0)))

		degree := map[Square]int{}
		for pawn, target := range setup.WhiteLinks {
			degree[pawn]++
			degree[target]++
		}
		for pawn, target := range setup.BlackLinks {
			degree[pawn]++
			degree[target]++
		}
		for sq, n := range degree {
			if n > 1 {
				t.Fatalf("seed %d: %s belongs to %d links", seed, sq, n)
			}
		}
		if degree[setup.WhiteFree] != 0 || degree[setup.BlackFree] != 0 {
			t.Fatalf("seed %d: free pawn is a link member", seed)
		}
	}
}

func TestSetupValidation(t *testing.T) {
	base := func(t *testing.T) Setup { return testSetup(t) }

	tests := []struct {
		name   string
		mutate func(t *testing.T, s *Setup)
	}{
		{
			name: "king target",
			mutate: func(t *testing.T, s *Setup) {
				s.WhiteLinks[mustSquare(t, "a2")] = mustSquare(t, "e8")
			},
		},
		{
			name: "duplicate target",
			mutate: func(t *testing.T, s *Setup) {
				s.WhiteLinks[mustSquare(t, "a2")] = s.WhiteLinks[mustSquare(t, "b2")]
			},
		},
		{
			name: "too few links",
			mutate: func(t *testing.T, s *Setup) {
				delete(s.WhiteLinks, mustSquare(t, "a2"))
			},
		},
		{
			name: "free square not a pawn",
			mutate: func(t *testing.T, s *Setup) {
				s.WhiteFree = mustSquare(t, "e1")
			},
		},
		{
			name: "linked pawn marked free",
			mutate: func(t *testing.T, s *Setup) {
				s.WhiteFree = mustSquare(t, "a2")
			},
		},
		{
			name: "own piece as target",
			mutate: func(t *testing.T, s *Setup) {
				s.WhiteLinks[mustSquare(t, "a2")] = mustSquare(t, "b1")
			},
		},
		{
			// d7 is already a linked black pawn; naming it as a white
			// target would give it two links.
			name: "piece in two links across sides",
			mutate: func(t *testing.T, s *Setup) {
				s.WhiteLinks[mustSquare(t, "d2")] = mustSquare(t, "d7")
			},
		},
		{
			name: "enemy free pawn as target",
			mutate: func(t *testing.T, s *Setup) {
				s.WhiteLinks[mustSquare(t, "d2")] = mustSquare(t, "h7")
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			setup := base(t)
			tt.mutate(t, &setup)
			pos := StartingPosition()
			_, err := NewEntanglementMap(&pos, setup)
			if !errors.Is(err, ErrInvalidSetup) {
				t.Fatalf("expected ErrInvalidSetup, got %v", err)
			}
		})
	}
}

func TestBrokenLinkNeverReforms(t *testing.T) {
	pos := StartingPosition()
	m, err := NewEntanglementMap(&pos, testSetup(t))
	if err != nil {
		t.Fatalf("map: %v", err)
	}

	pawn := PieceID(8) // a2
	cp, ok := m.Counterpart(pawn)
	if !ok {
		t.Fatalf("a2 pawn should be linked")
	}

	other, ok := m.breakLink(pawn)
	if !ok || other != cp {
		t.Fatalf("break returned %d/%v, want %d", other, ok, cp)
	}
	if m.Linked(pawn) || m.Linked(cp) {
		t.Fatalf("both ends should be free after the break")
	}
	if _, ok := m.breakLink(pawn); ok {
		t.Fatalf("second break on the same member must be a no-op")
	}
}

func TestLinkKeyIsOrderIndependent(t *testing.T) {
	pos := StartingPosition()
	a, err := NewEntanglementMap(&pos, testSetup(t))
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	b := a

	a.breakLink(8)
	a.breakLink(9)
	b.breakLink(9)
	b.breakLink(8)

	if a.Key() != b.Key() {
		t.Fatalf("key depends on break order: %x vs %x", a.Key(), b.Key())
	}
	full, err := NewEntanglementMap(&pos, testSetup(t))
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if a.Key() == full.Key() {
		t.Fatalf("key should change when links break")
	}
}

func TestPairsListsSurvivingLinks(t *testing.T) {
	pos := StartingPosition()
	m, err := NewEntanglementMap(&pos, testSetup(t))
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if got := len(m.Pairs()); got != 14 {
		t.Fatalf("expected 14 links, got %d", got)
	}
	m.breakLink(8)
	if got := len(m.Pairs()); got != 13 {
		t.Fatalf("expected 13 links after a break, got %d", got)
	}
	for _, pair := range m.Pairs() {
		if pair[0] >= pair[1] {
			t.Fatalf("pair %v not ordered", pair)
		}
	}
}
