package game

import (
	"fmt"
	"math/rand/v2"
)

// Setup pairs pawns with enemy pieces by their starting squares. Each side
// links exactly seven of its eight pawns to seven distinct enemy non-king
// pieces; the eighth pawn stays free. No piece may belong to two links,
// which rules out enemy pawns as targets: each is already its own side's
// link member or designated free pawn.
type Setup struct {
	WhiteLinks map[Square]Square `json:"whiteLinks"`
	BlackLinks map[Square]Square `json:"blackLinks"`
	WhiteFree  Square            `json:"whiteFree"`
	BlackFree  Square            `json:"blackFree"`
}

const linksPerSide = 7

// RandomSetup draws a valid setup from the given source. The same source
// state always yields the same setup. Each side's seven targets are a
// shuffled matching onto the enemy back-rank non-king pieces, so the two
// sides' link sets never share a member and both free pawns stay unlinked.
func RandomSetup(rng *rand.Rand) Setup {
	pick := func(pawnRank, enemyBack int) (map[Square]Square, Square) {
		pawns := make([]Square, 0, 8)
		for f := 0; f < 8; f++ {
			sq, _ := SquareFromCoords(pawnRank, f)
			pawns = append(pawns, sq)
		}
		targets := make([]Square, 0, linksPerSide)
		for f := 0; f < 8; f++ {
			if f == 4 { // the king
				continue
			}
			sq, _ := SquareFromCoords(enemyBack, f)
			targets = append(targets, sq)
		}
		rng.Shuffle(len(pawns), func(i, j int) { pawns[i], pawns[j] = pawns[j], pawns[i] })
		rng.Shuffle(len(targets), func(i, j int) { targets[i], targets[j] = targets[j], targets[i] })
		links := make(map[Square]Square, linksPerSide)
		for i := 0; i < linksPerSide; i++ {
			links[pawns[i]] = targets[i]
		}
		return links, pawns[linksPerSide]
	}

	var s Setup
	s.WhiteLinks, s.WhiteFree = pick(1, 7)
	s.BlackLinks, s.BlackFree = pick(6, 0)
	return s
}

// EntanglementMap tracks the surviving links by piece id. Links only ever
// break; a broken link never re-forms.
type EntanglementMap struct {
	counterpart [pieceCount]int8
}

// NewEntanglementMap validates a setup against the starting position and
// resolves it to piece ids. Membership is checked across both sides: no
// piece may appear in two links, and neither free pawn may be a link
// member in any role.
func NewEntanglementMap(pos *Position, setup Setup) (EntanglementMap, error) {
	var m EntanglementMap
	for i := range m.counterpart {
		m.counterpart[i] = noOccupant
	}

	used := make(map[PieceID]bool, pieceCount)

	bind := func(owner Color, links map[Square]Square, free Square) error {
		if len(links) != linksPerSide {
			return fmt.Errorf("%w: %s has %d links, want %d", ErrInvalidSetup, owner, len(links), linksPerSide)
		}
		freePc, ok := pos.PieceAt(free)
		if !ok || freePc.Color != owner || freePc.Type != Pawn {
			return fmt.Errorf("%w: free square %s is not a %s pawn", ErrInvalidSetup, free, owner)
		}
		if used[freePc.ID] {
			return fmt.Errorf("%w: free pawn %s is a link member", ErrInvalidSetup, free)
		}
		used[freePc.ID] = true
		for pawnSq, targetSq := range links {
			pawn, ok := pos.PieceAt(pawnSq)
			if !ok || pawn.Color != owner || pawn.Type != Pawn {
				return fmt.Errorf("%w: %s is not a %s pawn", ErrInvalidSetup, pawnSq, owner)
			}
			target, ok := pos.PieceAt(targetSq)
			if !ok || target.Color != owner.Opposite() {
				return fmt.Errorf("%w: %s is not an enemy piece", ErrInvalidSetup, targetSq)
			}
			if target.Type == King {
				return fmt.Errorf("%w: king at %s cannot be linked", ErrInvalidSetup, targetSq)
			}
			if used[pawn.ID] {
				return fmt.Errorf("%w: %s belongs to two links", ErrInvalidSetup, pawnSq)
			}
			if used[target.ID] {
				return fmt.Errorf("%w: %s belongs to two links", ErrInvalidSetup, targetSq)
			}
			used[pawn.ID] = true
			used[target.ID] = true
			m.counterpart[pawn.ID] = int8(target.ID)
			m.counterpart[target.ID] = int8(pawn.ID)
		}
		return nil
	}

	if err := bind(White, setup.WhiteLinks, setup.WhiteFree); err != nil {
		return EntanglementMap{}, err
	}
	if err := bind(Black, setup.BlackLinks, setup.BlackFree); err != nil {
		return EntanglementMap{}, err
	}
	return m, nil
}

func (m *EntanglementMap) Counterpart(id PieceID) (PieceID, bool) {
	cp := m.counterpart[id]
	if cp == noOccupant {
		return 0, false
	}
	return PieceID(cp), true
}

func (m *EntanglementMap) Linked(id PieceID) bool {
	return m.counterpart[id] != noOccupant
}

// breakLink severs the link holding id, if any, and returns the other end.
func (m *EntanglementMap) breakLink(id PieceID) (PieceID, bool) {
	cp := m.counterpart[id]
	if cp == noOccupant {
		return 0, false
	}
	m.counterpart[id] = noOccupant
	m.counterpart[cp] = noOccupant
	return PieceID(cp), true
}

// Pairs lists the surviving links as id pairs, smaller id first, in
// ascending order.
func (m *EntanglementMap) Pairs() [][2]PieceID {
	var out [][2]PieceID
	for id, cp := range m.counterpart {
		if cp == noOccupant || int8(id) > cp {
			continue
		}
		out = append(out, [2]PieceID{PieceID(id), PieceID(cp)})
	}
	return out
}

// Key folds the surviving link set into a single hash, independent of the
// order links were formed or broken.
func (m *EntanglementMap) Key() uint64 {
	var h uint64
	for id, cp := range m.counterpart {
		if cp == noOccupant || int8(id) > cp {
			continue
		}
		h ^= linkKey(PieceID(id), PieceID(cp))
	}
	return h
}

type LinkBreakReason uint8

const (
	BreakCapture LinkBreakReason = iota
	BreakPromotion
)

func (r LinkBreakReason) String() string {
	if r == BreakCapture {
		return "capture"
	}
	return "promotion"
}

func (r LinkBreakReason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *LinkBreakReason) UnmarshalText(text []byte) error {
	for cand := BreakCapture; cand <= BreakPromotion; cand++ {
		if cand.String() == string(text) {
			*r = cand
			return nil
		}
	}
	return fmt.Errorf("invalid link break reason %q", string(text))
}

// LinkBreak records one severed link: the member whose capture or
// promotion triggered the break, its counterpart, and why.
type LinkBreak struct {
	Member      PieceID         `json:"member"`
	Counterpart PieceID         `json:"counterpart"`
	Reason      LinkBreakReason `json:"reason"`
}
