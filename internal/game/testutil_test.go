package game

import (
	"math/rand/v2"
	"testing"
)

func newTestRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func mustSquare(t *testing.T, coord string) Square {
	t.Helper()
	sq, ok := CoordToSquare(coord)
	if !ok {
		t.Fatalf("invalid coordinate %q", coord)
	}
	return sq
}

func linkMap(t *testing.T, pairs map[string]string) map[Square]Square {
	t.Helper()
	out := make(map[Square]Square, len(pairs))
	for pawn, target := range pairs {
		out[mustSquare(t, pawn)] = mustSquare(t, target)
	}
	return out
}

// testSetup links pawns to enemy back-rank pieces by file, skipping the
// kings: a2-a8, b2-b8, c2-c8, d2-d8, e2-f8, f2-g8, g2-h8 for white and
// the mirror for black. The h-file pawns stay free.
func testSetup(t *testing.T) Setup {
	t.Helper()
	return Setup{
		WhiteLinks: linkMap(t, map[string]string{
			"a2": "a8", "b2": "b8", "c2": "c8", "d2": "d8",
			"e2": "f8", "f2": "g8", "g2": "h8",
		}),
		BlackLinks: linkMap(t, map[string]string{
			"a7": "a1", "b7": "b1", "c7": "c1", "d7": "d1",
			"e7": "f1", "f7": "g1", "g7": "h1",
		}),
		WhiteFree: mustSquare(t, "h2"),
		BlackFree: mustSquare(t, "h7"),
	}
}

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g, err := NewGame(testSetup(t), FirstSelector{}, FirstSelector{})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

// removePieceFromGame deletes a piece outright, severing its link, to
// sculpt mid-game situations without scripting the moves that would reach
// them.
func removePieceFromGame(t *testing.T, g *Game, coord string) {
	t.Helper()
	sq := mustSquare(t, coord)
	idx := g.pos.squares[sq]
	if idx == noOccupant {
		t.Fatalf("no piece to remove at %s", coord)
	}
	g.pos.removePiece(PieceID(idx))
	g.ent.breakLink(PieceID(idx))
}

func teleport(t *testing.T, g *Game, from, to string) {
	t.Helper()
	fromSq := mustSquare(t, from)
	toSq := mustSquare(t, to)
	idx := g.pos.squares[fromSq]
	if idx == noOccupant {
		t.Fatalf("no piece to move at %s", from)
	}
	if g.pos.squares[toSq] != noOccupant {
		t.Fatalf("square %s already occupied", to)
	}
	g.pos.movePiece(PieceID(idx), toSq)
}

func pieceIDAt(t *testing.T, g *Game, coord string) PieceID {
	t.Helper()
	pc, ok := g.pos.PieceAt(mustSquare(t, coord))
	if !ok {
		t.Fatalf("no piece at %s", coord)
	}
	return pc.ID
}

func submitMove(t *testing.T, g *Game, from, to string) *TurnRecord {
	t.Helper()
	rec, err := g.Submit(MoveRequest{From: mustSquare(t, from), To: mustSquare(t, to)})
	if err != nil {
		t.Fatalf("submit %s%s: %v", from, to, err)
	}
	return rec
}

func cloneGame(g *Game) *Game {
	c := *g
	c.seen = make(map[uint64]int, len(g.seen))
	for k, v := range g.seen {
		c.seen[k] = v
	}
	c.records = append([]TurnRecord(nil), g.records...)
	return &c
}
