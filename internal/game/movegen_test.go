package game

import "testing"

func perft(p *Position, side Color, depth int) int {
	if depth == 0 {
		return 1
	}
	total := 0
	for _, m := range p.LegalMoves(side) {
		next, err := p.Apply(m)
		if err != nil {
			continue
		}
		total += perft(&next, side.Opposite(), depth-1)
	}
	return total
}

func TestOpeningMoveCounts(t *testing.T) {
	p := StartingPosition()
	if got := perft(&p, White, 1); got != 20 {
		t.Fatalf("expected 20 opening moves, got %d", got)
	}
	if got := perft(&p, White, 2); got != 400 {
		t.Fatalf("expected 400 two-ply positions, got %d", got)
	}
}

func TestPinnedPieceCannotMove(t *testing.T) {
	g := newTestGame(t)
	removePieceFromGame(t, g, "e2")
	teleport(t, g, "b1", "e3")
	teleport(t, g, "a8", "e5") // black rook pins the knight to the king

	knight := pieceIDAt(t, g, "e3")
	if moves := g.pos.LegalMovesForPiece(knight); len(moves) != 0 {
		t.Fatalf("pinned knight should have no moves, got %d", len(moves))
	}
}

func TestKingCannotStepIntoAttack(t *testing.T) {
	g := newTestGame(t)
	removePieceFromGame(t, g, "e2")
	teleport(t, g, "e1", "e2")
	// black queen eyes the d3 square
	teleport(t, g, "d8", "d6")

	moves := g.pos.LegalMovesForPiece(WhiteKingID)
	for _, m := range moves {
		if m.To == mustSquare(t, "d3") {
			t.Fatalf("king may not step into the queen's file")
		}
	}
}

func TestCastlingGeneration(t *testing.T) {
	g := newTestGame(t)
	removePieceFromGame(t, g, "f1")
	removePieceFromGame(t, g, "g1")

	king := g.pos.PieceByID(WhiteKingID)
	if _, ok := g.pos.castleMove(king, CastleKingside); !ok {
		t.Fatalf("expected kingside castle to be available")
	}
	if _, ok := g.pos.castleMove(king, CastleQueenside); ok {
		t.Fatalf("queenside lane is occupied")
	}

	// An enemy rook on the transit square forbids castling.
	removePieceFromGame(t, g, "f2")
	removePieceFromGame(t, g, "f7")
	removePieceFromGame(t, g, "f8")
	teleport(t, g, "a8", "f5")
	if _, ok := g.pos.castleMove(king, CastleKingside); ok {
		t.Fatalf("castle through an attacked square must be rejected")
	}
}

func TestEnPassantGeneration(t *testing.T) {
	// Link d7 to the boxed-in a1 rook so the double push owes a forced
	// response that cannot be paid, leaving the en passant target alive.
	setup := testSetup(t)
	setup.BlackLinks = linkMap(t, map[string]string{
		"b7": "b1", "c7": "c1", "d7": "a1", "e7": "f1",
		"f7": "g1", "g7": "h1", "h7": "d1",
	})
	setup.BlackFree = mustSquare(t, "a7")
	g, err := NewGame(setup, FirstSelector{}, FirstSelector{})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	teleport(t, g, "e2", "e5")
	g.pos.turn = Black

	rec := submitMove(t, g, "d7", "d5")
	if !rec.ForcedOwed || rec.Forced != nil {
		t.Fatalf("expected an unpayable forced response, got %+v", rec)
	}
	if rec.Primary.Kind != MoveDoublePush {
		t.Fatalf("expected double push, got %s", rec.Primary.Kind)
	}

	var found bool
	for _, m := range g.pos.LegalMovesForPiece(12) {
		if m.Kind == MoveEnPassant && m.To == mustSquare(t, "d6") {
			found = true
			if m.Captured != pieceIDAt(t, g, "d5") {
				t.Fatalf("wrong en passant victim: %d", m.Captured)
			}
		}
	}
	if !found {
		t.Fatalf("expected exd6 en passant to be generated")
	}
}

func TestPromotionMovesEnumerateAllChoices(t *testing.T) {
	g := newTestGame(t)
	removePieceFromGame(t, g, "a7")
	removePieceFromGame(t, g, "a8")
	teleport(t, g, "a2", "a7")

	seen := map[PieceType]bool{}
	for _, m := range g.pos.LegalMovesForPiece(8) {
		if m.Kind != MovePromotion {
			t.Fatalf("expected only promotions, got %s", m.Kind)
		}
		seen[m.Promotion] = true
	}
	for _, pt := range promotionOrder {
		if !seen[pt] {
			t.Fatalf("missing promotion to %s", pt)
		}
	}
}

func TestKingIsNeverACaptureTarget(t *testing.T) {
	g := newTestGame(t)
	removePieceFromGame(t, g, "e2")
	teleport(t, g, "d8", "e3") // black queen adjacent to the white king

	for _, m := range g.pos.LegalMovesForPiece(pieceIDAt(t, g, "e3")) {
		if m.To == g.pos.KingSquare(White) {
			t.Fatalf("generated a king capture")
		}
	}
}
