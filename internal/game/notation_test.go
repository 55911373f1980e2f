package game

import "testing"

func TestSANBasics(t *testing.T) {
	g := newTestGame(t)
	p := &g.pos

	tests := []struct {
		name string
		move Move
		want string
	}{
		{
			name: "pawn push",
			move: Move{Kind: MoveQuiet, Piece: 12, From: mustSquare(t, "e2"), To: mustSquare(t, "e3")},
			want: "e3",
		},
		{
			name: "double push",
			move: Move{Kind: MoveDoublePush, Piece: 12, From: mustSquare(t, "e2"), To: mustSquare(t, "e4")},
			want: "e4",
		},
		{
			name: "knight development",
			move: Move{Kind: MoveQuiet, Piece: 6, From: mustSquare(t, "g1"), To: mustSquare(t, "f3")},
			want: "Nf3",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := sanMove(p, tt.move); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSANPawnCaptureUsesFile(t *testing.T) {
	g := newTestGame(t)
	teleport(t, g, "e2", "e4")
	teleport(t, g, "d7", "d5")

	victim := pieceIDAt(t, g, "d5")
	m := Move{
		Kind: MoveCapture, Piece: 12, From: mustSquare(t, "e4"), To: mustSquare(t, "d5"),
		Captured: victim, HasCaptured: true,
	}
	if got := sanMove(&g.pos, m); got != "exd5" {
		t.Fatalf("got %q, want exd5", got)
	}
}

func TestSANCastleStrings(t *testing.T) {
	g := newTestGame(t)
	for _, coord := range []string{"b1", "c1", "d1", "f1", "g1"} {
		removePieceFromGame(t, g, coord)
	}
	king := g.pos.PieceByID(WhiteKingID)

	short, ok := g.pos.castleMove(king, CastleKingside)
	if !ok {
		t.Fatalf("kingside castle unavailable")
	}
	if got := sanMove(&g.pos, short); got != "O-O" {
		t.Fatalf("got %q, want O-O", got)
	}
	long, ok := g.pos.castleMove(king, CastleQueenside)
	if !ok {
		t.Fatalf("queenside castle unavailable")
	}
	if got := sanMove(&g.pos, long); got != "O-O-O" {
		t.Fatalf("got %q, want O-O-O", got)
	}
}

func TestSANDisambiguatesByFile(t *testing.T) {
	g := newTestGame(t)
	removePieceFromGame(t, g, "d2")
	teleport(t, g, "g1", "f3") // knights on b1 and f3 both reach d2

	target := mustSquare(t, "d2")
	var cand Move
	found := false
	for _, mv := range g.pos.LegalMovesForPiece(1) {
		if mv.To == target {
			cand = mv
			found = true
		}
	}
	if !found {
		t.Fatalf("knight on b1 should reach d2")
	}
	if got := sanMove(&g.pos, cand); got != "Nbd2" {
		t.Fatalf("got %q, want Nbd2", got)
	}
}
