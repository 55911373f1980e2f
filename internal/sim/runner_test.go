package sim

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"entangled_chess/internal/store"
)

func TestRunCompletesAllGames(t *testing.T) {
	r, err := NewRunner(Config{Games: 3, Seed: 7, Workers: 2, MaxTurns: 120}, zerolog.Nop(), nil)
	if err != nil {
		t.Fatal(err)
	}
	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Games != 3 {
		t.Fatalf("expected 3 games, got %d", summary.Games)
	}
	if summary.WhiteWins+summary.BlackWins+summary.Draws != summary.Games {
		t.Fatalf("summary does not add up: %+v", summary)
	}
	if summary.TotalTurns == 0 {
		t.Fatal("no turns played")
	}
}

func TestSeededGameIsReproducible(t *testing.T) {
	playNotations := func() []string {
		g, err := NewSeededGame(42)
		if err != nil {
			t.Fatal(err)
		}
		var out []string
		for i := 0; i < 60 && !g.Over(); i++ {
			rec, err := g.PlayTurn()
			if err != nil {
				t.Fatal(err)
			}
			if rec == nil {
				break
			}
			out = append(out, rec.Notation)
		}
		return out
	}

	first := playNotations()
	second := playNotations()
	if len(first) == 0 {
		t.Fatal("no moves produced")
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("turn %d differs: %q vs %q", i+1, first[i], second[i])
		}
	}
}

func TestGameSeedSpreadsIndices(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		s := gameSeed(1, i)
		if seen[s] {
			t.Fatalf("duplicate seed at index %d", i)
		}
		seen[s] = true
	}
}

func TestRunPersistsGames(t *testing.T) {
	db, err := store.Open(t.TempDir() + "/sim.db")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	r, err := NewRunner(Config{Games: 2, Seed: 11, Workers: 1, MaxTurns: 80}, zerolog.Nop(), db)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	games, err := db.ListGames(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 stored games, got %d", len(games))
	}
}

func TestNewRunnerRejectsZeroGames(t *testing.T) {
	if _, err := NewRunner(Config{Games: 0}, zerolog.Nop(), nil); err == nil {
		t.Fatal("expected error")
	}
}
