package store

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"entangled_chess/internal/game"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "games.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func playShortGame(t *testing.T, seed uint64) (*game.Game, game.Setup) {
	t.Helper()
	setup := game.RandomSetup(rand.New(rand.NewPCG(seed, seed)))
	g, err := game.NewGame(setup, game.NewRandomSelector(seed+1), game.NewRandomSelector(seed+2))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	for turns := 0; turns < 40 && !g.Over(); turns++ {
		if _, err := g.PlayTurn(); err != nil {
			t.Fatalf("turn %d: %v", turns, err)
		}
	}
	if !g.Over() {
		g.Adjudicate(game.Result{Outcome: game.OutcomeAdjudicated})
	}
	return g, setup
}

func TestSaveAndLoadGame(t *testing.T) {
	s := openTestStore(t)
	g, setup := playShortGame(t, 3)
	ctx := context.Background()

	rec := GameRecord{
		ID:     "game-1",
		Seed:   3,
		Result: g.Result(),
		Stats:  g.Stats(),
		Setup:  setup,
	}
	if err := s.SaveGame(ctx, rec, g.Records()); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, turns, err := s.LoadGame(ctx, "game-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Result != g.Result() {
		t.Fatalf("result round trip: %+v vs %+v", loaded.Result, g.Result())
	}
	if loaded.Stats != g.Stats() {
		t.Fatalf("stats round trip: %+v vs %+v", loaded.Stats, g.Stats())
	}
	if len(turns) != len(g.Records()) {
		t.Fatalf("turn count: %d vs %d", len(turns), len(g.Records()))
	}
	for i, turn := range turns {
		want := g.Records()[i]
		if turn.Notation != want.Notation || turn.Fingerprint != want.Fingerprint {
			t.Fatalf("turn %d round trip: %+v vs %+v", i+1, turn, want)
		}
	}
	if loaded.Setup.WhiteFree != setup.WhiteFree || loaded.Setup.BlackFree != setup.BlackFree {
		t.Fatalf("setup round trip: %+v vs %+v", loaded.Setup, setup)
	}
	for pawn, target := range setup.WhiteLinks {
		if loaded.Setup.WhiteLinks[pawn] != target {
			t.Fatalf("white link %s lost in round trip", pawn)
		}
	}
}

func TestLoadMissingGame(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.LoadGame(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListGamesNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c"} {
		g, setup := playShortGame(t, uint64(10+i))
		rec := GameRecord{ID: id, Seed: uint64(10 + i), Result: g.Result(), Stats: g.Stats(), Setup: setup}
		if err := s.SaveGame(ctx, rec, g.Records()); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	got, err := s.ListGames(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 games, got %d", len(got))
	}
}

func TestInMemoryStore(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	g, setup := playShortGame(t, 17)
	rec := GameRecord{ID: "mem-1", Seed: 17, Result: g.Result(), Stats: g.Stats(), Setup: setup}
	if err := s.SaveGame(ctx, rec, g.Records()); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, _, err := s.LoadGame(ctx, "mem-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Stats != g.Stats() {
		t.Fatalf("stats round trip: %+v vs %+v", loaded.Stats, g.Stats())
	}
}
