// Package sim runs batches of deterministic self-play games.
package sim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"entangled_chess/internal/game"
	"entangled_chess/internal/store"
)

// Config configures a self-play batch. Every game derives its own seeds
// from Seed and its index, so a batch replays identically regardless of
// worker count or scheduling.
type Config struct {
	Games    int    `env:"EC_GAMES" envDefault:"10"`
	Seed     uint64 `env:"EC_SEED" envDefault:"1"`
	Workers  int    `env:"EC_WORKERS" envDefault:"4"`
	MaxTurns int    `env:"EC_MAX_TURNS" envDefault:"300"`
	DBPath   string `env:"EC_DB"`
}

// GameReport summarizes one finished game.
type GameReport struct {
	ID     string
	Index  int
	Seed   uint64
	Result game.Result
	Stats  game.Stats
}

// Summary aggregates a whole batch.
type Summary struct {
	Games      int
	WhiteWins  int
	BlackWins  int
	Draws      int
	TotalTurns int
	Elapsed    time.Duration
}

// Runner plays Config.Games games across Config.Workers goroutines,
// optionally persisting each finished game.
type Runner struct {
	cfg Config
	log zerolog.Logger
	db  *store.Store
}

func NewRunner(cfg Config, log zerolog.Logger, db *store.Store) (*Runner, error) {
	if cfg.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", cfg.Games)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 300
	}
	return &Runner{cfg: cfg, log: log, db: db}, nil
}

// Run plays the batch and returns the aggregate summary. The context
// cancels outstanding games between turns.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	r.log.Info().
		Int("games", r.cfg.Games).
		Uint64("seed", r.cfg.Seed).
		Int("workers", r.cfg.Workers).
		Int("max_turns", r.cfg.MaxTurns).
		Msg("batch started")

	indices := make(chan int)
	reports := make(chan GameReport, r.cfg.Games)
	errs := make(chan error, r.cfg.Games)

	var wg sync.WaitGroup
	for w := 0; w < r.cfg.Workers; w++ {
		workerID := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			log := r.log.With().Int("worker_id", workerID).Logger()
			for idx := range indices {
				report, err := r.playGame(ctx, idx)
				if err != nil {
					log.Error().Err(err).Int("game", idx).Msg("game failed")
					errs <- err
					continue
				}
				log.Debug().
					Int("game", idx).
					Str("result", report.Result.String()).
					Int("turns", report.Stats.TotalTurns).
					Msg("game finished")
				reports <- report
			}
		}()
	}

feed:
	for i := 0; i < r.cfg.Games; i++ {
		select {
		case indices <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indices)
	wg.Wait()
	close(reports)
	close(errs)

	if err := <-errs; err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Elapsed: time.Since(start)}
	for report := range reports {
		summary.Games++
		summary.TotalTurns += report.Stats.TotalTurns
		switch {
		case !report.Result.HasWinner:
			summary.Draws++
		case report.Result.Winner == game.White:
			summary.WhiteWins++
		default:
			summary.BlackWins++
		}
	}

	r.log.Info().
		Int("games", summary.Games).
		Int("white_wins", summary.WhiteWins).
		Int("black_wins", summary.BlackWins).
		Int("draws", summary.Draws).
		Int("total_turns", summary.TotalTurns).
		Dur("elapsed", summary.Elapsed).
		Msg("batch finished")
	return summary, nil
}

// gameSeed spreads the batch seed per game with a splitmix64 step.
func gameSeed(base uint64, index int) uint64 {
	z := base + uint64(index)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func (r *Runner) playGame(ctx context.Context, index int) (GameReport, error) {
	seed := gameSeed(r.cfg.Seed, index)
	g, err := NewSeededGame(seed)
	if err != nil {
		return GameReport{}, err
	}

	for turns := 0; turns < r.cfg.MaxTurns && !g.Over(); turns++ {
		if err := ctx.Err(); err != nil {
			return GameReport{}, err
		}
		if _, err := g.PlayTurn(); err != nil {
			return GameReport{}, fmt.Errorf("game %d turn %d: %w", index, turns+1, err)
		}
	}
	if !g.Over() {
		g.Adjudicate(game.Result{Outcome: game.OutcomeAdjudicated})
	}

	report := GameReport{
		ID:     uuid.NewString(),
		Index:  index,
		Seed:   seed,
		Result: g.Result(),
		Stats:  g.Stats(),
	}

	if r.db != nil {
		rec := store.GameRecord{
			ID:     report.ID,
			Seed:   seed,
			Result: report.Result,
			Stats:  report.Stats,
			Setup:  g.Setup(),
		}
		if err := r.db.SaveGame(ctx, rec, g.Records()); err != nil {
			return GameReport{}, fmt.Errorf("persist game %d: %w", index, err)
		}
	}
	return report, nil
}

// NewSeededGame builds a game whose setup and both selectors derive from
// one seed. Replaying the seed replays the game move for move.
func NewSeededGame(seed uint64) (*game.Game, error) {
	setup := game.RandomSetup(rand.New(rand.NewPCG(seed, 0x243f6a8885a308d3)))
	white := game.NewRandomSelector(seed ^ 0x13198a2e03707344)
	black := game.NewRandomSelector(seed ^ 0xa4093822299f31d0)
	return game.NewGame(setup, white, black)
}
