// Package store persists finished games and their turn logs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"entangled_chess/internal/game"
)

var ErrNotFound = errors.New("game not found")

// Store persists game results in SQLite.
type Store struct {
	sqlDB *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
  id             TEXT PRIMARY KEY,
  seed           INTEGER NOT NULL,
  outcome        TEXT NOT NULL,
  winner         TEXT,
  total_turns    INTEGER NOT NULL,
  forced_moves   INTEGER NOT NULL,
  reactive_moves INTEGER NOT NULL,
  captures       INTEGER NOT NULL,
  promotions     INTEGER NOT NULL,
  link_breaks    INTEGER NOT NULL,
  final_fen      TEXT NOT NULL,
  final_link_key INTEGER NOT NULL,
  setup_json     TEXT NOT NULL,
  created_at     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
  game_id     TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
  number      INTEGER NOT NULL,
  mover       TEXT NOT NULL,
  notation    TEXT NOT NULL,
  fingerprint INTEGER NOT NULL,
  link_breaks INTEGER NOT NULL,
  next_moves  INTEGER NOT NULL,
  record_json TEXT NOT NULL,
  PRIMARY KEY (game_id, number)
);
`

// Open opens a SQLite store at path and ensures the schema exists. The
// path ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	var dsn string
	if path == ":memory:" {
		dsn = path
	} else {
		dsn = filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty db
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GameRecord is the persisted summary of one game.
type GameRecord struct {
	ID        string
	Seed      uint64
	Result    game.Result
	Stats     game.Stats
	Setup     game.Setup
	CreatedAt time.Time
}

// SaveGame writes the summary row and its turn log in one transaction.
func (s *Store) SaveGame(ctx context.Context, rec GameRecord, turns []game.TurnRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("game id is required")
	}
	setupJSON, err := json.Marshal(rec.Setup)
	if err != nil {
		return fmt.Errorf("encode setup: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var winner any
	if rec.Result.HasWinner {
		winner = rec.Result.Winner.String()
	}
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO games (
		   id, seed, outcome, winner,
		   total_turns, forced_moves, reactive_moves,
		   captures, promotions, link_breaks,
		   final_fen, final_link_key, setup_json, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		int64(rec.Seed),
		rec.Result.Outcome.String(),
		winner,
		rec.Stats.TotalTurns,
		rec.Stats.ForcedMoves,
		rec.Stats.ReactiveMoves,
		rec.Stats.Captures,
		rec.Stats.Promotions,
		rec.Stats.LinkBreaks,
		rec.Stats.FinalFEN,
		int64(rec.Stats.FinalLinkKey),
		string(setupJSON),
		createdAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	for i := range turns {
		turn := &turns[i]
		recordJSON, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("encode turn %d: %w", turn.Number, err)
		}
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO turns (game_id, number, mover, notation, fingerprint, link_breaks, next_moves, record_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID,
			turn.Number,
			turn.Mover.String(),
			turn.Notation,
			int64(turn.Fingerprint),
			len(turn.Breaks),
			turn.NextMoves,
			string(recordJSON),
		)
		if err != nil {
			return fmt.Errorf("insert turn %d: %w", turn.Number, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadGame reads one game summary and its turn log.
func (s *Store) LoadGame(ctx context.Context, id string) (GameRecord, []game.TurnRecord, error) {
	if err := ctx.Err(); err != nil {
		return GameRecord{}, nil, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, seed, outcome, winner,
		        total_turns, forced_moves, reactive_moves,
		        captures, promotions, link_breaks,
		        final_fen, final_link_key, setup_json, created_at
		   FROM games WHERE id = ?`,
		id,
	)
	rec, err := scanGame(row)
	if err != nil {
		return GameRecord{}, nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT record_json FROM turns WHERE game_id = ? ORDER BY number`,
		id,
	)
	if err != nil {
		return GameRecord{}, nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []game.TurnRecord
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return GameRecord{}, nil, fmt.Errorf("scan turn: %w", err)
		}
		var turn game.TurnRecord
		if err := json.Unmarshal([]byte(blob), &turn); err != nil {
			return GameRecord{}, nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return GameRecord{}, nil, fmt.Errorf("iterate turns: %w", err)
	}
	return rec, turns, nil
}

// ListGames returns the most recent game summaries, newest first.
func (s *Store) ListGames(ctx context.Context, limit int) ([]GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, seed, outcome, winner,
		        total_turns, forced_moves, reactive_moves,
		        captures, promotions, link_breaks,
		        final_fen, final_link_key, setup_json, created_at
		   FROM games ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []GameRecord
	for rows.Next() {
		rec, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (GameRecord, error) {
	var (
		rec       GameRecord
		seed      int64
		outcome   string
		winner    sql.NullString
		linkKey   int64
		setupJSON string
		createdAt int64
	)
	err := row.Scan(
		&rec.ID, &seed, &outcome, &winner,
		&rec.Stats.TotalTurns, &rec.Stats.ForcedMoves, &rec.Stats.ReactiveMoves,
		&rec.Stats.Captures, &rec.Stats.Promotions, &rec.Stats.LinkBreaks,
		&rec.Stats.FinalFEN, &linkKey, &setupJSON, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GameRecord{}, ErrNotFound
	}
	if err != nil {
		return GameRecord{}, fmt.Errorf("scan game: %w", err)
	}

	rec.Seed = uint64(seed)
	rec.Stats.FinalLinkKey = uint64(linkKey)
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	if err := rec.Result.Outcome.UnmarshalText([]byte(outcome)); err != nil {
		return GameRecord{}, fmt.Errorf("decode outcome: %w", err)
	}
	if winner.Valid {
		color, ok := game.ParseColor(winner.String)
		if !ok {
			return GameRecord{}, fmt.Errorf("decode winner %q", winner.String)
		}
		rec.Result.Winner = color
		rec.Result.HasWinner = true
	}
	if err := json.Unmarshal([]byte(setupJSON), &rec.Setup); err != nil {
		return GameRecord{}, fmt.Errorf("decode setup: %w", err)
	}
	return rec, nil
}
