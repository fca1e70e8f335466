package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reelchain/internal/puzzle"
	"reelchain/internal/services"
)

// Listing is one row of List output.
type Listing struct {
	PuzzleID  int64
	KeyPeople []string
	CreatedAt time.Time
}

// Summary returns the API form of the listing.
func (l Listing) Summary() puzzle.Summary {
	return puzzle.Summary{PuzzleID: l.PuzzleID, KeyPeople: l.KeyPeople}
}

// Save inserts p or replaces the row with the same puzzle id. The original
// created_at is kept on replace.
func (s *Store) Save(ctx context.Context, p *puzzle.Puzzle) error {
	if p == nil || p.PuzzleID <= 0 {
		return services.Wrap(services.ErrValidation, "store", "save puzzle", "puzzle id required", nil)
	}
	puzzleJSON, err := json.Marshal(p)
	if err != nil {
		return services.Internal("encode puzzle", err)
	}
	keyPeople := p.KeyPeople
	if keyPeople == nil {
		keyPeople = []string{}
	}
	keyPeopleJSON, err := json.Marshal(keyPeople)
	if err != nil {
		return services.Internal("encode key people", err)
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	err = s.execWithRetry(ctx, `
		INSERT INTO puzzles (puzzle_id, puzzle_json, key_people_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(puzzle_id) DO UPDATE SET
			puzzle_json = excluded.puzzle_json,
			key_people_json = excluded.key_people_json,
			updated_at = excluded.updated_at`,
		p.PuzzleID, string(puzzleJSON), string(keyPeopleJSON), now, now,
	)
	if err != nil {
		return services.Internal(fmt.Sprintf("save puzzle %d", p.PuzzleID), err)
	}
	return nil
}

// Get returns the puzzle with id, or nil when absent.
func (s *Store) Get(ctx context.Context, id int64) (*puzzle.Puzzle, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT puzzle_id, puzzle_json FROM puzzles WHERE puzzle_id = ?`, id)
	return scanPuzzle(row)
}

// Latest returns the puzzle with the highest id, or nil on an empty store.
func (s *Store) Latest(ctx context.Context) (*puzzle.Puzzle, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT puzzle_id, puzzle_json FROM puzzles ORDER BY puzzle_id DESC LIMIT 1`)
	return scanPuzzle(row)
}

// Exists reports whether a row with id is stored.
func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ensureContext(ctx), `SELECT 1 FROM puzzles WHERE puzzle_id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, services.Internal("check puzzle", err)
	}
	return true, nil
}

// List returns every stored puzzle, newest id first.
func (s *Store) List(ctx context.Context) ([]Listing, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT puzzle_id, key_people_json, created_at FROM puzzles ORDER BY puzzle_id DESC`)
	if err != nil {
		return nil, services.Internal("list puzzles", err)
	}
	defer rows.Close()

	listings := []Listing{}
	for rows.Next() {
		var (
			listing       Listing
			keyPeopleJSON sql.NullString
			createdAt     string
		)
		if err := rows.Scan(&listing.PuzzleID, &keyPeopleJSON, &createdAt); err != nil {
			return nil, services.Internal("scan puzzle listing", err)
		}
		listing.KeyPeople = decodeKeyPeople(keyPeopleJSON)
		listing.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Internal("iterate puzzle listings", err)
	}
	return listings, nil
}

// Count returns the number of stored puzzles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM puzzles`).Scan(&count); err != nil {
		return 0, services.Internal("count puzzles", err)
	}
	return count, nil
}

func scanPuzzle(row *sql.Row) (*puzzle.Puzzle, error) {
	var (
		id   int64
		body string
	)
	if err := row.Scan(&id, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, services.Internal("load puzzle", err)
	}
	p, err := puzzle.DecodePuzzle([]byte(body))
	if err != nil {
		return nil, services.Internal(fmt.Sprintf("stored puzzle %d is invalid", id), err)
	}
	p.PuzzleID = id
	return p, nil
}

// decodeKeyPeople treats missing or malformed JSON as an empty list.
func decodeKeyPeople(value sql.NullString) []string {
	if !value.Valid {
		return []string{}
	}
	var raw []any
	if err := json.Unmarshal([]byte(value.String), &raw); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, _ := item.(string)
		out = append(out, s)
	}
	return out
}
