package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"reelchain/internal/logging"
	"reelchain/internal/metrics"
	"reelchain/internal/puzzle"
	"reelchain/internal/services"
	"reelchain/internal/store"
)

// Generator builds one puzzle.
type Generator interface {
	Generate(ctx context.Context) (*puzzle.Puzzle, error)
}

// PuzzleStore abstracts puzzle persistence.
type PuzzleStore interface {
	Save(ctx context.Context, p *puzzle.Puzzle) error
	Get(ctx context.Context, id int64) (*puzzle.Puzzle, error)
	Latest(ctx context.Context) (*puzzle.Puzzle, error)
	List(ctx context.Context) ([]store.Listing, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// Archiver writes generated puzzles to a secondary location.
type Archiver interface {
	Save(p *puzzle.Puzzle) (string, error)
}

// PuzzleService coordinates generation and storage.
type PuzzleService struct {
	mu        sync.Mutex
	generator Generator
	store     PuzzleStore
	archive   Archiver
	attempts  int
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes a PuzzleService.
type Option func(*PuzzleService)

// WithArchive enables writing generated puzzles to archive.
func WithArchive(archive Archiver) Option {
	return func(s *PuzzleService) {
		s.archive = archive
	}
}

// WithAttempts sets how many times a failed generation is run before giving up.
func WithAttempts(attempts int) Option {
	return func(s *PuzzleService) {
		if attempts > 0 {
			s.attempts = attempts
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *PuzzleService) {
		s.logger = logging.NewComponentLogger(logger, "api")
	}
}

// NewPuzzleService wires a service around generator and store.
func NewPuzzleService(generator Generator, store PuzzleStore, opts ...Option) *PuzzleService {
	s := &PuzzleService{
		generator: generator,
		store:     store,
		attempts:  1,
		logger:    logging.NewComponentLogger(nil, "api"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate builds, stores, and returns a new puzzle. Concurrent calls are
// serialized. Failures are returned as ExternalServiceError values; a storage
// failure is KindInternal.
func (s *PuzzleService) Generate(ctx context.Context) (*puzzle.Puzzle, error) {
	if s == nil || s.generator == nil || s.store == nil {
		return nil, services.Internal("puzzle service not configured", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = services.WithGenerationID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, s.logger)
	start := s.now()

	p, err := s.generateWithAttempts(ctx, logger)
	if err != nil {
		metrics.RecordGeneration(false, s.now().Sub(start))
		logging.ErrorWithContext(logger, "puzzle generation failed", "generation_failed",
			logging.Error(err),
			logging.Int("attempts", s.attempts),
			logging.String(logging.FieldErrorHint, "verify TMDB credentials and connectivity with reelchain status"),
		)
		return nil, err
	}

	if err := s.store.Save(ctx, p); err != nil {
		metrics.RecordGeneration(false, s.now().Sub(start))
		logging.ErrorWithContext(logger, "puzzle save failed", "puzzle_save_failed",
			logging.Error(err),
			logging.Int64("puzzle_id", p.PuzzleID),
		)
		return nil, asInternal(err)
	}
	logger.Debug("puzzle saved",
		logging.String(logging.FieldEventType, "puzzle_saved"),
		logging.Int64("puzzle_id", p.PuzzleID),
	)
	if s.archive != nil {
		if path, err := s.archive.Save(p); err != nil {
			logging.WarnWithContext(logger, "puzzle archive write failed", "archive_write_failed",
				logging.Error(err),
				logging.Int64("puzzle_id", p.PuzzleID),
				logging.String(logging.FieldImpact, "puzzle stored in database only"),
			)
		} else {
			logger.Debug("puzzle archived", logging.String("path", path))
		}
	}

	elapsed := s.now().Sub(start)
	metrics.RecordGeneration(true, elapsed)
	logger.Info("puzzle generated",
		logging.String(logging.FieldEventType, "generation_completed"),
		logging.Int64("puzzle_id", p.PuzzleID),
		logging.Any("key_people", p.KeyPeople),
		logging.Duration("elapsed", elapsed),
	)
	return p, nil
}

func (s *PuzzleService) generateWithAttempts(ctx context.Context, logger *slog.Logger) (*puzzle.Puzzle, error) {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		p, err := s.generator.Generate(ctx)
		if err == nil {
			return p, nil
		}
		lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, services.AsExternalServiceError("Failed to generate puzzle", ctxErr)
		}
		if attempt < s.attempts {
			logging.WarnWithContext(logger, "puzzle generation attempt failed", "generation_attempt_failed",
				logging.Error(err),
				logging.Int("attempt", attempt),
				logging.Int("max_attempts", s.attempts),
				logging.String(logging.FieldImpact, "retrying with a new seed"),
			)
		}
	}
	return nil, services.AsExternalServiceError("Failed to generate puzzle", lastErr)
}

// List returns stored puzzle summaries, newest first.
func (s *PuzzleService) List(ctx context.Context) ([]puzzle.Summary, error) {
	listings, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]puzzle.Summary, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.Summary())
	}
	return out, nil
}

// Listings returns stored rows including creation time.
func (s *PuzzleService) Listings(ctx context.Context) ([]store.Listing, error) {
	return s.store.List(ctx)
}

// Latest returns the newest puzzle, or nil on an empty store.
func (s *PuzzleService) Latest(ctx context.Context) (*puzzle.Puzzle, error) {
	return s.store.Latest(ctx)
}

// Get fetches one puzzle. A missing puzzle returns an error wrapping
// services.ErrNotFound.
func (s *PuzzleService) Get(ctx context.Context, id int64) (*puzzle.Puzzle, error) {
	if id <= 0 {
		return nil, services.Wrap(services.ErrValidation, "api", "get puzzle", "puzzle id must be a positive integer", nil)
	}
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, services.Wrap(services.ErrNotFound, "api", "get puzzle", "Puzzle not found", nil)
	}
	return p, nil
}

// ImportResult summarizes an Import call.
type ImportResult struct {
	Inserted int
	Replaced int
	Skipped  int
}

// Import upserts puzzles into the store. Nil puzzles and puzzles without an id
// are skipped.
func (s *PuzzleService) Import(ctx context.Context, puzzles []*puzzle.Puzzle) (ImportResult, error) {
	var result ImportResult
	for _, p := range puzzles {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if p == nil || p.PuzzleID <= 0 {
			result.Skipped++
			continue
		}
		exists, err := s.store.Exists(ctx, p.PuzzleID)
		if err != nil {
			return result, err
		}
		if err := s.store.Save(ctx, p); err != nil {
			return result, err
		}
		if exists {
			result.Replaced++
		} else {
			result.Inserted++
		}
	}
	s.logger.Info("puzzles imported",
		logging.String(logging.FieldEventType, "seed_imported"),
		logging.Int("inserted", result.Inserted),
		logging.Int("replaced", result.Replaced),
		logging.Int("skipped", result.Skipped),
	)
	return result, nil
}

func asInternal(err error) error {
	if _, ok := services.AsExternal(err); ok {
		return err
	}
	return services.Internal("Failed to save puzzle", err)
}
