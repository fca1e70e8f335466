package chain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reelchain/internal/credits"
	"reelchain/internal/eligibility"
	"reelchain/internal/logging"
	"reelchain/internal/puzzle"
	"reelchain/internal/services"
	"reelchain/internal/tmdb"
)

const (
	// Length is the number of movies in a finished chain.
	Length = 6

	maxPrimaryCast = 5
	linkPoolSize   = 5
)

// Discoverer lists candidate movies.
type Discoverer interface {
	DiscoverByYear(ctx context.Context, year int) ([]tmdb.Movie, error)
	DiscoverByCast(ctx context.Context, personID int64) ([]tmdb.Movie, error)
}

// CreditsSource returns credits for a movie, typically through *credits.Cache.
type CreditsSource interface {
	Get(ctx context.Context, movieID int64) (tmdb.Credits, error)
}

var _ CreditsSource = (*credits.Cache)(nil)

// Builder assembles movie chains.
type Builder struct {
	discover       Discoverer
	credits        CreditsSource
	chooser        Chooser
	now            func() time.Time
	lowestYear     int
	excludedGenres []int
	logger         *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithChooser replaces the random index source.
func WithChooser(chooser Chooser) Option {
	return func(b *Builder) {
		if chooser != nil {
			b.chooser = chooser
		}
	}
}

// WithClock replaces the clock used for the current year and puzzle ids.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLowestYear sets the earliest release year for seeds and links.
func WithLowestYear(year int) Option {
	return func(b *Builder) {
		if year > 0 {
			b.lowestYear = year
		}
	}
}

// WithExcludedGenres overrides the excluded genre ids.
func WithExcludedGenres(ids []int) Option {
	return func(b *Builder) {
		if ids != nil {
			b.excludedGenres = append([]int(nil), ids...)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logging.NewComponentLogger(logger, "chain")
	}
}

// NewBuilder creates a Builder.
func NewBuilder(discover Discoverer, creditsSource CreditsSource, opts ...Option) *Builder {
	b := &Builder{
		discover:       discover,
		credits:        creditsSource,
		chooser:        NewRandomChooser(),
		now:            time.Now,
		lowestYear:     eligibility.DefaultLowestYear,
		excludedGenres: eligibility.DefaultExcludedGenres,
		logger:         logging.NewComponentLogger(nil, "chain"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Generate builds one puzzle. Every failure is an ExternalServiceError; a
// failed generation leaves nothing behind.
func (b *Builder) Generate(ctx context.Context) (*puzzle.Puzzle, error) {
	p, err := b.generate(ctx)
	if err != nil {
		return nil, services.AsExternalServiceError("Failed to generate puzzle", err)
	}
	return p, nil
}

func (b *Builder) generate(ctx context.Context) (*puzzle.Puzzle, error) {
	logger := logging.WithContext(ctx, b.logger)
	currentYear := b.now().Year()
	lowest := min(b.lowestYear, currentYear)

	seed, err := b.selectSeed(ctx, logger, lowest, currentYear)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, Length)
	entries = append(entries, seed)

	for len(entries) < Length {
		next, err := b.extend(ctx, logger, entries, lowest, currentYear)
		if err != nil {
			return nil, err
		}
		entries = append(entries, next)
	}
	return b.finalize(entries), nil
}

func (b *Builder) selectSeed(ctx context.Context, logger *slog.Logger, lowest, current int) (Entry, error) {
	year := lowest + pick(b.chooser, current-lowest+1)
	movies, err := b.discover.DiscoverByYear(ctx, year)
	if err != nil {
		return Entry{}, err
	}
	eligible := eligibility.Filter(movies, eligibility.Options{
		ExcludedGenres: b.excludedGenres,
		LowestYear:     lowest,
		CurrentYear:    current,
	})
	if len(eligible) == 0 {
		return Entry{}, services.External(fmt.Sprintf("no eligible seed movie found for year %d", year), nil)
	}
	movie := eligible[pick(b.chooser, len(eligible))]

	record, err := NewMovieRecord(movie)
	if err != nil {
		return Entry{}, err
	}
	movieCredits, err := b.credits.Get(ctx, movie.ID)
	if err != nil {
		return Entry{}, err
	}
	cast := primaryCast(movieCredits.Cast)
	if len(cast) == 0 {
		return Entry{}, services.External(fmt.Sprintf("no cast found for movie %d", movie.ID), nil)
	}
	key := cast[pick(b.chooser, len(cast))]

	logger.Info("seed selected",
		logging.String(logging.FieldEventType, "seed_selected"),
		logging.Int(logging.FieldStep, 1),
		logging.Int("year", year),
		logging.Int64(logging.FieldMovieID, movie.ID),
		logging.String("title", movie.Title),
		logging.String("key_person", key.Name),
		logging.Int("candidates", len(eligible)),
	)
	return NewEntry(record, cast, directorsOf(movieCredits.Crew), key)
}

func (b *Builder) extend(ctx context.Context, logger *slog.Logger, chain []Entry, lowest, current int) (Entry, error) {
	prev := chain[len(chain)-1]
	step := len(chain) + 1
	disallowed := make(map[int64]struct{}, len(chain))
	for _, entry := range chain {
		disallowed[entry.Movie.ID] = struct{}{}
	}
	opts := eligibility.Options{
		EnforceYearBounds: true,
		DisallowedIDs:     disallowed,
		LowestYear:        lowest,
		CurrentYear:       current,
		ExcludedGenres:    b.excludedGenres,
	}

	var (
		movie tmdb.Movie
		via   PersonRecord
		found bool
	)
	for _, candidate := range linkCandidates(prev) {
		movies, err := b.discover.DiscoverByCast(ctx, candidate.ID)
		if err != nil {
			if ctx.Err() != nil {
				return Entry{}, ctx.Err()
			}
			logging.WarnWithContext(logger, "link candidate lookup failed", "link_candidate_failed",
				logging.Int(logging.FieldStep, step),
				logging.Int64("person_id", candidate.ID),
				logging.String("person", candidate.Name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "TMDB discover failed for this cast member"),
				logging.String(logging.FieldImpact, "trying the next cast member"),
			)
			continue
		}
		eligible := eligibility.Filter(movies, opts)
		if len(eligible) == 0 {
			logger.Debug("no eligible movies for cast member",
				logging.Int(logging.FieldStep, step),
				logging.Int64("person_id", candidate.ID),
			)
			continue
		}
		pool := eligible[:min(linkPoolSize, len(eligible))]
		movie = pool[pick(b.chooser, len(pool))]
		via = candidate
		found = true
		break
	}
	if !found {
		return Entry{}, services.External("no connected movie found", nil)
	}

	record, err := NewMovieRecord(movie)
	if err != nil {
		return Entry{}, err
	}
	movieCredits, err := b.credits.Get(ctx, movie.ID)
	if err != nil {
		return Entry{}, err
	}
	cast := supportingCast(movieCredits.Cast, prev.Cast)
	if len(cast) == 0 {
		return Entry{}, services.External(fmt.Sprintf("no supporting cast found for movie %d", movie.ID), nil)
	}
	key := cast[pick(b.chooser, len(cast))]

	logger.Info("link selected",
		logging.String(logging.FieldEventType, "link_selected"),
		logging.Int(logging.FieldStep, step),
		logging.Int64(logging.FieldMovieID, movie.ID),
		logging.String("title", movie.Title),
		logging.String("via", via.Name),
		logging.String("key_person", key.Name),
	)
	return NewEntry(record, cast, directorsOf(movieCredits.Crew), key)
}

// linkCandidates orders the previous key person first, then the rest of the
// previous cast in billing order, without duplicates.
func linkCandidates(prev Entry) []PersonRecord {
	out := make([]PersonRecord, 0, len(prev.Cast))
	seen := make(map[int64]struct{}, len(prev.Cast))
	add := func(p PersonRecord) {
		if p.ID <= 0 {
			return
		}
		if _, dup := seen[p.ID]; dup {
			return
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	add(prev.KeyPerson)
	for _, p := range prev.Cast {
		add(p)
	}
	return out
}

func (b *Builder) finalize(entries []Entry) *puzzle.Puzzle {
	p := &puzzle.Puzzle{
		PuzzleID:  b.now().UnixMilli(),
		Puzzle:    make([]puzzle.Entry, 0, len(entries)),
		KeyPeople: make([]string, 0, len(entries)),
	}
	for _, entry := range entries {
		normalized := puzzle.NormalizeMovie(entry.Raw())
		p.Puzzle = append(p.Puzzle, normalized)
		p.KeyPeople = append(p.KeyPeople, normalized.KeyPerson.Name)
	}
	return p
}
