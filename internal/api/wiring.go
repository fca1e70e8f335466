package api

import (
	"fmt"
	"log/slog"

	"reelchain/internal/archive"
	"reelchain/internal/chain"
	"reelchain/internal/config"
	"reelchain/internal/credits"
	"reelchain/internal/tmdb"
)

// Components bundles the collaborators built by NewFromConfig.
type Components struct {
	Client  *tmdb.Client
	Credits *credits.Cache
	Builder *chain.Builder
	Archive *archive.Archive
	Service *PuzzleService
}

// NewFromConfig builds the TMDB client, credits cache, chain builder, and
// puzzle service over store. Extra tmdb options are appended after the ones
// derived from cfg.
func NewFromConfig(cfg *config.Config, store PuzzleStore, logger *slog.Logger, tmdbOpts ...tmdb.Option) (*Components, error) {
	if cfg == nil || store == nil {
		return nil, fmt.Errorf("config and store are required")
	}
	client, err := tmdb.NewFromConfig(cfg, logger, tmdbOpts...)
	if err != nil {
		return nil, fmt.Errorf("create tmdb client: %w", err)
	}
	cache, err := credits.New(client, cfg.Cache.CreditsCapacity, logger)
	if err != nil {
		return nil, fmt.Errorf("create credits cache: %w", err)
	}
	builder := chain.NewBuilder(client, cache,
		chain.WithLowestYear(cfg.Puzzle.LowestYear),
		chain.WithExcludedGenres(cfg.Puzzle.ExcludedGenres),
		chain.WithLogger(logger),
	)

	opts := []Option{
		WithAttempts(cfg.Puzzle.GenerationAttempts),
		WithLogger(logger),
	}
	components := &Components{Client: client, Credits: cache, Builder: builder}
	if cfg.Archive.Enabled {
		components.Archive = archive.New(nil, cfg.Paths.ArchiveDir)
		opts = append(opts, WithArchive(components.Archive))
	}
	components.Service = NewPuzzleService(builder, store, opts...)
	return components, nil
}
