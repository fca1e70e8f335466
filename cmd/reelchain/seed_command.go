package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelchain/internal/api"
	"reelchain/internal/archive"
	"reelchain/internal/config"
	"reelchain/internal/store"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [dir]",
		Short: "Import puzzle JSON files into the store",
		Long:  "Import every <puzzleId>.json file in dir (default: the archive directory) into the puzzle store. Existing puzzles with the same id are replaced.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				dir := cfg.Paths.ArchiveDir
				if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
					expanded, err := config.ExpandPath(strings.TrimSpace(args[0]))
					if err != nil {
						return fmt.Errorf("resolve seed directory: %w", err)
					}
					dir = expanded
				}

				loaded, err := archive.New(nil, dir).LoadAll(cmd.Context())
				if err != nil {
					return err
				}
				logger, err := ctx.logger(cfg)
				if err != nil {
					return err
				}
				result, err := api.NewPuzzleService(nil, st, api.WithLogger(logger)).Import(cmd.Context(), loaded.Puzzles)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if ctx.jsonOutput() {
					return writeJSON(cmd, seedReport{
						Directory: dir,
						Inserted:  result.Inserted,
						Replaced:  result.Replaced,
						Skipped:   skippedFiles(loaded.Skipped),
					})
				}
				fmt.Fprintf(out, "Seeded %d puzzle(s) from %s (%d inserted, %d replaced)\n",
					result.Inserted+result.Replaced, dir, result.Inserted, result.Replaced)
				for _, skipped := range loaded.Skipped {
					fmt.Fprintf(out, "  skipped %s: %s\n", skipped.Path, skipped.Reason)
				}
				return nil
			})
		},
	}
}

type seedReport struct {
	Directory string            `json:"directory"`
	Inserted  int               `json:"inserted"`
	Replaced  int               `json:"replaced"`
	Skipped   []seedSkippedFile `json:"skipped"`
}

type seedSkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func skippedFiles(skipped []archive.Skipped) []seedSkippedFile {
	out := make([]seedSkippedFile, 0, len(skipped))
	for _, s := range skipped {
		out = append(out, seedSkippedFile{Path: s.Path, Reason: s.Reason})
	}
	return out
}
