package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelchain/internal/api"
	"reelchain/internal/config"
	"reelchain/internal/puzzle"
	"reelchain/internal/services"
	"reelchain/internal/store"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate and store a new puzzle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(_ *config.Config, components *api.Components) error {
				p, err := components.Service.Generate(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, p)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderPuzzle(p))
				return nil
			})
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored puzzles, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				svc := api.NewPuzzleService(nil, st)
				if ctx.jsonOutput() {
					summaries, err := svc.List(cmd.Context())
					if err != nil {
						return err
					}
					return writeJSON(cmd, summaries)
				}
				listings, err := svc.Listings(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(listings) == 0 {
					fmt.Fprintln(out, "No puzzles stored")
					return nil
				}
				fmt.Fprintln(out, renderListings(listings))
				return nil
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <puzzle-id>",
		Short: "Show a stored puzzle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid puzzle id %q", args[0])
			}
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				p, err := api.NewPuzzleService(nil, st).Get(cmd.Context(), id)
				if errors.Is(err, services.ErrNotFound) {
					return fmt.Errorf("puzzle %d not found", id)
				}
				if err != nil {
					return err
				}
				return ctx.printPuzzle(cmd, p)
			})
		},
	}
}

func newLatestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent puzzle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				p, err := api.NewPuzzleService(nil, st).Latest(cmd.Context())
				if err != nil {
					return err
				}
				if p == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No puzzles stored")
					return nil
				}
				return ctx.printPuzzle(cmd, p)
			})
		},
	}
}

func (c *commandContext) printPuzzle(cmd *cobra.Command, p *puzzle.Puzzle) error {
	if c.jsonOutput() {
		return writeJSON(cmd, p)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderPuzzle(p))
	return nil
}

func renderPuzzle(p *puzzle.Puzzle) string {
	rows := make([][]string, 0, len(p.Puzzle))
	for i, entry := range p.Puzzle {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			entry.Title,
			releaseYear(entry.ReleaseDate),
			directorNames(entry.Directors),
			entry.KeyPerson.Name,
		})
	}
	return tableView{
		title: fmt.Sprintf("Puzzle %d", p.PuzzleID),
		columns: []tableColumn{
			{header: "#", alignRight: true},
			{header: "Movie"},
			{header: "Year"},
			{header: "Directors"},
			{header: "Key Person"},
		},
		rows:    rows,
		caption: strings.Join(p.KeyPeople, " → "),
	}.render()
}

func renderListings(listings []store.Listing) string {
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		created := "-"
		if !l.CreatedAt.IsZero() {
			created = l.CreatedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{
			strconv.FormatInt(l.PuzzleID, 10),
			created,
			strings.Join(l.KeyPeople, ", "),
		})
	}
	return tableView{
		columns: []tableColumn{
			{header: "Puzzle ID", alignRight: true},
			{header: "Created"},
			{header: "Key People"},
		},
		rows:    rows,
		caption: fmt.Sprintf("%d puzzle(s)", len(listings)),
	}.render()
}

func releaseYear(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return "-"
}

func directorNames(directors []puzzle.Director) string {
	if len(directors) == 0 {
		return "-"
	}
	names := make([]string, 0, len(directors))
	for _, d := range directors {
		names = append(names, d.Name)
	}
	return strings.Join(names, ", ")
}
