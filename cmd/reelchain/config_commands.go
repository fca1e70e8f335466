package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reelchain/internal/config"
)

// configSummary is what `config validate` reports once a config loads cleanly.
type configSummary struct {
	Path           string `json:"path"`
	FileExists     bool   `json:"fileExists"`
	DataDir        string `json:"dataDir"`
	ArchiveDir     string `json:"archiveDir,omitempty"`
	HasAPIToken    bool   `json:"hasApiToken"`
	HasAPIKey      bool   `json:"hasApiKey"`
	LowestYear     int    `json:"lowestYear"`
	ExcludedGenres []int  `json:"excludedGenres"`
	Bind           string `json:"bind"`
}

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Create or check the reelchain configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	configCmd.AddCommand(newConfigValidateCommand(ctx), newConfigInitCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set tmdb.api_token (or export TMDB_API_TOKEN) before generating puzzles.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing configuration file")
	return cmd
}

func initTarget(flagValue string) (string, error) {
	target := strings.TrimSpace(flagValue)
	if target == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	expanded, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return expanded, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and report the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configFlagValue())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			summary := configSummary{
				Path:           path,
				FileExists:     exists,
				DataDir:        cfg.Paths.DataDir,
				HasAPIToken:    cfg.TMDB.APIToken != "",
				HasAPIKey:      cfg.TMDB.APIKey != "",
				LowestYear:     cfg.Puzzle.LowestYear,
				ExcludedGenres: cfg.Puzzle.ExcludedGenres,
				Bind:           cfg.API.Bind,
			}
			if cfg.Archive.Enabled {
				summary.ArchiveDir = cfg.Paths.ArchiveDir
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", summary.Path)
			if !summary.FileExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Data directory: %s\n", summary.DataDir)
			if summary.ArchiveDir != "" {
				fmt.Fprintf(out, "Archive directory: %s\n", summary.ArchiveDir)
			}
			fmt.Fprintf(out, "TMDB credentials: token=%s key=%s\n", yesNo(summary.HasAPIToken), yesNo(summary.HasAPIKey))
			fmt.Fprintf(out, "Puzzle years: %d to present, excluded genres %v\n", summary.LowestYear, summary.ExcludedGenres)
			fmt.Fprintf(out, "API bind: %s\n", summary.Bind)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
