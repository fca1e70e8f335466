// Package archive keeps generated puzzles as <puzzleId>.json files so they can
// be inspected by hand and re-imported into the store with `reelchain seed`.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"reelchain/internal/puzzle"
	"reelchain/internal/services"
)

const loadConcurrency = 8

// Archive reads and writes puzzle JSON files under a single directory.
type Archive struct {
	fs  afero.Fs
	dir string
}

// Skipped describes an archive file that could not be loaded.
type Skipped struct {
	Path   string
	Reason string
}

// LoadResult is the outcome of LoadAll.
type LoadResult struct {
	Puzzles []*puzzle.Puzzle
	Skipped []Skipped
}

// New returns an archive rooted at dir on fs. A nil fs uses the OS filesystem.
func New(fs afero.Fs, dir string) *Archive {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Archive{fs: fs, dir: dir}
}

// Dir returns the archive directory.
func (a *Archive) Dir() string {
	return a.dir
}

// PathFor returns the file path used for id.
func (a *Archive) PathFor(id int64) string {
	return filepath.Join(a.dir, strconv.FormatInt(id, 10)+".json")
}

// Save writes p to <dir>/<puzzleId>.json, replacing any existing file.
func (a *Archive) Save(p *puzzle.Puzzle) (string, error) {
	if p == nil || p.PuzzleID <= 0 {
		return "", services.Wrap(services.ErrValidation, "archive", "save puzzle", "puzzle id required", nil)
	}
	if err := a.fs.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode puzzle %d: %w", p.PuzzleID, err)
	}
	data = append(data, '\n')

	target := a.PathFor(p.PuzzleID)
	tmp, err := afero.TempFile(a.fs, a.dir, ".puzzle-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = a.fs.Remove(tmpName)
		return "", fmt.Errorf("write puzzle %d: %w", p.PuzzleID, err)
	}
	if err := tmp.Close(); err != nil {
		_ = a.fs.Remove(tmpName)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := a.fs.Rename(tmpName, target); err != nil {
		_ = a.fs.Remove(tmpName)
		return "", fmt.Errorf("rename puzzle %d: %w", p.PuzzleID, err)
	}
	return target, nil
}

// LoadAll reads every *.json file in the archive directory. Files that fail to
// read or normalize are reported in Skipped rather than failing the load.
// Puzzles are returned in ascending puzzle id order.
func (a *Archive) LoadAll(ctx context.Context) (LoadResult, error) {
	entries, err := afero.ReadDir(a.fs, a.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LoadResult{Puzzles: []*puzzle.Puzzle{}}, nil
		}
		return LoadResult{}, fmt.Errorf("read archive directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(a.dir, entry.Name()))
	}

	var (
		mu     sync.Mutex
		result = LoadResult{Puzzles: []*puzzle.Puzzle{}}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, reason := a.load(path)
			mu.Lock()
			defer mu.Unlock()
			if reason != "" {
				result.Skipped = append(result.Skipped, Skipped{Path: path, Reason: reason})
				return nil
			}
			result.Puzzles = append(result.Puzzles, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return LoadResult{}, err
	}

	sort.Slice(result.Puzzles, func(i, j int) bool {
		return result.Puzzles[i].PuzzleID < result.Puzzles[j].PuzzleID
	})
	sort.Slice(result.Skipped, func(i, j int) bool {
		return result.Skipped[i].Path < result.Skipped[j].Path
	})
	return result, nil
}

func (a *Archive) load(path string) (*puzzle.Puzzle, string) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, err.Error()
	}
	p, err := puzzle.DecodePuzzle(data)
	if err != nil {
		return nil, err.Error()
	}
	if p.PuzzleID <= 0 {
		return nil, "missing puzzleId"
	}
	return p, ""
}
