package testsupport

import (
	"fmt"

	"reelchain/internal/puzzle"
)

// SamplePuzzle returns a normalized six-entry puzzle with the given id.
func SamplePuzzle(id int64) *puzzle.Puzzle {
	entries := make([]any, 0, 6)
	for i := range 6 {
		movieID := id*10 + int64(i)
		entries = append(entries, map[string]any{
			"id":           movieID,
			"title":        fmt.Sprintf("Movie %d", movieID),
			"release_date": "2001-01-01",
			"genre_ids":    []any{18},
			"cast": []any{
				map[string]any{"id": movieID * 10, "name": fmt.Sprintf("Actor %d", movieID*10), "character": "Lead"},
			},
			"directors": []any{map[string]any{"id": 1, "name": "Director"}},
			"keyPerson": map[string]any{"name": fmt.Sprintf("Actor %d", movieID*10)},
		})
	}
	return puzzle.NormalizePuzzle(map[string]any{"puzzleId": id, "puzzle": entries})
}
