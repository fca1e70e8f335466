package api_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"reelchain/internal/api"
	"reelchain/internal/archive"
	"reelchain/internal/puzzle"
	"reelchain/internal/services"
	"reelchain/internal/testsupport"
)

type scriptedGenerator struct {
	results []*puzzle.Puzzle
	errs    []error
	calls   int
	genIDs  []string
}

func (g *scriptedGenerator) Generate(ctx context.Context) (*puzzle.Puzzle, error) {
	i := g.calls
	g.calls++
	if id, ok := services.GenerationIDFromContext(ctx); ok {
		g.genIDs = append(g.genIDs, id)
	}
	if i < len(g.errs) && g.errs[i] != nil {
		return nil, g.errs[i]
	}
	if i < len(g.results) {
		return g.results[i], nil
	}
	return nil, errors.New("script exhausted")
}

func TestGenerateRetriesAndPersists(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	fs := afero.NewMemMapFs()
	arch := archive.New(fs, "/puzzles")
	want := testsupport.SamplePuzzle(77)
	gen := &scriptedGenerator{
		errs:    []error{services.External("no eligible seed movie found for year 1999", nil), nil},
		results: []*puzzle.Puzzle{nil, want},
	}
	svc := api.NewPuzzleService(gen, st, api.WithAttempts(3), api.WithArchive(arch))

	got, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.PuzzleID != 77 || gen.calls != 2 {
		t.Fatalf("expected success on second attempt, got id=%d calls=%d", got.PuzzleID, gen.calls)
	}
	if len(gen.genIDs) != 2 || gen.genIDs[0] == "" || gen.genIDs[0] != gen.genIDs[1] {
		t.Fatalf("expected one generation id across attempts, got %v", gen.genIDs)
	}

	stored, err := st.Get(context.Background(), 77)
	if err != nil || stored == nil {
		t.Fatalf("expected stored puzzle, got %v err=%v", stored, err)
	}
	if ok, _ := afero.Exists(fs, arch.PathFor(77)); !ok {
		t.Fatal("expected archive file to be written")
	}
}

func TestGenerateFailureIsExternal(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	boom := errors.New("connection refused")
	gen := &scriptedGenerator{errs: []error{boom, boom}}
	svc := api.NewPuzzleService(gen, st, api.WithAttempts(2))

	_, err := svc.Generate(context.Background())
	if services.KindOf(err) != services.KindExternalService {
		t.Fatalf("expected external service error, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	if gen.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", gen.calls)
	}
	if count, _ := st.Count(context.Background()); count != 0 {
		t.Fatalf("expected nothing stored, got %d rows", count)
	}
}

func TestGenerateStopsOnCancellation(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &scriptedGenerator{errs: []error{context.Canceled, context.Canceled, context.Canceled}}
	svc := api.NewPuzzleService(gen, st, api.WithAttempts(3))

	if _, err := svc.Generate(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected a single attempt after cancellation, got %d", gen.calls)
	}
}

func TestGetMapsMissingAndInvalidIDs(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := api.NewPuzzleService(&scriptedGenerator{}, st)

	if _, err := svc.Get(context.Background(), 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Get(context.Background(), 5); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListAndLatest(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := api.NewPuzzleService(&scriptedGenerator{}, st)
	ctx := context.Background()

	latest, err := svc.Latest(ctx)
	if err != nil || latest != nil {
		t.Fatalf("expected nil latest on empty store, got %v err=%v", latest, err)
	}
	for _, id := range []int64{3, 9} {
		if err := st.Save(ctx, testsupport.SamplePuzzle(id)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	summaries, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 2 || summaries[0].PuzzleID != 9 || len(summaries[0].KeyPeople) != 6 {
		t.Fatalf("unexpected summaries %+v", summaries)
	}
	latest, err = svc.Latest(ctx)
	if err != nil || latest == nil || latest.PuzzleID != 9 {
		t.Fatalf("expected latest 9, got %+v err=%v", latest, err)
	}
}

func TestImportCountsInsertedAndReplaced(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := api.NewPuzzleService(&scriptedGenerator{}, st)
	ctx := context.Background()
	if err := st.Save(ctx, testsupport.SamplePuzzle(1)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	noID := testsupport.SamplePuzzle(2)
	noID.PuzzleID = 0

	result, err := svc.Import(ctx, []*puzzle.Puzzle{
		testsupport.SamplePuzzle(1),
		testsupport.SamplePuzzle(4),
		noID,
		nil,
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Inserted != 1 || result.Replaced != 1 || result.Skipped != 2 {
		t.Fatalf("unexpected import result %+v", result)
	}
	if count, _ := st.Count(ctx); count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}
}
