package referee

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"margo/internal/bootstrap"
	"margo/internal/domain/game"
	"margo/internal/domain/pyramid"
	errs "margo/internal/errors"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]string
	gets    int
	puts    int
	fail    error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]string)}
}

func (f *fakeCache) GetLegal(ctx context.Context, key string) ([]string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.fail != nil {
		return nil, false, f.fail
	}
	cells, ok := f.entries[key]
	return cells, ok, nil
}

func (f *fakeCache) PutLegal(ctx context.Context, key string, cells []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.fail != nil {
		return f.fail
	}
	f.entries[key] = cells
	return nil
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []game.Adjudication
}

func (f *fakeJournal) Record(ctx context.Context, a game.Adjudication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, a)
	return nil
}

func (f *fakeJournal) ByMatch(ctx context.Context, matchID string) ([]game.Adjudication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []game.Adjudication
	for _, a := range f.entries {
		if a.MatchID == matchID {
			out = append(out, a)
		}
	}
	return out, nil
}

func testConfig() bootstrap.Config {
	return bootstrap.Config{BoardSize: 5, MaxBoardSize: 9}
}

func newTestUseCase(cache LegalCache, journal Journal) *RefereeUseCase {
	return NewRefereeUseCase(testConfig(), zap.NewNop().Sugar(), cache, journal)
}

// capturePosition has a lone A ball on d4 with B on three sides.
func capturePosition() game.Position {
	return game.Position{
		Size: 7,
		Stones: []game.Stone{
			{Cell: "d4", Side: "A"},
			{Cell: "c4", Side: "B"}, {Cell: "e4", Side: "B"}, {Cell: "d3", Side: "B"},
		},
	}
}

func TestPlaceCaptures(t *testing.T) {
	journal := &fakeJournal{}
	uc := newTestUseCase(nil, journal)

	res, err := uc.Place(context.Background(), "req-1", capturePosition(), "d5", "B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.RemovedBatches) != 1 || len(res.RemovedBatches[0]) != 1 || res.RemovedBatches[0][0] != "d4" {
		t.Fatalf("unexpected removals %v", res.RemovedBatches)
	}
	if len(res.Position.Stones) != 4 {
		t.Fatalf("expected four stones after the capture, got %+v", res.Position.Stones)
	}
	if ko := res.Position.Ko; ko == nil || ko.Placement != "d5" || ko.Capture != "d4" {
		t.Fatalf("unexpected ko %+v", res.Position.Ko)
	}

	if len(journal.entries) != 1 {
		t.Fatalf("expected one journal entry, got %d", len(journal.entries))
	}
	entry := journal.entries[0]
	if !entry.Legal || entry.RequestID != "req-1" || entry.Cell != "d5" || entry.CreatedAt.IsZero() {
		t.Fatalf("unexpected journal entry %+v", entry)
	}
}

func TestPlaceRetakeIsKo(t *testing.T) {
	uc := newTestUseCase(nil, nil)
	pos := capturePosition()
	pos.Stones = append(pos.Stones,
		game.Stone{Cell: "c5", Side: "A"}, game.Stone{Cell: "e5", Side: "A"}, game.Stone{Cell: "d6", Side: "A"},
	)

	res, err := uc.Place(context.Background(), "req-1", pos, "d5", "B")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	_, err = uc.Place(context.Background(), "req-2", res.Position, "d4", "A")
	if !errors.Is(err, errs.ErrKoViolation) {
		t.Fatalf("expected ErrKoViolation, got %v", err)
	}

	// without the ko record the same retake is fine
	res.Position.Ko = nil
	if _, err = uc.Place(context.Background(), "req-3", res.Position, "d4", "A"); err != nil {
		t.Fatalf("retake without ko: %v", err)
	}
}

func TestPlaceRejections(t *testing.T) {
	journal := &fakeJournal{}
	uc := newTestUseCase(nil, journal)
	ctx := context.Background()

	cases := []struct {
		name    string
		pos     game.Position
		cell    string
		side    string
		want    error
		journal bool
	}{
		{"occupied", capturePosition(), "d4", "B", errs.ErrCellOccupied, true},
		{"unsupported", capturePosition(), "a1^1", "B", errs.ErrNoSupport, true},
		{"bad cell", capturePosition(), "zz", "B", errs.ErrInvalidCoordinate, false},
		{"bad side", capturePosition(), "a1", "W", errs.ErrInvalidSide, false},
		{"oversized", game.Position{Size: 12}, "a1", "A", errs.ErrBadPosition, false},
		{"broken position", game.Position{Size: 3, Stones: []game.Stone{{Cell: "b2^1", Side: "A"}}}, "a1", "A", errs.ErrBadPosition, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := len(journal.entries)
			_, err := uc.Place(ctx, tc.name, tc.pos, tc.cell, tc.side)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			recorded := len(journal.entries) > before
			if recorded != tc.journal {
				t.Fatalf("journal recorded=%v, expected %v", recorded, tc.journal)
			}
			if recorded && journal.entries[before].Legal {
				t.Fatal("illegal placement journaled as legal")
			}
		})
	}
}

func TestLegalUsesCache(t *testing.T) {
	cache := newFakeCache()
	uc := newTestUseCase(cache, nil)
	pos := game.Position{Size: 3}

	cells, err := uc.Legal(context.Background(), pos, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cells) != 9 || cache.puts != 1 {
		t.Fatalf("expected 9 cells stored once, got %d cells and %d puts", len(cells), cache.puts)
	}

	again, err := uc.Legal(context.Background(), pos, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again) != 9 || cache.puts != 1 || cache.gets != 2 {
		t.Fatalf("expected a cache hit, got %d puts and %d gets", cache.puts, cache.gets)
	}

	if _, err = uc.Legal(context.Background(), pos, "B"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.puts != 2 {
		t.Fatal("sides share a cache entry")
	}
}

func TestLegalIgnoresCacheFailures(t *testing.T) {
	cache := newFakeCache()
	cache.fail = errors.New("connection refused")
	uc := newTestUseCase(cache, nil)

	cells, err := uc.Legal(context.Background(), game.Position{Size: 2}, "B")
	if err != nil {
		t.Fatalf("cache failure leaked: %v", err)
	}
	if len(cells) != 4 {
		t.Fatalf("expected 4 cells, got %v", cells)
	}
}

func TestLegalKeyDependsOnKo(t *testing.T) {
	e := pyramid.NewEngine(pyramid.Geometry{Size: 4})
	plain := LegalKey(e, pyramid.SideA)
	if _, err := e.AttemptPlacement(pyramid.Cell(0, 0, 0), pyramid.SideA); err != nil {
		t.Fatal(err)
	}
	placed := LegalKey(e, pyramid.SideA)
	e.Pass()
	if LegalKey(e, pyramid.SideA) == placed {
		t.Fatal("ko record not part of the key")
	}
	if plain == placed {
		t.Fatal("position not part of the key")
	}
}

func TestHostedMatch(t *testing.T) {
	journal := &fakeJournal{}
	uc := newTestUseCase(nil, journal)
	ctx := context.Background()

	st, err := uc.NewMatch(ctx, 0)
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	if st.Position.Size != 5 || st.ToMove != "A" {
		t.Fatalf("unexpected initial state %+v", st)
	}

	if _, err = uc.PlayMatch(ctx, "r1", st.ID, "B", "a1"); !errors.Is(err, errs.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	st, err = uc.PlayMatch(ctx, "r2", st.ID, "A", "c3")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if st.ToMove != "B" || len(st.Plies) != 1 {
		t.Fatalf("unexpected state after play %+v", st)
	}
	if _, err = uc.PassMatch(ctx, st.ID, "B"); !errors.Is(err, errs.ErrPassRefused) {
		t.Fatalf("expected ErrPassRefused, got %v", err)
	}

	entries, err := uc.MatchJournal(ctx, st.ID)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if len(entries) != 1 || entries[0].MatchID != st.ID || !entries[0].Legal {
		t.Fatalf("unexpected journal %+v", entries)
	}

	st, err = uc.ResignMatch(ctx, st.ID, "B")
	if err != nil {
		t.Fatalf("resign: %v", err)
	}
	if st.Status != "finished" || st.Winner != "A" {
		t.Fatalf("unexpected state after resign %+v", st)
	}

	if _, err = uc.MatchState(ctx, "nope"); !errors.Is(err, errs.ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
	if _, err = uc.NewMatch(ctx, 20); !errors.Is(err, errs.ErrInvalidBoardSize) {
		t.Fatalf("expected ErrInvalidBoardSize, got %v", err)
	}
}

func TestSweepMatchesEvictsIdleMatches(t *testing.T) {
	uc := newTestUseCase(nil, nil)
	ctx := context.Background()

	st, err := uc.NewMatch(ctx, 3)
	if err != nil {
		t.Fatalf("new match: %v", err)
	}

	uc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if n := uc.SweepMatches(ctx); n != 0 {
		t.Fatalf("eviction ran with a zero ttl, evicted %d", n)
	}

	uc.cfg.MatchTTLSeconds = 3600
	uc.now = time.Now
	if n := uc.SweepMatches(ctx); n != 0 {
		t.Fatalf("fresh match evicted, evicted %d", n)
	}

	uc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if n := uc.SweepMatches(ctx); n != 1 {
		t.Fatalf("expected the idle match evicted, evicted %d", n)
	}
	if _, err = uc.MatchState(ctx, st.ID); !errors.Is(err, errs.ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound after eviction, got %v", err)
	}
}
