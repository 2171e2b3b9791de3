package match

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"

	"margo/internal/domain/pyramid"
	errs "margo/internal/errors"
)

func TestTurnOrder(t *testing.T) {
	m := New(pyramid.Geometry{Size: 3})
	if m.ToMove() != pyramid.SideA {
		t.Fatalf("expected A to move first, got %s", m.ToMove())
	}
	if _, err := m.Play(pyramid.SideB, pyramid.Cell(0, 0, 0)); !errors.Is(err, errs.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, err := m.Play(pyramid.SideA, pyramid.Cell(1, 1, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ToMove() != pyramid.SideB {
		t.Fatalf("expected B to move, got %s", m.ToMove())
	}

	// an illegal placement keeps the turn
	if _, err := m.Play(pyramid.SideB, pyramid.Cell(1, 1, 0)); !errors.Is(err, errs.ErrCellOccupied) {
		t.Fatalf("expected ErrCellOccupied, got %v", err)
	}
	if m.ToMove() != pyramid.SideB || len(m.State().Plies) != 1 {
		t.Fatal("illegal placement changed the match")
	}

	if err := m.Pass(pyramid.SideB); !errors.Is(err, errs.ErrPassRefused) {
		t.Fatalf("expected ErrPassRefused, got %v", err)
	}
}

func TestSingleCellMatchIsDrawn(t *testing.T) {
	// a lone cell has no liberties, so nobody can ever place
	m := New(pyramid.Geometry{Size: 1})
	if m.Legal() != nil {
		t.Fatal("expected no legal placement")
	}
	if _, err := m.Play(pyramid.SideA, pyramid.Cell(0, 0, 0)); !errors.Is(err, errs.ErrSuicideMove) {
		t.Fatalf("expected ErrSuicideMove, got %v", err)
	}
	if err := m.Pass(pyramid.SideA); err != nil {
		t.Fatalf("pass: %v", err)
	}
	if m.Status() != StatusFinished || m.Winner() != pyramid.NoSide {
		t.Fatalf("expected a finished draw, got %s/%s", m.Status(), m.Winner())
	}
	if err := m.Pass(pyramid.SideB); !errors.Is(err, errs.ErrGameFinished) {
		t.Fatalf("expected ErrGameFinished, got %v", err)
	}
	st := m.State()
	if st.ToMove != "" || st.Winner != "" || st.Score["A"] != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
}

// blockedPosition leaves A a single placeable cell, a1, which would be
// suicide: the B balls around it are all held up by A balls.
func blockedPosition(t *testing.T) *pyramid.Engine {
	t.Helper()
	b := pyramid.NewBoard(pyramid.Geometry{Size: 3})
	for _, c := range []pyramid.Coord{pyramid.Cell(1, 0, 0), pyramid.Cell(0, 1, 0), pyramid.Cell(1, 1, 0)} {
		if err := b.Put(c, pyramid.SideB); err != nil {
			t.Fatal(err)
		}
	}
	for _, c := range []pyramid.Coord{
		pyramid.Cell(2, 0, 0), pyramid.Cell(2, 1, 0), pyramid.Cell(0, 2, 0), pyramid.Cell(1, 2, 0), pyramid.Cell(2, 2, 0),
		pyramid.Cell(1, 0, 1), pyramid.Cell(0, 1, 1), pyramid.Cell(1, 1, 1),
	} {
		if err := b.Put(c, pyramid.SideA); err != nil {
			t.Fatal(err)
		}
	}
	e, err := pyramid.Restore(b, pyramid.KoRecord{})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	return e
}

func TestPassWhenBlocked(t *testing.T) {
	e := blockedPosition(t)
	if e.HasAnyLegalPlacement(pyramid.SideA) {
		t.Fatal("expected A to have no legal placement")
	}

	m := resume(e, pyramid.SideA)
	if err := m.Pass(pyramid.SideA); err != nil {
		t.Fatalf("pass: %v", err)
	}
	if m.Status() != StatusFinished {
		t.Fatal("expected the match to end when nobody can place")
	}
	if m.Winner() != pyramid.SideA {
		t.Fatalf("expected A to win on ball count, got %s", m.Winner())
	}
	plies := m.State().Plies
	if len(plies) != 1 || !plies[0].Pass {
		t.Fatalf("expected a recorded pass, got %+v", plies)
	}
}

func TestResign(t *testing.T) {
	m := New(pyramid.Geometry{Size: 4})
	if err := m.Resign(pyramid.SideB); err != nil {
		t.Fatalf("resign: %v", err)
	}
	if m.Winner() != pyramid.SideA || m.Status() != StatusFinished {
		t.Fatal("resignation did not finish the match")
	}
	if err := m.Resign(pyramid.SideA); !errors.Is(err, errs.ErrGameFinished) {
		t.Fatalf("expected ErrGameFinished, got %v", err)
	}
}

func TestCapturesTally(t *testing.T) {
	m := New(pyramid.Geometry{Size: 5})
	moves := []struct {
		side pyramid.Side
		c    pyramid.Coord
	}{
		{pyramid.SideA, pyramid.Cell(0, 0, 0)},
		{pyramid.SideB, pyramid.Cell(1, 0, 0)},
		{pyramid.SideA, pyramid.Cell(4, 4, 0)},
		{pyramid.SideB, pyramid.Cell(0, 1, 0)},
	}
	for _, mv := range moves {
		if _, err := m.Play(mv.side, mv.c); err != nil {
			t.Fatalf("play %s: %v", mv.c, err)
		}
	}
	if m.Captures(pyramid.SideB) != 1 || m.Captures(pyramid.SideA) != 0 {
		t.Fatalf("unexpected tallies A=%d B=%d", m.Captures(pyramid.SideA), m.Captures(pyramid.SideB))
	}
	last := m.State().Plies[3]
	if len(last.RemovedBatches) != 1 || last.RemovedBatches[0][0] != "a1" {
		t.Fatalf("unexpected ply record %+v", last)
	}
}

func TestRandomMatchesStayConsistent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 4; i++ {
		m := New(pyramid.Geometry{Size: 4})
		for ply := 0; ply < 400 && m.Status() == StatusActive; ply++ {
			side := m.ToMove()
			legal := m.Legal()
			if len(legal) == 0 {
				if err := m.Pass(side); err != nil {
					t.Fatalf("pass with no legal placement: %v", err)
				}
				continue
			}
			if _, err := m.Play(side, legal[r.Intn(len(legal))]); err != nil {
				t.Fatalf("legal placement rejected: %v", err)
			}
		}
		st := m.State()
		if st.Status == StatusFinished && st.Winner == "" && st.Score["A"] != st.Score["B"] {
			t.Fatalf("draw declared with unequal scores %+v", st.Score)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(zap.NewNop().Sugar())
	m := r.Create(pyramid.Geometry{Size: 3})

	got, err := r.Get(m.ID())
	if err != nil || got != m {
		t.Fatalf("expected to find the match, got %v", err)
	}
	if _, err := r.Get("missing"); !errors.Is(err, errs.ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestRegistryEvictsIdleMatches(t *testing.T) {
	r := NewRegistry(zap.NewNop().Sugar())
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	r.now = func() time.Time { return clock }

	idle := r.Create(pyramid.Geometry{Size: 3})
	busy := r.Create(pyramid.Geometry{Size: 3})

	clock = start.Add(30 * time.Minute)
	if _, err := r.Get(busy.ID()); err != nil {
		t.Fatalf("get: %v", err)
	}

	evicted := r.Evict(start.Add(10 * time.Minute))
	if len(evicted) != 1 || evicted[0] != idle.ID() {
		t.Fatalf("expected only the idle match evicted, got %v", evicted)
	}
	if _, err := r.Get(idle.ID()); !errors.Is(err, errs.ErrMatchNotFound) {
		t.Fatalf("evicted match still reachable: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("expected one match left, got %d", r.Len())
	}
}
