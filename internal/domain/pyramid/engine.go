package pyramid

import (
	"fmt"

	errs "margo/internal/errors"
)

// KoRecord remembers the previous ply: where it placed, and the single ball
// it captured if it captured exactly one. Passes clear it.
type KoRecord struct {
	Placement *Coord `json:"placement,omitempty"`
	Capture   *Coord `json:"capture,omitempty"`
}

// forbids judges a candidate retake by its direct capture alone: it runs
// before the cascade, so the retake's total removals are not known yet. The
// recorded side is stricter because the previous ply is fully resolved: a
// capture is only recorded when that ply removed exactly one ball in all.
func (k KoRecord) forbids(placed Coord, captured []Coord) bool {
	if len(captured) != 1 || k.Placement == nil || k.Capture == nil {
		return false
	}
	return captured[0] == *k.Placement && *k.Capture == placed
}

// CaptureReport describes one placement. RemovedBatches holds the balls
// removed together in each resolution round, in removal order.
type CaptureReport struct {
	Cell                Coord     `json:"cell"`
	Side                Side      `json:"side"`
	RemovedBatches      [][]Coord `json:"removed_batches"`
	SelfCaptureRejected bool      `json:"self_capture_rejected"`
	KoRejected          bool      `json:"ko_rejected"`
}

// Removed flattens all batches.
func (r CaptureReport) Removed() []Coord {
	var out []Coord
	for _, batch := range r.RemovedBatches {
		out = append(out, batch...)
	}
	return out
}

// IllegalMove is returned for expected legality failures. Reason is one of
// ErrCellOccupied, ErrNoSupport, ErrSuicideMove or ErrKoViolation.
type IllegalMove struct {
	Cell   Coord
	Side   Side
	Reason error
}

func (m *IllegalMove) Error() string {
	return fmt.Sprintf("illegal move %s by %s: %v", m.Cell, m.Side, m.Reason)
}

func (m *IllegalMove) Unwrap() error {
	return m.Reason
}

// Engine resolves placements on a single authoritative board. It is not safe
// for concurrent use.
type Engine struct {
	board *Board
	ko    KoRecord
}

func NewEngine(g Geometry) *Engine {
	return &Engine{board: NewBoard(g)}
}

// Restore builds an engine around an existing position. The board is taken
// over by the engine and must satisfy the support invariant.
func Restore(b *Board, ko KoRecord) (*Engine, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	for _, c := range []*Coord{ko.Placement, ko.Capture} {
		if c == nil {
			continue
		}
		if err := b.geom.Validate(*c); err != nil {
			return nil, err
		}
	}
	return &Engine{board: b, ko: ko}, nil
}

func (e *Engine) Geometry() Geometry {
	return e.board.geom
}

// Board returns a copy of the current position.
func (e *Engine) Board() *Board {
	return e.board.Clone()
}

func (e *Engine) At(c Coord) Side {
	return e.board.At(c)
}

func (e *Engine) Cells() []Coord {
	return e.board.Cells()
}

func (e *Engine) Count(s Side) int {
	return e.board.Count(s)
}

func (e *Engine) Hash() uint64 {
	return e.board.Hash()
}

func (e *Engine) Ko() KoRecord {
	return e.ko
}

// Pass records a ply without a placement.
func (e *Engine) Pass() {
	e.ko = KoRecord{}
}

func (e *Engine) Clone() *Engine {
	return &Engine{board: e.board.Clone(), ko: e.ko}
}

// AttemptPlacement puts a ball of side on c and resolves every capture it
// triggers. On an IllegalMove the board and ko record are left untouched.
func (e *Engine) AttemptPlacement(c Coord, side Side) (CaptureReport, error) {
	if !side.Valid() {
		return CaptureReport{}, fmt.Errorf("%w: %d", errs.ErrInvalidSide, side)
	}
	if err := e.board.geom.Validate(c); err != nil {
		return CaptureReport{}, err
	}
	report := CaptureReport{Cell: c, Side: side}

	j := newJournal(e.board)
	direct, err := e.scan(j, c, side, &report)
	if err != nil {
		j.rollback()
		return report, err
	}

	if len(direct) > 0 {
		report.RemovedBatches = append(report.RemovedBatches, direct)
	}
	e.cascade(j, c, side, direct, &report)

	e.ko = KoRecord{Placement: coordPtr(c)}
	if len(direct) == 1 && len(report.Removed()) == 1 {
		e.ko.Capture = coordPtr(direct[0])
	}
	return report, nil
}

// LegalPlacements lists every cell where side may place now. Each candidate
// is tried speculatively and rolled back, so the position never changes.
func (e *Engine) LegalPlacements(side Side) []Coord {
	var out []Coord
	for _, c := range e.board.PlaceableCells() {
		if e.legal(c, side) {
			out = append(out, c)
		}
	}
	return out
}

func (e *Engine) HasAnyLegalPlacement(side Side) bool {
	for _, c := range e.board.PlaceableCells() {
		if e.legal(c, side) {
			return true
		}
	}
	return false
}

// Check reports why placing on c would be illegal, without changing state.
func (e *Engine) Check(c Coord, side Side) error {
	if !side.Valid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidSide, side)
	}
	if err := e.board.geom.Validate(c); err != nil {
		return err
	}
	j := newJournal(e.board)
	defer j.rollback()
	var report CaptureReport
	_, err := e.scan(j, c, side, &report)
	return err
}

func (e *Engine) legal(c Coord, side Side) bool {
	j := newJournal(e.board)
	defer j.rollback()
	var report CaptureReport
	_, err := e.scan(j, c, side, &report)
	return err == nil
}

// scan runs the placement up to and including the ko check: put the ball,
// remove the opponent groups it kills, then judge self-capture and ko.
func (e *Engine) scan(j *journal, c Coord, side Side, report *CaptureReport) ([]Coord, error) {
	b := e.board
	if b.Occupied(c) {
		return nil, &IllegalMove{Cell: c, Side: side, Reason: errs.ErrCellOccupied}
	}
	if !b.Supported(c) {
		return nil, &IllegalMove{Cell: c, Side: side, Reason: errs.ErrNoSupport}
	}
	j.put(c, side)

	opp := side.Opponent()
	var touching []Coord
	if c.Layer == 0 {
		touching = b.geom.Orthogonal(c)
	} else {
		touching = b.geom.Below(c)
	}
	direct := e.capture(j, touching, opp, []Coord{c})

	if _, libs := b.GroupAndLiberties(c, nil, side); libs == 0 && len(direct) == 0 {
		report.SelfCaptureRejected = true
		return nil, &IllegalMove{Cell: c, Side: side, Reason: errs.ErrSuicideMove}
	}
	if e.ko.forbids(c, direct) {
		report.KoRejected = true
		return nil, &IllegalMove{Cell: c, Side: side, Reason: errs.ErrKoViolation}
	}
	return direct, nil
}

// capture judges the groups of side touching the candidate cells and
// removes every zero-liberty member that is not a zombie. All groups are
// judged on the same board before anything is removed.
func (e *Engine) capture(j *journal, candidates []Coord, side Side, excluded []Coord) []Coord {
	b := e.board
	memo := zombieMemo{}
	seen := make(map[Coord]struct{})
	var doomed []Coord

	for _, cand := range candidates {
		if b.At(cand) != side {
			continue
		}
		if _, ok := seen[cand]; ok {
			continue
		}
		group, libs := b.GroupAndLiberties(cand, excluded, side)
		for _, m := range group {
			seen[m] = struct{}{}
		}
		if libs > 0 {
			continue
		}
		for _, m := range group {
			if !b.isZombie(m, side, memo) {
				doomed = append(doomed, m)
			}
		}
	}

	for _, m := range doomed {
		j.remove(m)
	}
	sortCoords(doomed)
	return doomed
}

// cascade re-judges the balls that sat under anything removed, since their
// connections and zombie status may have changed. The opponent's groups are
// judged before the mover's in every round; the loop ends on the first round
// without removals.
func (e *Engine) cascade(j *journal, placed Coord, side Side, removed []Coord, report *CaptureReport) {
	opp := side.Opponent()
	first := true
	for {
		candidates := e.exposed(removed)
		if first && e.board.Occupied(placed) {
			candidates = append(candidates, placed)
		}
		first = false
		if len(candidates) == 0 {
			return
		}

		removed = nil
		for _, s := range [2]Side{opp, side} {
			batch := e.capture(j, candidates, s, nil)
			if len(batch) > 0 {
				report.RemovedBatches = append(report.RemovedBatches, batch)
				removed = append(removed, batch...)
			}
		}
		if len(removed) == 0 {
			return
		}
	}
}

// exposed returns the occupied cells directly under any removed cell.
func (e *Engine) exposed(removed []Coord) []Coord {
	seen := make(map[Coord]struct{})
	var out []Coord
	for _, r := range removed {
		for _, s := range e.board.geom.Below(r) {
			if _, ok := seen[s]; ok || !e.board.Occupied(s) {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func coordPtr(c Coord) *Coord {
	return &c
}
