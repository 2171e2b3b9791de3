package pyramid

import (
	"fmt"
	"sort"

	errs "margo/internal/errors"
)

// Board maps occupied cells to their owner. Empty cells have no entry.
// It maintains an incremental Zobrist hash of the occupancy.
type Board struct {
	geom  Geometry
	cells map[Coord]Side
	hash  uint64
}

func NewBoard(g Geometry) *Board {
	return &Board{
		geom:  g,
		cells: make(map[Coord]Side),
	}
}

func (b *Board) Geometry() Geometry {
	return b.geom
}

// At returns the owner of c, NoSide when empty or off the board.
func (b *Board) At(c Coord) Side {
	return b.cells[c]
}

func (b *Board) Occupied(c Coord) bool {
	_, ok := b.cells[c]
	return ok
}

// Put places a ball without running any capture logic. It is meant for
// setting up positions; the support invariant is checked by Validate.
func (b *Board) Put(c Coord, s Side) error {
	if err := b.geom.Validate(c); err != nil {
		return err
	}
	if !s.Valid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidSide, s)
	}
	if b.Occupied(c) {
		return fmt.Errorf("%w: %s", errs.ErrCellOccupied, c)
	}
	b.set(c, s)
	return nil
}

// Remove clears c and returns its previous owner.
func (b *Board) Remove(c Coord) Side {
	prev := b.cells[c]
	b.set(c, NoSide)
	return prev
}

// set is the single mutation point; it keeps the hash in step.
func (b *Board) set(c Coord, s Side) {
	if prev, ok := b.cells[c]; ok {
		b.hash ^= zobristKey(c, prev)
		delete(b.cells, c)
	}
	if s != NoSide {
		b.cells[c] = s
		b.hash ^= zobristKey(c, s)
	}
}

func (b *Board) Clone() *Board {
	cells := make(map[Coord]Side, len(b.cells))
	for c, s := range b.cells {
		cells[c] = s
	}
	return &Board{
		geom:  b.geom,
		cells: cells,
		hash:  b.hash,
	}
}

// Cells returns the occupied cells in a stable order, base layer first.
func (b *Board) Cells() []Coord {
	out := make([]Coord, 0, len(b.cells))
	for c := range b.cells {
		out = append(out, c)
	}
	sortCoords(out)
	return out
}

func (b *Board) Count(s Side) int {
	n := 0
	for _, owner := range b.cells {
		if owner == s {
			n++
		}
	}
	return n
}

func (b *Board) Len() int {
	return len(b.cells)
}

func (b *Board) Hash() uint64 {
	return b.hash
}

func (b *Board) Equal(o *Board) bool {
	if b.geom != o.geom || b.hash != o.hash || len(b.cells) != len(o.cells) {
		return false
	}
	for c, s := range b.cells {
		if o.cells[c] != s {
			return false
		}
	}
	return true
}

// Validate checks that every ball above the base rests on four balls.
func (b *Board) Validate() error {
	for c := range b.cells {
		if !b.geom.Contains(c) {
			return fmt.Errorf("%w: %v", errs.ErrInvalidCoordinate, c)
		}
		if c.Layer > 0 && !b.Supported(c) {
			return fmt.Errorf("%w: %s", errs.ErrBrokenSupport, c)
		}
	}
	return nil
}

func sortCoords(cs []Coord) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Less(cs[j]) })
}

// zobristKey derives a per-cell, per-side key with the splitmix64 finaliser,
// so no table has to be sized to the board.
func zobristKey(c Coord, s Side) uint64 {
	z := uint64(c.X)<<40 ^ uint64(c.Y)<<20 ^ uint64(c.Layer)<<4 ^ uint64(s)
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
