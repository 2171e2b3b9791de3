package pyramid

// Supported reports whether all four cells under c are occupied. Base cells
// are always supported.
func (b *Board) Supported(c Coord) bool {
	if c.Layer == 0 {
		return true
	}
	for _, s := range b.geom.Supports(c) {
		if !b.Occupied(s) {
			return false
		}
	}
	return true
}

// Placeable reports whether a ball may be put on c right now.
func (b *Board) Placeable(c Coord) bool {
	return b.geom.Contains(c) && !b.Occupied(c) && b.Supported(c)
}

// HighestPlaceable walks up the stack of cells sharing the physical position
// (x, y) and returns the first empty one, provided it is supported. A stack
// whose first gap lacks support is starved and yields nothing.
func (b *Board) HighestPlaceable(x, y int) (Coord, bool) {
	if x < 0 || y < 0 || x%2 != y%2 {
		return Coord{}, false
	}
	// parity of the lineage fixes the layers it can reach
	for layer := x % 2; ; layer += 2 {
		c := Coord{X: x, Y: y, Layer: layer}
		if !b.geom.Contains(c) {
			return Coord{}, false
		}
		if b.Occupied(c) {
			continue
		}
		if !b.Supported(c) {
			return Coord{}, false
		}
		return c, true
	}
}

// PlaceableCells lists every cell that currently accepts a ball, regardless
// of capture legality.
func (b *Board) PlaceableCells() []Coord {
	var out []Coord
	span := b.geom.Span()
	for y := 0; y < span; y++ {
		for x := 0; x < span; x++ {
			if c, ok := b.HighestPlaceable(x, y); ok {
				out = append(out, c)
			}
		}
	}
	sortCoords(out)
	return out
}
