package pyramid

// Liberties returns the empty base cells orthogonally next to c. Cells above
// the base have no liberties of their own.
func (b *Board) Liberties(c Coord) []Coord {
	if c.Layer != 0 {
		return nil
	}
	var out []Coord
	for _, n := range b.geom.Orthogonal(c) {
		if !b.Occupied(n) {
			out = append(out, n)
		}
	}
	return out
}

// PresentNeighbours returns the balls of side connected to c. Balls touch
// diagonally across adjacent layers (resting on or carrying c), and along
// the same layer two units apart unless the edge between them is pinned by
// the opponent.
func (b *Board) PresentNeighbours(c Coord, side Side) []Coord {
	out := make([]Coord, 0, 8)
	for _, d := range diagonals {
		for _, dl := range [2]int{-1, 1} {
			n := Coord{X: c.X + d[0], Y: c.Y + d[1], Layer: c.Layer + dl}
			if b.At(n) == side {
				out = append(out, n)
			}
		}
	}
	for _, n := range b.geom.Orthogonal(c) {
		if b.At(n) == side && !b.EdgeBlocked(c, n, side) {
			out = append(out, n)
		}
	}
	return out
}

// EdgeBlocked reports whether the edge between orthogonal same-layer cells
// c and n is severed for side: both cells one layer up straddling the
// midpoint hold an opponent ball.
func (b *Board) EdgeBlocked(c, n Coord, side Side) bool {
	mx, my := (c.X+n.X)/2, (c.Y+n.Y)/2
	var p, q Coord
	if c.Y == n.Y {
		p = Coord{X: mx, Y: my - 1, Layer: c.Layer + 1}
		q = Coord{X: mx, Y: my + 1, Layer: c.Layer + 1}
	} else {
		p = Coord{X: mx - 1, Y: my, Layer: c.Layer + 1}
		q = Coord{X: mx + 1, Y: my, Layer: c.Layer + 1}
	}
	opp := side.Opponent()
	return b.At(p) == opp && b.At(q) == opp
}
