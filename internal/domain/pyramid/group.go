package pyramid

// GroupAndLiberties flood-fills the group of side that contains seed and
// counts its distinct liberties. Liberties equal to seed or listed in
// excluded are ignored; excluded lets callers treat cells as already taken
// by the opponent without touching the board.
func (b *Board) GroupAndLiberties(seed Coord, excluded []Coord, side Side) ([]Coord, int) {
	skip := make(map[Coord]struct{}, len(excluded)+1)
	skip[seed] = struct{}{}
	for _, c := range excluded {
		skip[c] = struct{}{}
	}

	visited := map[Coord]struct{}{seed: {}}
	libs := make(map[Coord]struct{})
	stack := []Coord{seed}
	group := make([]Coord, 0, 8)

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		group = append(group, c)

		for _, l := range b.Liberties(c) {
			if _, ok := skip[l]; !ok {
				libs[l] = struct{}{}
			}
		}
		for _, n := range b.PresentNeighbours(c, side) {
			if _, ok := visited[n]; ok {
				continue
			}
			visited[n] = struct{}{}
			stack = append(stack, n)
		}
	}

	sortCoords(group)
	return group, len(libs)
}

// DeadGroups returns every group that has no liberties yet holds at least
// one ball that is not a zombie. A settled board has none.
func (b *Board) DeadGroups() [][]Coord {
	var out [][]Coord
	seen := make(map[Coord]struct{}, len(b.cells))
	memo := zombieMemo{}
	for _, c := range b.Cells() {
		if _, ok := seen[c]; ok {
			continue
		}
		side := b.At(c)
		group, libs := b.GroupAndLiberties(c, nil, side)
		for _, m := range group {
			seen[m] = struct{}{}
		}
		if libs > 0 {
			continue
		}
		for _, m := range group {
			if !b.isZombie(m, side, memo) {
				out = append(out, group)
				break
			}
		}
	}
	return out
}
