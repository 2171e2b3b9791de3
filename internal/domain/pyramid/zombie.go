package pyramid

type zombieKey struct {
	c    Coord
	side Side
}

// zombieMemo caches results for a single board state. Any mutation makes it
// stale, so a fresh memo is used per resolution round.
type zombieMemo map[zombieKey]bool

// IsZombie reports whether the ball of side at c is held up by an unresolved
// opposing structure: some opponent ball rests on it, directly or through a
// chain of side's own balls stacked above it.
func (b *Board) IsZombie(c Coord, side Side) bool {
	return b.isZombie(c, side, nil)
}

func (b *Board) isZombie(c Coord, side Side, memo zombieMemo) bool {
	if v, ok := memo[zombieKey{c, side}]; ok {
		return v
	}
	opp := side.Opponent()
	visited := map[Coord]struct{}{c: {}}
	stack := []Coord{c}
	found := false

walk:
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if v, ok := memo[zombieKey{cur, side}]; ok {
			if v {
				found = true
				break
			}
			continue
		}
		for _, up := range b.geom.Above(cur) {
			switch b.At(up) {
			case opp:
				found = true
				break walk
			case side:
				if _, ok := visited[up]; !ok {
					visited[up] = struct{}{}
					stack = append(stack, up)
				}
			}
		}
	}

	if memo != nil {
		if found {
			memo[zombieKey{c, side}] = true
		} else {
			// nothing reachable upward is held, so none of it is a zombie
			for v := range visited {
				memo[zombieKey{v, side}] = false
			}
		}
	}
	return found
}
