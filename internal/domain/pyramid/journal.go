package pyramid

type change struct {
	c    Coord
	prev Side
}

// journal records the inverse of every mutation made while a placement is
// being resolved, so an illegal or speculative placement can be undone
// without copying the board.
type journal struct {
	board   *Board
	changes []change
}

func newJournal(b *Board) *journal {
	return &journal{board: b, changes: make([]change, 0, 8)}
}

func (j *journal) put(c Coord, s Side) {
	j.changes = append(j.changes, change{c: c, prev: j.board.At(c)})
	j.board.set(c, s)
}

func (j *journal) remove(c Coord) {
	j.put(c, NoSide)
}

func (j *journal) rollback() {
	for i := len(j.changes) - 1; i >= 0; i-- {
		ch := j.changes[i]
		j.board.set(ch.c, ch.prev)
	}
	j.changes = j.changes[:0]
}
