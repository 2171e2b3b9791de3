package match

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"margo/internal/domain/game"
	"margo/internal/domain/pyramid"
	errs "margo/internal/errors"
)

const (
	StatusActive   = "active"
	StatusFinished = "finished"
)

// Match runs a single game: A moves first, sides alternate, a side may pass
// only when it has no legal placement, and the game ends once neither side
// can place or someone resigns. Methods are safe for concurrent use.
type Match struct {
	mu sync.Mutex

	id       string
	engine   *pyramid.Engine
	toMove   pyramid.Side
	status   string
	winner   pyramid.Side
	plies    []game.Ply
	captures map[pyramid.Side]int
}

func New(g pyramid.Geometry) *Match {
	return resume(pyramid.NewEngine(g), pyramid.SideA)
}

func resume(e *pyramid.Engine, toMove pyramid.Side) *Match {
	return &Match{
		id:       uuid.New().String(),
		engine:   e,
		toMove:   toMove,
		status:   StatusActive,
		captures: make(map[pyramid.Side]int, 2),
	}
}

func (m *Match) ID() string {
	return m.id
}

func (m *Match) Geometry() pyramid.Geometry {
	return m.engine.Geometry()
}

func (m *Match) Hash() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.Hash()
}

// Play places a ball for side. Illegal placements leave the match unchanged.
func (m *Match) Play(side pyramid.Side, c pyramid.Coord) (pyramid.CaptureReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkTurn(side); err != nil {
		return pyramid.CaptureReport{}, err
	}

	opp := side.Opponent()
	before := m.engine.Count(opp)
	report, err := m.engine.AttemptPlacement(c, side)
	if err != nil {
		return report, err
	}
	m.captures[side] += before - m.engine.Count(opp)

	m.plies = append(m.plies, game.Ply{
		Side:           side.String(),
		Cell:           c.String(),
		RemovedBatches: game.BatchNames(report.RemovedBatches),
	})
	m.advance()
	return report, nil
}

// Pass gives up the turn. It is refused while side still has a legal
// placement.
func (m *Match) Pass(side pyramid.Side) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkTurn(side); err != nil {
		return err
	}
	if m.engine.HasAnyLegalPlacement(side) {
		return errs.ErrPassRefused
	}

	m.engine.Pass()
	m.plies = append(m.plies, game.Ply{Side: side.String(), Pass: true})
	m.advance()
	return nil
}

// Resign ends the match in the opponent's favour. Either side may resign at
// any time while the match is active.
func (m *Match) Resign(side pyramid.Side) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !side.Valid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidSide, side)
	}
	if m.status == StatusFinished {
		return errs.ErrGameFinished
	}
	m.plies = append(m.plies, game.Ply{Side: side.String(), Resign: true})
	m.status = StatusFinished
	m.winner = side.Opponent()
	m.toMove = pyramid.NoSide
	return nil
}

func (m *Match) checkTurn(side pyramid.Side) error {
	if !side.Valid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidSide, side)
	}
	if m.status == StatusFinished {
		return errs.ErrGameFinished
	}
	if side != m.toMove {
		return fmt.Errorf("%w: %s to move", errs.ErrNotYourTurn, m.toMove)
	}
	return nil
}

// advance hands the turn over and finishes the match once neither side has
// a legal placement. The side with more balls on the pyramid wins.
func (m *Match) advance() {
	m.toMove = m.toMove.Opponent()
	if m.engine.HasAnyLegalPlacement(pyramid.SideA) || m.engine.HasAnyLegalPlacement(pyramid.SideB) {
		return
	}

	m.status = StatusFinished
	m.toMove = pyramid.NoSide
	a, b := m.engine.Count(pyramid.SideA), m.engine.Count(pyramid.SideB)
	switch {
	case a > b:
		m.winner = pyramid.SideA
	case b > a:
		m.winner = pyramid.SideB
	default:
		m.winner = pyramid.NoSide
	}
}

func (m *Match) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Match) ToMove() pyramid.Side {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toMove
}

// Winner is NoSide while the match runs and after a draw.
func (m *Match) Winner() pyramid.Side {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.winner
}

func (m *Match) Score(side pyramid.Side) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.Count(side)
}

// Captures is the number of opposing balls removed by side's placements.
func (m *Match) Captures(side pyramid.Side) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captures[side]
}

func (m *Match) Legal() []pyramid.Coord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == StatusFinished {
		return nil
	}
	return m.engine.LegalPlacements(m.toMove)
}

func (m *Match) Position() game.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	return game.PositionOf(m.engine)
}

func (m *Match) State() game.MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := game.MatchState{
		ID:     m.id,
		Status: m.status,
		Score: map[string]int{
			pyramid.SideA.String(): m.engine.Count(pyramid.SideA),
			pyramid.SideB.String(): m.engine.Count(pyramid.SideB),
		},
		Captures: map[string]int{
			pyramid.SideA.String(): m.captures[pyramid.SideA],
			pyramid.SideB.String(): m.captures[pyramid.SideB],
		},
		Position: game.PositionOf(m.engine),
		Plies:    append([]game.Ply(nil), m.plies...),
	}
	if m.toMove != pyramid.NoSide {
		st.ToMove = m.toMove.String()
	}
	if m.winner != pyramid.NoSide {
		st.Winner = m.winner.String()
	}
	return st
}
