package referee

import (
	"context"
	"fmt"

	"margo/internal/domain/game"
	"margo/internal/domain/pyramid"
	errs "margo/internal/errors"
	"margo/internal/usecase/match"
)

// NewMatch starts a hosted match. A zero size picks the configured default.
func (u *RefereeUseCase) NewMatch(ctx context.Context, size int) (game.MatchState, error) {
	if size == 0 {
		size = u.cfg.BoardSize
	}
	if size > u.cfg.MaxBoardSize {
		return game.MatchState{}, fmt.Errorf("%w: %d exceeds %d", errs.ErrInvalidBoardSize, size, u.cfg.MaxBoardSize)
	}
	g, err := pyramid.NewGeometry(size)
	if err != nil {
		return game.MatchState{}, err
	}
	return u.matches.Create(g).State(), nil
}

func (u *RefereeUseCase) MatchState(ctx context.Context, id string) (game.MatchState, error) {
	m, err := u.matches.Get(id)
	if err != nil {
		return game.MatchState{}, err
	}
	return m.State(), nil
}

func (u *RefereeUseCase) PlayMatch(ctx context.Context, requestID, id, side, cell string) (game.MatchState, error) {
	m, err := u.matches.Get(id)
	if err != nil {
		return game.MatchState{}, err
	}
	s, err := pyramid.ParseSide(side)
	if err != nil {
		return game.MatchState{}, err
	}
	c, err := m.Geometry().Parse(cell)
	if err != nil {
		return game.MatchState{}, err
	}

	entry := game.Adjudication{
		RequestID: requestID,
		MatchID:   id,
		Size:      m.Geometry().Size,
		Hash:      fmt.Sprintf("%016x", m.Hash()),
		Cell:      c.String(),
		Side:      s.String(),
	}
	report, err := m.Play(s, c)
	u.record(ctx, entry, report, err)
	if err != nil {
		return game.MatchState{}, err
	}

	st := m.State()
	if st.Status == match.StatusFinished {
		u.log.Infof("match %s finished, winner %q, score %v", id, st.Winner, st.Score)
	}
	return st, nil
}

func (u *RefereeUseCase) PassMatch(ctx context.Context, id, side string) (game.MatchState, error) {
	m, err := u.matches.Get(id)
	if err != nil {
		return game.MatchState{}, err
	}
	s, err := pyramid.ParseSide(side)
	if err != nil {
		return game.MatchState{}, err
	}
	if err = m.Pass(s); err != nil {
		return game.MatchState{}, err
	}
	return m.State(), nil
}

func (u *RefereeUseCase) ResignMatch(ctx context.Context, id, side string) (game.MatchState, error) {
	m, err := u.matches.Get(id)
	if err != nil {
		return game.MatchState{}, err
	}
	s, err := pyramid.ParseSide(side)
	if err != nil {
		return game.MatchState{}, err
	}
	if err = m.Resign(s); err != nil {
		return game.MatchState{}, err
	}
	u.log.Infof("match %s: %s resigned", id, s)
	return m.State(), nil
}

// SweepMatches evicts hosted matches idle for longer than the configured
// match TTL and returns how many went. A zero TTL disables eviction.
func (u *RefereeUseCase) SweepMatches(ctx context.Context) int {
	ttl := u.cfg.MatchTTL()
	if ttl <= 0 {
		return 0
	}
	evicted := u.matches.Evict(u.now().Add(-ttl))
	if len(evicted) > 0 {
		u.log.Infof("evicted %d idle matches, %d left", len(evicted), u.matches.Len())
	}
	return len(evicted)
}

// MatchJournal returns the recorded rulings of a match, oldest first.
func (u *RefereeUseCase) MatchJournal(ctx context.Context, id string) ([]game.Adjudication, error) {
	if _, err := u.matches.Get(id); err != nil {
		return nil, err
	}
	if u.journal == nil {
		return []game.Adjudication{}, nil
	}
	return u.journal.ByMatch(ctx, id)
}
