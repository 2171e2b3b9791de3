package referee

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"margo/internal/bootstrap"
	"margo/internal/domain/game"
	"margo/internal/domain/pyramid"
	errs "margo/internal/errors"
	"margo/internal/usecase/match"
)

// LegalCache memoises legal-placement lists per position. Keys are built by
// LegalKey.
type LegalCache interface {
	GetLegal(ctx context.Context, key string) ([]string, bool, error)
	PutLegal(ctx context.Context, key string, cells []string) error
}

// Journal keeps a record of every ruling.
type Journal interface {
	Record(ctx context.Context, a game.Adjudication) error
	ByMatch(ctx context.Context, matchID string) ([]game.Adjudication, error)
}

// RefereeUseCase rules on placements, both for positions sent in full and
// for matches it hosts. Cache and journal are optional; their failures are
// logged and never fail a ruling.
type RefereeUseCase struct {
	cfg     bootstrap.Config
	log     *zap.SugaredLogger
	cache   LegalCache
	journal Journal
	matches *match.Registry
	now     func() time.Time
}

func NewRefereeUseCase(cfg bootstrap.Config, log *zap.SugaredLogger, cache LegalCache, journal Journal) *RefereeUseCase {
	return &RefereeUseCase{
		cfg:     cfg,
		log:     log,
		cache:   cache,
		journal: journal,
		matches: match.NewRegistry(log),
		now:     time.Now,
	}
}

// LegalKey identifies a position and side to move for caching. The ko record
// is part of the key since it changes the answer.
func LegalKey(e *pyramid.Engine, side pyramid.Side) string {
	var placement, capture string
	ko := e.Ko()
	if ko.Placement != nil {
		placement = ko.Placement.String()
	}
	if ko.Capture != nil {
		capture = ko.Capture.String()
	}
	return fmt.Sprintf("margo:legal:%d:%016x:%s:%s:%s", e.Geometry().Size, e.Hash(), placement, capture, side)
}

func (u *RefereeUseCase) restore(pos game.Position) (*pyramid.Engine, error) {
	if pos.Size > u.cfg.MaxBoardSize {
		return nil, fmt.Errorf("%w: size %d exceeds %d", errs.ErrBadPosition, pos.Size, u.cfg.MaxBoardSize)
	}
	return pos.Restore()
}

// Place rules on one placement against a position sent by the caller and
// returns the resulting position.
func (u *RefereeUseCase) Place(ctx context.Context, requestID string, pos game.Position, cell, side string) (game.PlacementResult, error) {
	e, err := u.restore(pos)
	if err != nil {
		return game.PlacementResult{}, err
	}
	s, err := pyramid.ParseSide(side)
	if err != nil {
		return game.PlacementResult{}, err
	}
	c, err := e.Geometry().Parse(cell)
	if err != nil {
		return game.PlacementResult{}, err
	}

	entry := game.Adjudication{
		RequestID: requestID,
		Size:      pos.Size,
		Hash:      fmt.Sprintf("%016x", e.Hash()),
		Cell:      c.String(),
		Side:      s.String(),
	}

	report, err := e.AttemptPlacement(c, s)
	u.record(ctx, entry, report, err)
	if err != nil {
		return game.PlacementResult{}, err
	}

	return game.PlacementResult{
		Cell:           c.String(),
		Side:           s.String(),
		RemovedBatches: game.BatchNames(report.RemovedBatches),
		Position:       game.PositionOf(e),
	}, nil
}

// Legal lists the cells where side may place in pos.
func (u *RefereeUseCase) Legal(ctx context.Context, pos game.Position, side string) ([]string, error) {
	e, err := u.restore(pos)
	if err != nil {
		return nil, err
	}
	s, err := pyramid.ParseSide(side)
	if err != nil {
		return nil, err
	}

	key := LegalKey(e, s)
	if u.cache != nil {
		cells, ok, err := u.cache.GetLegal(ctx, key)
		if err != nil {
			u.log.Errorf("legal cache read failed: %v", err)
		} else if ok {
			return cells, nil
		}
	}

	cells := game.Names(e.LegalPlacements(s))
	if u.cache != nil {
		if err = u.cache.PutLegal(ctx, key, cells); err != nil {
			u.log.Errorf("legal cache write failed: %v", err)
		}
	}
	return cells, nil
}

func (u *RefereeUseCase) record(ctx context.Context, entry game.Adjudication, report pyramid.CaptureReport, err error) {
	var illegal *pyramid.IllegalMove
	switch {
	case err == nil:
		entry.Legal = true
		entry.RemovedBatches = game.BatchNames(report.RemovedBatches)
	case errors.As(err, &illegal):
		entry.Reason = illegal.Reason.Error()
		u.log.Infof("request %s: %v", entry.RequestID, err)
	default:
		return
	}

	if u.journal == nil {
		return
	}
	entry.CreatedAt = u.now()
	if err := u.journal.Record(ctx, entry); err != nil {
		u.log.Errorf("journal write for %s failed: %v", entry.RequestID, err)
	}
}
