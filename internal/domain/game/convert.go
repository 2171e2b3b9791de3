package game

import (
	"fmt"

	"margo/internal/domain/pyramid"
	errs "margo/internal/errors"
)

// Restore rebuilds an engine from the position. Every failure wraps
// ErrBadPosition together with the underlying cause.
func (p Position) Restore() (*pyramid.Engine, error) {
	g, err := pyramid.NewGeometry(p.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrBadPosition, err)
	}

	b := pyramid.NewBoard(g)
	for _, s := range p.Stones {
		c, err := g.Parse(s.Cell)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrBadPosition, err)
		}
		side, err := pyramid.ParseSide(s.Side)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errs.ErrBadPosition, s.Cell, err)
		}
		if err = b.Put(c, side); err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrBadPosition, err)
		}
	}

	var ko pyramid.KoRecord
	if p.Ko != nil {
		if ko.Placement, err = parseOptional(g, p.Ko.Placement); err != nil {
			return nil, err
		}
		if ko.Capture, err = parseOptional(g, p.Ko.Capture); err != nil {
			return nil, err
		}
	}

	e, err := pyramid.Restore(b, ko)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrBadPosition, err)
	}
	return e, nil
}

func parseOptional(g pyramid.Geometry, name string) (*pyramid.Coord, error) {
	if name == "" {
		return nil, nil
	}
	c, err := g.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("%w: ko: %w", errs.ErrBadPosition, err)
	}
	return &c, nil
}

// PositionOf snapshots an engine, stones in board order.
func PositionOf(e *pyramid.Engine) Position {
	cells := e.Cells()
	p := Position{
		Size:   e.Geometry().Size,
		Stones: make([]Stone, 0, len(cells)),
	}
	for _, c := range cells {
		p.Stones = append(p.Stones, Stone{Cell: c.String(), Side: e.At(c).String()})
	}

	ko := e.Ko()
	if ko.Placement != nil {
		p.Ko = &Ko{Placement: ko.Placement.String()}
		if ko.Capture != nil {
			p.Ko.Capture = ko.Capture.String()
		}
	}
	return p
}

func Names(cs []pyramid.Coord) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

func BatchNames(batches [][]pyramid.Coord) [][]string {
	out := make([][]string, len(batches))
	for i, b := range batches {
		out[i] = Names(b)
	}
	return out
}
