package errors

import "errors"

// Placement legality failures. They are expected during play and always
// arrive wrapped in a pyramid.IllegalMove.
var (
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrNoSupport    = errors.New("cell is not supported by four balls")
	ErrSuicideMove  = errors.New("placement leaves its own group without liberties")
	ErrKoViolation  = errors.New("placement repeats the previous single capture")
)

// Programmer errors: callers passing malformed data or the engine breaking
// its own invariants.
var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrBrokenSupport     = errors.New("ball present without all four supports")
	ErrInvalidSide       = errors.New("invalid side")
	ErrInvalidBoardSize  = errors.New("invalid board size")
)

var (
	ErrGameFinished  = errors.New("game is finished")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrPassRefused   = errors.New("pass refused: a legal placement exists")
	ErrMatchNotFound = errors.New("match not found")
	ErrBadPosition   = errors.New("malformed position")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
)
