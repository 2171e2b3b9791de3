package pyramid

import (
	"fmt"
	"strings"

	errs "margo/internal/errors"
)

// Side owns a ball. NoSide marks an empty cell.
type Side int8

const (
	NoSide Side = iota
	SideA
	SideB
)

func (s Side) Opponent() Side {
	switch s {
	case SideA:
		return SideB
	case SideB:
		return SideA
	}
	return NoSide
}

func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	}
	return "-"
}

// ParseSide accepts "A"/"B" in either case.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return SideA, nil
	case "B":
		return SideB, nil
	}
	return NoSide, fmt.Errorf("%w: %q", errs.ErrInvalidSide, s)
}
