package entity

import (
	"errors"
	"fmt"
	"math/rand"
)

// Owner - who, if anyone, has claimed a cell.
type Owner int

const (
	OwnerEmpty Owner = iota
	OwnerSideA
	OwnerSideB
)

const (
	markEmpty = ""
	markSideA = "X"
	markSideB = "O"
)

var ErrUnknownOwner = errors.New("unknown owner")

func (that Owner) String() string {
	switch that {
	case OwnerSideA:
		return markSideA
	case OwnerSideB:
		return markSideB
	case OwnerEmpty:
		return markEmpty
	default:
		return "?"
	}
}

// Opponent - returns the other side. Empty has no opponent.
func (that Owner) Opponent() Owner {
	switch that {
	case OwnerSideA:
		return OwnerSideB
	case OwnerSideB:
		return OwnerSideA
	default:
		return OwnerEmpty
	}
}

// IsSide - reports whether the owner is one of the two playing sides.
func (that Owner) IsSide() bool {
	return that == OwnerSideA || that == OwnerSideB
}

func (that Owner) MarshalText() ([]byte, error) {
	if that != OwnerEmpty && !that.IsSide() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOwner, int(that))
	}

	return []byte(that.String()), nil
}

func (that *Owner) UnmarshalText(text []byte) error {
	switch string(text) {
	case markEmpty:
		*that = OwnerEmpty
	case markSideA:
		*that = OwnerSideA
	case markSideB:
		*that = OwnerSideB
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOwner, text)
	}

	return nil
}

// RandomSide - flips a coin for the side that moves first.
func RandomSide() Owner {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return OwnerSideA
	}
	return OwnerSideB
}
