package entity

import (
	"errors"
	"fmt"
)

// State - the turn/game state of a match.
type State string

const (
	StateAwaitingSideA State = "awaiting_side_a"
	StateAwaitingSideB State = "awaiting_side_b"
	StateWon           State = "won"
	StateDrawn         State = "drawn"
)

var ErrUnknownState = errors.New("unknown game state")

// Status - current state plus the winner once the state is StateWon.
type Status struct {
	State  State `json:"state"`
	Winner Owner `json:"winner,omitempty"`
}

// AwaitingStatus - the status in which the given side is to move.
func AwaitingStatus(side Owner) (Status, error) {
	switch side {
	case OwnerSideA:
		return Status{State: StateAwaitingSideA}, nil
	case OwnerSideB:
		return Status{State: StateAwaitingSideB}, nil
	default:
		return Status{}, fmt.Errorf("%w: no side to await for owner %d", ErrUnknownState, int(side))
	}
}

// AwaitingAfter - the status once mover has moved and the match goes on.
// Side B hands the turn to side A, side A to side B.
func AwaitingAfter(mover Owner) Status {
	if mover == OwnerSideA {
		return Status{State: StateAwaitingSideB}
	}

	return Status{State: StateAwaitingSideA}
}

func WonStatus(winner Owner) Status {
	return Status{State: StateWon, Winner: winner}
}

func DrawnStatus() Status {
	return Status{State: StateDrawn}
}

// Side - the side to move, Empty once the game is over.
func (that Status) Side() Owner {
	switch that.State {
	case StateAwaitingSideA:
		return OwnerSideA
	case StateAwaitingSideB:
		return OwnerSideB
	default:
		return OwnerEmpty
	}
}

func (that Status) IsTerminal() bool {
	return that.State == StateWon || that.State == StateDrawn
}

func (that Status) String() string {
	if that.State == StateWon {
		return fmt.Sprintf("%s(%s)", that.State, that.Winner)
	}
	return string(that.State)
}
