package apperror

import "errors"

var (
	ErrOutOfBounds          = errors.New("cell is out of bounds")
	ErrCellOccupied         = errors.New("cell is already occupied")
	ErrNotYourTurn          = errors.New("it's not your turn")
	ErrGameOver             = errors.New("game is already over")
	ErrInvalidConfiguration = errors.New("invalid match configuration")
	ErrNoLegalMove          = errors.New("no legal move left on the grid")
	ErrMatchNotFound        = errors.New("match not found")
	ErrConcurrentUpdate     = errors.New("match was changed by another request")
)
