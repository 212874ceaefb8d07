package entity

import (
	"fmt"

	"github.com/rocketscienceinc/gridtoe/internal/apperror"
)

const (
	minGridSide          = 3
	minWinningLineAmount = 3
	minSearchDepthLimit  = 1
)

// MatchConfig - fixed for the whole match once it starts.
type MatchConfig struct {
	Width             int `json:"width"`
	Length            int `json:"length"`
	WinningLineAmount int `json:"winning_line_amount"`
	SearchDepthLimit  int `json:"search_depth_limit"`
}

// Validate - checks the configuration invariants, failing with apperror.ErrInvalidConfiguration.
func (that MatchConfig) Validate() error {
	if that.Width < minGridSide {
		return fmt.Errorf("%w: width %d is less than %d", apperror.ErrInvalidConfiguration, that.Width, minGridSide)
	}

	if that.Length < minGridSide {
		return fmt.Errorf("%w: length %d is less than %d", apperror.ErrInvalidConfiguration, that.Length, minGridSide)
	}

	longest := max(that.Width, that.Length)
	if that.WinningLineAmount < minWinningLineAmount || that.WinningLineAmount > longest {
		return fmt.Errorf("%w: winning line amount %d must be within [%d, %d]",
			apperror.ErrInvalidConfiguration, that.WinningLineAmount, minWinningLineAmount, longest)
	}

	if that.SearchDepthLimit < minSearchDepthLimit {
		return fmt.Errorf("%w: search depth limit %d is less than %d",
			apperror.ErrInvalidConfiguration, that.SearchDepthLimit, minSearchDepthLimit)
	}

	return nil
}

// Match - everything needed to resume a live match between requests.
type Match struct {
	ID          string      `json:"id"`
	Config      MatchConfig `json:"config"`
	Grid        *Grid       `json:"grid"`
	Status      Status      `json:"status"`
	Human       Owner       `json:"human"`
	Computer    Owner       `json:"computer"`
	WinningLine []Cell      `json:"winning_line,omitempty"`
	Turns       int         `json:"turns"`
}

// NewMatch - validates the config and creates a match with the given side to move first.
func NewMatch(id string, conf MatchConfig, human, firstSide Owner) (*Match, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	if !human.IsSide() {
		return nil, fmt.Errorf("%w: human owner %d is not a side", apperror.ErrInvalidConfiguration, int(human))
	}

	status, err := AwaitingStatus(firstSide)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidConfiguration, err)
	}

	return &Match{
		ID:       id,
		Config:   conf,
		Grid:     NewGrid(conf.Width, conf.Length),
		Status:   status,
		Human:    human,
		Computer: human.Opponent(),
	}, nil
}

func (that *Match) IsFinished() bool {
	return that.Status.IsTerminal()
}

// IsComputer - reports whether the side is driven by the search engine.
func (that *Match) IsComputer(side Owner) bool {
	return side.IsSide() && side == that.Computer
}
