package service

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/gridtoe/internal/apperror"
	"github.com/rocketscienceinc/gridtoe/internal/entity"
	"github.com/rocketscienceinc/gridtoe/internal/tictactoe"
)

const (
	winScore  = 10
	lossScore = -10
	drawScore = 0
)

type BotService interface {
	ChooseMove(grid *entity.Grid) (entity.Cell, error)
}

// BotConfig - Side is the owner the search maximizes for.
type BotConfig struct {
	Side       entity.Owner
	WinLength  int
	DepthLimit int
	// Workers - how many top-level candidates are scored at once; 1 or less searches sequentially.
	Workers int
}

// minimaxBot - plain depth-limited minimax, no pruning.
type minimaxBot struct {
	side       entity.Owner
	opponent   entity.Owner
	winLength  int
	depthLimit int
	workers    int
}

func NewBotService(conf BotConfig) BotService {
	return &minimaxBot{
		side:       conf.Side,
		opponent:   conf.Side.Opponent(),
		winLength:  conf.WinLength,
		depthLimit: conf.DepthLimit,
		workers:    conf.Workers,
	}
}

// NewBotFactory - builds an engine for the computer side of each match, sized by that match's config.
func NewBotFactory(workers int) func(side entity.Owner, conf entity.MatchConfig) tictactoe.Bot {
	return func(side entity.Owner, conf entity.MatchConfig) tictactoe.Bot {
		return NewBotService(BotConfig{
			Side:       side,
			WinLength:  conf.WinningLineAmount,
			DepthLimit: conf.SearchDepthLimit,
			Workers:    workers,
		})
	}
}

// ChooseMove - returns the first empty cell, in x-major order, with the best minimax score.
func (that *minimaxBot) ChooseMove(grid *entity.Grid) (entity.Cell, error) {
	board := grid.Snapshot()

	candidates := board.EmptyCells()
	if len(candidates) == 0 {
		return entity.Cell{}, apperror.ErrNoLegalMove
	}

	scores, err := that.scoreCandidates(board, candidates)
	if err != nil {
		return entity.Cell{}, err
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	return candidates[best], nil
}

func (that *minimaxBot) scoreCandidates(board *entity.Grid, candidates []entity.Cell) ([]int, error) {
	scores := make([]int, len(candidates))

	if that.workers <= 1 {
		for i, cell := range candidates {
			scores[i] = that.scoreCandidate(board, cell)
		}

		return scores, nil
	}

	var group errgroup.Group
	group.SetLimit(that.workers)

	for i, cell := range candidates {
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("search of candidate (%d, %d) panicked: %v", cell.X, cell.Y, r)
				}
			}()

			// every worker owns its own copy
			scores[i] = that.scoreCandidate(board.Snapshot(), cell)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return scores, nil
}

func (that *minimaxBot) scoreCandidate(board *entity.Grid, cell entity.Cell) int {
	return withMove(board, cell, that.side, func() int {
		return that.search(board, false, 1)
	})
}

func (that *minimaxBot) search(board *entity.Grid, maximizing bool, depth int) int {
	switch tictactoe.FindWinner(board, that.winLength) {
	case that.side:
		return winScore
	case that.opponent:
		return lossScore
	}

	if board.IsFull() || depth >= that.depthLimit {
		return drawScore
	}

	mover, best := that.opponent, math.MaxInt
	if maximizing {
		mover, best = that.side, math.MinInt
	}

	for _, cell := range board.EmptyCells() {
		score := withMove(board, cell, mover, func() int {
			return that.search(board, !maximizing, depth+1)
		})

		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best
}

// withMove - places owner on cell for the duration of fn. The cell is emptied again on every exit path.
func withMove(board *entity.Grid, cell entity.Cell, owner entity.Owner, fn func() int) int {
	board.Put(cell, owner)
	defer board.Put(cell, entity.OwnerEmpty)

	return fn()
}
