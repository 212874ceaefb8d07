package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/gridtoe/internal/apperror"
	"github.com/rocketscienceinc/gridtoe/internal/entity"
)

// Bot - picks a move for a computer-driven side. It receives a snapshot, never the live grid.
type Bot interface {
	ChooseMove(grid *entity.Grid) (entity.Cell, error)
}

// GameController - drives turn transitions of a single match.
type GameController struct {
	match    *entity.Match
	bots     map[entity.Owner]Bot
	listener Listener
}

// NewGameController - bots maps each computer-driven side to its engine; sides without a bot are human-driven.
func NewGameController(match *entity.Match, listener Listener, bots map[entity.Owner]Bot) *GameController {
	if listener == nil {
		listener = NopListener{}
	}

	return &GameController{
		match:    match,
		bots:     bots,
		listener: listener,
	}
}

func (that *GameController) Match() *entity.Match {
	return that.match
}

// Start - announces the initial status and plays the computer's turn if it moves first.
func (that *GameController) Start() error {
	if that.match.IsFinished() {
		return apperror.ErrGameOver
	}

	that.announce()

	return that.playComputerTurns()
}

// AttemptMove - side tries to occupy (x, y). A rejected move leaves the match untouched.
func (that *GameController) AttemptMove(side entity.Owner, x, y int) error {
	if err := that.validateTurn(side); err != nil {
		return err
	}

	cell := entity.Cell{X: x, Y: y}
	if err := that.validateCell(cell); err != nil {
		return err
	}

	that.applyMove(side, cell)

	return that.playComputerTurns()
}

// validateTurn - checks if the side may move right now.
func (that *GameController) validateTurn(side entity.Owner) error {
	status := that.match.Status
	if status.IsTerminal() {
		return fmt.Errorf("%w: %s", apperror.ErrGameOver, status)
	}

	if side != status.Side() || that.isComputer(side) {
		return fmt.Errorf("%w: side %q, status %s", apperror.ErrNotYourTurn, side, status)
	}

	return nil
}

func (that *GameController) validateCell(cell entity.Cell) error {
	owner, err := that.match.Grid.Get(cell.X, cell.Y)
	if err != nil {
		return err
	}

	if owner != entity.OwnerEmpty {
		return fmt.Errorf("%w: (%d, %d) belongs to %q", apperror.ErrCellOccupied, cell.X, cell.Y, owner)
	}

	return nil
}

func (that *GameController) applyMove(side entity.Owner, cell entity.Cell) {
	that.match.Grid.Put(cell, side)
	that.match.Turns++
	that.listener.MoveApplied(entity.Move{Cell: cell, Owner: side})

	that.updateGameStatus(side)
}

// updateGameStatus - win first, then a full grid, otherwise the other side moves.
func (that *GameController) updateGameStatus(mover entity.Owner) {
	match := that.match

	winner, line := FindWinningLine(match.Grid, match.Config.WinningLineAmount)
	switch {
	case winner != entity.OwnerEmpty:
		match.Status = entity.WonStatus(winner)
		match.WinningLine = line
	case match.Grid.IsFull():
		match.Status = entity.DrawnStatus()
	default:
		match.Status = entity.AwaitingAfter(mover)
	}

	that.announce()

	if match.Status.IsTerminal() {
		that.listener.GameEnded(match.Status, match.WinningLine)
	}
}

func (that *GameController) announce() {
	that.listener.StatusChanged(that.match.Status)
	that.listener.InteractionChanged(that.isHumanTurn())
}

// playComputerTurns - keeps asking bots for moves while a computer-driven side is to move.
func (that *GameController) playComputerTurns() error {
	for {
		side := that.match.Status.Side()
		bot, ok := that.bots[side]
		if !ok || bot == nil {
			return nil
		}

		cell, err := bot.ChooseMove(that.match.Grid.Snapshot())
		if err != nil {
			return fmt.Errorf("computer side %q failed to choose a move: %w", side, err)
		}

		if err = that.validateCell(cell); err != nil {
			return fmt.Errorf("computer side %q chose an illegal move: %w", side, err)
		}

		that.applyMove(side, cell)
	}
}

func (that *GameController) isComputer(side entity.Owner) bool {
	bot, ok := that.bots[side]
	return ok && bot != nil
}

func (that *GameController) isHumanTurn() bool {
	side := that.match.Status.Side()
	return side.IsSide() && !that.isComputer(side)
}
