package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gridtoe/internal/apperror"
	"github.com/rocketscienceinc/gridtoe/internal/entity"
)

func mustParseGrid(t *testing.T, text string) *entity.Grid {
	t.Helper()

	grid, err := entity.ParseGrid(text)
	require.NoError(t, err)

	return grid
}

func newTestBot(depth, workers int) BotService {
	return NewBotService(BotConfig{
		Side:       entity.OwnerSideB,
		WinLength:  3,
		DepthLimit: depth,
		Workers:    workers,
	})
}

func TestBotService_BlocksOpponentLine(t *testing.T) {
	for _, depth := range []int{1, 2, 3, 9} {
		// Given: the opponent holds two cells of the first column
		grid := mustParseGrid(t, `
			XX.
			...
			...
		`)

		// When: the computer picks a move
		cell, err := newTestBot(depth, 1).ChooseMove(grid)

		// Then: it blocks the third cell
		require.NoError(t, err)
		assert.Equal(t, entity.Cell{X: 0, Y: 2}, cell, "depth %d", depth)
	}
}

func TestBotService_TakesWinningCell(t *testing.T) {
	for _, depth := range []int{1, 2} {
		// Given: the computer holds two cells of the main diagonal
		grid := mustParseGrid(t, `
			OX.
			XO.
			...
		`)

		// When: the computer picks a move
		cell, err := newTestBot(depth, 1).ChooseMove(grid)

		// Then: it completes the diagonal
		require.NoError(t, err)
		assert.Equal(t, entity.Cell{X: 2, Y: 2}, cell, "depth %d", depth)
	}
}

func TestBotService_FullGrid(t *testing.T) {
	grid := mustParseGrid(t, `
		XOX
		XOO
		OXX
	`)

	_, err := newTestBot(3, 1).ChooseMove(grid)
	require.ErrorIs(t, err, apperror.ErrNoLegalMove)
}

func TestBotService_Deterministic(t *testing.T) {
	grids := []string{
		"...\n...\n...",
		"X..\n...\n...",
		"X...\n.O..\n..X.\n....",
		"X.O.\n....\n.X..",
	}

	for _, text := range grids {
		grid := mustParseGrid(t, text)

		sequential, err := newTestBot(3, 1).ChooseMove(grid)
		require.NoError(t, err)

		// Then: repeated and parallel searches agree
		for range 3 {
			again, err := newTestBot(3, 1).ChooseMove(grid)
			require.NoError(t, err)
			assert.Equal(t, sequential, again, text)

			parallel, err := newTestBot(3, 4).ChooseMove(grid)
			require.NoError(t, err)
			assert.Equal(t, sequential, parallel, text)
		}
	}
}

func TestBotService_ChoosesEmptyCellOnly(t *testing.T) {
	grids := []string{
		"XOX\nO.O\nXOX",
		"XXO\nOO.\nX.X",
		"XO..\nOX..\n..O.",
		"XOXO\nOXOX\n.OX.",
	}

	for _, text := range grids {
		// Given: a partly filled grid
		grid := mustParseGrid(t, text)
		before := grid.String()

		for _, workers := range []int{1, 2} {
			// When: the computer picks a move
			cell, err := newTestBot(4, workers).ChooseMove(grid)
			require.NoError(t, err)

			// Then: the cell is empty and the input is untouched
			owner, err := grid.Get(cell.X, cell.Y)
			require.NoError(t, err)
			assert.Equal(t, entity.OwnerEmpty, owner, text)
			assert.Equal(t, before, grid.String())
		}
	}
}

func TestBotService_OnlyMove(t *testing.T) {
	grid := mustParseGrid(t, `
		XOX
		OOX
		X.O
	`)

	cell, err := newTestBot(9, 1).ChooseMove(grid)
	require.NoError(t, err)
	assert.Equal(t, entity.Cell{X: 2, Y: 1}, cell)
}

func TestNewBotFactory(t *testing.T) {
	// Given: a factory and a match config with a short search horizon
	newBot := NewBotFactory(2)
	conf := entity.MatchConfig{Width: 3, Length: 3, WinningLineAmount: 3, SearchDepthLimit: 2}

	// When: a bot for side O looks at side X about to win
	bot := newBot(entity.OwnerSideB, conf)
	cell, err := bot.ChooseMove(mustParseGrid(t, "XX.\n...\n..."))

	// Then: it blocks like any other engine with that horizon
	require.NoError(t, err)
	assert.Equal(t, entity.Cell{X: 0, Y: 2}, cell)
}

func TestWithMove_RestoresCell(t *testing.T) {
	board := entity.NewGrid(3, 3)
	cell := entity.Cell{X: 1, Y: 2}

	assert.Panics(t, func() {
		withMove(board, cell, entity.OwnerSideA, func() int {
			assert.Equal(t, entity.OwnerSideA, board.At(1, 2))
			panic("search aborted")
		})
	})

	assert.Equal(t, entity.OwnerEmpty, board.At(1, 2))
}
