package tictactoe

import "github.com/rocketscienceinc/gridtoe/internal/entity"

// streak - the run being tracked along a single line.
type streak struct {
	winLength int
	owner     entity.Owner
	cells     []entity.Cell
}

func newStreak(winLength int) *streak {
	return &streak{
		winLength: winLength,
		cells:     make([]entity.Cell, 0, winLength),
	}
}

func (that *streak) reset() {
	that.owner = entity.OwnerEmpty
	that.cells = that.cells[:0]
}

// push - feeds the next cell of the line and reports whether the run reached winLength.
func (that *streak) push(cell entity.Cell, owner entity.Owner) bool {
	switch {
	case owner == entity.OwnerEmpty:
		that.reset()
		return false
	case owner != that.owner:
		that.reset()
		that.owner = owner
	}

	that.cells = append(that.cells, cell)

	return len(that.cells) >= that.winLength
}

func (that *streak) line() []entity.Cell {
	line := make([]entity.Cell, len(that.cells))
	copy(line, that.cells)
	return line
}

// FindWinner - returns the owner of the first run of winLength cells, or Empty.
func FindWinner(grid *entity.Grid, winLength int) entity.Owner {
	owner, _ := scanLines(grid, winLength, false)
	return owner
}

// FindWinningLine - like FindWinner, but also returns the cells of the winning run.
// Rows go first (top to bottom), then columns, then both diagonal families.
func FindWinningLine(grid *entity.Grid, winLength int) (entity.Owner, []entity.Cell) {
	return scanLines(grid, winLength, true)
}

func scanLines(grid *entity.Grid, winLength int, withLine bool) (entity.Owner, []entity.Cell) {
	width, length := grid.Width(), grid.Length()
	if winLength < 1 || (winLength > width && winLength > length) {
		return entity.OwnerEmpty, nil
	}

	run := newStreak(winLength)
	found := func() (entity.Owner, []entity.Cell) {
		if withLine {
			return run.owner, run.line()
		}
		return run.owner, nil
	}

	// rows
	for y := 0; y < length; y++ {
		run.reset()
		for x := 0; x < width; x++ {
			if run.push(entity.Cell{X: x, Y: y}, grid.At(x, y)) {
				return found()
			}
		}
	}

	// columns
	for x := 0; x < width; x++ {
		run.reset()
		for y := 0; y < length; y++ {
			if run.push(entity.Cell{X: x, Y: y}, grid.At(x, y)) {
				return found()
			}
		}
	}

	for _, flipped := range []bool{false, true} {
		for sum := 0; sum <= width+length-2; sum++ {
			run.reset()
			for x := max(0, sum-length+1); x <= min(sum, width-1); x++ {
				cell := entity.Cell{X: x, Y: sum - x}
				if flipped {
					cell.X = width - 1 - x
				}

				if run.push(cell, grid.At(cell.X, cell.Y)) {
					return found()
				}
			}
		}
	}

	return entity.OwnerEmpty, nil
}
