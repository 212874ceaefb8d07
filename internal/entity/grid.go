package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/gridtoe/internal/apperror"
)

const emptyCellRune = '.'

var ErrMalformedGrid = errors.New("malformed grid")

// Cell - a coordinate on the grid. X runs over the first axis (width), Y over the second (length).
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Move - a cell claimed by an owner.
type Move struct {
	Cell
	Owner Owner `json:"owner"`
}

// Grid - a Width x Length board of owners. The zero value is an empty 0x0 grid.
type Grid struct {
	width  int
	length int
	cells  []Owner
}

type gridJSON struct {
	Width  int     `json:"width"`
	Length int     `json:"length"`
	Cells  []Owner `json:"cells"`
}

// NewGrid - creates a grid with every cell empty.
func NewGrid(width, length int) *Grid {
	width, length = max(width, 0), max(length, 0)

	return &Grid{
		width:  width,
		length: length,
		cells:  make([]Owner, width*length),
	}
}

// ParseGrid - builds a grid from its String form: one line per x, one rune per y.
// 'X' and 'O' are the two sides, '.' is an empty cell.
// A text line is therefore a column (fixed x) for the win detector, and a text column is a row.
func ParseGrid(text string) (*Grid, error) {
	lines := strings.Fields(text)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no lines", ErrMalformedGrid)
	}

	grid := NewGrid(len(lines), len(lines[0]))
	for x, line := range lines {
		if len(line) != grid.length {
			return nil, fmt.Errorf("%w: line %d has %d cells, want %d", ErrMalformedGrid, x, len(line), grid.length)
		}

		for y, r := range line {
			owner := OwnerEmpty
			if r != emptyCellRune {
				if err := owner.UnmarshalText([]byte(string(r))); err != nil {
					return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedGrid, x, err)
				}
			}

			grid.cells[grid.index(x, y)] = owner
		}
	}

	return grid, nil
}

func (that *Grid) Width() int {
	return that.width
}

func (that *Grid) Length() int {
	return that.length
}

// Contains - reports whether (x, y) lies on the grid.
func (that *Grid) Contains(x, y int) bool {
	return x >= 0 && x < that.width && y >= 0 && y < that.length
}

// Get - returns the owner of (x, y).
func (that *Grid) Get(x, y int) (Owner, error) {
	if !that.Contains(x, y) {
		return OwnerEmpty, fmt.Errorf("%w: (%d, %d) on %dx%d grid", apperror.ErrOutOfBounds, x, y, that.width, that.length)
	}

	return that.cells[that.index(x, y)], nil
}

// Set - writes the owner of (x, y). Occupancy is not checked here.
func (that *Grid) Set(x, y int, owner Owner) error {
	if !that.Contains(x, y) {
		return fmt.Errorf("%w: (%d, %d) on %dx%d grid", apperror.ErrOutOfBounds, x, y, that.width, that.length)
	}

	that.cells[that.index(x, y)] = owner

	return nil
}

// At - unchecked Get for hot loops; the caller guarantees the bounds.
func (that *Grid) At(x, y int) Owner {
	return that.cells[that.index(x, y)]
}

// Put - unchecked Set for hot loops; the caller guarantees the bounds.
func (that *Grid) Put(cell Cell, owner Owner) {
	that.cells[that.index(cell.X, cell.Y)] = owner
}

// Snapshot - returns an independent copy.
func (that *Grid) Snapshot() *Grid {
	cells := make([]Owner, len(that.cells))
	copy(cells, that.cells)

	return &Grid{
		width:  that.width,
		length: that.length,
		cells:  cells,
	}
}

// IsFull - true when no cell is empty.
func (that *Grid) IsFull() bool {
	for _, cell := range that.cells {
		if cell == OwnerEmpty {
			return false
		}
	}

	return true
}

// EmptyCells - every empty cell, x-major: outer loop over x, inner loop over y.
func (that *Grid) EmptyCells() []Cell {
	empty := make([]Cell, 0, len(that.cells))
	for x := 0; x < that.width; x++ {
		for y := 0; y < that.length; y++ {
			if that.cells[that.index(x, y)] == OwnerEmpty {
				empty = append(empty, Cell{X: x, Y: y})
			}
		}
	}

	return empty
}

func (that *Grid) String() string {
	var sb strings.Builder
	for x := 0; x < that.width; x++ {
		for y := 0; y < that.length; y++ {
			owner := that.At(x, y)
			if owner == OwnerEmpty {
				sb.WriteRune(emptyCellRune)
				continue
			}
			sb.WriteString(owner.String())
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

func (that *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(gridJSON{
		Width:  that.width,
		Length: that.length,
		Cells:  that.cells,
	})
}

func (that *Grid) UnmarshalJSON(data []byte) error {
	var raw gridJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal grid: %w", err)
	}

	if raw.Width < 0 || raw.Length < 0 || len(raw.Cells) != raw.Width*raw.Length {
		return fmt.Errorf("%w: %d cells for %dx%d", ErrMalformedGrid, len(raw.Cells), raw.Width, raw.Length)
	}

	that.width = raw.Width
	that.length = raw.Length
	that.cells = raw.Cells

	return nil
}

func (that *Grid) index(x, y int) int {
	return x*that.length + y
}
