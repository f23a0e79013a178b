package machine

import (
	"slices"
)

// Cell is the 16-bit unit of memory and of instruction encoding.
type Cell uint16

const (
	CELL_BITS = 16
	MAX_CELLS = 1 << CELL_BITS // Address space ceiling, in cells.
)

// Memory is the flat, growable cell store shared by code and data.
type Memory struct {
	cells []Cell
}

// NewMemory creates a memory holding a copy of the image.
func NewMemory(image []Cell) (mem *Memory) {
	mem = &Memory{
		cells: slices.Clone(image),
	}

	return
}

// Len returns the number of cells in memory.
func (mem *Memory) Len() int {
	return len(mem.cells)
}

// Cells returns a read-only view of memory. The view is invalidated by Grow.
func (mem *Memory) Cells() []Cell {
	return mem.cells
}

// Read returns the cell at index.
func (mem *Memory) Read(index int) (value Cell, err error) {
	if index < 0 || index >= len(mem.cells) {
		err = ErrOutOfBounds
		return
	}

	value = mem.cells[index]
	return
}

// Write sets the cell at index.
func (mem *Memory) Write(index int, value Cell) (err error) {
	if index < 0 || index >= len(mem.cells) {
		err = ErrOutOfBounds
		return
	}

	mem.cells[index] = value
	return
}

// Grow appends zeroed cells. The resulting length must stay below MAX_CELLS.
func (mem *Memory) Grow(by int) (err error) {
	if by < 0 || len(mem.cells)+by >= MAX_CELLS {
		err = ErrCapacityExceeded
		return
	}

	mem.cells = append(mem.cells, make([]Cell, by)...)
	return
}
