package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	image := []Cell{1, 2, 3}
	mem := NewMemory(image)
	assert.Equal(3, mem.Len())

	// The memory owns a copy of the image.
	image[0] = 0xffff
	value, err := mem.Read(0)
	assert.NoError(err)
	assert.Equal(Cell(1), value)

	err = mem.Write(2, 0xabcd)
	assert.NoError(err)
	assert.Equal([]Cell{1, 2, 0xabcd}, mem.Cells())
}

func TestMemory_OutOfBounds(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory([]Cell{1, 2, 3})

	_, err := mem.Read(3)
	assert.ErrorIs(err, ErrOutOfBounds)
	_, err = mem.Read(-1)
	assert.ErrorIs(err, ErrOutOfBounds)

	err = mem.Write(3, 7)
	assert.ErrorIs(err, ErrOutOfBounds)
	assert.Equal([]Cell{1, 2, 3}, mem.Cells())
}

func TestMemory_Grow(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory([]Cell{1, 2, 3})

	err := mem.Grow(2)
	assert.NoError(err)
	assert.Equal([]Cell{1, 2, 3, 0, 0}, mem.Cells())

	err = mem.Grow(0)
	assert.NoError(err)
	assert.Equal(5, mem.Len())

	err = mem.Grow(-1)
	assert.ErrorIs(err, ErrCapacityExceeded)
}

func TestMemory_GrowCeiling(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory(make([]Cell, 10))

	// Reaching the ceiling is not permitted.
	err := mem.Grow(MAX_CELLS - 10)
	assert.ErrorIs(err, ErrCapacityExceeded)
	assert.Equal(10, mem.Len())

	err = mem.Grow(MAX_CELLS - 11)
	assert.NoError(err)
	assert.Equal(MAX_CELLS-1, mem.Len())

	err = mem.Grow(1)
	assert.ErrorIs(err, ErrCapacityExceeded)
}
