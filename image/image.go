// Package image reads and writes program images.
//
// An image is a headerless stream of little-endian 16-bit cells. Execution
// begins at cell 0.
package image

import (
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ezrec/turing/machine"
	"github.com/ezrec/turing/translate"
)

var f = translate.From

var (
	ErrEmpty = errors.New(f("empty file"))
)

// ErrSize is an image too large for the address space.
type ErrSize struct {
	Cells int
}

func (err *ErrSize) Error() string {
	return f("image of %v cells exceeds the address space", strconv.Itoa(err.Cells))
}

func (err *ErrSize) Unwrap() error {
	return machine.ErrCapacityExceeded
}

// CreateFS is a file system that supports creating files.
type CreateFS interface {
	// Create creates a new file for writing.
	Create(name string) (file io.WriteCloser, err error)
}

// DirFS is a CreateFS rooted at a host directory.
type DirFS string

var _ CreateFS = DirFS("")

func (dir DirFS) Create(name string) (file io.WriteCloser, err error) {
	return os.Create(filepath.Join(string(dir), filepath.FromSlash(name)))
}

// Image is a program image.
type Image struct {
	Cells []machine.Cell
}

// Unmarshal loads image cells from a reader, replacing any existing cells.
// A trailing odd byte is ignored. Images must be smaller than MAX_CELLS.
func (img *Image) Unmarshal(file io.Reader) (err error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return
	}

	if len(data) < 2 {
		err = ErrEmpty
		return
	}

	if len(data)/2 >= machine.MAX_CELLS {
		err = &ErrSize{Cells: len(data) / 2}
		return
	}

	cells := make([]machine.Cell, len(data)/2)
	for n := range cells {
		cells[n] = machine.Cell(binary.LittleEndian.Uint16(data[n*2:]))
	}

	img.Cells = cells

	return
}

// Marshal writes the image cells to a writer.
func (img *Image) Marshal(file io.Writer) (err error) {
	data := make([]byte, 0, len(img.Cells)*2)
	for _, cell := range img.Cells {
		data = binary.LittleEndian.AppendUint16(data, uint16(cell))
	}

	_, err = file.Write(data)

	return
}

// Load reads the named image from a file system.
func Load(filesys fs.FS, name string) (img *Image, err error) {
	file, err := filesys.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	img = &Image{}
	err = img.Unmarshal(file)
	if err != nil {
		img = nil
		return
	}

	return
}

// Save writes the image to a file system.
func (img *Image) Save(filesys CreateFS, name string) (err error) {
	file, err := filesys.Create(name)
	if err != nil {
		return
	}

	err = img.Marshal(file)
	err = errors.Join(err, file.Close())

	return
}
