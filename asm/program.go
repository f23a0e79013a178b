package asm

import (
	"iter"

	"github.com/ezrec/turing/machine"
)

// Link is a label reference to patch into a cell once all labels are known.
type Link struct {
	Index int    // Index into Opcode.Cells.
	Label string // Label whose address is patched in.
}

// Opcode represents a line of assembled code with its source location and generated cells.
type Opcode struct {
	LineNo int
	Ip     int
	Words  []string
	Cells  []machine.Cell
	Links  []Link
}

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
	Labels  map[string]int // Label addresses.
	Inputs  []string       // Declared input variables.
	Outputs []string       // Declared output variables.
}

type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode covering ip, and the index of ip within it.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= op.Ip && ip < op.Ip+len(op.Cells) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  ip - op.Ip,
			}
			break
		}
	}

	return
}

// LineNo returns the source line that generated the cell at ip, or 0.
func (prog *Program) LineNo(ip int) int {
	dbg := prog.Debug(ip)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Cells iterates over every assembled cell and its address.
func (prog *Program) Cells() iter.Seq2[int, machine.Cell] {
	return func(yield func(ip int, cell machine.Cell) bool) {
		for _, op := range prog.Opcodes {
			for n, cell := range op.Cells {
				if !yield(op.Ip+n, cell) {
					return
				}
			}
		}
	}
}

// Binary returns the memory image of the program.
func (prog *Program) Binary() (cells []machine.Cell) {
	for _, cell := range prog.Cells() {
		cells = append(cells, cell)
	}

	return
}

// Variables iterates over the named variables and their current values in
// memory. Variables outside of memory are skipped.
func (prog *Program) Variables(mem *machine.Memory, names []string) iter.Seq2[string, machine.Cell] {
	return func(yield func(name string, value machine.Cell) bool) {
		for _, name := range names {
			addr, ok := prog.Labels[name]
			if !ok {
				continue
			}
			value, err := mem.Read(addr)
			if err != nil {
				continue
			}
			if !yield(name, value) {
				return
			}
		}
	}
}
