// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator couples an execution engine with a program listing.
package emulator

import (
	"iter"
	"log"
	"maps"
	"slices"

	"github.com/ezrec/turing/asm"
	"github.com/ezrec/turing/machine"
)

// Emulator state. Engine + program listing.
type Emulator struct {
	Verbose         bool         // If set, enables verbose logging.
	*machine.Engine              // Reference to the engine.
	Program         *asm.Program // Reference to the currently running program listing.
}

// NewEmulator creates a new emulator running the program.
func NewEmulator(prog *asm.Program) (emu *Emulator) {
	if prog == nil {
		prog = &asm.Program{}
	}

	emu = &Emulator{
		Engine:  machine.NewEngine(prog.Binary()),
		Program: prog,
	}

	return
}

// Reset the engine with a fresh image of the program.
// Inputs are stored into their variables before the first tick; every
// input must be declared by the program.
func (emu *Emulator) Reset(inputs map[string]machine.Cell) (err error) {
	for _, name := range slices.Sorted(maps.Keys(inputs)) {
		if !slices.Contains(emu.Program.Inputs, name) {
			err = &ErrVariable{Name: name, Err: ErrInputUnknown}
			return
		}
	}

	emu.Engine.Verbose = emu.Verbose
	emu.Engine.Reset(emu.Program.Binary())

	for _, name := range emu.Program.Inputs {
		value, ok := inputs[name]
		if !ok {
			continue
		}
		if emu.Verbose {
			log.Printf("emulator: input %v = %d", name, value)
		}
		err = emu.Memory.Write(emu.Program.Labels[name], value)
		if err != nil {
			err = &ErrVariable{Name: name, Err: err}
			return
		}
	}

	return
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() int {
	return emu.Engine.Ip
}

// Instruction returns the listing entry for the current instruction pointer.
func (emu *Emulator) Instruction() asm.Debug {
	return emu.Program.Debug(emu.Engine.Ip)
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	return emu.Program.LineNo(emu.Engine.Ip)
}

// Outputs returns an iterator over the output variables and their values.
func (emu *Emulator) Outputs() iter.Seq2[string, machine.Cell] {
	return emu.Program.Variables(emu.Memory, emu.Program.Outputs)
}

// Tick performs a single step of the engine.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Engine.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	done, err = emu.Engine.Step()

	return
}

// Run ticks the emulator until the engine halts.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
	}

	return
}
