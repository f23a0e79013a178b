// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/turing/internal"
)

var _machine_defines = map[string]string{
	"MAX_CELLS":      fmt.Sprintf("%v", MAX_CELLS),
	"MODE_IMMEDIATE": fmt.Sprintf("%v", MODE_IMMEDIATE),
	"MODE_A_INDEXED": fmt.Sprintf("%v", MODE_A_INDEXED),
	"MODE_B_INDEXED": fmt.Sprintf("%v", MODE_B_INDEXED),
}

// opcodeDefines yields OP_<NAME> for every opcode.
func opcodeDefines() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for op := OP_NOP; op <= OP_STOP; op++ {
			name := "OP_" + strings.ToUpper(strings.TrimSuffix(op.String(), "?"))
			if !yield(name, fmt.Sprintf("%d", op)) {
				return
			}
		}
	}
}

// Defines returns an iterator over the machine constants and opcodes.
func Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_machine_defines), opcodeDefines())
}

// State is the run state of an engine.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_RUNNING = State(0) // running
	STATE_SUCCESS = State(1) // success
	STATE_FAULT   = State(2) // fault
)

// Engine is the execution context of a single program image.
type Engine struct {
	Verbose bool // Set to enable verbose logging.

	Memory *Memory // Memory, owned by the engine.
	Ip     int     // Instruction pointer.
	State  State   // Run state.
	Fault  error   // Fault that halted the engine, if State is STATE_FAULT.
	Ticks  int     // Steps taken since reset.
}

// NewEngine creates an engine ready to run a copy of the image.
func NewEngine(image []Cell) (eng *Engine) {
	eng = &Engine{}
	eng.Reset(image)

	return
}

// Reset the engine with a fresh copy of the image, at IP 0.
func (eng *Engine) Reset(image []Cell) {
	if eng.Verbose {
		log.Printf("engine: reset, %d cells", len(image))
	}

	eng.Memory = NewMemory(image)
	eng.Ip = 0
	eng.State = STATE_RUNNING
	eng.Fault = nil
	eng.Ticks = 0
}

// Halted returns true if the engine has stopped or faulted.
func (eng *Engine) Halted() bool {
	return eng.State != STATE_RUNNING
}

// String returns the current engine state as a string.
func (eng *Engine) String() (text string) {
	text = fmt.Sprintf("   ip: 0x%04x\nstate: %v\n  len: 0x%04x\nticks: %d\n",
		eng.Ip, eng.State, eng.Memory.Len(), eng.Ticks)
	if eng.Fault != nil {
		text += fmt.Sprintf("fault: %v\n", eng.Fault)
	}

	return
}

// Step decodes and executes the instruction at IP.
// done is set once the engine halts; err is the fault, if any.
func (eng *Engine) Step() (done bool, err error) {
	if eng.Halted() {
		done = true
		err = ErrHalted
		return
	}

	eng.Ticks++

	defer func() {
		if err != nil {
			err = &ErrFault{Ip: eng.Ip, Err: err}
			eng.State = STATE_FAULT
			eng.Fault = err
			done = true
			if eng.Verbose {
				log.Printf("engine: %v", err)
			}
		}
	}()

	mem := eng.Memory
	if eng.Ip >= mem.Len() {
		err = ErrAbnormalTermination
		return
	}

	in, err := Decode(mem.Cells()[eng.Ip:])
	if err != nil {
		return
	}

	if eng.Verbose {
		log.Printf("%04x: %v", eng.Ip, in)
	}

	next_ip, halt, err := eng.Execute(in)
	if err != nil {
		return
	}

	if halt {
		eng.State = STATE_SUCCESS
		done = true
		return
	}

	eng.Ip = next_ip

	return
}

// Run steps the engine until it halts. A program that never halts never
// returns. The error is the fault that halted the engine, if any.
func (eng *Engine) Run() (err error) {
	for done := false; !done; {
		done, err = eng.Step()
	}

	return
}
