package machine

import (
	"errors"

	"github.com/ezrec/turing/translate"
)

var f = translate.From

var (
	// Memory errors
	ErrOutOfBounds      = errors.New(f("out of bounds"))
	ErrCapacityExceeded = errors.New(f("capacity exceeded"))

	// Faults
	ErrTruncatedInstruction = errors.New(f("Instruction is not complete"))
	ErrInvalidOpcode        = errors.New(f("Invalid opcode"))
	ErrAccessViolation      = errors.New(f("Access violation"))
	ErrDivisionByZero       = errors.New(f("Division by zero"))
	ErrMemoryExhausted      = errors.New(f("Memory is exhausted"))
	ErrAbnormalTermination  = errors.New(f("Program completed abnormal"))

	// Engine errors
	ErrHalted = errors.New(f("engine halted"))
)

// ErrOpcode is an unrecognized opcode tag.
type ErrOpcode Cell

func (eo ErrOpcode) Error() string {
	return f("Invalid opcode 0x%x", uint16(eo))
}

func (eo ErrOpcode) Unwrap() error {
	return ErrInvalidOpcode
}

// ErrTruncated is an instruction whose operands run past the end of memory.
type ErrTruncated struct {
	Opcode Opcode
	Need   int // Cells needed, including the opcode.
	Have   int // Cells remaining, including the opcode.
}

func (err *ErrTruncated) Error() string {
	return f("Instruction is not complete, %v needs %d cells, %d remain", err.Opcode, err.Need, err.Have)
}

func (err *ErrTruncated) Unwrap() error {
	return ErrTruncatedInstruction
}

// ErrAccess is an access violation at a memory address.
type ErrAccess struct {
	Access  Access
	Address Cell
}

func (err *ErrAccess) Error() string {
	return f("Access violation on %v 0x%x", err.Access, uint16(err.Address))
}

func (err *ErrAccess) Unwrap() error {
	return ErrAccessViolation
}

// ErrExhausted is an allocation that would overflow the address space.
type ErrExhausted struct {
	Size int // Requested memory size, in cells.
}

func (err *ErrExhausted) Error() string {
	return f("Memory is exhausted, required size is 0x%x", err.Size)
}

func (err *ErrExhausted) Unwrap() error {
	return ErrMemoryExhausted
}

// ErrFault records the instruction pointer at which the engine halted.
type ErrFault struct {
	Ip  int
	Err error
}

func (err *ErrFault) Error() string {
	return f("ip 0x%04x: %v", err.Ip, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

// FaultKind classifies a fault.
type FaultKind int

//go:generate go tool stringer -linecomment -type=FaultKind
const (
	FAULT_NONE                 = FaultKind(0) // none
	FAULT_TRUNCATED            = FaultKind(1) // truncated instruction
	FAULT_INVALID_OPCODE       = FaultKind(2) // invalid opcode
	FAULT_ACCESS_VIOLATION     = FaultKind(3) // access violation
	FAULT_DIVISION_BY_ZERO     = FaultKind(4) // division by zero
	FAULT_MEMORY_EXHAUSTED     = FaultKind(5) // memory exhausted
	FAULT_ABNORMAL_TERMINATION = FaultKind(6) // abnormal termination
	FAULT_UNKNOWN              = FaultKind(7) // unknown
)

var faultKinds = []struct {
	err  error
	kind FaultKind
}{
	{ErrTruncatedInstruction, FAULT_TRUNCATED},
	{ErrInvalidOpcode, FAULT_INVALID_OPCODE},
	{ErrAccessViolation, FAULT_ACCESS_VIOLATION},
	{ErrDivisionByZero, FAULT_DIVISION_BY_ZERO},
	{ErrMemoryExhausted, FAULT_MEMORY_EXHAUSTED},
	{ErrAbnormalTermination, FAULT_ABNORMAL_TERMINATION},
}

// Kind returns the fault kind of an engine error.
func Kind(err error) FaultKind {
	if err == nil {
		return FAULT_NONE
	}

	for _, fk := range faultKinds {
		if errors.Is(err, fk.err) {
			return fk.kind
		}
	}

	return FAULT_UNKNOWN
}
