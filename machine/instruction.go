package machine

import (
	"fmt"
	"iter"
)

// Instruction is a decoded instruction of one of the opcode families.
type Instruction interface {
	// Opcode returns the instruction tag.
	Opcode() Opcode
	// Cells returns the binary encoding of the instruction.
	Cells() []Cell
	// String returns the assembly language form of the instruction.
	String() string
}

// Simple is a nop or stop instruction.
type Simple struct {
	Op Opcode
}

// Arith is an arithmetic-and-assign instruction: [Result] = A op B.
type Arith struct {
	Op     Opcode
	Mode   Mode
	Result Cell
	A      Cell
	B      Cell
}

// Branch is a conditional branch: if A cmp B then IP = Target.
type Branch struct {
	Op     Opcode
	Mode   Mode
	A      Cell
	B      Cell
	Target Cell
}

// Jump is a direct or indirect goto.
type Jump struct {
	Op     Opcode
	Target Cell
}

// Allocate grows memory by the value stored at Variable.
type Allocate struct {
	Variable Cell
}

// Data is a cell that does not decode to an instruction.
type Data struct {
	Value Cell
}

var (
	_ Instruction = Simple{}
	_ Instruction = Arith{}
	_ Instruction = Branch{}
	_ Instruction = Jump{}
	_ Instruction = Allocate{}
	_ Instruction = Data{}
)

func (in Simple) Opcode() Opcode   { return in.Op }
func (in Arith) Opcode() Opcode    { return in.Op }
func (in Branch) Opcode() Opcode   { return in.Op }
func (in Jump) Opcode() Opcode     { return in.Op }
func (in Allocate) Opcode() Opcode { return OP_ALLOCATE }
func (in Data) Opcode() Opcode     { return Opcode(in.Value) }

func (in Simple) Cells() []Cell {
	return []Cell{Cell(in.Op)}
}

func (in Arith) Cells() []Cell {
	return []Cell{Cell(in.Op), Cell(in.Mode), in.Result, in.A, in.B}
}

func (in Branch) Cells() []Cell {
	return []Cell{Cell(in.Op), Cell(in.Mode), in.A, in.B, in.Target}
}

func (in Jump) Cells() []Cell {
	return []Cell{Cell(in.Op), in.Target}
}

func (in Allocate) Cells() []Cell {
	return []Cell{Cell(OP_ALLOCATE), in.Variable}
}

func (in Data) Cells() []Cell {
	return []Cell{in.Value}
}

// operand formats an operand as an immediate or as [index].
func operand(value Cell, indexed bool) string {
	if indexed {
		return fmt.Sprintf("[%d]", value)
	}
	return fmt.Sprintf("%d", value)
}

func (in Simple) String() string {
	return in.Op.String()
}

func (in Arith) String() string {
	return fmt.Sprintf("%v %d %v %v", in.Op, in.Result,
		operand(in.A, in.Mode.AIndexed()), operand(in.B, in.Mode.BIndexed()))
}

func (in Branch) String() string {
	return fmt.Sprintf("if %v %v %v %d", in.Op,
		operand(in.A, in.Mode.AIndexed()), operand(in.B, in.Mode.BIndexed()), in.Target)
}

func (in Jump) String() string {
	return fmt.Sprintf("goto %v", operand(in.Target, in.Op == OP_GOTO_INDIRECT))
}

func (in Allocate) String() string {
	return fmt.Sprintf("alloc %d", in.Variable)
}

func (in Data) String() string {
	return fmt.Sprintf(".word 0x%04x", uint16(in.Value))
}

// Decode decodes the instruction at the start of cells.
func Decode(cells []Cell) (in Instruction, err error) {
	if len(cells) == 0 {
		err = ErrTruncatedInstruction
		return
	}

	op := Opcode(cells[0])
	width := op.Width()
	if width == 0 {
		err = ErrOpcode(cells[0])
		return
	}

	if len(cells) < width {
		err = &ErrTruncated{Opcode: op, Need: width, Have: len(cells)}
		return
	}

	switch op.Family() {
	case FAMILY_SIMPLE:
		in = Simple{Op: op}
	case FAMILY_ARITH:
		in = Arith{Op: op, Mode: Mode(cells[1]), Result: cells[2], A: cells[3], B: cells[4]}
	case FAMILY_BRANCH:
		in = Branch{Op: op, Mode: Mode(cells[1]), A: cells[2], B: cells[3], Target: cells[4]}
	case FAMILY_JUMP:
		in = Jump{Op: op, Target: cells[1]}
	case FAMILY_ALLOCATE:
		in = Allocate{Variable: cells[1]}
	}

	return
}

// Disassemble decodes cells linearly from index 0. Cells that do not
// decode are returned as Data, one cell at a time.
func Disassemble(cells []Cell) iter.Seq2[int, Instruction] {
	return func(yield func(ip int, in Instruction) bool) {
		for ip := 0; ip < len(cells); {
			in, err := Decode(cells[ip:])
			if err != nil {
				in = Data{Value: cells[ip]}
			}
			if !yield(ip, in) {
				return
			}
			ip += len(in.Cells())
		}
	}
}
