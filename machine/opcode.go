package machine

// Opcode is the instruction tag stored in the first cell of an instruction.
// The values are part of the binary image format.
type Opcode Cell

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_NOP           = Opcode(0)  // nop
	OP_ADD           = Opcode(1)  // add
	OP_SUB           = Opcode(2)  // sub
	OP_MUL           = Opcode(3)  // mul
	OP_DIV           = Opcode(4)  // div
	OP_MOD           = Opcode(5)  // mod
	OP_IF_LT         = Opcode(6)  // lt?
	OP_IF_LE         = Opcode(7)  // le?
	OP_IF_EQ         = Opcode(8)  // eq?
	OP_IF_NE         = Opcode(9)  // ne?
	OP_IF_GT         = Opcode(10) // gt?
	OP_IF_GE         = Opcode(11) // ge?
	OP_GOTO          = Opcode(12) // goto
	OP_GOTO_INDIRECT = Opcode(13) // igoto
	OP_ALLOCATE      = Opcode(14) // alloc
	OP_STOP          = Opcode(15) // stop
)

// Family groups opcodes that share an instruction layout.
type Family int

const (
	FAMILY_INVALID  = Family(0)
	FAMILY_SIMPLE   = Family(1) // opcode
	FAMILY_ARITH    = Family(2) // opcode, mode, result, a, b
	FAMILY_BRANCH   = Family(3) // opcode, mode, a, b, target
	FAMILY_JUMP     = Family(4) // opcode, target
	FAMILY_ALLOCATE = Family(5) // opcode, variable
)

// familyWidth is the instruction width, in cells, of each family.
var familyWidth = [...]int{
	FAMILY_INVALID:  0,
	FAMILY_SIMPLE:   1,
	FAMILY_ARITH:    5,
	FAMILY_BRANCH:   5,
	FAMILY_JUMP:     2,
	FAMILY_ALLOCATE: 2,
}

// Family returns the layout family of the opcode.
func (op Opcode) Family() Family {
	switch op {
	case OP_NOP, OP_STOP:
		return FAMILY_SIMPLE
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD:
		return FAMILY_ARITH
	case OP_IF_LT, OP_IF_LE, OP_IF_EQ, OP_IF_NE, OP_IF_GT, OP_IF_GE:
		return FAMILY_BRANCH
	case OP_GOTO, OP_GOTO_INDIRECT:
		return FAMILY_JUMP
	case OP_ALLOCATE:
		return FAMILY_ALLOCATE
	}

	return FAMILY_INVALID
}

// Width returns the number of cells of the instruction, or 0 if the opcode is invalid.
func (op Opcode) Width() int {
	return familyWidth[op.Family()]
}

// Valid returns true if the opcode is a recognized instruction tag.
func (op Opcode) Valid() bool {
	return op.Family() != FAMILY_INVALID
}

// Mode holds the addressing flags of the arith and branch families.
// A clear bit selects an immediate operand, a set bit an indexed one.
type Mode Cell

const (
	MODE_IMMEDIATE = Mode(0)
	MODE_A_INDEXED = Mode(1 << 0)
	MODE_B_INDEXED = Mode(1 << 1)
)

// AIndexed returns true if operand a is an index into memory.
func (mode Mode) AIndexed() bool {
	return (mode & MODE_A_INDEXED) != 0
}

// BIndexed returns true if operand b is an index into memory.
func (mode Mode) BIndexed() bool {
	return (mode & MODE_B_INDEXED) != 0
}

// MakeMode creates the addressing flags for a pair of operands.
func MakeMode(a_indexed, b_indexed bool) (mode Mode) {
	if a_indexed {
		mode |= MODE_A_INDEXED
	}
	if b_indexed {
		mode |= MODE_B_INDEXED
	}
	return
}
