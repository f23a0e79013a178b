package machine

import (
	"errors"
)

// Execute executes a decoded instruction located at IP. It returns the
// next IP, or halt if the instruction stops the program. No memory is
// modified when an error is returned.
func (eng *Engine) Execute(in Instruction) (next_ip int, halt bool, err error) {
	switch in := in.(type) {
	case Simple:
		switch in.Op {
		case OP_NOP:
			next_ip = eng.Ip + 1
		case OP_STOP:
			next_ip = eng.Ip
			halt = true
		default:
			err = ErrOpcode(in.Op)
		}
	case Arith:
		next_ip, err = eng.executeArith(in)
	case Branch:
		next_ip, err = eng.executeBranch(in)
	case Jump:
		next_ip, err = eng.executeJump(in)
	case Allocate:
		next_ip, err = eng.executeAllocate(in)
	default:
		err = ErrOpcode(in.Opcode())
	}

	return
}

// operands resolves the a and b operands of the arith and branch families.
func (eng *Engine) operands(mode Mode, a_raw, b_raw Cell) (a, b Cell, err error) {
	a, err = Resolve(a_raw, mode.AIndexed(), eng.Memory)
	if err != nil {
		return
	}

	b, err = Resolve(b_raw, mode.BIndexed(), eng.Memory)
	return
}

// executeArith computes [Result] = A op B, with 16-bit wraparound.
func (eng *Engine) executeArith(in Arith) (next_ip int, err error) {
	a, b, err := eng.operands(in.Mode, in.A, in.B)
	if err != nil {
		return
	}

	var result Cell
	switch in.Op {
	case OP_ADD:
		result = a + b
	case OP_SUB:
		result = a - b
	case OP_MUL:
		result = a * b
	case OP_DIV:
		if b == 0 {
			err = ErrDivisionByZero
			return
		}
		result = a / b
	case OP_MOD:
		if b == 0 {
			err = ErrDivisionByZero
			return
		}
		result = a % b
	default:
		err = ErrOpcode(in.Op)
		return
	}

	err = eng.Memory.Write(int(in.Result), result)
	if errors.Is(err, ErrOutOfBounds) {
		err = &ErrAccess{Access: ACCESS_WRITE, Address: in.Result}
	}
	if err != nil {
		return
	}

	next_ip = eng.Ip + OP_ADD.Width()
	return
}

// executeBranch compares A and B as unsigned values. The target is not
// validated here; a bad target faults on the next decode.
func (eng *Engine) executeBranch(in Branch) (next_ip int, err error) {
	a, b, err := eng.operands(in.Mode, in.A, in.B)
	if err != nil {
		return
	}

	var taken bool
	switch in.Op {
	case OP_IF_LT:
		taken = a < b
	case OP_IF_LE:
		taken = a <= b
	case OP_IF_EQ:
		taken = a == b
	case OP_IF_NE:
		taken = a != b
	case OP_IF_GT:
		taken = a > b
	case OP_IF_GE:
		taken = a >= b
	default:
		err = ErrOpcode(in.Op)
		return
	}

	if taken {
		next_ip = int(in.Target)
	} else {
		next_ip = eng.Ip + OP_IF_LT.Width()
	}

	return
}

// executeJump sets IP to the target, or to the cell the target indexes.
// As with branches, the new IP is validated on the next decode.
func (eng *Engine) executeJump(in Jump) (next_ip int, err error) {
	var target Cell
	switch in.Op {
	case OP_GOTO:
		target = in.Target
	case OP_GOTO_INDIRECT:
		target, err = Resolve(in.Target, true, eng.Memory)
		if err != nil {
			return
		}
	default:
		err = ErrOpcode(in.Op)
		return
	}

	next_ip = int(target)
	return
}

// executeAllocate grows memory by the number of cells stored at Variable.
func (eng *Engine) executeAllocate(in Allocate) (next_ip int, err error) {
	amount, err := Resolve(in.Variable, true, eng.Memory)
	if err != nil {
		return
	}

	size := eng.Memory.Len() + int(amount)
	if size >= MAX_CELLS {
		err = &ErrExhausted{Size: size}
		return
	}

	err = eng.Memory.Grow(int(amount))
	if err != nil {
		return
	}

	next_ip = eng.Ip + OP_ALLOCATE.Width()
	return
}
