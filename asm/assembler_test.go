package asm

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/turing/machine"
)

type C = machine.Cell

func assemble(t *testing.T, program []string) (prog *Program) {
	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	return
}

func opEqual(t *testing.T, expected, opcodes []Opcode) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(opcodes))
	if len(expected) == len(opcodes) {
		for n := range len(expected) {
			assert.Equal(expected[n], opcodes[n])
		}
	}
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))
	assert.Equal(0, len(prog.Binary()))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal(fmt.Sprintf("%v", machine.MAX_CELLS), asm.Equate["MAX_CELLS"])
	assert.Equal("1", asm.Equate["MODE_A_INDEXED"])
	assert.Equal("2", asm.Equate["MODE_B_INDEXED"])
	assert.Equal("13", asm.Equate["OP_IGOTO"])
	assert.Equal("6", asm.Equate["OP_LT"])
	assert.Equal("15", asm.Equate["OP_STOP"])
}

func TestAssemblerSimple(t *testing.T) {
	program := []string{
		"nop ; nothing",
		"",
		"  stop",
	}

	prog := assemble(t, program)

	expected := []Opcode{
		{LineNo: 1, Ip: 0, Words: []string{"nop"}, Cells: []C{0}},
		{LineNo: 3, Ip: 1, Words: []string{"stop"}, Cells: []C{15}},
	}

	opEqual(t, expected, prog.Opcodes)
}

func TestAssemblerArith(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"add 7 3 4",
		"sub 7 [3] 4",
		"mul 7 3 [4]",
		"div 7 [3] [4]",
		"mod 7 -1 0xffff",
	}

	prog := assemble(t, program)

	assert.Equal([]C{
		1, 0, 7, 3, 4,
		2, 1, 7, 3, 4,
		3, 2, 7, 3, 4,
		4, 3, 7, 3, 4,
		5, 0, 7, 0xffff, 0xffff,
	}, prog.Binary())
	assert.Equal(20, prog.Opcodes[4].Ip)
}

func TestAssemblerBranch(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"top:",
		"if lt? 1 2 top",
		"if le? [1] 2 top",
		"if eq? 1 [2] end",
		"if ne? 1 2 end",
		"if gt? 1 2 end",
		"if ge? 1 2 end",
		"end: goto top",
		"goto [vec]",
		"vec: .word end",
	}

	prog := assemble(t, program)

	assert.Equal(0, prog.Labels["top"])
	assert.Equal(30, prog.Labels["end"])
	assert.Equal(34, prog.Labels["vec"])
	assert.Equal([]C{
		6, 0, 1, 2, 0,
		7, 1, 1, 2, 0,
		8, 2, 1, 2, 30,
		9, 0, 1, 2, 30,
		10, 0, 1, 2, 30,
		11, 0, 1, 2, 30,
		12, 0,
		13, 34,
		30,
	}, prog.Binary())

	// Forward references are patched after the pass.
	op := prog.Opcodes[2]
	assert.Equal([]Link{{Index: 4, Label: "end"}}, op.Links)
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"alloc count",
		"stop",
		".var count 3",
		".var total",
		".array buf 4",
		".zero 2",
		".word 'A' '\\n' ~0 buf",
		".input count",
		".output total",
		".output buf",
	}

	prog := assemble(t, program)

	assert.Equal(3, prog.Labels["count"])
	assert.Equal(4, prog.Labels["total"])
	assert.Equal(5, prog.Labels["buf"])
	assert.Equal([]string{"count"}, prog.Inputs)
	assert.Equal([]string{"total", "buf"}, prog.Outputs)
	assert.Equal([]C{
		14, 3,
		15,
		3,
		0,
		0, 0, 0, 0,
		0, 0,
		65, 10, 0xffff, 5,
	}, prog.Binary())
}

func TestAssemblerEquate(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("LIMIT", "10")

	program := []string{
		".equ STEP 2",
		"add STEP [STEP] LIMIT",
		"add 0 $(LIMIT * 3 + STEP) $(OP_STOP)",
		".word LINENO",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)

	assert.Equal([]C{
		1, 1, 2, 2, 10,
		1, 0, 0, 32, 15,
		4,
	}, prog.Binary())
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".macro inc VAR",
		"add VAR [VAR] 1",
		".endm",
		".macro spin",
		"@loop: goto @loop",
		".endm",
		"inc x",
		"inc x",
		"spin",
		"x: .word 0",
	}

	prog := assemble(t, program)

	assert.Equal(12, prog.Labels["x"])
	assert.Equal(10, prog.Labels["spin_5_loop"])
	assert.Equal([]C{
		1, 1, 12, 12, 1,
		1, 1, 12, 12, 1,
		12, 10,
		0,
	}, prog.Binary())
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		program []string
		err     error
		lineno  int
	}{
		{[]string{"frob"}, ErrInstructionInvalid, 1},
		{[]string{"nop 1"}, ErrOpcodeExtraArgs, 1},
		{[]string{"add 1 2"}, ErrOpcodeValueMissing, 1},
		{[]string{"add [1] 2 3"}, ErrTargetInvalid, 1},
		{[]string{"if zz? 1 2 3"}, ErrOpcodeInvalid, 1},
		{[]string{"nop", "goto nowhere"}, ErrLabelMissing("nowhere"), 2},
		{[]string{"a:", "a:"}, ErrLabelDuplicate, 2},
		{[]string{"1a: nop"}, ErrLabelSyntax, 1},
		{[]string{".equ X 1", ".equ X 2"}, ErrEquateDuplicate, 2},
		{[]string{".equ X"}, ErrEquateSyntax, 1},
		{[]string{".macro m", ".macro n"}, ErrMacroNesting, 2},
		{[]string{".macro m"}, ErrMacroLonely, 1},
		{[]string{".endm"}, ErrMacroLonelyEndm, 1},
		{[]string{".macro m", ".endm", ".macro m"}, ErrMacroDuplicate, 3},
		{[]string{".array a 0xffff"}, ErrArraySize, 1},
		{[]string{".input a", ".input a"}, ErrInputDuplicate, 2},
		{[]string{".output a", ".output a"}, ErrOutputDuplicate, 2},
		{[]string{".word 0x10000"}, ErrParseRange("0x10000"), 1},
		{[]string{".word -32769"}, ErrParseRange("-32769"), 1},
		{[]string{".word 1+"}, ErrParseValue("1+"), 1},
		{[]string{".zero 0xfff0", ".zero 0x10"}, ErrProgramTooLarge, 2},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(strings.Join(entry.program, "\n")))
		assert.ErrorIs(err, entry.err, entry.program)

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.program) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.program)
		}
	}
}

func TestAssemblerUndeclared(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader(".output missing\nstop\n"))
	assert.ErrorIs(err, ErrLabelMissing("missing"))
}

func TestAssemblerMacroError(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".macro bad",
		"frob",
		".endm",
		"bad",
	}

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.ErrorIs(err, ErrInstructionInvalid)

	var macro *ErrMacro
	if assert.True(errors.As(err, &macro)) {
		assert.Equal("bad", macro.Macro)
		assert.Equal(2, macro.Line)
	}
	assert.Equal("line 4 'bad' macro bad line 2 instruction invalid", err.Error())
}

func TestAssemblerRun(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"loop: if ge? [i] [n] done",
		"  add sum [sum] [i]",
		"  add i [i] 1",
		"  goto loop",
		"done: stop",
		".var i 0",
		".var n 5",
		".var sum",
		".output sum",
	}

	prog := assemble(t, program)

	eng := machine.NewEngine(prog.Binary())
	assert.NoError(eng.Run())
	assert.Equal(machine.STATE_SUCCESS, eng.State)

	values := map[string]C{}
	for name, value := range prog.Variables(eng.Memory, prog.Outputs) {
		values[name] = value
	}
	assert.Equal(map[string]C{"sum": 10}, values)
}
