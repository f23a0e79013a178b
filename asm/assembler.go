// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package asm implements the assembler for the 16-bit cell machine.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/turing/machine"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

func init() {
	maps.Insert(sysEquate, machine.Defines())
}

var labelRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Assembler is a single pass macro assembler for the cell machine.
// It is the compilation context: labels, equates, macros, and the
// declared input and output variables.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
	Input     []string            // Declared input variables.
	Output    []string            // Declared output variables.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// ParseCell parses a number, optionally prefixed by ~ for inversion.
// Values from -0x8000 to 0xffff fit in a cell.
func ParseCell(word string) (value machine.Cell, err error) {
	invert := false
	if strings.HasPrefix(word, "~") {
		invert = true
		word = word[1:]
	}
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word)
		return
	}
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 > 0xffff || v64 < -0x8000 {
		err = ErrParseRange(word)
		return
	}

	value = machine.Cell(uint16(v64))

	if invert {
		value = ^value
	}

	return
}

// reference returns the value of a word, or the label to link it to.
func (asm *Assembler) reference(word string) (value machine.Cell, label string, err error) {
	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	value, err = ParseCell(word)
	if err == nil {
		return
	}

	if labelRegexp.MatchString(word) {
		err = nil
		label = word
		return
	}

	if _, ok := err.(ErrParseRange); !ok {
		err = ErrParseValue(word)
	}
	return
}

// operand parses an immediate operand, or an [indexed] one.
func (asm *Assembler) operand(word string) (value machine.Cell, indexed bool, label string, err error) {
	if len(word) > 2 && strings.HasPrefix(word, "[") && strings.HasSuffix(word, "]") {
		indexed = true
		word = word[1 : len(word)-1]
	}

	value, label, err = asm.reference(word)
	return
}

// address parses an operand that is always an address.
func (asm *Assembler) address(word string) (value machine.Cell, label string, err error) {
	if strings.HasPrefix(word, "[") {
		err = ErrTargetInvalid
		return
	}

	return asm.reference(word)
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value machine.Cell, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var cell machine.Cell
		cell, err = ParseCell(str)
		if err != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt(int(cell))
	}
	for key, ip := range asm.Label {
		pred[key] = starlark.MakeInt(ip)
	}
	err = nil

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 > 0xffff || st_int64 < -0x8000 {
		err = ErrParseExpression(expr)
		return
	}
	value = machine.Cell(uint16(st_int64))
	return
}

var (
	charRegexp  = regexp.MustCompile(`'\\?[^']'`)
	parenRegexp = regexp.MustCompile(`\$\([^\$]*\)`)
)

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = charRegexp.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = parenRegexp.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		err = asm.defineLabel(words[0][:len(words[0])-1])
		if err != nil {
			return
		}
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// defineLabel binds a label to the current address.
func (asm *Assembler) defineLabel(label string) (err error) {
	if !labelRegexp.MatchString(label) {
		err = ErrLabelSyntax
		return
	}

	_, ok := asm.Label[label]
	if ok {
		err = ErrLabelDuplicate
		return
	}

	if asm.Verbose {
		log.Printf("label %v = 0x%04x", label, asm.currentIp())
	}

	asm.Label[label] = asm.currentIp()
	return
}

// currentIp gets the current Ip
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + len(last.Cells)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Opcode = asm.Opcode[:0]
	asm.Label = make(map[string]int, 16)
	asm.Macro = make(map[string](*Macro))
	asm.Equate = maps.Clone(sysEquate)
	asm.Input = nil
	asm.Output = nil
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
				Args:   words[2:],
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	if asm.currentIp() >= machine.MAX_CELLS {
		err = ErrProgramTooLarge
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]
		for _, link := range op.Links {
			ip, ok := asm.Label[link.Label]
			if !ok {
				lineno = op.LineNo
				line = strings.Join(op.Words, " ")
				err = ErrLabelMissing(link.Label)
				return
			}
			op.Cells[link.Index] = machine.Cell(ip)
		}
	}

	for _, name := range slices.Concat(asm.Input, asm.Output) {
		_, ok := asm.Label[name]
		if !ok {
			line = name
			err = ErrLabelMissing(name)
			return
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
		Labels:  maps.Clone(asm.Label),
		Inputs:  slices.Clone(asm.Input),
		Outputs: slices.Clone(asm.Output),
	}

	return
}

// arithMap maps arithmetic-and-assign opcode names.
var arithMap = map[string]machine.Opcode{
	"add": machine.OP_ADD,
	"sub": machine.OP_SUB,
	"mul": machine.OP_MUL,
	"div": machine.OP_DIV,
	"mod": machine.OP_MOD,
}

// condMap maps conditional branch comparisons.
var condMap = map[string]machine.Opcode{
	"lt?": machine.OP_IF_LT,
	"le?": machine.OP_IF_LE,
	"eq?": machine.OP_IF_EQ,
	"ne?": machine.OP_IF_NE,
	"gt?": machine.OP_IF_GT,
	"ge?": machine.OP_IF_GE,
}

// wantArgs checks the word count of an instruction.
func wantArgs(words []string, count int) (err error) {
	switch {
	case len(words) < count:
		err = ErrOpcodeValueMissing
	case len(words) > count:
		err = ErrOpcodeExtraArgs
	}
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var cells []machine.Cell
	var links []Link

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	emit := func(value machine.Cell, label string) {
		if len(label) != 0 {
			links = append(links, Link{Index: len(cells), Label: label})
		}
		cells = append(cells, value)
	}

	defer func() {
		if err != nil || len(cells) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Cells: cells, Links: links}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	if arith, ok := arithMap[words[0]]; ok {
		// op DST A B
		err = wantArgs(words, 4)
		if err != nil {
			return
		}
		dst, dst_label, err := asm.address(words[1])
		if err != nil {
			return err
		}
		a, a_indexed, a_label, err := asm.operand(words[2])
		if err != nil {
			return err
		}
		b, b_indexed, b_label, err := asm.operand(words[3])
		if err != nil {
			return err
		}
		emit(machine.Cell(arith), "")
		emit(machine.Cell(machine.MakeMode(a_indexed, b_indexed)), "")
		emit(dst, dst_label)
		emit(a, a_label)
		emit(b, b_label)
		return nil
	}

	switch words[0] {
	case "nop":
		err = wantArgs(words, 1)
		if err != nil {
			return
		}
		emit(machine.Cell(machine.OP_NOP), "")
	case "stop":
		err = wantArgs(words, 1)
		if err != nil {
			return
		}
		emit(machine.Cell(machine.OP_STOP), "")
	case "if":
		// if cmp? A B TARGET
		err = wantArgs(words, 5)
		if err != nil {
			return
		}
		cond, ok := condMap[words[1]]
		if !ok {
			err = ErrOpcodeInvalid
			return
		}
		a, a_indexed, a_label, err := asm.operand(words[2])
		if err != nil {
			return err
		}
		b, b_indexed, b_label, err := asm.operand(words[3])
		if err != nil {
			return err
		}
		target, target_label, err := asm.address(words[4])
		if err != nil {
			return err
		}
		emit(machine.Cell(cond), "")
		emit(machine.Cell(machine.MakeMode(a_indexed, b_indexed)), "")
		emit(a, a_label)
		emit(b, b_label)
		emit(target, target_label)
	case "goto":
		// goto TARGET, goto [ADDR]
		err = wantArgs(words, 2)
		if err != nil {
			return
		}
		target, indexed, label, err := asm.operand(words[1])
		if err != nil {
			return err
		}
		op := machine.OP_GOTO
		if indexed {
			op = machine.OP_GOTO_INDIRECT
		}
		emit(machine.Cell(op), "")
		emit(target, label)
	case "igoto", "alloc":
		err = wantArgs(words, 2)
		if err != nil {
			return
		}
		addr, label, err := asm.address(words[1])
		if err != nil {
			return err
		}
		op := machine.OP_GOTO_INDIRECT
		if words[0] == "alloc" {
			op = machine.OP_ALLOCATE
		}
		emit(machine.Cell(op), "")
		emit(addr, label)
	case ".word":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			value, label, err := asm.reference(word)
			if err != nil {
				return err
			}
			emit(value, label)
		}
	case ".zero":
		err = wantArgs(words, 2)
		if err != nil {
			return
		}
		var count machine.Cell
		count, err = ParseCell(words[1])
		if err != nil {
			return
		}
		for range int(count) {
			emit(0, "")
		}
	case ".var":
		// .var NAME [INIT]
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		var initial machine.Cell
		var label string
		if len(words) == 3 {
			initial, label, err = asm.reference(words[2])
			if err != nil {
				return
			}
		}
		err = asm.defineLabel(words[1])
		if err != nil {
			return
		}
		emit(initial, label)
	case ".array":
		// .array NAME SIZE
		err = wantArgs(words, 3)
		if err != nil {
			return
		}
		var size machine.Cell
		size, err = ParseCell(words[2])
		if err != nil {
			return
		}
		if size >= 0xffff {
			err = ErrArraySize
			return
		}
		err = asm.defineLabel(words[1])
		if err != nil {
			return
		}
		for range int(size) {
			emit(0, "")
		}
	case ".input", ".output":
		err = wantArgs(words, 2)
		if err != nil {
			return
		}
		name := words[1]
		if !labelRegexp.MatchString(name) {
			err = ErrLabelSyntax
			return
		}
		if words[0] == ".input" {
			if slices.Contains(asm.Input, name) {
				err = ErrInputDuplicate
				return
			}
			asm.Input = append(asm.Input, name)
		} else {
			if slices.Contains(asm.Output, name) {
				err = ErrOutputDuplicate
				return
			}
			asm.Output = append(asm.Output, name)
		}
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
