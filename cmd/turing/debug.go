package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/ezrec/turing/asm"
	"github.com/ezrec/turing/emulator"
	"github.com/ezrec/turing/machine"
	"github.com/ezrec/turing/translate"
)

var (
	ErrCommand      = errors.New(f("unknown command, try 'help'"))
	ErrCommandUsage = errors.New(f("invalid arguments"))
)

const debugHelp = `step [N]           execute N instructions (default 1)
continue           run until the program halts
ip                 show the instruction pointer
mem ADDR [COUNT]   dump COUNT cells from ADDR (default 8)
dis [COUNT]        disassemble COUNT instructions at ip (default 1)
state              show the engine state
reset              reload the program
quit               leave the debugger
`

var debugCompleter = readline.NewPrefixCompleter(
	readline.PcItem("step"),
	readline.PcItem("continue"),
	readline.PcItem("ip"),
	readline.PcItem("mem"),
	readline.PcItem("dis"),
	readline.PcItem("state"),
	readline.PcItem("reset"),
	readline.PcItem("quit"),
	readline.PcItem("help"),
)

// debugger executes interactive commands against an emulator.
type debugger struct {
	emu    *emulator.Emulator
	inputs map[string]machine.Cell
	out    io.Writer
}

// count parses an optional count argument.
func count(args []string, index int, fallback int) (n int, err error) {
	if len(args) <= index {
		n = fallback
		return
	}

	n, err = strconv.Atoi(args[index])
	if err != nil || n < 0 {
		err = ErrCommandUsage
		return
	}

	return
}

// where prints the next instruction.
func (dbg *debugger) where() {
	emu := dbg.emu

	if emu.Halted() {
		if emu.Fault != nil {
			translate.Fprintf(dbg.out, "%v\n", emu.Fault)
		} else {
			translate.Fprintf(dbg.out, "Program completed successfully\n")
		}
		return
	}

	if emu.Ip() >= emu.Memory.Len() {
		fmt.Fprintf(dbg.out, "%04x: %v\n", emu.Ip(), machine.ErrAbnormalTermination)
		return
	}

	in, err := machine.Decode(emu.Memory.Cells()[emu.Ip():])
	if err != nil {
		fmt.Fprintf(dbg.out, "%04x: %v\n", emu.Ip(), err)
		return
	}

	if lineno := emu.LineNo(); lineno != 0 {
		fmt.Fprintf(dbg.out, "%04x: %-24v ; line %d\n", emu.Ip(), in, lineno)
	} else {
		fmt.Fprintf(dbg.out, "%04x: %v\n", emu.Ip(), in)
	}
}

// step ticks the emulator up to n times, stopping at a halt.
func (dbg *debugger) step(n int) {
	for range n {
		done, _ := dbg.emu.Tick()
		if done {
			break
		}
	}

	dbg.where()
}

// Do executes a single debugger command line.
func (dbg *debugger) Do(line string) (quit bool, err error) {
	emu := dbg.emu

	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	switch words[0] {
	case "step", "s":
		var n int
		n, err = count(words, 1, 1)
		if err != nil {
			return
		}
		dbg.step(n)
	case "continue", "c":
		for !emu.Halted() {
			emu.Tick()
		}
		dbg.where()
	case "ip":
		dbg.where()
	case "mem", "m":
		if len(words) < 2 || len(words) > 3 {
			err = ErrCommandUsage
			return
		}
		var addr machine.Cell
		addr, err = asm.ParseCell(words[1])
		if err != nil {
			return
		}
		var n int
		n, err = count(words, 2, 8)
		if err != nil {
			return
		}
		dbg.dump(int(addr), n)
	case "dis", "d":
		var n int
		n, err = count(words, 1, 1)
		if err != nil {
			return
		}
		dbg.disassemble(n)
	case "state":
		fmt.Fprint(dbg.out, emu.Engine.String())
		for name, value := range emu.Outputs() {
			fmt.Fprintf(dbg.out, "%v = %v\n", name, value)
		}
	case "reset":
		err = emu.Reset(dbg.inputs)
		if err != nil {
			return
		}
		dbg.where()
	case "quit", "q", "exit":
		quit = true
	case "help", "?":
		fmt.Fprint(dbg.out, debugHelp)
	default:
		err = ErrCommand
	}

	return
}

// dump prints memory cells, eight per row.
func (dbg *debugger) dump(addr int, n int) {
	cells := dbg.emu.Memory.Cells()
	end := min(addr+n, len(cells))

	for row := addr; row < end; row += 8 {
		fmt.Fprintf(dbg.out, "%04x: %v\n", row, cellsText(cells[row:min(row+8, end)]))
	}
}

// disassemble prints up to n instructions starting at ip.
func (dbg *debugger) disassemble(n int) {
	emu := dbg.emu
	cells := emu.Memory.Cells()
	ip := min(emu.Ip(), len(cells))

	for offset, in := range machine.Disassemble(cells[ip:]) {
		if n == 0 {
			break
		}
		n--
		fmt.Fprintf(dbg.out, "%04x: %-24v ; %v\n", ip+offset, in, cellsText(in.Cells()))
	}
}

// debugProgram runs the interactive debugger.
func debugProgram(in io.Reader, out io.Writer, path string, opts *options) (err error) {
	emu, inputs, err := newEmulator(path, opts)
	if err != nil {
		return
	}

	isTerminal := func() bool {
		file, ok := in.(*os.File)
		return ok && term.IsTerminal(int(file.Fd()))
	}

	prompt := "(turing) "
	if !isTerminal() {
		prompt = ""
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:         prompt,
		AutoComplete:   debugCompleter,
		Stdin:          io.NopCloser(in),
		Stdout:         out,
		FuncIsTerminal: isTerminal,
	})
	if err != nil {
		return
	}
	defer rl.Close()

	dbg := &debugger{emu: emu, inputs: inputs, out: out}
	dbg.where()

	for {
		var line string
		line, err = rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			err = nil
			continue
		}
		if errors.Is(err, io.EOF) {
			err = nil
			break
		}
		if err != nil {
			return
		}

		quit, cmd_err := dbg.Do(line)
		if cmd_err != nil {
			translate.Fprintf(out, "%v\n", cmd_err)
		}
		if quit {
			break
		}
	}

	return
}
