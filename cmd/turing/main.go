// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/turing/asm"
	"github.com/ezrec/turing/emulator"
	"github.com/ezrec/turing/image"
	"github.com/ezrec/turing/machine"
	"github.com/ezrec/turing/translate"
)

var f = translate.From

var (
	ErrDefineSyntax = errors.New(f("expected NAME=VALUE"))
)

// ErrOpen is a file that could not be opened.
type ErrOpen struct {
	Path string
	Err  error
}

func (err *ErrOpen) Error() string {
	return f("%v: could not open file: %v", err.Path, err.Err)
}

func (err *ErrOpen) Unwrap() error {
	return err.Err
}

// ErrExit requests an exit status, without further diagnostics.
type ErrExit struct {
	Code int
}

func (err *ErrExit) Error() string {
	return f("exit status %d", err.Code)
}

// options shared by the subcommands.
type options struct {
	verbose   bool
	lang      string
	source    bool
	faultExit bool
	defines   []string
	inputs    []string
	listing   bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("turing: ")

	err := newRootCmd().Execute()
	if err != nil {
		var exit *ErrExit
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		log.Print(err)
		os.Exit(1)
	}
}

func newRootCmd() (root *cobra.Command) {
	opts := &options{}

	root = &cobra.Command{
		Use:           "turing",
		Short:         f("16-bit cell machine toolkit"),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if len(opts.lang) != 0 {
				translate.Use(opts.lang)
			}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, f("Verbose mode"))
	root.PersistentFlags().StringVar(&opts.lang, "lang", "", f("Message language (BCP 47 tag)"))

	runCmd := &cobra.Command{
		Use:   "run IMAGE",
		Short: f("Run a program image until it halts"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(cmd.OutOrStdout(), args[0], opts)
		},
	}
	runCmd.Flags().BoolVarP(&opts.source, "source", "c", false, f("Assemble and run a source file"))
	runCmd.Flags().BoolVar(&opts.faultExit, "fault-exit", false, f("Exit with status 2 on a fault"))
	runCmd.Flags().StringArrayVarP(&opts.defines, "define", "D", nil, f("Predefine NAME=VALUE"))
	runCmd.Flags().StringArrayVarP(&opts.inputs, "input", "i", nil, f("Set input variable NAME=VALUE"))

	asmCmd := &cobra.Command{
		Use:   "asm SOURCE OUTPUT",
		Short: f("Assemble a source file into a program image"),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return assembleImage(cmd.OutOrStdout(), args[0], args[1], opts)
		},
	}
	asmCmd.Flags().StringArrayVarP(&opts.defines, "define", "D", nil, f("Predefine NAME=VALUE"))
	asmCmd.Flags().BoolVarP(&opts.listing, "listing", "l", false, f("Print the assembled listing"))

	disCmd := &cobra.Command{
		Use:   "dis IMAGE",
		Short: f("Disassemble a program image"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disassembleImage(cmd.OutOrStdout(), args[0])
		},
	}

	debugCmd := &cobra.Command{
		Use:   "debug IMAGE",
		Short: f("Step through a program interactively"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return debugProgram(cmd.InOrStdin(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	debugCmd.Flags().BoolVarP(&opts.source, "source", "c", false, f("Assemble and debug a source file"))
	debugCmd.Flags().StringArrayVarP(&opts.defines, "define", "D", nil, f("Predefine NAME=VALUE"))
	debugCmd.Flags().StringArrayVarP(&opts.inputs, "input", "i", nil, f("Set input variable NAME=VALUE"))

	root.AddCommand(runCmd, asmCmd, disCmd, debugCmd)

	return
}

// splitDefine splits a NAME=VALUE argument.
func splitDefine(arg string) (name string, value string, err error) {
	name, value, ok := strings.Cut(arg, "=")
	if !ok || len(name) == 0 {
		err = fmt.Errorf("%w: %v", ErrDefineSyntax, arg)
		return
	}

	return
}

// loadImage reads a program image from the host file system.
func loadImage(path string) (img *image.Image, err error) {
	img, err = image.Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	var path_err *fs.PathError
	if errors.As(err, &path_err) {
		err = &ErrOpen{Path: path, Err: err}
	}

	return
}

// assemble parses a source file from the host file system.
func assemble(path string, opts *options) (prog *asm.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		err = &ErrOpen{Path: path, Err: err}
		return
	}
	defer inf.Close()

	assembler := &asm.Assembler{Verbose: opts.verbose}
	for _, define := range opts.defines {
		var name, value string
		name, value, err = splitDefine(define)
		if err != nil {
			return
		}
		assembler.Predefine(name, value)
	}

	prog, err = assembler.Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	return
}

// loadProgram loads either a source file or a program image.
// An image becomes a listing with a single unnumbered opcode.
func loadProgram(path string, opts *options) (prog *asm.Program, err error) {
	if opts.source {
		return assemble(path, opts)
	}

	img, err := loadImage(path)
	if err != nil {
		return
	}

	prog = &asm.Program{
		Opcodes: []asm.Opcode{{Cells: img.Cells}},
		Labels:  map[string]int{},
	}

	return
}

// parseInputs converts NAME=VALUE arguments into input values.
func parseInputs(args []string) (inputs map[string]machine.Cell, err error) {
	inputs = make(map[string]machine.Cell, len(args))
	for _, arg := range args {
		var name, word string
		name, word, err = splitDefine(arg)
		if err != nil {
			return
		}
		var value machine.Cell
		value, err = asm.ParseCell(word)
		if err != nil {
			return
		}
		inputs[name] = value
	}

	return
}

// newEmulator loads the program and resets an emulator with its inputs.
func newEmulator(path string, opts *options) (emu *emulator.Emulator, inputs map[string]machine.Cell, err error) {
	prog, err := loadProgram(path, opts)
	if err != nil {
		return
	}

	inputs, err = parseInputs(opts.inputs)
	if err != nil {
		return
	}

	emu = emulator.NewEmulator(prog)
	emu.Verbose = opts.verbose

	err = emu.Reset(inputs)
	if err != nil {
		return
	}

	return
}

// runProgram runs a program to completion and reports how it halted.
func runProgram(out io.Writer, path string, opts *options) (err error) {
	emu, _, err := newEmulator(path, opts)
	if err != nil {
		return
	}

	fault := emu.Run()
	if fault != nil {
		translate.Fprintf(out, "%v\n", fault)
	} else {
		translate.Fprintf(out, "Program completed successfully\n")
	}

	for name, value := range emu.Outputs() {
		fmt.Fprintf(out, "%v = %v\n", name, value)
	}

	if fault != nil && opts.faultExit {
		err = &ErrExit{Code: 2}
	}

	return
}

// assembleImage assembles a source file and saves its image.
func assembleImage(out io.Writer, source string, output string, opts *options) (err error) {
	prog, err := assemble(source, opts)
	if err != nil {
		return
	}

	if opts.listing {
		for _, op := range prog.Opcodes {
			fmt.Fprintf(out, "%04x: %-24v ; %v\n", op.Ip, strings.Join(op.Words, " "), cellsText(op.Cells))
		}
	}

	img := &image.Image{Cells: prog.Binary()}
	err = img.Save(image.DirFS(filepath.Dir(output)), filepath.Base(output))
	if err != nil {
		return
	}

	return
}

// cellsText formats cells as hex words.
func cellsText(cells []machine.Cell) string {
	words := make([]string, len(cells))
	for n, cell := range cells {
		words[n] = fmt.Sprintf("%04x", uint16(cell))
	}

	return strings.Join(words, " ")
}

// disassembleImage prints a linear disassembly of an image.
func disassembleImage(out io.Writer, path string) (err error) {
	img, err := loadImage(path)
	if err != nil {
		return
	}

	for ip, in := range machine.Disassemble(img.Cells) {
		fmt.Fprintf(out, "%04x: %-24v ; %v\n", ip, in, cellsText(in.Cells()))
	}

	return
}
