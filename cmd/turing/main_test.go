package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/turing/emulator"
	"github.com/ezrec/turing/image"
	"github.com/ezrec/turing/machine"
)

func writeFile(t *testing.T, name string, data []byte) (path string) {
	path = filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, data, 0o644)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func execute(args ...string) (output string, err error) {
	buf := &bytes.Buffer{}

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(buf)
	root.SetErr(buf)

	err = root.Execute()
	output = buf.String()

	return
}

func TestRun(t *testing.T) {
	assert := assert.New(t)

	stop := writeFile(t, "stop.bin", []byte{0x0f, 0x00})

	// div [7] 1 [6], where cell 6 is zero.
	div := writeFile(t, "div.bin", []byte{
		0x04, 0x00, 0x02, 0x00, 0x07, 0x00, 0x01, 0x00, 0x06, 0x00,
		0x0f, 0x00, 0x00, 0x00, 0x00, 0x00,
	})

	table := []struct {
		args   []string
		output string
		exit   int
	}{
		{[]string{"run", stop}, "Program completed successfully\n", 0},
		{[]string{"run", "--fault-exit", stop}, "Program completed successfully\n", 0},
		{[]string{"run", div}, "ip 0x0000: Division by zero\n", 0},
		{[]string{"run", "--fault-exit", div}, "ip 0x0000: Division by zero\n", 2},
	}

	for _, entry := range table {
		output, err := execute(entry.args...)
		assert.Equal(entry.output, output, entry.args)
		if entry.exit == 0 {
			assert.NoError(err, entry.args)
		} else {
			var exit *ErrExit
			if assert.True(errors.As(err, &exit), entry.args) {
				assert.Equal(entry.exit, exit.Code, entry.args)
			}
		}
	}
}

func TestRunErrors(t *testing.T) {
	assert := assert.New(t)

	empty := writeFile(t, "empty.bin", []byte{})

	_, err := execute("run", empty)
	assert.ErrorIs(err, image.ErrEmpty)

	_, err = execute("run", filepath.Join(t.TempDir(), "missing.bin"))
	var open *ErrOpen
	assert.True(errors.As(err, &open))
	assert.ErrorIs(err, os.ErrNotExist)

	_, err = execute("run")
	assert.Error(err)
}

func TestRunSource(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "fact.tur", []byte(strings.Join([]string{
		"      add acc 1 0",
		"loop: if le? [n] 1 done",
		"      mul acc [acc] [n]",
		"      sub n [n] 1",
		"      goto loop",
		"done: stop",
		".var n START",
		".var acc",
		".input n",
		".output acc",
	}, "\n")))

	output, err := execute("run", "-c", "-D", "START=3", source)
	assert.NoError(err)
	assert.Equal("Program completed successfully\nacc = 6\n", output)

	output, err = execute("run", "-c", "-D", "START=3", "-i", "n=5", source)
	assert.NoError(err)
	assert.Equal("Program completed successfully\nacc = 120\n", output)

	_, err = execute("run", "-c", source)
	assert.Error(err)

	_, err = execute("run", "-c", "-D", "START", source)
	assert.ErrorIs(err, ErrDefineSyntax)
}

func TestRunSourceFault(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "fault.tur", []byte("nop\ngoto [far]\nfar: .word 0x1000\n"))

	output, err := execute("run", "-c", "--fault-exit", source)
	assert.Equal("ip 0x1000: Program completed abnormal\n", output)
	var exit *ErrExit
	assert.True(errors.As(err, &exit))
}

func TestAsmDis(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "prog.tur", []byte("add x 3 4\nstop\n.var x\n"))
	binary := filepath.Join(t.TempDir(), "prog.bin")

	output, err := execute("asm", "-l", source, binary)
	assert.NoError(err)
	assert.Contains(output, "0000: add x 3 4 ")
	assert.Contains(output, "; 0001 0000 0006 0003 0004\n")

	data, err := os.ReadFile(binary)
	assert.NoError(err)
	assert.Equal([]byte{
		0x01, 0x00, 0x00, 0x00, 0x06, 0x00, 0x03, 0x00, 0x04, 0x00,
		0x0f, 0x00,
		0x00, 0x00,
	}, data)

	output, err = execute("dis", binary)
	assert.NoError(err)
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	if assert.Equal(3, len(lines)) {
		assert.True(strings.HasPrefix(lines[0], "0000: add 6 3 4 "))
		assert.True(strings.HasPrefix(lines[1], "0005: stop "))
		assert.True(strings.HasPrefix(lines[2], "0006: nop "))
	}

	output, err = execute("run", binary)
	assert.NoError(err)
	assert.Equal("Program completed successfully\n", output)
}

func TestDebugger(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "prog.tur", []byte("add x 3 4\nstop\n.var x\n"))

	emu, inputs, err := newEmulator(source, &options{source: true})
	assert.NoError(err)

	buf := &bytes.Buffer{}
	dbg := &debugger{emu: emu, inputs: inputs, out: buf}

	do := func(line string) (output string, quit bool, err error) {
		buf.Reset()
		quit, err = dbg.Do(line)
		output = buf.String()
		return
	}

	output, quit, err := do("ip")
	assert.NoError(err)
	assert.False(quit)
	assert.True(strings.HasPrefix(output, "0000: add 6 3 4 "))
	assert.True(strings.HasSuffix(output, "; line 1\n"))

	output, _, err = do("dis 2")
	assert.NoError(err)
	assert.Equal(2, strings.Count(output, "\n"))

	output, _, err = do("step")
	assert.NoError(err)
	assert.True(strings.HasPrefix(output, "0005: stop "))

	output, _, err = do("mem 6")
	assert.NoError(err)
	assert.Equal("0006: 0007\n", output)

	output, _, err = do("mem 0 20")
	assert.NoError(err)
	assert.Equal("0000: 0001 0000 0006 0003 0004 000f 0007\n", output)

	output, _, err = do("continue")
	assert.NoError(err)
	assert.Equal("Program completed successfully\n", output)

	output, _, err = do("step 3")
	assert.NoError(err)
	assert.Equal("Program completed successfully\n", output)

	output, _, err = do("reset")
	assert.NoError(err)
	assert.True(strings.HasPrefix(output, "0000: add 6 3 4 "))

	output, _, err = do("mem 6")
	assert.NoError(err)
	assert.Equal("0006: 0000\n", output)

	output, _, err = do("")
	assert.NoError(err)
	assert.Equal("", output)

	_, _, err = do("bogus")
	assert.ErrorIs(err, ErrCommand)

	_, _, err = do("step x")
	assert.ErrorIs(err, ErrCommandUsage)

	_, _, err = do("mem")
	assert.ErrorIs(err, ErrCommandUsage)

	_, quit, err = do("quit")
	assert.NoError(err)
	assert.True(quit)
}

func TestDebuggerPastEnd(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "far.tur", []byte("goto 0x100\n"))

	emu, inputs, err := newEmulator(source, &options{source: true})
	assert.NoError(err)

	buf := &bytes.Buffer{}
	dbg := &debugger{emu: emu, inputs: inputs, out: buf}

	_, err = dbg.Do("step")
	assert.NoError(err)
	assert.Equal("0100: Program completed abnormal\n", buf.String())

	buf.Reset()
	_, err = dbg.Do("step")
	assert.NoError(err)
	assert.Equal("ip 0x0100: Program completed abnormal\n", buf.String())
}

func TestRunUnknownInput(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "in.tur", []byte("stop\n.var n\n.input n\n"))

	_, err := execute("run", "-c", "-i", "n=1", source)
	assert.NoError(err)

	_, err = execute("run", "-c", "-i", "m=1", source)
	assert.ErrorIs(err, emulator.ErrInputUnknown)
}

func TestRunTooLarge(t *testing.T) {
	assert := assert.New(t)

	huge := writeFile(t, "huge.bin", make([]byte, machine.MAX_CELLS*2))

	_, err := execute("run", huge)
	assert.ErrorIs(err, machine.ErrCapacityExceeded)
	var open *ErrOpen
	assert.False(errors.As(err, &open))
}
