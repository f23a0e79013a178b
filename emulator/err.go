package emulator

import (
	"errors"
	"strconv"

	"github.com/ezrec/turing/translate"
)

var f = translate.From

var (
	ErrInputUnknown = errors.New(f("not an input variable"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return err.Err.Error()
	}
	return f("line %v %v", strconv.Itoa(err.LineNo), err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrVariable indicates a variable that could not be set.
type ErrVariable struct {
	Name string
	Err  error
}

func (err *ErrVariable) Error() string {
	return f("variable %v: %v", err.Name, err.Err)
}

func (err *ErrVariable) Unwrap() error {
	return err.Err
}
