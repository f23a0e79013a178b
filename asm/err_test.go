package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/turing/translate"
)

func TestErrSyntax_LineNo(t *testing.T) {
	assert := assert.New(t)

	translate.Use(translate.DEFAULT_LANGUAGE)

	err := &ErrSyntax{LineNo: 12345, Line: "frob", Err: ErrInstructionInvalid}
	assert.Equal("line 12345 'frob' instruction invalid", err.Error())

	err = &ErrSyntax{LineNo: 23456, Line: "m", Err: &ErrMacro{Macro: "m", Line: 12345, Err: ErrInstructionInvalid}}
	assert.Equal("line 23456 'm' macro m line 12345 instruction invalid", err.Error())
}
