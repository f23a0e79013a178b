// Package machine implements the execution engine of the 16-bit cell machine.
//
// A single flat memory of 16-bit cells holds both the program and its
// variables. The engine keeps one instruction pointer (IP) into that memory,
// decodes the fixed-width instruction at IP, resolves its operands as either
// immediates or indexed memory cells, and executes it. Execution halts on
// the stop instruction or on the first fault.
//
// Memory only grows, through the alloc instruction, and never past the
// 65536 cell address space.
package machine
