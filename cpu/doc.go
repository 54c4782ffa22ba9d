// Package cpu implements the DCPU-16 processor and its macro assembler.
//
// The CPU has eight general registers (A, B, C, X, Y, Z, I, J), plus PC, SP,
// EX and IA, 64K words of memory, an interrupt queue, and a hardware bus of
// up to 65535 devices. Cycles are charged per instruction and forwarded to
// every installed device.
//
// The assembler is a single pass, case insensitive macro assembler with a
// deferred link step for forward references. It supports .DEFINE, .MACRO,
// .INCLUDE, .ORG and .FILL, and compile-time $(...) expressions.
package cpu
