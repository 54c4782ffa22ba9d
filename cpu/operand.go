package cpu

import (
	"fmt"
)

// LocationKind selects what a Location refers to.
type LocationKind int

const (
	LOCATION_REGISTER = LocationKind(iota) // register
	LOCATION_MEMORY                        // memory
	LOCATION_LITERAL                       // literal
)

// Location is a resolved operand: a register, a memory cell, or a
// read-only literal.
type Location struct {
	Kind  LocationKind
	Index uint16 // Register index or memory address.
	Value uint16 // Literal value.
}

// Register returns the location of a register.
func Register(reg Reg) Location {
	return Location{Kind: LOCATION_REGISTER, Index: uint16(reg)}
}

// Memory returns the location of a memory cell.
func Memory(addr uint16) Location {
	return Location{Kind: LOCATION_MEMORY, Index: addr}
}

// Literal returns a read-only location holding value.
func Literal(value uint16) Location {
	return Location{Kind: LOCATION_LITERAL, Value: value}
}

func (loc Location) String() string {
	switch loc.Kind {
	case LOCATION_REGISTER:
		return Reg(loc.Index).String()
	case LOCATION_MEMORY:
		return fmt.Sprintf("[0x%04x]", loc.Index)
	default:
		return fmt.Sprintf("0x%04x", loc.Value)
	}
}

// Load reads the value at a location.
func (cpu *Cpu) Load(loc Location) uint16 {
	switch loc.Kind {
	case LOCATION_REGISTER:
		return cpu.Register[loc.Index]
	case LOCATION_MEMORY:
		return cpu.Memory[loc.Index]
	default:
		return loc.Value
	}
}

// Store writes the value to a location. Stores to a literal are discarded.
func (cpu *Cpu) Store(loc Location, value uint16) {
	switch loc.Kind {
	case LOCATION_REGISTER:
		cpu.Register[loc.Index] = value
	case LOCATION_MEMORY:
		cpu.Memory[loc.Index] = value
	}
}

// nextWord consumes the word at PC, costing one cycle.
func (cpu *Cpu) nextWord() (word uint16) {
	word = cpu.Memory[cpu.Register[REG_PC]]
	cpu.Register[REG_PC]++
	cpu.Tick(1)
	return
}

// operand resolves an operand field. When skipping, PC and cycles advance as
// normal but the stack pointer is left alone.
func (cpu *Cpu) operand(field uint16, isA bool, skipping bool) (loc Location) {
	sp := cpu.Register[REG_SP]

	switch {
	case field < OPERAND_REG_INDIRECT:
		loc = Register(Reg(field))
	case field < OPERAND_REG_OFFSET:
		loc = Memory(cpu.Register[field&7])
	case field < OPERAND_PUSH_POP:
		loc = Memory(cpu.Register[field&7] + cpu.nextWord())
	case field == OPERAND_PUSH_POP:
		switch {
		case skipping:
			loc = Memory(sp)
		case isA:
			loc = Memory(sp)
			cpu.Register[REG_SP] = sp + 1
		default:
			cpu.Register[REG_SP] = sp - 1
			loc = Memory(sp - 1)
		}
	case field == OPERAND_PEEK:
		loc = Memory(sp)
	case field == OPERAND_PICK:
		loc = Memory(sp + cpu.nextWord())
	case field == OPERAND_SP:
		loc = Register(REG_SP)
	case field == OPERAND_PC:
		loc = Register(REG_PC)
	case field == OPERAND_EX:
		loc = Register(REG_EX)
	case field == OPERAND_INDIRECT:
		loc = Memory(cpu.nextWord())
	case field == OPERAND_LITERAL:
		loc = Literal(cpu.nextWord())
	default:
		loc = Literal(field - OPERAND_INLINE_BIAS)
	}

	return
}
