package cpu

import (
	"fmt"
)

// Reg is a register index.
type Reg int

const (
	REG_A  = Reg(0)  // A
	REG_B  = Reg(1)  // B
	REG_C  = Reg(2)  // C
	REG_X  = Reg(3)  // X
	REG_Y  = Reg(4)  // Y
	REG_Z  = Reg(5)  // Z
	REG_I  = Reg(6)  // I
	REG_J  = Reg(7)  // J
	REG_PC = Reg(8)  // PC
	REG_SP = Reg(9)  // SP
	REG_EX = Reg(10) // EX
	REG_IA = Reg(11) // IA

	REG_COUNT = 12 // Number of registers.
)

var regNames = [REG_COUNT]string{"A", "B", "C", "X", "Y", "Z", "I", "J", "PC", "SP", "EX", "IA"}

func (reg Reg) String() string {
	if reg < 0 || int(reg) >= len(regNames) {
		return fmt.Sprintf("Reg(%d)", int(reg))
	}
	return regNames[reg]
}

// Opcode is a basic opcode, held in the low 5 bits of an instruction word.
type Opcode int

const (
	OP_NBI = Opcode(0x00) // non-basic
	OP_SET = Opcode(0x01) // SET
	OP_ADD = Opcode(0x02) // ADD
	OP_SUB = Opcode(0x03) // SUB
	OP_MUL = Opcode(0x04) // MUL
	OP_MLI = Opcode(0x05) // MLI
	OP_DIV = Opcode(0x06) // DIV
	OP_DVI = Opcode(0x07) // DVI
	OP_MOD = Opcode(0x08) // MOD
	OP_MDI = Opcode(0x09) // MDI
	OP_AND = Opcode(0x0a) // AND
	OP_BOR = Opcode(0x0b) // BOR
	OP_XOR = Opcode(0x0c) // XOR
	OP_SHR = Opcode(0x0d) // SHR
	OP_ASR = Opcode(0x0e) // ASR
	OP_SHL = Opcode(0x0f) // SHL
	OP_IFB = Opcode(0x10) // IFB
	OP_IFC = Opcode(0x11) // IFC
	OP_IFE = Opcode(0x12) // IFE
	OP_IFN = Opcode(0x13) // IFN
	OP_IFG = Opcode(0x14) // IFG
	OP_IFA = Opcode(0x15) // IFA
	OP_IFL = Opcode(0x16) // IFL
	OP_IFU = Opcode(0x17) // IFU
	OP_ADX = Opcode(0x1a) // ADX
	OP_SBX = Opcode(0x1b) // SBX
	OP_STI = Opcode(0x1e) // STI
	OP_STD = Opcode(0x1f) // STD
)

// Special is a non-basic opcode, held in the b field when the opcode is OP_NBI.
type Special int

const (
	SPECIAL_JSR = Special(0x01) // JSR
	SPECIAL_HCF = Special(0x07) // HCF
	SPECIAL_INT = Special(0x08) // INT
	SPECIAL_IAG = Special(0x09) // IAG
	SPECIAL_IAS = Special(0x0a) // IAS
	SPECIAL_RFI = Special(0x0b) // RFI
	SPECIAL_IAQ = Special(0x0c) // IAQ
	SPECIAL_HWN = Special(0x10) // HWN
	SPECIAL_HWQ = Special(0x11) // HWQ
	SPECIAL_HWI = Special(0x12) // HWI
)

// opcodeInfo is the mnemonic and base cycle cost of a basic opcode.
type opcodeInfo struct {
	name   string
	cycles int
}

var opcodeTable = map[Opcode]opcodeInfo{
	OP_SET: {"SET", 1},
	OP_ADD: {"ADD", 2},
	OP_SUB: {"SUB", 2},
	OP_MUL: {"MUL", 2},
	OP_MLI: {"MLI", 2},
	OP_DIV: {"DIV", 3},
	OP_DVI: {"DVI", 3},
	OP_MOD: {"MOD", 3},
	OP_MDI: {"MDI", 3},
	OP_AND: {"AND", 1},
	OP_BOR: {"BOR", 1},
	OP_XOR: {"XOR", 1},
	OP_SHR: {"SHR", 1},
	OP_ASR: {"ASR", 1},
	OP_SHL: {"SHL", 1},
	OP_IFB: {"IFB", 2},
	OP_IFC: {"IFC", 2},
	OP_IFE: {"IFE", 2},
	OP_IFN: {"IFN", 2},
	OP_IFG: {"IFG", 2},
	OP_IFA: {"IFA", 2},
	OP_IFL: {"IFL", 2},
	OP_IFU: {"IFU", 2},
	OP_ADX: {"ADX", 3},
	OP_SBX: {"SBX", 3},
	OP_STI: {"STI", 2},
	OP_STD: {"STD", 2},
}

var specialTable = map[Special]opcodeInfo{
	SPECIAL_JSR: {"JSR", 3},
	SPECIAL_HCF: {"HCF", 9},
	SPECIAL_INT: {"INT", 4},
	SPECIAL_IAG: {"IAG", 1},
	SPECIAL_IAS: {"IAS", 1},
	SPECIAL_RFI: {"RFI", 3},
	SPECIAL_IAQ: {"IAQ", 2},
	SPECIAL_HWN: {"HWN", 2},
	SPECIAL_HWQ: {"HWQ", 4},
	SPECIAL_HWI: {"HWI", 4},
}

func (op Opcode) String() string {
	info, ok := opcodeTable[op]
	if !ok {
		return fmt.Sprintf("Opcode(0x%02x)", int(op))
	}
	return info.name
}

// Valid returns true if the opcode is a defined basic opcode.
func (op Opcode) Valid() bool {
	_, ok := opcodeTable[op]
	return ok
}

// Conditional returns true for the IFx family.
func (op Opcode) Conditional() bool {
	return op >= OP_IFB && op <= OP_IFU
}

// Cycles is the base cycle cost, not counting operand words.
func (op Opcode) Cycles() int {
	return opcodeTable[op].cycles
}

func (sp Special) String() string {
	info, ok := specialTable[sp]
	if !ok {
		return fmt.Sprintf("Special(0x%02x)", int(sp))
	}
	return info.name
}

// Valid returns true if the special opcode is defined.
func (sp Special) Valid() bool {
	_, ok := specialTable[sp]
	return ok
}

// Cycles is the base cycle cost, not counting operand words.
func (sp Special) Cycles() int {
	return specialTable[sp].cycles
}

// Operand field values.
const (
	OPERAND_REG          = 0x00 // A..J
	OPERAND_REG_INDIRECT = 0x08 // [A]..[J]
	OPERAND_REG_OFFSET   = 0x10 // [A+next]..[J+next]
	OPERAND_PUSH_POP     = 0x18 // PUSH as b, POP as a
	OPERAND_PEEK         = 0x19 // [SP]
	OPERAND_PICK         = 0x1a // [SP+next]
	OPERAND_SP           = 0x1b // SP
	OPERAND_PC           = 0x1c // PC
	OPERAND_EX           = 0x1d // EX
	OPERAND_INDIRECT     = 0x1e // [next]
	OPERAND_LITERAL      = 0x1f // next
	OPERAND_INLINE       = 0x20 // 0x20..0x3f: literal -1..30

	OPERAND_INLINE_BIAS = 0x21 // Inline literal value is the field minus this.
	OPERAND_INLINE_MIN  = -1
	OPERAND_INLINE_MAX  = 30
)

// OperandWords returns the number of trailing words an operand field consumes.
func OperandWords(field uint16) int {
	switch {
	case field >= OPERAND_REG_OFFSET && field < OPERAND_PUSH_POP:
		return 1
	case field == OPERAND_PICK, field == OPERAND_INDIRECT, field == OPERAND_LITERAL:
		return 1
	}
	return 0
}

// Code is a single instruction word.
type Code uint16

// MakeCode creates a basic instruction word.
func MakeCode(op Opcode, b, a uint16) Code {
	return Code(((a & 0x3f) << 10) | ((b & 0x1f) << 5) | (uint16(op) & 0x1f))
}

// MakeCodeSpecial creates a non-basic instruction word.
func MakeCodeSpecial(sp Special, a uint16) Code {
	return Code(((a & 0x3f) << 10) | ((uint16(sp) & 0x1f) << 5))
}

// Opcode returns the basic opcode field.
func (code Code) Opcode() Opcode {
	return Opcode(uint16(code) & 0x1f)
}

// B returns the b operand field.
func (code Code) B() uint16 {
	return (uint16(code) >> 5) & 0x1f
}

// A returns the a operand field.
func (code Code) A() uint16 {
	return (uint16(code) >> 10) & 0x3f
}

// Special returns the non-basic opcode selector.
func (code Code) Special() Special {
	return Special(code.B())
}

// Decode splits the word into opcode, b and a fields.
func (code Code) Decode() (op Opcode, b, a uint16) {
	return code.Opcode(), code.B(), code.A()
}

// Size returns the number of words the instruction occupies.
func (code Code) Size() int {
	size := 1 + OperandWords(code.A())
	if code.Opcode() != OP_NBI {
		size += OperandWords(code.B())
	}
	return size
}

// String returns the instruction mnemonic and raw fields.
func (code Code) String() string {
	op, b, a := code.Decode()
	if op == OP_NBI {
		return fmt.Sprintf("%v a:0x%02x", code.Special(), a)
	}
	return fmt.Sprintf("%v b:0x%02x a:0x%02x", op, b, a)
}
