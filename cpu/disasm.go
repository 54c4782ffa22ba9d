package cpu

import (
	"fmt"
	"strings"
)

// Disassemble renders the instruction at mem[pc], returning the text and the
// number of words it occupies. Labels from symbols prefix the text, and
// next-word values that match a label are annotated with it.
func Disassemble(mem []uint16, pc uint16, symbols map[uint16][]string) (text string, size int) {
	at := pc
	next := func() (word uint16) {
		if int(at) < len(mem) {
			word = mem[at]
		}
		at++
		size++
		return
	}

	code := Code(next())
	op, b, a := code.Decode()

	var mnemonic string
	switch {
	case op == OP_NBI && code.Special().Valid():
		mnemonic = code.Special().String()
	case op != OP_NBI && op.Valid():
		mnemonic = op.String()
	default:
		return fmt.Sprintf("DAT 0x%04x", uint16(code)), size
	}

	aText := disasmOperand(a, true, next, symbols)
	if op == OP_NBI {
		text = mnemonic + " " + aText
	} else {
		bText := disasmOperand(b, false, next, symbols)
		text = mnemonic + " " + bText + ", " + aText
	}

	for _, label := range symbols[pc] {
		text = label + ": " + text
	}

	return
}

func disasmOperand(field uint16, isA bool, next func() uint16, symbols map[uint16][]string) string {
	literal := func(value uint16) string {
		text := fmt.Sprintf("0x%X", value)
		for _, label := range symbols[value] {
			text += "=" + label
		}
		return text
	}

	switch {
	case field < OPERAND_REG_INDIRECT:
		return Reg(field).String()
	case field < OPERAND_REG_OFFSET:
		return "[" + Reg(field&7).String() + "]"
	case field < OPERAND_PUSH_POP:
		return "[" + Reg(field&7).String() + "+" + literal(next()) + "]"
	case field == OPERAND_PUSH_POP:
		if isA {
			return "POP"
		}
		return "PUSH"
	case field == OPERAND_PEEK:
		return "[SP]"
	case field == OPERAND_PICK:
		return "[SP+" + literal(next()) + "]"
	case field == OPERAND_SP:
		return "SP"
	case field == OPERAND_PC:
		return "PC"
	case field == OPERAND_EX:
		return "EX"
	case field == OPERAND_INDIRECT:
		return "[" + literal(next()) + "]"
	case field == OPERAND_LITERAL:
		return literal(next())
	}

	return fmt.Sprintf("0x%X", field-OPERAND_INLINE_BIAS)
}

// DisassembleRange renders every instruction from..to, one per line.
func DisassembleRange(mem []uint16, from, to uint16, symbols map[uint16][]string) string {
	var lines []string
	for pc := int(from); pc <= int(to); {
		text, size := Disassemble(mem, uint16(pc), symbols)
		lines = append(lines, fmt.Sprintf("%04x: %v", pc, text))
		pc += size
	}
	return strings.Join(lines, "\n")
}
