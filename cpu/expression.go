package cpu

import (
	"fmt"
	"strings"
)

// operandNames maps register and stack operand names to operand field codes.
var operandNames = map[string]int{
	"A":    int(REG_A),
	"B":    int(REG_B),
	"C":    int(REG_C),
	"X":    int(REG_X),
	"Y":    int(REG_Y),
	"Z":    int(REG_Z),
	"I":    int(REG_I),
	"J":    int(REG_J),
	"PUSH": OPERAND_PUSH_POP,
	"POP":  OPERAND_PUSH_POP,
	"PEEK": OPERAND_PEEK,
	"PICK": OPERAND_PICK,
	"SP":   OPERAND_SP,
	"PC":   OPERAND_PC,
	"EX":   OPERAND_EX,
	"O":    OPERAND_EX,
}

// Ident is a signed reference to a register or label.
type Ident struct {
	Neg  bool
	Name string
}

// Term is a constant multiplied by zero or more identifiers.
type Term struct {
	Const   int64
	Idents  []Ident
	Product bool // Set if the term was built with '*'.
}

// Expression is a sum of terms.
type Expression struct {
	Terms []Term
}

// AddConst adds a numeric factor. With mul set it multiplies into the last
// term, otherwise it starts a new term.
func (expr *Expression) AddConst(value int64, neg bool, mul bool) {
	if neg {
		value = -value
	}

	if mul && len(expr.Terms) > 0 {
		term := &expr.Terms[len(expr.Terms)-1]
		term.Const *= value
		term.Product = true
		return
	}

	expr.Terms = append(expr.Terms, Term{Const: value})
}

// AddIdent adds an identifier factor, with the same rules as AddConst.
func (expr *Expression) AddIdent(name string, neg bool, mul bool) {
	ident := Ident{Neg: neg, Name: name}

	if mul && len(expr.Terms) > 0 {
		term := &expr.Terms[len(expr.Terms)-1]
		term.Idents = append(term.Idents, ident)
		term.Product = true
		return
	}

	expr.Terms = append(expr.Terms, Term{Const: 1, Idents: []Ident{ident}})
}

// Known returns true if nothing is left to resolve.
func (expr *Expression) Known() bool {
	return len(expr.Terms) == 0
}

// Simplify folds known labels into constants and extracts a register.
//
// Resolved terms are summed into value and removed; unresolved terms stay
// in the expression with known factors folded into their constant. register
// is the operand field code of the register referenced, or -1.
//
// Register misuse is reported and the register term dropped. With
// requireKnown, unknown identifiers are reported and count as zero.
func (expr *Expression) Simplify(symbols map[string]int32, requireKnown bool, report func(error)) (value int32, register int) {
	register = -1

	var total int64
	var kept []Term

	for _, term := range expr.Terms {
		c := term.Const
		var left []Ident
		isRegister := false

		for _, id := range term.Idents {
			if code, ok := operandNames[id.Name]; ok {
				if id.Neg {
					report(ErrRegisterNegated)
				}
				if term.Product || len(term.Idents) > 1 || c != 1 {
					report(ErrRegisterMultiply)
				}
				if register >= 0 {
					report(ErrRegisterMultiple)
				}
				register = code
				isRegister = true
				continue
			}

			if addr, ok := symbols[id.Name]; ok {
				if id.Neg {
					c *= -int64(addr)
				} else {
					c *= int64(addr)
				}
				continue
			}

			if requireKnown {
				report(ErrLabelMissing(id.Name))
				c = 0
				continue
			}

			left = append(left, id)
		}

		switch {
		case isRegister:
			// Register terms carry no value.
		case len(left) == 0:
			total += c
		default:
			kept = append(kept, Term{Const: c, Idents: left, Product: term.Product})
		}
	}

	expr.Terms = kept
	value = int32(total)

	return
}

func (expr Expression) String() string {
	var terms []string
	for _, term := range expr.Terms {
		factors := []string{fmt.Sprintf("%d", term.Const)}
		for _, id := range term.Idents {
			if id.Neg {
				factors = append(factors, "-"+id.Name)
			} else {
				factors = append(factors, id.Name)
			}
		}
		terms = append(terms, strings.Join(factors, "*"))
	}
	if len(terms) == 0 {
		return "0"
	}
	return strings.Join(terms, " + ")
}
