package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpression_Simplify(t *testing.T) {
	assert := assert.New(t)

	symbols := map[string]int32{
		"TEN":  10,
		"FOUR": 4,
	}

	type factor struct {
		name  string
		value int64
		neg   bool
		mul   bool
	}

	table := [](struct {
		name     string
		factors  []factor
		value    int32
		register int
		known    bool
		errs     []error
	}){
		{"const", []factor{{value: 5}}, 5, -1, true, nil},
		{"sum", []factor{{value: 5}, {value: 3, neg: true}}, 2, -1, true, nil},
		{"label", []factor{{name: "TEN"}, {value: 1}}, 11, -1, true, nil},
		{"product", []factor{{value: 2}, {name: "TEN", mul: true}}, 20, -1, true, nil},
		{"label_product", []factor{{name: "TEN"}, {name: "FOUR", mul: true}}, 40, -1, true, nil},
		{"neg_label", []factor{{name: "FOUR", neg: true}}, -4, -1, true, nil},
		{"register", []factor{{name: "A"}, {value: 3}}, 3, int(REG_A), true, nil},
		{"stack", []factor{{name: "SP"}}, 0, OPERAND_SP, true, nil},
		{"unknown", []factor{{name: "LATER"}, {value: 2}}, 2, -1, false, nil},
		{"register_neg", []factor{{name: "B", neg: true}}, 0, int(REG_B), true, []error{ErrRegisterNegated}},
		{"register_mul", []factor{{value: 2}, {name: "B", mul: true}}, 0, int(REG_B), true, []error{ErrRegisterMultiply}},
		{"register_two", []factor{{name: "A"}, {name: "B"}}, 0, int(REG_B), true, []error{ErrRegisterMultiple}},
	}

	for _, entry := range table {
		var expr Expression
		for _, fc := range entry.factors {
			if fc.name != "" {
				expr.AddIdent(fc.name, fc.neg, fc.mul)
			} else {
				expr.AddConst(fc.value, fc.neg, fc.mul)
			}
		}

		var errs []error
		value, register := expr.Simplify(symbols, false, func(err error) { errs = append(errs, err) })
		assert.Equal(entry.value, value, entry.name)
		assert.Equal(entry.register, register, entry.name)
		assert.Equal(entry.known, expr.Known(), entry.name)
		assert.Equal(entry.errs, errs, entry.name)
	}
}

func TestExpression_Forward(t *testing.T) {
	assert := assert.New(t)

	var expr Expression
	expr.AddConst(3, false, false)
	expr.AddIdent("LATER", false, false)
	expr.AddConst(2, false, true)

	value, register := expr.Simplify(map[string]int32{}, false, nil)
	assert.Equal(int32(3), value)
	assert.Equal(-1, register)
	assert.False(expr.Known())
	assert.Equal("2*LATER", expr.String())

	value, _ = expr.Simplify(map[string]int32{"LATER": 0x100}, true, nil)
	assert.Equal(int32(0x200), value)
	assert.True(expr.Known())
	assert.Equal("0", expr.String())
}

func TestExpression_RequireKnown(t *testing.T) {
	assert := assert.New(t)

	var expr Expression
	expr.AddIdent("NOWHERE", false, false)
	expr.AddConst(7, false, false)

	var errs []error
	value, _ := expr.Simplify(nil, true, func(err error) { errs = append(errs, err) })
	assert.Equal(int32(7), value)
	assert.True(expr.Known())
	if assert.Equal(1, len(errs)) {
		var missing ErrLabelMissing
		assert.True(errors.As(errs[0], &missing))
		assert.Equal(ErrLabelMissing("NOWHERE"), missing)
	}
}
