package cpu

import (
	"errors"

	"github.com/ezrec/dcpu16/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrQueueOverflow = errors.New(f("interrupt queue overflow"))
	ErrCatchFire     = errors.New(f("halt and catch fire"))

	// Assembler errors
	ErrDefineDuplicate   = errors.New(f(".define duplicated"))
	ErrLabelDuplicate    = errors.New(f("label duplicated"))
	ErrMacroDuplicate    = errors.New(f(".macro duplicated"))
	ErrMacroLonely       = errors.New(f(".macro without .endmacro"))
	ErrMacroLonelyEnd    = errors.New(f(".endmacro without .macro"))
	ErrMacroCall         = errors.New(f("unterminated macro call"))
	ErrMacroSyntax       = errors.New(f(".macro syntax"))
	ErrExpansionDepth    = errors.New(f("expansion too deep"))
	ErrIncludeSyntax     = errors.New(f(".include requires a quoted path"))
	ErrRegisterNegated   = errors.New(f("register negated"))
	ErrRegisterMultiply  = errors.New(f("register multiplied"))
	ErrRegisterMultiple  = errors.New(f("multiple registers"))
	ErrRegisterInvalid   = errors.New(f("register invalid here"))
	ErrBracketInvalid    = errors.New(f("brackets invalid here"))
	ErrOffsetInvalid     = errors.New(f("register offset requires brackets"))
	ErrOffsetRegister    = errors.New(f("register offset on a non-base register"))
	ErrIndirectRegister  = errors.New(f("indirect on a non-base register"))
	ErrValueUnresolved   = errors.New(f("value must be known at this point"))
	ErrStringUnterminate = errors.New(f("unterminated string"))
)

// ErrLabelMissing is an unresolved forward declaration.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("unresolved forward declaration %v", string(el))
}

// ErrMetaUnknown is an unrecognized metacommand.
type ErrMetaUnknown string

func (err ErrMetaUnknown) Error() string {
	return f("unknown metacommand %v", string(err))
}

// ErrCharacter is a character that is not valid assembler input.
type ErrCharacter rune

func (err ErrCharacter) Error() string {
	return f("invalid character %q", rune(err))
}

// ErrNumber is a malformed numeric literal.
type ErrNumber string

func (err ErrNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrOpcode is an instruction word the CPU does not recognize.
type ErrOpcode struct {
	Word Code
	Pc   uint16
}

func (eo ErrOpcode) Error() string {
	return f("bad opcode %v at %v", translate.Hex(uint16(eo.Word)), translate.Hex(eo.Pc))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrSyntax locates an assembler diagnostic.
type ErrSyntax struct {
	File   string
	LineNo int
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("%v:%d %v", err.File, err.LineNo, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrMacro wraps a diagnostic raised while expanding a macro.
type ErrMacro struct {
	Macro string
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v %v", err.Macro, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
