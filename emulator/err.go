package emulator

import (
	"github.com/ezrec/dcpu16/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc     uint16
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d (pc %v) %v", err.LineNo, translate.Hex(err.Pc), err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
