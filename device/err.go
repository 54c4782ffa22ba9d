package device

import (
	"errors"

	"github.com/ezrec/dcpu16/translate"
)

var f = translate.From

var (
	// Keyboard errors
	ErrInputFull = errors.New(f("keyboard input full"))
)
