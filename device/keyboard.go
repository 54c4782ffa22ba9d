package device

import (
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/dcpu16/cpu"
)

const (
	KEYBOARD_CLEAR   = 0 // Clear the key buffer.
	KEYBOARD_GET     = 1 // C = next key in the buffer, or 0 if empty.
	KEYBOARD_PRESSED = 2 // C = 1 if key B is down, else 0.
	KEYBOARD_IRQ     = 3 // Interrupt with message B on key events. B == 0 disables.

	KEYBOARD_CYCLES_PER_POLL = 10000 // CPU cycles (times 3) between input polls.
	KEYBOARD_INPUT_LIMIT     = 64    // Events buffered between polls.
)

// Key codes
const (
	KEY_BACKSPACE = 0x10
	KEY_RETURN    = 0x11
	KEY_INSERT    = 0x12
	KEY_DELETE    = 0x13
	KEY_ESCAPE    = 0x1b
	KEY_UP        = 0x80
	KEY_DOWN      = 0x81
	KEY_LEFT      = 0x82
	KEY_RIGHT     = 0x83
	KEY_SHIFT     = 0x90
	KEY_CONTROL   = 0x91
)

var keyboardIdentity = Identity{Id: 0x30cf7406, Version: 1}

var _keyboard_defines = func() (defines map[string]string) {
	defines = keyboardIdentity.defines("KEYBOARD")
	for name, value := range map[string]int{
		"KEYBOARD_CLEAR":   KEYBOARD_CLEAR,
		"KEYBOARD_GET":     KEYBOARD_GET,
		"KEYBOARD_PRESSED": KEYBOARD_PRESSED,
		"KEYBOARD_IRQ":     KEYBOARD_IRQ,
		"KEY_BACKSPACE":    KEY_BACKSPACE,
		"KEY_RETURN":       KEY_RETURN,
		"KEY_INSERT":       KEY_INSERT,
		"KEY_DELETE":       KEY_DELETE,
		"KEY_ESCAPE":       KEY_ESCAPE,
		"KEY_UP":           KEY_UP,
		"KEY_DOWN":         KEY_DOWN,
		"KEY_LEFT":         KEY_LEFT,
		"KEY_RIGHT":        KEY_RIGHT,
		"KEY_SHIFT":        KEY_SHIFT,
		"KEY_CONTROL":      KEY_CONTROL,
	} {
		defines[name] = fmt.Sprintf("0x%02x", value)
	}
	return
}()

// KeyEvent is a key transition, or a request to stop the machine.
type KeyEvent struct {
	Code uint8 // Key code. Zero for keys with no code.
	Down bool  // Set on press, clear on release.
	Quit bool  // Halt the CPU.
}

// Keyboard is the generic keyboard. Events are posted from any goroutine,
// and are picked up by the CPU on its next input poll.
type Keyboard struct {
	Identity

	input   chan KeyEvent
	buffer  [256]uint8
	head    uint8
	tail    uint8
	state   [256]bool
	counter uint32
	irq     uint16
}

var _ cpu.Device = (*Keyboard)(nil)

// NewKeyboard returns a keyboard with an empty buffer.
func NewKeyboard() *Keyboard {
	return &Keyboard{
		Identity: keyboardIdentity,
		input:    make(chan KeyEvent, KEYBOARD_INPUT_LIMIT),
	}
}

// Defines returns the assembler defines for the keyboard.
func (kb *Keyboard) Defines() iter.Seq2[string, string] {
	return maps.All(_keyboard_defines)
}

// Post queues an event for the next poll. A quit event is never refused:
// if the input is full, the oldest queued keys are dropped to make room.
func (kb *Keyboard) Post(event KeyEvent) (err error) {
	for {
		select {
		case kb.input <- event:
			return
		default:
		}

		if !event.Quit {
			err = ErrInputFull
			return
		}

		select {
		case <-kb.input:
		default:
		}
	}
}

// Reset clears the key buffer, the key state and the interrupt message.
// Events posted but not yet polled are kept.
func (kb *Keyboard) Reset() {
	kb.head = 0
	kb.tail = 0
	clear(kb.state[:])
	kb.counter = 0
	kb.irq = 0
}

func (kb *Keyboard) Interrupt(host cpu.Host) {
	switch host.Reg(cpu.REG_A) {
	case KEYBOARD_CLEAR:
		kb.head = kb.tail
	case KEYBOARD_GET:
		var key uint16
		if kb.head != kb.tail {
			key = uint16(kb.buffer[kb.tail])
			kb.tail++
		}
		host.SetReg(cpu.REG_C, key)
	case KEYBOARD_PRESSED:
		var down uint16
		code := host.Reg(cpu.REG_B)
		if code < uint16(len(kb.state)) && kb.state[code] {
			down = 1
		}
		host.SetReg(cpu.REG_C, down)
	case KEYBOARD_IRQ:
		kb.irq = host.Reg(cpu.REG_B)
	}
}

func (kb *Keyboard) Tick(host cpu.Host) {
	for kb.counter += 3; kb.counter >= KEYBOARD_CYCLES_PER_POLL; kb.counter -= KEYBOARD_CYCLES_PER_POLL {
		kb.poll(host)
	}
}

// poll drains the posted events.
func (kb *Keyboard) poll(host cpu.Host) {
	for {
		var event KeyEvent
		select {
		case event = <-kb.input:
		default:
			return
		}

		if event.Quit {
			host.Halt()
			return
		}

		kb.state[event.Code] = event.Down
		if event.Code != 0 && event.Down {
			kb.buffer[kb.head] = event.Code
			kb.head++
		}
		raise(host, kb.irq)
	}
}
