package device

import (
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/dcpu16/cpu"
)

const (
	CLOCK_SET_DIVIDER = 0 // Reset the counter, and tick at 60/B Hz. B == 0 stops the clock.
	CLOCK_GET_TICKS   = 1 // C = ticks since the last CLOCK_SET_DIVIDER.
	CLOCK_SET_IRQ     = 2 // Interrupt with message B on every tick. B == 0 disables.

	CLOCK_CYCLES_PER_TICK = 5000 // CPU cycles (times 3) per 60 Hz tick.
)

var clockIdentity = Identity{Id: 0x12d0b402, Version: 1}

var _clock_defines = func() (defines map[string]string) {
	defines = clockIdentity.defines("CLOCK")
	defines["CLOCK_SET_DIVIDER"] = fmt.Sprintf("%d", CLOCK_SET_DIVIDER)
	defines["CLOCK_GET_TICKS"] = fmt.Sprintf("%d", CLOCK_GET_TICKS)
	defines["CLOCK_SET_IRQ"] = fmt.Sprintf("%d", CLOCK_SET_IRQ)
	return
}()

// Clock is the generic clock.
type Clock struct {
	Identity

	divider uint32
	cycles  uint32
	counter uint16
	irq     uint16
}

var _ cpu.Device = (*Clock)(nil)

// NewClock returns a stopped clock.
func NewClock() *Clock {
	return &Clock{Identity: clockIdentity}
}

// Defines returns the assembler defines for the clock.
func (clk *Clock) Defines() iter.Seq2[string, string] {
	return maps.All(_clock_defines)
}

// Reset stops the clock and disables its interrupt.
func (clk *Clock) Reset() {
	clk.divider = 0
	clk.cycles = 0
	clk.counter = 0
	clk.irq = 0
}

// Ticks returns the number of clock ticks since the divider was set.
func (clk *Clock) Ticks() uint16 {
	return clk.counter
}

func (clk *Clock) Interrupt(host cpu.Host) {
	switch host.Reg(cpu.REG_A) {
	case CLOCK_SET_DIVIDER:
		clk.counter = 0
		clk.cycles = 0
		clk.divider = CLOCK_CYCLES_PER_TICK * uint32(host.Reg(cpu.REG_B))
	case CLOCK_GET_TICKS:
		host.SetReg(cpu.REG_C, clk.counter)
	case CLOCK_SET_IRQ:
		clk.irq = host.Reg(cpu.REG_B)
	}
}

func (clk *Clock) Tick(host cpu.Host) {
	if clk.divider == 0 {
		return
	}

	for clk.cycles += 3; clk.cycles >= clk.divider; clk.cycles -= clk.divider {
		clk.counter++
		raise(host, clk.irq)
	}
}
