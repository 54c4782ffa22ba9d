// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/spf13/afero"

	"github.com/ezrec/dcpu16/cpu"
	"github.com/ezrec/dcpu16/device"
	"github.com/ezrec/dcpu16/internal"
)

const (
	HW_CLOCK    = 0 // Hardware index of the clock.
	HW_KEYBOARD = 1 // Hardware index of the keyboard.
	HW_DISPLAY  = 2 // Hardware index of the display.
)

var _emulator_defines = map[string]string{
	"HW_CLOCK":    fmt.Sprintf("%d", HW_CLOCK),
	"HW_KEYBOARD": fmt.Sprintf("%d", HW_KEYBOARD),
	"HW_DISPLAY":  fmt.Sprintf("%d", HW_DISPLAY),
}

// Emulator state. CPU + clock, keyboard and display.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
	Fs       afero.Fs     // Filesystem for assembler includes.

	Clock    *device.Clock    // Generic clock.
	Keyboard *device.Keyboard // Generic keyboard.
	Display  *device.Display  // LEM1802 display.

	errs []error
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:      cpu.NewCpu(nil),
		Program:  &cpu.Program{},
		Clock:    device.NewClock(),
		Keyboard: device.NewKeyboard(),
		Display:  device.NewDisplay(),
	}

	emu.Cpu.Report = func(err error) {
		emu.errs = append(emu.errs, err)
	}

	emu.Cpu.Install(emu.Clock)
	emu.Cpu.Install(emu.Keyboard)
	emu.Cpu.Install(emu.Display)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Chain(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Clock.Defines(),
		emu.Keyboard.Defines(),
		emu.Display.Defines(),
	)
}

// Assemble parses source with the emulator defines, and loads the program
// if it assembled without diagnostics.
func (emu *Emulator) Assemble(name string, input io.Reader) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{
		Verbose: emu.Verbose,
		Fs:      emu.Fs,
	}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(name, input)
	if err != nil {
		return
	}

	err = prog.Err()
	if err != nil {
		return
	}

	emu.Load(prog)

	return
}

// Load a program, and reset.
func (emu *Emulator) Load(prog *cpu.Program) {
	emu.Program = prog
	emu.Cpu.Symbols = prog.Symbols

	emu.Reset()
}

// Reset reloads the program image, and resets the CPU and devices.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.LoadImage(emu.Program.Image)
	emu.Cpu.Reset()
	emu.Clock.Reset()
	emu.Keyboard.Reset()
	emu.Display.Reset()

	emu.errs = nil
}

// Ticks returns the total cycles since a reset.
func (emu *Emulator) Ticks() uint64 {
	return emu.Cpu.Cycles
}

// Pc returns current program counter.
func (emu *Emulator) Pc() uint16 {
	return emu.Cpu.Register[cpu.REG_PC]
}

// Code returns the current instruction code.
func (emu *Emulator) Code() cpu.Code {
	return cpu.Code(emu.Cpu.Memory[emu.Pc()])
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Pc())
	if dbg.Line == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	pc := emu.Pc()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	emu.errs = emu.errs[:0]
	emu.Cpu.Step()
	err = errors.Join(emu.errs...)

	done = emu.Cpu.Halted()

	return
}

// Run ticks until the CPU halts, or until limit cycles have been spent.
// A zero limit runs forever. Runtime diagnostics do not stop the run,
// and are returned joined.
func (emu *Emulator) Run(limit uint64) (err error) {
	var errs []error

	for limit == 0 || emu.Cpu.Cycles < limit {
		done, terr := emu.Tick()
		if terr != nil {
			if emu.Verbose {
				log.Printf("emulator: %v", terr)
			}
			errs = append(errs, terr)
		}
		if done {
			break
		}
	}

	err = errors.Join(errs...)

	return
}
