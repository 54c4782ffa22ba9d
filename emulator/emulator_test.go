package emulator

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/dcpu16/cpu"
	"github.com/ezrec/dcpu16/device"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	hw := emu.Cpu.Hardware()
	if assert.Equal(3, len(hw)) {
		assert.Equal(cpu.Device(emu.Clock), hw[HW_CLOCK])
		assert.Equal(cpu.Device(emu.Keyboard), hw[HW_KEYBOARD])
		assert.Equal(cpu.Device(emu.Display), hw[HW_DISPLAY])
	}

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}
	assert.Equal("2", defines["HW_DISPLAY"])
	assert.Equal("256", defines["QUEUE_LIMIT"])
	assert.Equal("0xf615", defines["DISPLAY_ID_LO"])
	assert.Equal("0x11", defines["KEY_RETURN"])
}

func assemble(t *testing.T, emu *Emulator, program []string) *cpu.Program {
	t.Helper()

	prog, err := emu.Assemble("test.asm", strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)

	return prog
}

func TestEmulator_LineNo(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"SET A, 1",
		"",
		"SET B, 0x1000 ; two words",
		"ADD A, B",
		"HCF 0",
	}

	emu := NewEmulator()
	prog := assemble(t, emu, program)

	for _, line := range prog.Lines[:len(prog.Lines)-1] {
		assert.Equal(line.LineNo, emu.LineNo())
		assert.Equal(line.Ip, emu.Pc())
		done, err := emu.Tick()
		assert.NoError(err, line.Text)
		assert.False(done, line.Text)
	}

	assert.Equal(5, emu.LineNo())
	done, err := emu.Tick()
	assert.True(done)
	assert.ErrorIs(err, cpu.ErrCatchFire)

	var rt *ErrRuntime
	if assert.True(errors.As(err, &rt)) {
		assert.Equal(5, rt.LineNo)
		assert.Equal(uint16(4), rt.Pc)
	}

	assert.Equal(uint16(0x1001), emu.Cpu.Register[cpu.REG_A])
	assert.Equal(uint64(1+2+2+9), emu.Ticks())
}

func TestEmulator_BadOpcode(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assemble(t, emu, []string{
		"DAT 0x0018",
		"SET A, 1",
		"HCF 0",
	})

	err := emu.Run(0)
	assert.True(emu.Cpu.Halted())
	assert.ErrorIs(err, cpu.ErrOpcode{})
	assert.ErrorIs(err, cpu.ErrCatchFire)
	assert.Equal(uint16(1), emu.Cpu.Register[cpu.REG_A])

	// Reset reloads the image and clears the CPU.
	emu.Reset()
	assert.False(emu.Cpu.Halted())
	assert.Equal(uint16(0), emu.Cpu.Register[cpu.REG_A])
	assert.Equal(uint16(0x0018), emu.Cpu.Memory[0])
	assert.Equal(cpu.Code(0x0018), emu.Code())
}

func TestEmulator_Limit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assemble(t, emu, []string{
		"loop: ADD A, 1",
		"SET PC, loop",
	})

	assert.NoError(emu.Run(300))
	assert.False(emu.Cpu.Halted())
	assert.Equal(uint64(300), emu.Ticks())
	assert.Equal(uint16(100), emu.Cpu.Register[cpu.REG_A])
}

func TestEmulator_Diagnostics(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	prog, err := emu.Assemble("bad.asm", strings.NewReader("SET A, nowhere\n"))
	assert.Error(err)
	assert.NotNil(prog)
	assert.ErrorIs(err, cpu.ErrLabelMissing("NOWHERE"))
	assert.Equal(0, len(emu.Program.Image))
}

func TestEmulator_Include(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Fs = afero.NewMemMapFs()
	assert.NoError(afero.WriteFile(emu.Fs, "lib/screen.inc", []byte(strings.Join([]string{
		".MACRO screen(base)",
		"SET A, DISPLAY_MEM_MAP_SCREEN",
		"SET B, base",
		"HWI HW_DISPLAY",
		".ENDMACRO",
	}, "\n")), 0644))

	_, err := emu.Assemble("lib/main.asm", strings.NewReader(strings.Join([]string{
		`.INCLUDE "screen.inc"`,
		"screen(0x8000)",
		"SET [0x8000], 0xf048",
		"SET [0x8001], 0xf069",
		"HCF 0",
	}, "\n")))
	if !assert.NoError(err) {
		return
	}

	err = emu.Run(0)
	assert.ErrorIs(err, cpu.ErrCatchFire)

	frame := emu.Display.Frame(emu.Cpu)
	assert.True(frame.Connected)
	assert.Equal(uint8('H'), frame.Cells[0][0].Char)
	assert.Equal(uint8('i'), frame.Cells[0][1].Char)
	assert.Equal(uint16(0xfff), frame.Cells[0][1].Fg)
}

func TestEmulator_Clock(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assemble(t, emu, []string{
		"IAS handler",
		"SET A, CLOCK_SET_DIVIDER",
		"SET B, 1",
		"HWI HW_CLOCK",
		"SET A, CLOCK_SET_IRQ",
		"SET B, 0x42",
		"HWI HW_CLOCK",
		"loop: IFE X, 2",
		"HCF 0",
		"SET PC, loop",
		"handler: ADD X, 1",
		"SET Y, A",
		"RFI 0",
	})

	err := emu.Run(100000)
	assert.ErrorIs(err, cpu.ErrCatchFire)
	assert.Equal(uint16(2), emu.Cpu.Register[cpu.REG_X])
	assert.Equal(uint16(0x42), emu.Cpu.Register[cpu.REG_Y])
	assert.Equal(uint16(2), emu.Clock.Ticks())
}

func TestEmulator_Keyboard(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assemble(t, emu, []string{
		"loop: SET A, KEYBOARD_GET",
		"HWI HW_KEYBOARD",
		"IFE C, 0",
		"SET PC, loop",
		"SET [0x1000], C",
		"HCF 0",
	})

	assert.NoError(emu.Keyboard.Post(device.KeyEvent{Code: 'k', Down: true}))

	err := emu.Run(100000)
	assert.ErrorIs(err, cpu.ErrCatchFire)
	assert.Equal(uint16('k'), emu.Cpu.Memory[0x1000])
}

func TestEmulator_Quit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assemble(t, emu, []string{
		"loop: SET PC, loop",
	})

	assert.NoError(emu.Keyboard.Post(device.KeyEvent{Quit: true}))
	assert.NoError(emu.Run(100000))
	assert.True(emu.Cpu.Halted())
	assert.Less(emu.Ticks(), uint64(100000))
}
