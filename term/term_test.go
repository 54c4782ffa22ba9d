package term

import (
	"testing"

	"github.com/gdamore/tcell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/dcpu16/cpu"
	"github.com/ezrec/dcpu16/device"
)

func newTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen) {
	t.Helper()

	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 25)

	return NewTerminal(screen, device.NewKeyboard()), screen
}

// drain polls the keyboard, and returns all buffered key codes.
func drain(kb *device.Keyboard) (codes []uint16) {
	host := cpu.NewCpu(nil)
	host.Install(kb)
	host.Tick((device.KEYBOARD_CYCLES_PER_POLL + 2) / 3)

	for {
		host.Register[cpu.REG_A] = device.KEYBOARD_GET
		kb.Interrupt(host)
		code := host.Register[cpu.REG_C]
		if code == 0 {
			return
		}
		codes = append(codes, code)
	}
}

func TestTerminal_Render(t *testing.T) {
	assert := assert.New(t)

	term, screen := newTerminal(t)

	frame := &device.Frame{Connected: true, Border: 0x00a}
	frame.Cells[0][0] = device.Cell{Char: 'H', Fg: 0xfff, Bg: 0x000}
	frame.Cells[11][31] = device.Cell{Char: 0x05, Fg: 0xf00, Bg: 0x0f0}

	term.Render(frame)

	cells, width, _ := screen.GetContents()
	at := func(x, y int) tcell.SimCell {
		return cells[x+y*width]
	}

	_, bg, _ := at(0, 0).Style.Decompose()
	assert.Equal(tcell.NewRGBColor(0, 0, 170), bg)

	cell := at(1, 1)
	assert.Equal([]rune{'H'}, cell.Runes)
	fg, bg, _ := cell.Style.Decompose()
	assert.Equal(tcell.NewRGBColor(255, 255, 255), fg)
	assert.Equal(tcell.NewRGBColor(0, 0, 0), bg)

	cell = at(32, 12)
	assert.Equal([]rune{' '}, cell.Runes)
	fg, bg, _ = cell.Style.Decompose()
	assert.Equal(tcell.NewRGBColor(255, 0, 0), fg)
	assert.Equal(tcell.NewRGBColor(0, 255, 0), bg)

	_, bg, _ = at(TERM_WIDTH-1, TERM_HEIGHT-1).Style.Decompose()
	assert.Equal(tcell.NewRGBColor(0, 0, 170), bg)
}

func TestTerminal_Disconnected(t *testing.T) {
	assert := assert.New(t)

	term, screen := newTerminal(t)
	term.Render(&device.Frame{Border: 0xf00})

	cells, width, _ := screen.GetContents()
	cell := cells[5+5*width]
	assert.Equal([]rune{' '}, cell.Runes)
	_, bg, _ := cell.Style.Decompose()
	assert.Equal(tcell.NewRGBColor(255, 0, 0), bg)
}

func TestTerminal_Keys(t *testing.T) {
	assert := assert.New(t)

	term, _ := newTerminal(t)

	table := [](struct {
		key  tcell.Key
		ch   rune
		code uint16
	}){
		{tcell.KeyRune, 'a', 'a'},
		{tcell.KeyRune, 'Z', 'Z'},
		{tcell.KeyEnter, 0, device.KEY_RETURN},
		{tcell.KeyBackspace2, 0, device.KEY_BACKSPACE},
		{tcell.KeyEscape, 0, device.KEY_ESCAPE},
		{tcell.KeyUp, 0, device.KEY_UP},
		{tcell.KeyRight, 0, device.KEY_RIGHT},
		{tcell.KeyDelete, 0, device.KEY_DELETE},
		{tcell.KeyF1, 0, 0},
	}

	for _, entry := range table {
		term.key(tcell.NewEventKey(entry.key, entry.ch, tcell.ModNone))
		if entry.code == 0 {
			assert.Nil(drain(term.Keyboard), "%v", entry.key)
		} else {
			assert.Equal([]uint16{entry.code}, drain(term.Keyboard), "%v", entry.key)
		}
	}
}

func TestTerminal_Run(t *testing.T) {
	assert := assert.New(t)

	term, screen := newTerminal(t)

	done := make(chan struct{})
	go func() {
		term.Run()
		close(done)
	}()

	frame := &device.Frame{Connected: true}
	frame.Cells[0][0] = device.Cell{Char: 'x', Fg: 0xfff}
	term.Refresh(frame)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	screen.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)
	<-done

	cells, width, _ := screen.GetContents()
	assert.Equal([]rune{'x'}, cells[1+1*width].Runes)

	host := cpu.NewCpu(nil)
	host.Install(term.Keyboard)
	host.Tick((device.KEYBOARD_CYCLES_PER_POLL + 2) / 3)
	assert.True(host.Halted())

	host.Register[cpu.REG_A] = device.KEYBOARD_GET
	term.Keyboard.Interrupt(host)
	assert.Equal(uint16('q'), host.Register[cpu.REG_C])
}

func TestTerminal_QuitFull(t *testing.T) {
	assert := assert.New(t)

	term, screen := newTerminal(t)
	for range device.KEYBOARD_INPUT_LIMIT {
		assert.NoError(term.Keyboard.Post(device.KeyEvent{Code: 'x', Down: true}))
	}

	done := make(chan struct{})
	go func() {
		term.Run()
		close(done)
	}()

	screen.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)
	<-done

	host := cpu.NewCpu(nil)
	host.Install(term.Keyboard)
	host.Tick((device.KEYBOARD_CYCLES_PER_POLL + 2) / 3)
	assert.True(host.Halted())
}
