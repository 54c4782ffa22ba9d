// Package term presents the display and keyboard on a text terminal.
package term

import (
	"log"

	"github.com/gdamore/tcell"

	"github.com/ezrec/dcpu16/device"
)

const (
	TERM_WIDTH  = device.DISPLAY_WIDTH + 2  // Columns, including the border.
	TERM_HEIGHT = device.DISPLAY_HEIGHT + 2 // Rows, including the border.
)

// Terminal binds a tcell screen to a display and a keyboard.
type Terminal struct {
	Verbose  bool // If set, logs dropped keys.
	Screen   tcell.Screen
	Keyboard *device.Keyboard
}

// NewTerminal returns a terminal on an initialized screen.
func NewTerminal(screen tcell.Screen, kb *device.Keyboard) *Terminal {
	return &Terminal{
		Screen:   screen,
		Keyboard: kb,
	}
}

// Refresh queues a frame for rendering by Run. It may be called from any goroutine.
func (term *Terminal) Refresh(frame *device.Frame) {
	term.Screen.PostEvent(tcell.NewEventInterrupt(frame))
}

func color(rgb uint16) tcell.Color {
	r, g, b := device.Rgb(rgb)
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Render draws a frame, and shows it.
func (term *Terminal) Render(frame *device.Frame) {
	s := term.Screen

	border := tcell.StyleDefault.Background(color(frame.Border))
	for y := range TERM_HEIGHT {
		for x := range TERM_WIDTH {
			s.SetContent(x, y, ' ', nil, border)
		}
	}

	if frame.Connected {
		for y, row := range frame.Cells {
			for x, cell := range row {
				ch := rune(cell.Char)
				if ch < 0x20 || ch > 0x7e {
					ch = ' '
				}
				style := tcell.StyleDefault.Foreground(color(cell.Fg)).Background(color(cell.Bg))
				s.SetContent(x+1, y+1, ch, nil, style)
			}
		}
	}

	s.Show()
}

// Run handles screen events until the screen is finalized, or the user
// asks to quit with Ctrl-C.
func (term *Terminal) Run() {
	s := term.Screen
	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC {
				term.post(device.KeyEvent{Quit: true})
				return
			}
			term.key(ev)
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventInterrupt:
			if frame, ok := ev.Data().(*device.Frame); ok {
				term.Render(frame)
			}
		}
	}
}

func (term *Terminal) post(event device.KeyEvent) {
	err := term.Keyboard.Post(event)
	if err != nil && term.Verbose {
		log.Printf("term: %v", err)
	}
}

// key posts a press and release for a key.
// Terminals do not report key releases.
func (term *Terminal) key(ev *tcell.EventKey) {
	code := keyCode(ev)
	if code == 0 {
		if term.Verbose {
			log.Printf("term: unknown key %v", ev.Name())
		}
		return
	}

	term.post(device.KeyEvent{Code: code, Down: true})
	term.post(device.KeyEvent{Code: code})
}

func keyCode(ev *tcell.EventKey) uint8 {
	switch ev.Key() {
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return device.KEY_BACKSPACE
	case tcell.KeyEnter:
		return device.KEY_RETURN
	case tcell.KeyInsert:
		return device.KEY_INSERT
	case tcell.KeyDelete:
		return device.KEY_DELETE
	case tcell.KeyEscape:
		return device.KEY_ESCAPE
	case tcell.KeyUp:
		return device.KEY_UP
	case tcell.KeyDown:
		return device.KEY_DOWN
	case tcell.KeyLeft:
		return device.KEY_LEFT
	case tcell.KeyRight:
		return device.KEY_RIGHT
	case tcell.KeyRune:
		if c := ev.Rune(); c >= 0x20 && c < 0x7f {
			return uint8(c)
		}
	}
	return 0
}
