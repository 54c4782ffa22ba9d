package device

import (
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/dcpu16/cpu"
)

const (
	DISPLAY_MEM_MAP_SCREEN   = 0 // Map video memory at B. B == 0 disconnects the display.
	DISPLAY_MEM_MAP_FONT     = 1 // Map the font at B. B == 0 selects the built-in font.
	DISPLAY_MEM_MAP_PALETTE  = 2 // Map the palette at B. B == 0 selects the built-in palette.
	DISPLAY_SET_BORDER_COLOR = 3 // Border color is palette entry B.
	DISPLAY_MEM_DUMP_FONT    = 4 // Copy the built-in font to B. Costs 256 cycles.
	DISPLAY_MEM_DUMP_PALETTE = 5 // Copy the built-in palette to B. Costs 16 cycles.

	DISPLAY_WIDTH        = 32  // Cells per row.
	DISPLAY_HEIGHT       = 12  // Rows.
	DISPLAY_GLYPH_WIDTH  = 4   // Pixels per cell row.
	DISPLAY_GLYPH_HEIGHT = 8   // Pixels per cell column.
	DISPLAY_FONT_SIZE    = 256 // Words in a font.
	DISPLAY_PALETTE_SIZE = 16  // Words in a palette.

	DISPLAY_CYCLES_PER_FRAME = 5000 // CPU cycles (times 3) per 60 Hz frame.
	DISPLAY_BLINK_MASK       = 32   // Frame counter bit for the blink phase.
)

var displayIdentity = Identity{Id: 0x7349f615, Version: 0x1802, Manufacturer: 0x1c6c8b36}

var _display_defines = func() (defines map[string]string) {
	defines = displayIdentity.defines("DISPLAY")
	for name, value := range map[string]int{
		"DISPLAY_MEM_MAP_SCREEN":   DISPLAY_MEM_MAP_SCREEN,
		"DISPLAY_MEM_MAP_FONT":     DISPLAY_MEM_MAP_FONT,
		"DISPLAY_MEM_MAP_PALETTE":  DISPLAY_MEM_MAP_PALETTE,
		"DISPLAY_SET_BORDER_COLOR": DISPLAY_SET_BORDER_COLOR,
		"DISPLAY_MEM_DUMP_FONT":    DISPLAY_MEM_DUMP_FONT,
		"DISPLAY_MEM_DUMP_PALETTE": DISPLAY_MEM_DUMP_PALETTE,
		"DISPLAY_WIDTH":            DISPLAY_WIDTH,
		"DISPLAY_HEIGHT":           DISPLAY_HEIGHT,
	} {
		defines[name] = fmt.Sprintf("%d", value)
	}
	return
}()

// Cell is one rendered character cell.
type Cell struct {
	Char  uint8     // Character, 0..127.
	Fg    uint16    // Foreground color, 0x0RGB. Already swapped for blinking.
	Bg    uint16    // Background color, 0x0RGB.
	Glyph [2]uint16 // Font words for Char.
}

// Pixel returns true if the pixel at x (0..3), y (0..7) is foreground.
func (cell Cell) Pixel(x, y int) bool {
	word := cell.Glyph[x/2]
	shift := y
	if x&1 == 0 {
		shift += 8
	}
	return word&(1<<shift) != 0
}

// Frame is a snapshot of the display, taken at refresh.
type Frame struct {
	Connected bool   // False if no video memory is mapped.
	Border    uint16 // Border color, 0x0RGB.
	Cells     [DISPLAY_HEIGHT][DISPLAY_WIDTH]Cell
}

// Rgb expands a 0x0RGB color to 8 bits per channel.
func Rgb(color uint16) (r, g, b uint8) {
	r = uint8((color>>8)&0xf) * 17
	g = uint8((color>>4)&0xf) * 17
	b = uint8(color&0xf) * 17
	return
}

// Display is the LEM1802 low energy monitor.
type Display struct {
	Identity

	// Refresh, if set, is called with a new frame 60 times a second.
	Refresh func(frame *Frame)

	screenBase  uint16
	fontBase    uint16
	paletteBase uint16
	border      uint16
	counter     uint32
	blink       uint8
}

var _ cpu.Device = (*Display)(nil)

// NewDisplay returns a disconnected display.
func NewDisplay() *Display {
	return &Display{Identity: displayIdentity}
}

// Defines returns the assembler defines for the display.
func (disp *Display) Defines() iter.Seq2[string, string] {
	return maps.All(_display_defines)
}

// Reset disconnects the display and selects the built-in font and palette.
func (disp *Display) Reset() {
	disp.screenBase = 0
	disp.fontBase = 0
	disp.paletteBase = 0
	disp.border = 0
	disp.counter = 0
	disp.blink = 0
}

func (disp *Display) Interrupt(host cpu.Host) {
	b := host.Reg(cpu.REG_B)

	switch host.Reg(cpu.REG_A) {
	case DISPLAY_MEM_MAP_SCREEN:
		disp.screenBase = b
	case DISPLAY_MEM_MAP_FONT:
		disp.fontBase = b
	case DISPLAY_MEM_MAP_PALETTE:
		disp.paletteBase = b
	case DISPLAY_SET_BORDER_COLOR:
		disp.border = b & 0xf
	case DISPLAY_MEM_DUMP_FONT:
		for n, word := range font {
			host.Write(b+uint16(n), word)
			host.Tick(1)
		}
	case DISPLAY_MEM_DUMP_PALETTE:
		for n, word := range palette {
			host.Write(b+uint16(n), word)
			host.Tick(1)
		}
	}
}

func (disp *Display) Tick(host cpu.Host) {
	for disp.counter += 3; disp.counter >= DISPLAY_CYCLES_PER_FRAME; disp.counter -= DISPLAY_CYCLES_PER_FRAME {
		disp.blink++
		if disp.Refresh != nil {
			disp.Refresh(disp.Frame(host))
		}
	}
}

func (disp *Display) paletteColor(host cpu.Host, n uint16) uint16 {
	if disp.paletteBase == 0 {
		return palette[n&0xf]
	}
	return host.Read(disp.paletteBase + n&0xf)
}

func (disp *Display) fontWord(host cpu.Host, n uint16) uint16 {
	if disp.fontBase == 0 {
		return font[n&0xff]
	}
	return host.Read(disp.fontBase + n&0xff)
}

// Frame renders the display from host memory.
func (disp *Display) Frame(host cpu.Host) (frame *Frame) {
	frame = &Frame{
		Connected: disp.screenBase != 0,
		Border:    disp.paletteColor(host, disp.border),
	}

	if !frame.Connected {
		return
	}

	blinking := disp.blink&DISPLAY_BLINK_MASK != 0

	for y := range DISPLAY_HEIGHT {
		for x := range DISPLAY_WIDTH {
			v := host.Read(disp.screenBase + uint16(x+y*DISPLAY_WIDTH))

			fg := (v >> 12) & 0xf
			bg := (v >> 8) & 0xf
			ch := v & 0x7f
			if v&0x80 != 0 && blinking {
				fg = bg
			}

			frame.Cells[y][x] = Cell{
				Char:  uint8(ch),
				Fg:    disp.paletteColor(host, fg),
				Bg:    disp.paletteColor(host, bg),
				Glyph: [2]uint16{disp.fontWord(host, ch*2), disp.fontWord(host, ch*2+1)},
			}
		}
	}

	return
}
