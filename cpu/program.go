package cpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Line is one assembled source line.
type Line struct {
	File   string // Source file name.
	LineNo int    // Line number in File.
	Ip     uint16 // Address of the first word emitted.
	Size   int    // Words emitted.
	Text   string // Source text.
}

// Program is an assembled memory image with its side tables.
type Program struct {
	Image       []uint16            // Memory image, starting at address 0.
	Labels      map[string]int32    // Label addresses.
	Symbols     map[uint16][]string // Address to label names.
	Lines       []Line              // Listing, in source order.
	Diagnostics []error             // Assembler diagnostics.
}

// Err returns all of the diagnostics joined, or nil.
func (prog *Program) Err() error {
	return errors.Join(prog.Diagnostics...)
}

type Debug struct {
	*Line
	Index int
}

// Debug finds the line that emitted the word at ip.
func (prog *Program) Debug(ip uint16) (dbg Debug) {
	for n, line := range prog.Lines {
		if int(ip) >= int(line.Ip) && int(ip) < int(line.Ip)+line.Size {
			dbg = Debug{
				Line:  &prog.Lines[n],
				Index: int(ip - line.Ip),
			}
			break
		}
	}

	return
}

// Binary returns the image as big-endian bytes.
func (prog *Program) Binary() (bins []byte) {
	bins = make([]byte, 0, len(prog.Image)*2)
	for _, word := range prog.Image {
		bins = binary.BigEndian.AppendUint16(bins, word)
	}

	return
}

// Codes iterates over every word emitted by a source line.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(ip uint16, code Code) bool) {
		for _, line := range prog.Lines {
			for n := range line.Size {
				ip := line.Ip + uint16(n)
				var word uint16
				if int(ip) < len(prog.Image) {
					word = prog.Image[ip]
				}
				if !yield(ip, Code(word)) {
					return
				}
			}
		}
	}
}

// Listing writes the address, words, disassembly and source of every line.
func (prog *Program) Listing(w io.Writer) (err error) {
	for _, line := range prog.Lines {
		ip := int(line.Ip)
		end := ip + line.Size
		first := true
		for ip < end {
			text, size := Disassemble(prog.Image, uint16(ip), prog.Symbols)
			size = min(size, end-ip)

			var words []string
			for n := range size {
				words = append(words, fmt.Sprintf("%04x", prog.Image[(ip+n)&0xffff]))
			}

			source := ""
			if first {
				source = "; " + line.Text
				first = false
			}

			_, err = fmt.Fprintf(w, "%04x: %-15s %-32s %s\n", ip, strings.Join(words, " "), text, source)
			if err != nil {
				return
			}
			ip += size
		}
	}

	return
}

// LoadBinary reads a big-endian memory image.
func LoadBinary(r io.Reader) (image []uint16, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return
	}

	image = make([]uint16, len(data)/2)
	for n := range image {
		image[n] = binary.BigEndian.Uint16(data[n*2:])
	}

	return
}
