// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell"
	"github.com/spf13/afero"

	"github.com/ezrec/dcpu16/cpu"
	"github.com/ezrec/dcpu16/emulator"
	"github.com/ezrec/dcpu16/term"
	"github.com/ezrec/dcpu16/translate"
)

func main() {
	var compile string
	var binary string
	var output string
	var listing bool
	var terminal bool
	var verbose bool
	var cycles uint64
	var lang string
	var dump string
	var unasm string

	flag.StringVar(&compile, "c", "", ".dasm file to assemble")
	flag.StringVar(&binary, "b", "", "binary image to load")
	flag.StringVar(&output, "o", "", "write the binary image, do not execute")
	flag.BoolVar(&listing, "l", false, "write a listing to stdout, do not execute")
	flag.BoolVar(&terminal, "t", false, "run on the terminal display")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Uint64Var(&cycles, "n", 0, "stop after this many cycles (0 = forever)")
	flag.StringVar(&lang, "lang", "", "message language (default from the locale)")
	flag.StringVar(&dump, "d", "", "after running, dump memory FROM:TO")
	flag.StringVar(&unasm, "u", "", "after running, disassemble memory FROM:TO")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if err := translate.Use(lang); err != nil {
		log.Fatalf("%v: %v", lang, err)
	}

	fs := afero.NewOsFs()

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Fs = fs

	switch {
	case len(compile) != 0:
		inf, err := fs.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		_, err = emu.Assemble(compile, inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	case len(binary) != 0:
		inf, err := fs.Open(binary)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
		defer inf.Close()

		image, err := cpu.LoadBinary(inf)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
		emu.Load(&cpu.Program{Image: image})
	default:
		log.Fatalf("%v: one of -c or -b is required", os.Args[0])
	}

	if listing {
		err := emu.Program.Listing(os.Stdout)
		if err != nil {
			log.Fatalf("%v: %v", os.Args[0], err)
		}
	}

	if len(output) != 0 {
		err := afero.WriteFile(fs, output, emu.Program.Binary(), 0644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
	}

	if listing || len(output) != 0 {
		return
	}

	if terminal {
		err := runTerminal(emu, cycles)
		if err != nil {
			log.Print(err)
		}
	} else {
		err := emu.Run(cycles)
		if !verbose && err != nil {
			log.Print(err)
		}
		os.Stdout.WriteString(emu.Cpu.String())
	}

	if len(dump) != 0 {
		from, to := parseRange(dump)
		err := emu.Cpu.Dump(os.Stdout, from, to)
		if err != nil {
			log.Fatalf("%v: %v", os.Args[0], err)
		}
	}

	if len(unasm) != 0 {
		from, to := parseRange(unasm)
		text := cpu.DisassembleRange(emu.Cpu.Memory[:], from, to, emu.Cpu.Symbols)
		os.Stdout.WriteString(text + "\n")
	}
}

// parseRange parses FROM:TO, in any Go integer notation.
func parseRange(text string) (from, to uint16) {
	_, err := fmt.Sscanf(text, "%v:%v", &from, &to)
	if err != nil {
		log.Fatalf("%v: %v", text, err)
	}
	return
}

// runTerminal runs the emulator with the display and keyboard on a tcell screen.
func runTerminal(emu *emulator.Emulator, cycles uint64) (err error) {
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	screen, err := tcell.NewScreen()
	if err != nil {
		return
	}

	err = screen.Init()
	if err != nil {
		return
	}

	screen.DisableMouse()
	screen.HideCursor()
	screen.Clear()

	tty := term.NewTerminal(screen, emu.Keyboard)
	tty.Verbose = emu.Verbose
	emu.Display.Refresh = tty.Refresh

	done := make(chan struct{})
	go func() {
		tty.Run()
		close(done)
	}()

	err = emu.Run(cycles)

	screen.Fini()
	<-done

	return
}
