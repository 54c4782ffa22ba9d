// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/dcpu16/translate"
)

const (
	MEMORY_SIZE = 0x10000 // Words of memory.
)

var _cpu_defines = map[string]string{
	"QUEUE_LIMIT": fmt.Sprintf("%d", QUEUE_LIMIT),
}

// Host is the view of the CPU a hardware device is given.
type Host interface {
	Reg(reg Reg) uint16
	SetReg(reg Reg, value uint16)
	Read(addr uint16) uint16
	Write(addr uint16, value uint16)
	Interrupt(msg uint16, fromHardware bool)
	Tick(cycles int)
	Halt()
}

// Device is a peripheral on the hardware bus.
type Device interface {
	// Query returns the device identity.
	Query() (id uint32, version uint16, manufacturer uint32)
	// Interrupt handles an HWI sent to the device.
	Interrupt(host Host)
	// Tick is called once per CPU cycle.
	Tick(host Host)
}

// Cpu is the simulation context for a DCPU-16.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Register [REG_COUNT]uint16   // Register file.
	Memory   [MEMORY_SIZE]uint16 // Main memory.
	Queuing  bool                // Interrupt queuing mode.
	Cycles   uint64              // Cycles consumed since reset.

	Report  func(err error)     // Diagnostic sink. If nil, diagnostics are logged.
	Symbols map[uint16][]string // Optional address to label map for tracing.

	queue    Queue
	hardware []Device
	halted   bool
}

var _ Host = (*Cpu)(nil)

// NewCpu creates a new CPU with its memory loaded from image.
func NewCpu(image []uint16) (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.LoadImage(image)

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// LoadImage clears memory and copies image to address 0.
func (cpu *Cpu) LoadImage(image []uint16) {
	clear(cpu.Memory[:])
	copy(cpu.Memory[:], image)
}

// Reset the CPU state.
// - Clears the registers and interrupt queue.
// - Zeros the cycle counter.
// - Leaves memory and installed hardware intact.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.queue.Reset()
	cpu.Queuing = false
	cpu.Cycles = 0
	cpu.halted = false
}

// Install attaches a device to the hardware bus, returning its index.
func (cpu *Cpu) Install(dev Device) (index int) {
	index = len(cpu.hardware)
	cpu.hardware = append(cpu.hardware, dev)

	if cpu.Verbose {
		id, version, manufacturer := dev.Query()
		log.Printf("cpu: device %d: id %08x version %04x manufacturer %08x", index, id, version, manufacturer)
	}

	return
}

// Hardware returns the installed devices in index order.
func (cpu *Cpu) Hardware() []Device {
	return cpu.hardware
}

// Pending returns the number of queued interrupts.
func (cpu *Cpu) Pending() int {
	return cpu.queue.Len()
}

func (cpu *Cpu) Reg(reg Reg) uint16 {
	return cpu.Register[reg]
}

func (cpu *Cpu) SetReg(reg Reg, value uint16) {
	cpu.Register[reg] = value
}

func (cpu *Cpu) Read(addr uint16) uint16 {
	return cpu.Memory[addr]
}

func (cpu *Cpu) Write(addr uint16, value uint16) {
	cpu.Memory[addr] = value
}

// Halt stops Run after the current instruction.
func (cpu *Cpu) Halt() {
	cpu.halted = true
}

// Halted returns true once Halt has been called.
func (cpu *Cpu) Halted() bool {
	return cpu.halted
}

// Tick consumes cycles, ticking every device once per cycle.
func (cpu *Cpu) Tick(cycles int) {
	for range cycles {
		cpu.Cycles++
		for _, dev := range cpu.hardware {
			dev.Tick(cpu)
		}
	}
}

func (cpu *Cpu) report(err error) {
	if cpu.Report != nil {
		cpu.Report(err)
	} else {
		log.Printf("cpu: %v", err)
	}
}

func (cpu *Cpu) push(value uint16) {
	cpu.Register[REG_SP]--
	cpu.Memory[cpu.Register[REG_SP]] = value
}

func (cpu *Cpu) pop() (value uint16) {
	value = cpu.Memory[cpu.Register[REG_SP]]
	cpu.Register[REG_SP]++
	return
}

// Interrupt raises an interrupt. Hardware interrupts, and any interrupt
// while queuing, are queued. An overflowing queue sets the CPU on fire.
func (cpu *Cpu) Interrupt(msg uint16, fromHardware bool) {
	if cpu.Register[REG_IA] == 0 {
		return
	}

	if cpu.Queuing || fromHardware {
		if !cpu.queue.Push(msg) {
			cpu.report(ErrQueueOverflow)
			cpu.Halt()
		}
		return
	}

	cpu.dispatch(msg)
}

func (cpu *Cpu) dispatch(msg uint16) {
	if cpu.Verbose {
		log.Printf("cpu: interrupt %v", translate.Hex(msg))
	}

	cpu.push(cpu.Register[REG_PC])
	cpu.push(cpu.Register[REG_A])
	cpu.Register[REG_PC] = cpu.Register[REG_IA]
	cpu.Register[REG_A] = msg
	cpu.Queuing = true
}

// Step dispatches one queued interrupt, if eligible, then executes one
// instruction.
func (cpu *Cpu) Step() {
	if !cpu.Queuing {
		msg, ok := cpu.queue.Pop()
		if ok {
			cpu.Interrupt(msg, false)
		}
	}

	cpu.Execute()
}

// Run steps the CPU until halted.
func (cpu *Cpu) Run() {
	for !cpu.halted {
		cpu.Step()
	}
}

// fetch reads the instruction word at PC.
func (cpu *Cpu) fetch() (code Code) {
	code = Code(cpu.Memory[cpu.Register[REG_PC]])
	cpu.Register[REG_PC]++
	return
}

// skip passes over instructions without side effects, continuing through
// chained conditionals.
func (cpu *Cpu) skip() {
	for {
		code := cpu.fetch()
		cpu.operand(code.A(), true, true)
		if code.Opcode() != OP_NBI {
			cpu.operand(code.B(), false, true)
		}
		if !code.Opcode().Conditional() {
			return
		}
		cpu.Tick(1)
	}
}

// Execute runs a single instruction.
func (cpu *Cpu) Execute() {
	pc := cpu.Register[REG_PC]

	if cpu.Verbose {
		text, _ := Disassemble(cpu.Memory[:], pc, cpu.Symbols)
		log.Printf("%v: %v", translate.Hex(pc), text)
	}

	code := cpu.fetch()
	op, b, a := code.Decode()

	if op == OP_NBI {
		cpu.executeSpecial(code, pc)
		return
	}

	if !op.Valid() {
		cpu.operand(a, true, true)
		cpu.operand(b, false, true)
		cpu.report(ErrOpcode{Word: code, Pc: pc})
		return
	}

	// Both operands resolve before either is read.
	aLoc := cpu.operand(a, true, false)
	bLoc := cpu.operand(b, false, false)
	av := cpu.Load(aLoc)
	bv := cpu.Load(bLoc)

	cpu.Tick(op.Cycles())

	ex := cpu.Register[REG_EX]

	switch op {
	case OP_SET:
		cpu.Store(bLoc, av)
	case OP_ADD:
		t := uint32(bv) + uint32(av)
		cpu.Store(bLoc, uint16(t))
		cpu.Register[REG_EX] = uint16(t >> 16)
	case OP_SUB:
		t := uint32(bv) - uint32(av)
		cpu.Store(bLoc, uint16(t))
		cpu.Register[REG_EX] = uint16(t >> 16)
	case OP_MUL:
		t := uint32(bv) * uint32(av)
		cpu.Store(bLoc, uint16(t))
		cpu.Register[REG_EX] = uint16(t >> 16)
	case OP_MLI:
		t := int32(int16(bv)) * int32(int16(av))
		cpu.Store(bLoc, uint16(t))
		cpu.Register[REG_EX] = uint16(uint32(t) >> 16)
	case OP_DIV:
		if av == 0 {
			cpu.Store(bLoc, 0)
			cpu.Register[REG_EX] = 0
		} else {
			t := (uint32(bv) << 16) / uint32(av)
			cpu.Store(bLoc, uint16(t>>16))
			cpu.Register[REG_EX] = uint16(t)
		}
	case OP_DVI:
		if av == 0 {
			cpu.Store(bLoc, 0)
			cpu.Register[REG_EX] = 0
		} else {
			t := (int64(int16(bv)) << 16) / int64(int16(av))
			cpu.Store(bLoc, uint16(t>>16))
			cpu.Register[REG_EX] = uint16(t)
		}
	case OP_MOD:
		if av == 0 {
			cpu.Store(bLoc, 0)
		} else {
			cpu.Store(bLoc, bv%av)
		}
	case OP_MDI:
		if av == 0 {
			cpu.Store(bLoc, 0)
		} else {
			cpu.Store(bLoc, uint16(int32(int16(bv))%int32(int16(av))))
		}
	case OP_AND:
		cpu.Store(bLoc, bv&av)
	case OP_BOR:
		cpu.Store(bLoc, bv|av)
	case OP_XOR:
		cpu.Store(bLoc, bv^av)
	case OP_SHR:
		t := (uint32(bv) << 16) >> av
		cpu.Store(bLoc, uint16(t>>16))
		cpu.Register[REG_EX] = uint16(t)
	case OP_ASR:
		t := (int32(int16(bv)) << 16) >> av
		cpu.Store(bLoc, uint16(t>>16))
		cpu.Register[REG_EX] = uint16(t)
	case OP_SHL:
		t := uint32(bv) << av
		cpu.Store(bLoc, uint16(t))
		cpu.Register[REG_EX] = uint16(t >> 16)
	case OP_IFB, OP_IFC, OP_IFE, OP_IFN, OP_IFG, OP_IFA, OP_IFL, OP_IFU:
		if !compare(op, bv, av) {
			cpu.skip()
		}
	case OP_ADX:
		t := uint32(bv) + uint32(av) + uint32(ex)
		cpu.Store(bLoc, uint16(t))
		// EX is a carry flag, even when the sum exceeds 0x1ffff.
		if t > 0xffff {
			cpu.Register[REG_EX] = 1
		} else {
			cpu.Register[REG_EX] = 0
		}
	case OP_SBX:
		t := int32(bv) - int32(av) + int32(ex)
		cpu.Store(bLoc, uint16(t))
		switch {
		case t < 0:
			cpu.Register[REG_EX] = 0xffff
		case t > 0xffff:
			cpu.Register[REG_EX] = 1
		default:
			cpu.Register[REG_EX] = 0
		}
	case OP_STI, OP_STD:
		cpu.Store(bLoc, av)
		delta := uint16(1)
		if op == OP_STD {
			delta = 0xffff
		}
		cpu.Register[REG_I] += delta
		cpu.Register[REG_J] += delta
	}
}

// compare evaluates a conditional opcode.
func compare(op Opcode, b, a uint16) bool {
	switch op {
	case OP_IFB:
		return b&a != 0
	case OP_IFC:
		return b&a == 0
	case OP_IFE:
		return b == a
	case OP_IFN:
		return b != a
	case OP_IFG:
		return b > a
	case OP_IFA:
		return int16(b) > int16(a)
	case OP_IFL:
		return b < a
	case OP_IFU:
		return int16(b) < int16(a)
	}
	return false
}

func (cpu *Cpu) executeSpecial(code Code, pc uint16) {
	sp := code.Special()

	if !sp.Valid() {
		cpu.operand(code.A(), true, true)
		cpu.report(ErrOpcode{Word: code, Pc: pc})
		return
	}

	aLoc := cpu.operand(code.A(), true, false)
	av := cpu.Load(aLoc)

	cpu.Tick(sp.Cycles())

	switch sp {
	case SPECIAL_JSR:
		cpu.push(cpu.Register[REG_PC])
		cpu.Register[REG_PC] = av
	case SPECIAL_HCF:
		cpu.report(ErrCatchFire)
		cpu.Halt()
	case SPECIAL_INT:
		cpu.Interrupt(av, false)
	case SPECIAL_IAG:
		cpu.Store(aLoc, cpu.Register[REG_IA])
	case SPECIAL_IAS:
		cpu.Register[REG_IA] = av
	case SPECIAL_RFI:
		cpu.Queuing = false
		cpu.Register[REG_A] = cpu.pop()
		cpu.Register[REG_PC] = cpu.pop()
	case SPECIAL_IAQ:
		cpu.Queuing = av != 0
	case SPECIAL_HWN:
		cpu.Store(aLoc, uint16(len(cpu.hardware)))
	case SPECIAL_HWQ:
		if int(av) < len(cpu.hardware) {
			id, version, manufacturer := cpu.hardware[av].Query()
			cpu.Register[REG_A] = uint16(id)
			cpu.Register[REG_B] = uint16(id >> 16)
			cpu.Register[REG_C] = version
			cpu.Register[REG_X] = uint16(manufacturer)
			cpu.Register[REG_Y] = uint16(manufacturer >> 16)
		}
	case SPECIAL_HWI:
		if int(av) < len(cpu.hardware) {
			cpu.hardware[av].Interrupt(cpu)
		}
	}
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 3s: %04x [%04x]\n", Reg(n).String(), val, cpu.Memory[val])
	}
	queuing := "false"
	if cpu.Queuing {
		queuing = "true"
	}
	text += fmt.Sprintf("queue: %d (queuing %v)\n", cpu.queue.Len(), queuing)
	text += fmt.Sprintf("cycles: %d\n", cpu.Cycles)

	return
}

// Dump writes memory from..to (inclusive), eight words per line.
func (cpu *Cpu) Dump(w io.Writer, from, to uint16) (err error) {
	for addr := int(from) &^ 7; addr <= int(to); addr += 8 {
		line := fmt.Sprintf("%04x:", addr)
		for n := range 8 {
			line += fmt.Sprintf(" %04x", cpu.Memory[(addr+n)&0xffff])
		}
		_, err = fmt.Fprintln(w, line)
		if err != nil {
			return
		}
	}

	return
}
