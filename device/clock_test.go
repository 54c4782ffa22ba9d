package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/dcpu16/cpu"
)

// command sends an HWI-equivalent to dev with A and B set.
func command(host *cpu.Cpu, dev cpu.Device, a, b uint16) {
	host.Register[cpu.REG_A] = a
	host.Register[cpu.REG_B] = b
	dev.Interrupt(host)
}

func TestClock(t *testing.T) {
	assert := assert.New(t)

	host := cpu.NewCpu(nil)
	clk := NewClock()
	host.Install(clk)

	id, version, manufacturer := clk.Query()
	assert.Equal(uint32(0x12d0b402), id)
	assert.Equal(uint16(1), version)
	assert.Equal(uint32(0), manufacturer)

	// Stopped until a divider is set.
	host.Tick(10000)
	command(host, clk, CLOCK_GET_TICKS, 0)
	assert.Equal(uint16(0), host.Register[cpu.REG_C])

	command(host, clk, CLOCK_SET_DIVIDER, 1)
	host.Tick(5000)
	command(host, clk, CLOCK_GET_TICKS, 0)
	assert.Equal(uint16(3), host.Register[cpu.REG_C])

	command(host, clk, CLOCK_SET_DIVIDER, 2)
	host.Tick(5000)
	assert.Equal(uint16(1), clk.Ticks())

	command(host, clk, CLOCK_SET_DIVIDER, 0)
	host.Tick(10000)
	assert.Equal(uint16(0), clk.Ticks())
}

func TestClock_Irq(t *testing.T) {
	assert := assert.New(t)

	host := cpu.NewCpu(nil)
	host.Register[cpu.REG_IA] = 0x100
	host.Queuing = true
	clk := NewClock()
	host.Install(clk)

	command(host, clk, CLOCK_SET_DIVIDER, 1)
	host.Tick(1666)
	assert.Equal(0, host.Pending())

	command(host, clk, CLOCK_SET_IRQ, 0x55)
	host.Tick(1)
	assert.Equal(1, host.Pending())

	clk.Reset()
	host.Tick(10000)
	assert.Equal(1, host.Pending())
	assert.Equal(uint16(0), clk.Ticks())
}

func TestClock_Defines(t *testing.T) {
	assert := assert.New(t)

	defines := map[string]string{}
	for name, value := range NewClock().Defines() {
		defines[name] = value
	}

	assert.Equal("0xb402", defines["CLOCK_ID_LO"])
	assert.Equal("0x12d0", defines["CLOCK_ID_HI"])
	assert.Equal("1", defines["CLOCK_GET_TICKS"])
}
