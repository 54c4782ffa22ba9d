// Package device provides the peripherals of the DCPU-16 hardware bus: a
// generic clock, a generic keyboard and an LEM1802 display.
//
// Every device reads its command from register A and its parameter from
// register B when the CPU sends it an HWI, and is ticked once per CPU cycle.
// The CPU runs at a nominal 100 kHz, so 60 Hz events fire every 5000/3
// cycles.
package device

import (
	"fmt"

	"github.com/ezrec/dcpu16/cpu"
)

// Identity is the fixed identification a device reports to HWQ.
type Identity struct {
	Id           uint32 // Hardware id.
	Version      uint16 // Hardware version.
	Manufacturer uint32 // Manufacturer id.
}

// Query returns the device identity.
func (ident Identity) Query() (id uint32, version uint16, manufacturer uint32) {
	return ident.Id, ident.Version, ident.Manufacturer
}

// defines returns the HWQ register values for an identity, under prefix.
func (ident Identity) defines(prefix string) map[string]string {
	return map[string]string{
		prefix + "_ID_LO":           fmt.Sprintf("0x%04x", uint16(ident.Id)),
		prefix + "_ID_HI":           fmt.Sprintf("0x%04x", uint16(ident.Id>>16)),
		prefix + "_VERSION":         fmt.Sprintf("0x%04x", ident.Version),
		prefix + "_MANUFACTURER_LO": fmt.Sprintf("0x%04x", uint16(ident.Manufacturer)),
		prefix + "_MANUFACTURER_HI": fmt.Sprintf("0x%04x", uint16(ident.Manufacturer>>16)),
	}
}

// raise sends msg to the host as a hardware interrupt, unless msg is zero.
func raise(host cpu.Host, msg uint16) {
	if msg != 0 {
		host.Interrupt(msg, true)
	}
}
