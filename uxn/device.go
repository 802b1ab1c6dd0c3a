package uxn

// Device is implemented by whatever owns the 256-byte device page (in
// this repo, varvara.Varvara). The CPU never talks to a peripheral
// directly; every DEI/DEO opcode calls through this interface, passing
// itself so the device can read/write main memory and the device page.
type Device interface {
	// Dei is called before the CPU reads the device page at target. A
	// device with a "probe" side effect (e.g. datetime, audio sample
	// position) refreshes the port's bytes now; devices with no such
	// effect do nothing.
	Dei(cpu *CPU, target byte)

	// Deo is called after the CPU has written target's byte into the
	// device page. It returns false if the system should exit; the CPU
	// checks this after every DEO and halts the current run at the next
	// opportunity.
	Deo(cpu *CPU, target byte) bool
}

// nullDevice answers every DEI with whatever is already in the device
// page and never asks for a halt. It's the Device New installs, so a CPU
// built without a bus still behaves per spec instead of panicking.
type nullDevice struct{}

func (nullDevice) Dei(*CPU, byte) {}
func (nullDevice) Deo(*CPU, byte) bool { return true }
