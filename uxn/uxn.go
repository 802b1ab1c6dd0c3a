// Package uxn implements the Uxn CPU: an 8-bit stack machine with a
// 64 KiB linear address space, two 256-byte stacks, and a device bus
// through which it talks to the outside world. The package has no
// notion of windows, sound cards, or files — those live in package
// varvara and the host layer, consistent with how the core of this
// machine is specified to be presentation-agnostic.
package uxn

import "fmt"

// romBase is the address every ROM is loaded at, and the entry point of
// the reset vector.
const romBase = 0x0100

// maxROMSize is the largest ROM that fits after romBase.
const maxROMSize = 0x10000 - romBase

// CPU holds all Uxn-visible state: the 64 KiB memory, the working and
// return stacks, the program counter, and the 256-byte device page, plus
// the Device (the bus) that its DEI/DEO opcodes dispatch through.
type CPU struct {
	Memory [65536]byte
	Dev    [256]byte
	WST    Stack
	RST    Stack
	PC     uint16

	// Device is the bus this CPU's DEI/DEO opcodes dispatch through.
	// Defaults to a no-op bus so a bare CPU is still usable standalone
	// (e.g. from tests that only exercise arithmetic/memory opcodes).
	Device Device

	// halted is set by a DEO whose device asked for an exit; checked
	// after each opcode so the current vector stops at the next
	// instruction boundary rather than mid-opcode.
	halted bool
}

// New returns a CPU with a null bus; call SetDevice before running any
// program that uses DEI/DEO.
func New() *CPU {
	return &CPU{Device: nullDevice{}}
}

// SetDevice installs the bus this CPU dispatches DEI/DEO through.
func (c *CPU) SetDevice(d Device) {
	c.Device = d
}

// Load clears memory and the zero page, then copies rom starting at
// 0x0100. ROMs longer than fit are truncated; the first 256 bytes
// (0x0000-0x00FF) are never written from the ROM image, per the
// zero-page invariant.
func (c *CPU) Load(rom []byte) (truncated bool) {
	c.Memory = [65536]byte{}
	if len(rom) > maxROMSize {
		rom = rom[:maxROMSize]
		truncated = true
	}
	copy(c.Memory[romBase:], rom)
	return truncated
}

// Reset zeroes the stacks and program counter without touching memory;
// used before running the reset vector on a fresh load.
func (c *CPU) Reset() {
	c.WST = Stack{}
	c.RST = Stack{}
	c.PC = 0
	c.halted = false
}

// Read8 reads one byte of main memory, wrapping the address modulo 65536.
func (c *CPU) Read8(addr uint16) byte {
	return c.Memory[addr]
}

// Write8 writes one byte of main memory, wrapping the address modulo 65536.
func (c *CPU) Write8(addr uint16, v byte) {
	c.Memory[addr] = v
}

// Read16 reads a big-endian word from main memory at addr, addr+1.
func (c *CPU) Read16(addr uint16) uint16 {
	hi := c.Memory[addr]
	lo := c.Memory[addr+1]
	return uint16(hi)<<8 | uint16(lo)
}

// Write16 writes a big-endian word to main memory at addr, addr+1.
func (c *CPU) Write16(addr uint16, v uint16) {
	c.Memory[addr] = byte(v >> 8)
	c.Memory[addr+1] = byte(v)
}

// ReadDev reads a device-page byte directly, bypassing the bus. Only
// peripherals (through the Device interface) and the DEI/DEO opcode
// handlers should call this; the CPU's own opcode dispatch never reads
// the device page any other way.
func (c *CPU) ReadDev(addr byte) byte {
	return c.Dev[addr]
}

// WriteDev writes a device-page byte directly, bypassing the bus.
func (c *CPU) WriteDev(addr byte, v byte) {
	c.Dev[addr] = v
}

// ReadDev16 / WriteDev16 are the device-page analogues of Read16/Write16,
// used by SHORT-mode DEI/DEO and by peripherals with 16-bit ports.
func (c *CPU) ReadDev16(addr byte) uint16 {
	hi := c.Dev[addr]
	lo := c.Dev[addr+1]
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) WriteDev16(addr byte, v uint16) {
	c.Dev[addr] = byte(v >> 8)
	c.Dev[addr+1] = byte(v)
}

// Run executes starting at entry until a BRK opcode is decoded (or the
// bus asks to halt), then returns. A vector value of 0 is a no-op by
// convention of the callers (event queue, redraw) — Run itself will
// happily execute address 0 if asked, so callers filter that out.
func (c *CPU) Run(entry uint16) {
	c.PC = entry
	c.halted = false
	for {
		instr := c.Memory[c.PC]
		c.PC++
		if instr == 0x00 {
			return // BRK
		}
		if instr&0x1f == 0 {
			c.runSpecial(instr)
		} else {
			c.runBase(instr)
		}
		if c.halted {
			return
		}
	}
}

// runSpecial handles the seven non-BRK raw byte values that share base
// opcode 0 (JCI, JMI, JSI, and the four LIT variants; BRK itself is
// handled by Run) — these aren't BRK modified
// by mode bits, they're distinct instructions selected by the bits.
func (c *CPU) runSpecial(instr byte) {
	short := instr&flagShort != 0
	ret := instr&flagReturn != 0
	keep := instr&flagKeep != 0

	switch {
	case keep:
		c.opLit(short, ret)
	case ret && short:
		c.opJSI()
	case ret:
		c.opJMI()
	default: // short only
		c.opJCI()
	}
}

const (
	flagShort  = 0x20
	flagReturn = 0x40
	flagKeep   = 0x80
)

// runBase dispatches the 31 remaining base opcodes (1-31), applying the
// KEEP/RETURN/SHORT mode bits uniformly.
func (c *CPU) runBase(instr byte) {
	short := instr&flagShort != 0
	ret := instr&flagReturn != 0
	keep := instr&flagKeep != 0
	base := instr & 0x1f

	src, dst := &c.WST, &c.RST
	if ret {
		src, dst = dst, src
	}

	switch base {
	case 0x01:
		c.opInc(src, short, keep)
	case 0x02:
		c.opPop(src, short, keep)
	case 0x03:
		c.opNip(src, short, keep)
	case 0x04:
		c.opSwp(src, short, keep)
	case 0x05:
		c.opRot(src, short, keep)
	case 0x06:
		c.opDup(src, short, keep)
	case 0x07:
		c.opOvr(src, short, keep)
	case 0x08:
		c.opEqu(src, short, keep)
	case 0x09:
		c.opNeq(src, short, keep)
	case 0x0a:
		c.opGth(src, short, keep)
	case 0x0b:
		c.opLth(src, short, keep)
	case 0x0c:
		c.opJmp(src, short, keep)
	case 0x0d:
		c.opJcn(src, short, keep)
	case 0x0e:
		c.opJsr(src, dst, short, keep)
	case 0x0f:
		c.opSth(src, dst, short, keep)
	case 0x10:
		c.opLdz(src, short, keep)
	case 0x11:
		c.opStz(src, short, keep)
	case 0x12:
		c.opLdr(src, short, keep)
	case 0x13:
		c.opStr(src, short, keep)
	case 0x14:
		c.opLda(src, short, keep)
	case 0x15:
		c.opSta(src, short, keep)
	case 0x16:
		c.opDei(src, short, keep)
	case 0x17:
		c.opDeo(src, short, keep)
	case 0x18:
		c.opAdd(src, short, keep)
	case 0x19:
		c.opSub(src, short, keep)
	case 0x1a:
		c.opMul(src, short, keep)
	case 0x1b:
		c.opDiv(src, short, keep)
	case 0x1c:
		c.opAnd(src, short, keep)
	case 0x1d:
		c.opOra(src, short, keep)
	case 0x1e:
		c.opEor(src, short, keep)
	case 0x1f:
		c.opSft(src, short, keep)
	default:
		panic(fmt.Sprintf("uxn: unreachable base opcode %#x", base))
	}
}
