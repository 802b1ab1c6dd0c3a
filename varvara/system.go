package varvara

import (
	"fmt"

	"github.com/coldbrew/uxnvm/uxn"
)

const systemBase = 0x00

// System ports, offsets within the 0x00 slot.
const (
	sysExpansionHi = 0x02
	sysExpansionLo = 0x03
	sysWSTPtr      = 0x04
	sysRSTPtr      = 0x05
	sysMetadata    = 0x06
	sysRed         = 0x07
	sysGreen       = 0x08
	sysBlue        = 0x09
	sysDebug       = 0x0E
	sysHalt        = 0x0F
)

// expansion op bytes, selected by the first byte at the expansion
// pointer (see SPEC_FULL.md §9 on which subset is implemented).
const (
	expFill  = 0x00
	expCopy1 = 0x01
	expCopy2 = 0x02
)

// System implements slot 0x00: palette, exit code, debug dumps, and the
// expansion-command pointer.
type System struct {
	exitCode *int
}

func (s *System) Dei(cpu *uxn.CPU, target byte) {
	switch target & 0x0F {
	case sysWSTPtr:
		cpu.WriteDev(systemBase|sysWSTPtr, cpu.WST.Ptr)
	case sysRSTPtr:
		cpu.WriteDev(systemBase|sysRSTPtr, cpu.RST.Ptr)
	}
}

func (s *System) Deo(cpu *uxn.CPU, target byte) {
	switch target & 0x0F {
	case sysWSTPtr:
		cpu.WST.Ptr = cpu.ReadDev(systemBase | sysWSTPtr)
	case sysRSTPtr:
		cpu.RST.Ptr = cpu.ReadDev(systemBase | sysRSTPtr)
	case sysExpansionLo:
		s.runExpansion(cpu)
	case sysDebug:
		s.dumpStacks(cpu)
	case sysHalt:
		code := int(cpu.ReadDev(systemBase | sysHalt))
		s.exitCode = &code
	}
}

// Palette returns the four resolved RGB colors packed from the red,
// green and blue port bytes. Each port is a single byte holding two
// 4-bit nibbles (low nibble, high nibble); since three one-byte
// channels only carry two independent nibbles apiece, palette entries
// 0/2 and 1/3 share ink (documented resolution of an underspecified
// packing in SPEC_FULL.md/DESIGN.md — the upstream format reserves two
// bytes per channel for four fully independent colors, but this core's
// port layout only budgets one).
func (s *System) Palette(cpu *uxn.CPU) [4][3]byte {
	r := cpu.ReadDev(systemBase | sysRed)
	g := cpu.ReadDev(systemBase | sysGreen)
	b := cpu.ReadDev(systemBase | sysBlue)

	expand := func(v byte, hi bool) byte {
		var nibble byte
		if hi {
			nibble = v >> 4
		} else {
			nibble = v & 0x0F
		}
		return nibble<<4 | nibble
	}
	var pal [4][3]byte
	for i := 0; i < 4; i++ {
		hi := i%2 == 1
		pal[i][0] = expand(r, hi)
		pal[i][1] = expand(g, hi)
		pal[i][2] = expand(b, hi)
	}
	return pal
}

func (s *System) shouldExit() bool {
	return s.exitCode != nil
}

// Exit returns the recorded halt code, if any.
func (s *System) Exit() *int {
	return s.exitCode
}

func (s *System) dumpStacks(cpu *uxn.CPU) {
	fmt.Printf("WST: %v\nRST: %v\n", cpu.WST.Dat[:cpu.WST.Ptr], cpu.RST.Dat[:cpu.RST.Ptr])
}

func (s *System) runExpansion(cpu *uxn.CPU) {
	ptr := cpu.ReadDev16(systemBase | sysExpansionHi)
	op := cpu.Read8(ptr)
	switch op {
	case expFill:
		s.expFill(cpu, ptr)
	case expCopy1:
		s.expCopy1(cpu, ptr)
	case expCopy2:
		s.expCopy2(cpu, ptr)
	}
}

// expFill: op, length:2, dst:2, value — fills length bytes starting at
// dst with value.
func (s *System) expFill(cpu *uxn.CPU, ptr uint16) {
	length := cpu.Read16(ptr + 1)
	dst := cpu.Read16(ptr + 3)
	value := cpu.Read8(ptr + 5)
	for i := uint16(0); i < length; i++ {
		cpu.Write8(dst+i, value)
	}
}

// expCopy1: op, length:2, src:2, dst:2 — forward byte-by-byte copy; a
// no-op when src == dst.
func (s *System) expCopy1(cpu *uxn.CPU, ptr uint16) {
	length := cpu.Read16(ptr + 1)
	src := cpu.Read16(ptr + 3)
	dst := cpu.Read16(ptr + 5)
	if src == dst {
		return
	}
	for i := uint16(0); i < length; i++ {
		cpu.Write8(dst+i, cpu.Read8(src+i))
	}
}

// expCopy2: op, length:2, src:2, dst:2 — overlap-safe copy through a
// temporary buffer.
func (s *System) expCopy2(cpu *uxn.CPU, ptr uint16) {
	length := cpu.Read16(ptr + 1)
	src := cpu.Read16(ptr + 3)
	dst := cpu.Read16(ptr + 5)
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = cpu.Read8(src + uint16(i))
	}
	for i, b := range buf {
		cpu.Write8(dst+uint16(i), b)
	}
}
