package uxn

import "testing"

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

// assemble writes prog starting at 0x0100 (the conventional entry point)
// and appends a BRK so Run terminates.
func assemble(prog ...byte) *CPU {
	c := New()
	rom := append(append([]byte{}, prog...), 0x00)
	c.Load(rom)
	return c
}

func TestLitPushesAndAdds(t *testing.T) {
	// #01 #02 ADD -> 3 on WST
	c := assemble(0x80, 0x01, 0x80, 0x02, 0x18)
	c.Run(romBase)
	assert(t, c.WST.Ptr == 1, "expected one byte on WST, got ptr=%d", c.WST.Ptr)
	assert(t, c.WST.Dat[0] == 3, "expected 3, got %d", c.WST.Dat[0])
}

func TestKeepModePreservesOperands(t *testing.T) {
	// #01 #02 ADDk -> stack is [1, 2, 3]
	c := assemble(0x80, 0x01, 0x80, 0x02, 0x18|flagKeep)
	c.Run(romBase)
	assert(t, c.WST.Ptr == 3, "expected 3 bytes on WST, got ptr=%d", c.WST.Ptr)
	assert(t, c.WST.Dat[0] == 1 && c.WST.Dat[1] == 2 && c.WST.Dat[2] == 3,
		"expected [1 2 3], got %v", c.WST.Dat[:3])
}

func TestReturnModeSwapsStackNotMemory(t *testing.T) {
	// LITr #01 ; LITr #02 ; ADDr -> both operands and the result live on
	// RST the whole time; WST is never touched.
	c := assemble(0x80|flagReturn, 0x01, 0x80|flagReturn, 0x02, 0x18|flagReturn)
	c.Run(romBase)
	assert(t, c.WST.Ptr == 0, "WST should be empty, got ptr=%d", c.WST.Ptr)
	assert(t, c.RST.Ptr == 1 && c.RST.Dat[0] == 3, "expected 3 on RST, got ptr=%d dat=%v", c.RST.Ptr, c.RST.Dat[:1])
}

func TestDivByZeroNeverFaults(t *testing.T) {
	// #01 #00 DIV -> 0, no panic
	c := assemble(0x80, 0x01, 0x80, 0x00, 0x1b)
	c.Run(romBase)
	assert(t, c.WST.Ptr == 1, "expected one result byte, got ptr=%d", c.WST.Ptr)
	assert(t, c.WST.Dat[0] == 0, "expected 0, got %d", c.WST.Dat[0])
}

func TestStackPointerWrapsModulo256(t *testing.T) {
	c := New()
	for i := 0; i < 300; i++ {
		c.WST.push8(byte(i))
	}
	assert(t, c.WST.Ptr == byte(300%256), "stack pointer should wrap modulo 256, got %d", c.WST.Ptr)
	for i := 0; i < 300; i++ {
		c.WST.pop8()
	}
	assert(t, c.WST.Ptr == 0, "expected pointer back to 0 after popping everything pushed, got %d", c.WST.Ptr)
}

func TestMemoryWrapsModulo65536(t *testing.T) {
	c := New()
	c.Write8(0xFFFF, 0x42)
	c.Write8(0x0000, 0x43) // adjacent in wrapped address space, distinct cell
	assert(t, c.Read8(0xFFFF) == 0x42, "expected 0x42 at 0xFFFF")
	// a 16-bit write at 0xFFFF touches 0xFFFF and 0x0000 (Go array indexing
	// does not itself wrap, but callers only ever pass already-wrapped
	// uint16 addresses, so arithmetic on the address always wraps modulo
	// 65536 before it reaches memory).
	top := uint16(0xFFFF)
	addr := top + 2
	assert(t, addr == 1, "uint16 arithmetic should wrap modulo 65536, got %d", addr)
}

func TestZeroPageRoundTrip(t *testing.T) {
	// #42 #10 STZ ; #10 LDZ -> 0x42 back on stack
	c := assemble(
		0x80, 0x42, // LIT 0x42
		0x80, 0x10, // LIT 0x10 (zero-page addr)
		0x11,       // STZ
		0x80, 0x10, // LIT 0x10
		0x10, // LDZ
	)
	c.Run(romBase)
	assert(t, c.WST.Ptr == 1, "expected one byte left, got ptr=%d", c.WST.Ptr)
	assert(t, c.WST.Dat[0] == 0x42, "expected 0x42 round-tripped through zero page, got %#x", c.WST.Dat[0])
}

func TestAbsoluteLoadStoreRoundTrip(t *testing.T) {
	// #42 #01 #23 STA2(?) -- use STA (byte mode) with a 16-bit address 0x0123
	c := assemble(
		0x80, 0x42, // LIT 0x42 (value)
		0xa0, 0x01, 0x23, // LIT2 0x0123 (address)
		0x15,             // STA
		0xa0, 0x01, 0x23, // LIT2 0x0123
		0x14, // LDA
	)
	c.Run(romBase)
	assert(t, c.WST.Ptr == 1, "expected one byte left, got ptr=%d", c.WST.Ptr)
	assert(t, c.WST.Dat[0] == 0x42, "expected 0x42 round-tripped through absolute memory, got %#x", c.WST.Dat[0])
}

func TestShortRoundTripThroughDeviceBus(t *testing.T) {
	c := New()
	// LIT2 0xBEEF ; DEO2 to port 0x10 ; LIT 0x10 ; DEI2
	rom := []byte{
		0xa0, 0xbe, 0xef, // LIT2 0xbeef
		0x80, 0x10, // LIT 0x10 (port)
		0x37,       // DEO2 (0x17 | SHORT)
		0x80, 0x10, // LIT 0x10
		0x36, // DEI2
		0x00, // BRK
	}
	c.Load(rom)
	c.Run(romBase)
	assert(t, c.WST.Ptr == 2, "expected a short value on WST, got ptr=%d", c.WST.Ptr)
	got := uint16(c.WST.Dat[0])<<8 | uint16(c.WST.Dat[1])
	assert(t, got == 0xbeef, "expected 0xbeef round-tripped through DEI2/DEO2, got %#x", got)
}

func TestJCIBranchesOnWorkingStackCondition(t *testing.T) {
	// push 1 (true), JCI +2 (skip the following LIT), then LIT 0x99
	rom := []byte{
		0x80, 0x01, // LIT 1
		0x20, 0x00, 0x02, // JCI +2 (skip the 2-byte LIT below)
		0x80, 0x99, // LIT 0x99 (should be skipped)
		0x00, // BRK
	}
	c := New()
	c.Load(rom)
	c.Run(romBase)
	assert(t, c.WST.Ptr == 0, "expected JCI to skip the following LIT, got ptr=%d", c.WST.Ptr)
}

func TestUnknownDeviceSlotIsInertNotFatal(t *testing.T) {
	c := New()
	// DEO to an unmapped port must not panic with the default null bus.
	rom := []byte{0x80, 0x01, 0x80, 0xFE, 0x17, 0x00}
	c.Load(rom)
	c.Run(romBase)
}
