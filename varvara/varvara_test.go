package varvara

import (
	"path/filepath"
	"strings"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...interface{}) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

// Scenario 1: a DEO to the console write port appends the byte to
// stdout.
func TestConsoleWriteAppendsStdout(t *testing.T) {
	v := New(nil, t.TempDir())
	v.cpu.WriteDev(consoleBase|conWrite, 'A')
	v.Deo(v.cpu, consoleBase|conWrite)

	out := v.console.takeStdout()
	assert(t, string(out) == "A", "expected stdout %q, got %q", "A", out)
}

// Scenario 2: a DEO to the system halt port surfaces as Output.Exit on
// the next Update, even when the written code is the literal zero byte
// (a halt with code 0 is still a halt, not "no halt requested").
func TestSystemHaltSurfacesExitCode(t *testing.T) {
	v := New(nil, t.TempDir())
	v.cpu.WriteDev(systemBase|sysHalt, 0)
	v.Deo(v.cpu, systemBase|sysHalt)

	out := v.Update(Input{})
	assert(t, out.Exit != nil && *out.Exit == 0, "expected exit code 0, got %v", out.Exit)
}

func TestSystemHaltSurfacesNonzeroExitCode(t *testing.T) {
	v := New(nil, t.TempDir())
	v.cpu.WriteDev(systemBase|sysHalt, 7)
	v.Deo(v.cpu, systemBase|sysHalt)

	out := v.Update(Input{})
	assert(t, out.Exit != nil && *out.Exit == 7, "expected exit code 7, got %v", out.Exit)
}

// Scenario 3: an 8x8 1bpp sprite of all-set bits, drawn at (0,0) on the
// background layer in colour 1, fills an 8x8 block.
func TestSpriteFillsEightByEightBlock(t *testing.T) {
	v := New(nil, t.TempDir())

	addr := uint16(0x2000)
	for i := 0; i < 8; i++ {
		v.cpu.Write8(addr+uint16(i), 0xFF)
	}
	v.cpu.WriteDev16(screenBase|scrAddr, addr)
	v.cpu.WriteDev16(screenBase|scrX, 0)
	v.cpu.WriteDev16(screenBase|scrY, 0)

	op := byte(sprOpBit) // sprite op, background layer, 1bpp, colour from bitplane
	v.cpu.WriteDev(screenBase|scrPixel, op)
	v.screen.runOp(v.cpu)

	w, _ := v.screen.size()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			got := v.screen.bg[y*w+x]
			assert(t, got == 1, "expected colour 1 at (%d,%d), got %d", x, y, got)
		}
	}
}

// Scenario 4: two console bytes delivered across separate Update calls,
// echoed by a vector that writes the read port straight back to the
// write port, produce concatenated stdout.
func TestConsoleEchoAcrossTwoUpdates(t *testing.T) {
	v := New(nil, t.TempDir())

	// Echo vector: LIT #read-port ; DEI ; LIT #write-port ; DEO ; BRK
	vector := uint16(0x1000)
	prog := []byte{
		0x80, consoleBase | conRead, // LIT #read-port
		0x16,                         // DEI
		0x80, consoleBase | conWrite, // LIT #write-port
		0x17, // DEO
		0x00, // BRK
	}
	copy(v.cpu.Memory[vector:], prog)
	v.cpu.WriteDev16(consoleBase|conVector, vector)

	a := byte('a')
	out1 := v.Update(Input{Console: &a})
	b := byte('b')
	out2 := v.Update(Input{Console: &b})

	out := append(append([]byte{}, out1.Stdout...), out2.Stdout...)
	assert(t, string(out) == "ab", "expected stdout %q, got %q", "ab", out)
}

// Scenario 5: a non-looping stream reaching its sample length fires its
// vector exactly once.
func TestAudioVectorFiresOnceOnNaturalEnd(t *testing.T) {
	v := New(nil, t.TempDir())

	addr := uint16(0x3000)
	samples := []byte{0x80, 0x00, 0x80, 0x00}
	for i, b := range samples {
		v.cpu.Write8(addr+uint16(i), b)
	}

	vector := uint16(0x1100)
	v.cpu.Memory[vector] = 0x00 // BRK; presence alone is enough to prove a single run
	v.cpu.WriteDev16(audioBase|audVector, vector)
	v.cpu.WriteDev16(audioBase|audAddr, addr)
	v.cpu.WriteDev16(audioBase|audLength, uint16(len(samples)))
	v.cpu.WriteDev(audioBase|audPitch, 0x3C) // note 60, no loop bit

	v.audio.keyOn(v.cpu, audioBase, &v.audio.streams[0], &v.queue)

	buf := make([][2]float64, 4096)
	for !v.audio.streams[0].Render(buf) {
	}

	fired := 0
	v.audio.pollFinished(v.cpu, &v.queue)
	for !v.queue.empty() {
		e, _ := v.queue.popFront()
		if e.vector == vector {
			fired++
		}
	}
	assert(t, fired == 1, "expected the vector to fire exactly once, fired %d times", fired)

	v.audio.pollFinished(v.cpu, &v.queue)
	assert(t, v.queue.empty(), "a second pollFinished should not re-fire the vector")
}

// A key release that maps to no controller button bit (outside
// keyBit's mapped set) must still fire the vector: the mask delta alone
// wouldn't show it, since such a key never set a bit in the first
// place.
func TestControllerFiresVectorOnUnmappedKeyRelease(t *testing.T) {
	v := New(nil, t.TempDir())

	vector := uint16(0x1300)
	v.cpu.WriteDev16(controllerBase|ctlVector, vector)

	// buttons unchanged, no key this frame, but a release occurred.
	v.controller.update(v.cpu, v.controller.buttons, 0, true, &v.queue)

	assert(t, !v.queue.empty(), "expected the vector to fire on an unmapped key's release")
}

// Scenario 6: a mouse move to (10,5) with the left button pressed fires
// the vector once, with the expected port values.
func TestMouseUpdateFiresVectorWithCorrectPorts(t *testing.T) {
	v := New(nil, t.TempDir())

	vector := uint16(0x1200)
	v.cpu.WriteDev16(mouseBase|mouVector, vector)

	v.mouse.update(v.cpu, 10, 5, mouLeft, 0, 0, &v.queue)

	assert(t, !v.queue.empty(), "expected a vector to be queued")
	e, _ := v.queue.popFront()
	assert(t, e.vector == vector, "expected vector %#04x, got %#04x", vector, e.vector)
	assert(t, v.queue.empty(), "expected exactly one queued event")

	assert(t, v.cpu.ReadDev16(mouseBase|mouX) == 10, "expected x=10, got %d", v.cpu.ReadDev16(mouseBase|mouX))
	assert(t, v.cpu.ReadDev16(mouseBase|mouY) == 5, "expected y=5, got %d", v.cpu.ReadDev16(mouseBase|mouY))
	assert(t, v.cpu.ReadDev(mouseBase|mouState)&mouLeft != 0, "expected left button bit set")
}

func TestPaletteSharesNibblesAcrossFourEntries(t *testing.T) {
	v := New(nil, t.TempDir())
	v.cpu.WriteDev(systemBase|sysRed, 0xA5)
	v.cpu.WriteDev(systemBase|sysGreen, 0x00)
	v.cpu.WriteDev(systemBase|sysBlue, 0x00)

	pal := v.system.Palette(v.cpu)
	assert(t, pal[0][0] == pal[2][0], "entries 0 and 2 should share the low-nibble colour")
	assert(t, pal[1][0] == pal[3][0], "entries 1 and 3 should share the high-nibble colour")
	assert(t, pal[0][0] != pal[1][0], "low and high nibble colours should differ for 0xA5")
}

func TestFileSandboxConfinesEscapeAttempt(t *testing.T) {
	root := t.TempDir()
	f := newFile(root)
	path, err := f.resolve("../../etc/passwd")
	assert(t, err == nil, "resolve should sanitize rather than error: %v", err)

	rel, relErr := filepath.Rel(root, path)
	assert(t, relErr == nil && !strings.HasPrefix(rel, ".."), "resolved path %q escaped root %q", path, root)
}

func TestUnknownDeviceSlotWarnsOnceNotFatal(t *testing.T) {
	v := New(nil, t.TempDir())
	ok1 := v.Deo(v.cpu, 0xD0)
	ok2 := v.Deo(v.cpu, 0xD5)
	assert(t, ok1 && ok2, "writes to an unimplemented slot must not halt the CPU")
	assert(t, v.warned[0xD], "the slot should be marked warned after the first hit")
}
