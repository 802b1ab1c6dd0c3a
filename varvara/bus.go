// Package varvara implements the Varvara peripheral bus: the sixteen
// device-page slots, the event queue that turns host input into vector
// invocations, and the host-facing Input/Output/Update contract. It has
// no idea how a frame gets on screen or a sample gets to a speaker —
// that's internal/display and internal/audioout's job.
package varvara

import (
	"github.com/sirupsen/logrus"

	"github.com/coldbrew/uxnvm/internal/vmlog"
	"github.com/coldbrew/uxnvm/uxn"
)

// Varvara is the full Varvara device bus: one instance per running
// machine, created once at ROM load and handed to the CPU as its
// uxn.Device for the remainder of the process.
type Varvara struct {
	cpu *uxn.CPU

	system     System
	console    Console
	datetime   Datetime
	screen     Screen
	mouse      Mouse
	controller Controller
	audio      Audio
	files      [2]File

	queue eventQueue

	log    *logrus.Logger
	warned [16]bool
}

// New builds a fresh Varvara bus and CPU, with a default 512x320 screen
// matching the reference host's default window size. sandboxRoot scopes
// the file peripheral's two instances; an empty string defaults to the
// process's current directory.
func New(log *logrus.Logger, sandboxRoot string) *Varvara {
	if log == nil {
		log = vmlog.Discard()
	}
	if sandboxRoot == "" {
		sandboxRoot = "."
	}
	v := &Varvara{
		cpu:        uxn.New(),
		console:    newConsole(),
		screen:     newScreen(512, 320),
		mouse:      newMouse(),
		controller: newController(),
		audio:      newAudio(),
		log:        log,
	}
	v.files[0] = newFile(sandboxRoot)
	v.files[1] = newFile(sandboxRoot)
	v.cpu.SetDevice(v)
	return v
}

// Dei implements uxn.Device.
func (v *Varvara) Dei(cpu *uxn.CPU, target byte) {
	switch target & 0xF0 {
	case systemBase:
		v.system.Dei(cpu, target)
	case consoleBase:
		v.console.Dei(cpu, target)
	case datetimeBase:
		v.datetime.Dei(cpu, target)
	case screenBase:
		v.screen.Dei(cpu, target)
	case mouseBase:
		v.mouse.setActive()
	case controllerBase:
		// controller state is pushed in by Update, not probed on DEI
	default:
		if i, ok := audioIndex(target); ok {
			v.audio.Dei(cpu, target, i)
		} else if i, ok := fileIndex(target); ok {
			v.files[i].Dei(cpu, target)
		} else {
			v.warnMissing(target)
		}
	}
}

// Deo implements uxn.Device. The returned bool is false only once the
// system peripheral has recorded an exit code.
func (v *Varvara) Deo(cpu *uxn.CPU, target byte) bool {
	switch target & 0xF0 {
	case systemBase:
		v.system.Deo(cpu, target)
	case consoleBase:
		v.console.Deo(cpu, target, &v.queue)
	case datetimeBase:
		// DEI-only peripheral; a DEO here has no effect
	case screenBase:
		v.screen.Deo(cpu, target, &v.queue)
	case mouseBase:
		v.mouse.setActive()
	case controllerBase:
		// button/key state is pushed in by Update, not written by the ROM
	default:
		if i, ok := audioIndex(target); ok {
			v.audio.Deo(cpu, target, i, &v.queue)
		} else if i, ok := fileIndex(target); ok {
			v.files[i].Deo(cpu, target)
		} else {
			v.warnMissing(target)
		}
	}
	return !v.system.shouldExit()
}

func (v *Varvara) warnMissing(target byte) {
	slot := target >> 4
	if v.warned[slot] {
		return
	}
	v.warned[slot] = true
	v.log.Warnf("unimplemented device %#02x", target)
}

// audioIndex reports whether target belongs to one of the four audio
// channel slots, and which channel.
func audioIndex(target byte) (int, bool) {
	switch target & 0xF0 {
	case 0x30:
		return 0, true
	case 0x40:
		return 1, true
	case 0x50:
		return 2, true
	case 0x60:
		return 3, true
	default:
		return 0, false
	}
}

// fileIndex reports whether target belongs to one of the two file
// peripheral slots, and which instance.
func fileIndex(target byte) (int, bool) {
	switch target & 0xF0 {
	case 0xA0:
		return 0, true
	case 0xB0:
		return 1, true
	default:
		return 0, false
	}
}

// ScreenSize returns the current screen dimensions.
func (v *Varvara) ScreenSize() (int, int) {
	return v.screen.size()
}

// ShiftHeld reports whether the controller's shift key is currently
// tracked as down.
func (v *Varvara) ShiftHeld() bool {
	return v.controller.shiftHeld()
}

// AudioStream lends the host audio thread a handle to the given
// channel's shared stream data. Panics if i >= 4, per the contract: the
// host should never ask for a stream that doesn't exist.
func (v *Varvara) AudioStream(i int) *StreamData {
	return v.audio.stream(i)
}
