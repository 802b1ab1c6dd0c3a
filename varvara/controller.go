package varvara

import "github.com/coldbrew/uxnvm/uxn"

const controllerBase = 0x80

// Controller ports, offsets within the 0x80 slot.
const (
	ctlVector = 0x00 // +0x01
	ctlButton = 0x02
	ctlKey    = 0x03
)

// button mask bits within ctlButton.
const (
	CtlA     = 1 << 0
	CtlB     = 1 << 1
	CtlSel   = 1 << 2
	CtlStart = 1 << 3
	CtlUp    = 1 << 4
	CtlDown  = 1 << 5
	CtlLeft  = 1 << 6
	CtlRight = 1 << 7
)

// Controller implements slot 0x80: a button bitfield and a one-shot
// ASCII key port. Shift is tracked separately since it isn't part of
// the button mask, but the host still needs to know whether it's held
// (e.g. to render shifted glyphs).
type Controller struct {
	buttons byte
	shift   bool
}

func newController() Controller {
	return Controller{}
}

func (c *Controller) shiftHeld() bool {
	return c.shift
}

// setShift records shift key state out-of-band; it never contributes to
// the button mask and never fires the vector on its own.
func (c *Controller) setShift(held bool) {
	c.shift = held
}

// update pushes a new button mask and/or ASCII key into the device
// page and enqueues the vector, firing on a button-state change, any
// nonzero key delivery (press or, per the port's one-shot read, the
// release that clears it back to zero), or a key release that carries
// no mask bit of its own (released is true whenever the host reports
// at least one key let go this frame, even one outside keyBit's mapped
// set, since the mask-delta alone would otherwise miss it).
func (c *Controller) update(cpu *uxn.CPU, buttons byte, key byte, released bool, q *eventQueue) {
	changed := buttons != c.buttons || key != 0 || released
	c.buttons = buttons

	cpu.WriteDev(controllerBase|ctlButton, buttons)
	cpu.WriteDev(controllerBase|ctlKey, key)

	if changed {
		q.pushVector(cpu.ReadDev16(controllerBase | ctlVector))
	}
}
