package varvara

import "github.com/coldbrew/uxnvm/uxn"

const mouseBase = 0x90

// Mouse ports, offsets within the 0x90 slot.
const (
	mouVector = 0x00 // +0x01
	mouX      = 0x02 // +0x03
	mouY      = 0x04 // +0x05
	mouState  = 0x06
	mouWheelX = 0x0A
	mouWheelY = 0x0C
)

// mouse button bits within mouState.
const (
	mouLeft   = 1 << 0
	mouRight  = 1 << 1
	mouMiddle = 1 << 2
)

// Mouse implements slot 0x90: position, button mask, and scroll wheel.
// It reports itself inactive until the ROM first touches the slot, so
// the host can leave the native cursor visible until then.
type Mouse struct {
	active bool
	x, y   int
	state  byte
}

func newMouse() Mouse {
	return Mouse{}
}

// setActive marks the peripheral as touched; called on any DEI or DEO
// within the slot.
func (m *Mouse) setActive() {
	m.active = true
}

func (m *Mouse) isActive() bool {
	return m.active
}

// update pushes the latest host mouse reading into the device page and
// enqueues the vector if anything changed since the last update.
func (m *Mouse) update(cpu *uxn.CPU, x, y int, state byte, wheelX, wheelY int8, q *eventQueue) {
	changed := x != m.x || y != m.y || state != m.state
	m.x, m.y, m.state = x, y, state

	cpu.WriteDev16(mouseBase|mouX, uint16(x))
	cpu.WriteDev16(mouseBase|mouY, uint16(y))
	cpu.WriteDev(mouseBase|mouState, state)
	cpu.WriteDev(mouseBase|mouWheelX, byte(wheelX))
	cpu.WriteDev(mouseBase|mouWheelY, byte(wheelY))

	if wheelX != 0 || wheelY != 0 {
		changed = true
	}
	if changed {
		q.pushVector(cpu.ReadDev16(mouseBase | mouVector))
	}
}
