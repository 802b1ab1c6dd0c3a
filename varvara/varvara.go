package varvara

// Input is one frame's worth of host-observed input, handed to Update.
type Input struct {
	MouseX, MouseY int
	MouseButtons   byte
	WheelX, WheelY int8
	Pressed        []byte // ASCII key codes pressed since the last Update
	Released       []byte
	Shift          bool
	Console        *byte // one inbound stdin byte, if any
}

// Output is the aggregated result of one Update: everything the host
// needs to render a frame and forward side channels, gathered only
// between vectors per the ordering guarantee in SPEC_FULL.md §5.
type Output struct {
	Width, Height int
	Frame         []byte // RGBA, row-major
	HideMouse     bool
	Stdout        []byte
	Stderr        []byte
	Exit          *int
}

// Load installs rom at 0x0100, resets both stacks, and runs the reset
// vector to completion.
func (v *Varvara) Load(rom []byte) (truncated bool) {
	v.cpu.Reset()
	truncated = v.cpu.Load(rom)
	v.cpu.Run(0x0100)
	return truncated
}

// SendArgs feeds each CLI argument byte through the console vector with
// the argument type tags, then drains the resulting events.
func (v *Varvara) SendArgs(args []string) {
	v.console.sendArgs(v.cpu, args, &v.queue)
	v.drain()
}

// Update applies one frame of host input to the controller and mouse
// peripherals, lets any audio streams that finished since the last
// frame fire their vectors, drains the event queue, and returns the
// aggregated output.
func (v *Varvara) Update(in Input) Output {
	v.controller.setShift(in.Shift)

	var key byte
	if len(in.Pressed) > 0 {
		key = in.Pressed[0]
	}
	v.controller.update(v.cpu, v.controllerButtons(in), key, len(in.Released) > 0, &v.queue)

	v.mouse.update(v.cpu, in.MouseX, in.MouseY, in.MouseButtons, in.WheelX, in.WheelY, &v.queue)

	if in.Console != nil {
		v.console.update(v.cpu, *in.Console, &v.queue)
	}

	v.audio.pollFinished(v.cpu, &v.queue)

	v.drain()

	w, h := v.screen.size()
	return Output{
		Width:     w,
		Height:    h,
		Frame:     v.screen.composite(v.system.Palette(v.cpu)),
		HideMouse: !v.mouse.isActive(),
		Stdout:    v.console.takeStdout(),
		Stderr:    v.console.takeStderr(),
		Exit:      v.system.Exit(),
	}
}

// controllerButtons tracks which bits are currently held by scanning
// Pressed/Released against the last reported mask, since Input only
// reports deltas rather than a steady-state bitfield.
func (v *Varvara) controllerButtons(in Input) byte {
	mask := v.controller.buttons
	for _, k := range in.Released {
		mask &^= keyBit(k)
	}
	for _, k := range in.Pressed {
		mask |= keyBit(k)
	}
	return mask
}

// keyBit maps an ASCII arrow/action key code onto the controller's
// button mask bits; anything else contributes no bits (it still flows
// through as the one-shot key port via Update's key argument).
func keyBit(k byte) byte {
	switch k {
	case 'z':
		return CtlA
	case 'x':
		return CtlB
	case 'a':
		return CtlSel
	case 's':
		return CtlStart
	case 17: // up
		return CtlUp
	case 18: // down
		return CtlDown
	case 19: // left
		return CtlLeft
	case 20: // right
		return CtlRight
	default:
		return 0
	}
}

// Redraw invokes the screen vector and should be called at 60 Hz,
// independent of Update.
func (v *Varvara) Redraw() {
	v.queue.pushVector(v.screen.vector(v.cpu))
	v.drain()
}

// drain applies queued events in FIFO order: poke, then run vector to
// completion, until the queue is empty — including events appended
// during a vector's own run.
func (v *Varvara) drain() {
	for {
		e, ok := v.queue.popFront()
		if !ok {
			return
		}
		if e.hasPort {
			v.cpu.WriteDev(e.port, e.value)
		}
		if e.vector != 0 {
			v.cpu.Run(e.vector)
		}
	}
}
