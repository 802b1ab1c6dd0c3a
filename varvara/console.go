package varvara

import "github.com/coldbrew/uxnvm/uxn"

const consoleBase = 0x10

const (
	conVector = 0x00 // +0x01
	conRead   = 0x02
	conType   = 0x05
	conWrite  = 0x08
	conError  = 0x09
)

// Console type tags, written to conType alongside each inbound byte.
const (
	TypeStdin      = 1
	TypeArg        = 2
	TypeArgSpacer  = 3
	TypeArgEnd     = 4
)

// Console implements slot 0x10: the input byte, stdout/stderr sinks,
// and the type tag distinguishing stdin bytes from argument delivery.
type Console struct {
	stdout []byte
	stderr []byte
}

func newConsole() Console {
	return Console{}
}

func (c *Console) Dei(cpu *uxn.CPU, target byte) {
	// conRead is a plain passive port: the host already poked it via
	// the event queue before the vector ran, so a DEI here just returns
	// whatever's already in the device page. Nothing to probe.
	_ = target
	_ = cpu
}

func (c *Console) Deo(cpu *uxn.CPU, target byte, q *eventQueue) {
	switch target & 0x0F {
	case conWrite:
		c.stdout = append(c.stdout, cpu.ReadDev(consoleBase|conWrite))
	case conError:
		c.stderr = append(c.stderr, cpu.ReadDev(consoleBase|conError))
	}
}

func (c *Console) vector(cpu *uxn.CPU) uint16 {
	return cpu.ReadDev16(consoleBase | conVector)
}

// deliver pushes two events for one inbound byte: a type-tag poke that
// runs no vector, followed by the data poke that runs the console
// vector. Splitting into two queue entries (rather than writing the
// type tag immediately) matters once more than one byte is queued
// before the drain loop runs — e.g. sendArgs below — so each byte's
// vector sees its own tag rather than whichever tag was written last.
func (c *Console) deliver(tag, b byte, vector uint16, q *eventQueue) {
	q.pushPoke(consoleBase|conType, tag, 0)
	q.pushPoke(consoleBase|conRead, b, vector)
}

// update delivers one inbound console byte, tagging it as stdin, and
// enqueues the console vector.
func (c *Console) update(cpu *uxn.CPU, b byte, q *eventQueue) {
	c.deliver(TypeStdin, b, c.vector(cpu), q)
}

// sendArgs feeds each byte of each argument through the console vector
// with the argument type tags, one byte per event, spacer between
// arguments, end tag on the final byte — matching uxntal's CLI argument
// delivery convention.
func (c *Console) sendArgs(cpu *uxn.CPU, args []string, q *eventQueue) {
	vector := c.vector(cpu)
	for ai, arg := range args {
		for i := 0; i < len(arg); i++ {
			tag := byte(TypeArg)
			if ai == len(args)-1 && i == len(arg)-1 {
				tag = TypeArgEnd
			}
			c.deliver(tag, arg[i], vector, q)
		}
		if ai != len(args)-1 {
			c.deliver(TypeArgSpacer, ' ', vector, q)
		}
	}
}

func (c *Console) takeStdout() []byte {
	out := c.stdout
	c.stdout = nil
	return out
}

func (c *Console) takeStderr() []byte {
	out := c.stderr
	c.stderr = nil
	return out
}
