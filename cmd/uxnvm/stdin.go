package cmd

import (
	"bufio"
	"os"
)

// stdinReader is the one goroutine in the process allowed to touch
// os.Stdin, posting bytes onto a bounded channel the main loop drains
// once per frame. Grounded on the one-reader-goroutine-owns-stdin
// pattern used for console input in the retrieved bytecode-VM example.
type stdinReader struct {
	bytes chan byte
}

func newStdinReader() *stdinReader {
	return &stdinReader{bytes: make(chan byte, 256)}
}

func (r *stdinReader) run() {
	reader := bufio.NewReader(os.Stdin)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return
		}
		r.bytes <- b
	}
}

// take returns the next pending byte, if any, without blocking.
func (r *stdinReader) take() (byte, bool) {
	select {
	case b := <-r.bytes:
		return b, true
	default:
		return 0, false
	}
}
