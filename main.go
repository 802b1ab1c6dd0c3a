package main

import (
	"github.com/faiface/pixel/pixelgl"

	"github.com/coldbrew/uxnvm/cmd/uxnvm"
)

func main() {
	// pixelgl needs the OS main thread, so cmd.Execute runs inside
	// pixelgl.Run rather than being called directly.
	pixelgl.Run(cmd.Execute)
}
