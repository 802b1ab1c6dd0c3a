package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/coldbrew/uxnvm/internal/audioout"
	"github.com/coldbrew/uxnvm/internal/display"
	"github.com/coldbrew/uxnvm/internal/vmlog"
	"github.com/coldbrew/uxnvm/varvara"
)

const refreshRate = 60

// runCmd loads a ROM and drives the Varvara machine until the system
// peripheral requests an exit or the window is closed.
var runCmd = &cobra.Command{
	Use:   "run path/to/rom [-- vm-arg...]",
	Short: "run a Uxn ROM",
	Args:  cobra.MinimumNArgs(1),
	Run:   runROM,
}

func runROM(cmd *cobra.Command, args []string) {
	romPath := args[0]
	var vmArgs []string
	if dash := cmd.ArgsLenAtDash(); dash >= 0 && dash < len(args) {
		vmArgs = args[dash:]
		romPath = args[0]
	}

	if jit {
		fmt.Fprintln(os.Stderr, "note: -jit requested, but this build only ships the interpreter back-end (identical semantics)")
	}

	log := vmlog.New(logLevel)

	rom, err := os.ReadFile(romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading ROM %q: %v\n", romPath, err)
		os.Exit(1)
	}

	vm := varvara.New(log, ".")
	if truncated := vm.Load(rom); truncated {
		log.Warnf("ROM %q exceeded the maximum size and was truncated", romPath)
	}
	vm.SendArgs(append([]string{romPath}, vmArgs...))

	w, h := vm.ScreenSize()
	win, err := display.New(w, h, 2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening display: %v\n", err)
		os.Exit(1)
	}

	stopAudio, err := audioout.Start(vm)
	if err != nil {
		log.Warnf("audio init failed, continuing without sound: %v", err)
	} else {
		defer stopAudio()
	}

	stdin := newStdinReader()
	go stdin.run()

	ticker := time.NewTicker(time.Second / refreshRate)
	defer ticker.Stop()

	for range ticker.C {
		if win.Closed() {
			break
		}

		in := varvara.Input{
			MouseButtons: win.MouseButtons(),
			Shift:        win.Shift(),
		}
		in.MouseX, in.MouseY = win.MousePosition(h)
		in.Pressed, in.Released = win.PressedKeys()
		if b, ok := stdin.take(); ok {
			in.Console = &b
		}

		out := vm.Update(in)
		vm.Redraw()

		if len(out.Stdout) > 0 {
			os.Stdout.Write(out.Stdout)
		}
		if len(out.Stderr) > 0 {
			os.Stderr.Write(out.Stderr)
		}

		win.Draw(out)

		if out.Exit != nil {
			os.Exit(*out.Exit)
		}
	}
}
