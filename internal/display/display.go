// Package display renders a Varvara output frame to screen and turns
// window events into the Input record the core expects. Adapted from
// the teacher's fixed-size 1bpp keypad-and-grid window into one that
// blits an arbitrary-size RGBA frame and tracks the Varvara
// controller/mouse port layout instead of a 16-key hex pad.
package display

import (
	"image"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"

	"github.com/coldbrew/uxnvm/varvara"
)

// Window wraps a pixelgl window sized to the current Varvara frame,
// along with the keymap translating physical keys into the ASCII codes
// Varvara's controller peripheral expects.
type Window struct {
	*pixelgl.Window
	keymap      map[pixelgl.Button]byte
	frameWidth  int
	frameHeight int
}

// New opens a window sized width*scale by height*scale, title "uxnvm".
func New(width, height int, scale float64) (*Window, error) {
	cfg := pixelgl.WindowConfig{
		Title:  "uxnvm",
		Bounds: pixel.R(0, 0, float64(width)*scale, float64(height)*scale),
		VSync:  true,
	}
	win, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, err
	}
	win.Clear(colornames.Black)
	return &Window{
		Window:      win,
		keymap:      defaultKeymap(),
		frameWidth:  width,
		frameHeight: height,
	}, nil
}

// defaultKeymap maps the keys the controller peripheral's key port
// understands onto pixelgl buttons: the four directions, two action
// buttons, select/start, and shift.
func defaultKeymap() map[pixelgl.Button]byte {
	return map[pixelgl.Button]byte{
		pixelgl.KeyUp:        17,
		pixelgl.KeyDown:      18,
		pixelgl.KeyLeft:      19,
		pixelgl.KeyRight:     20,
		pixelgl.KeyZ:         'z',
		pixelgl.KeyX:         'x',
		pixelgl.KeyA:         'a',
		pixelgl.KeyS:         's',
		pixelgl.KeyLeftShift: 0, // tracked separately via Shift(), not a key code
	}
}

// Shift reports whether either shift key is currently held.
func (w *Window) Shift() bool {
	return w.Pressed(pixelgl.KeyLeftShift) || w.Pressed(pixelgl.KeyRightShift)
}

// PressedKeys scans the keymap and returns the ASCII codes for every
// tracked key that is newly pressed or newly released this frame,
// relying on pixelgl's own JustPressed/JustReleased edge detection.
func (w *Window) PressedKeys() (pressed, released []byte) {
	for btn, code := range w.keymap {
		if code == 0 {
			continue
		}
		if w.JustPressed(btn) {
			pressed = append(pressed, code)
		}
		if w.JustReleased(btn) {
			released = append(released, code)
		}
	}
	return pressed, released
}

// MousePosition returns the cursor position in frame pixel coordinates,
// flipped to Varvara's top-left origin (pixelgl's is bottom-left).
func (w *Window) MousePosition(frameHeight int) (int, int) {
	pos := w.Window.MousePosition()
	bounds := w.Window.Bounds()
	scaleX := float64(w.frameWidth) / bounds.W()
	scaleY := float64(w.frameHeight) / bounds.H()
	x := int(pos.X * scaleX)
	y := frameHeight - int(pos.Y*scaleY)
	return x, y
}

// MouseButtons packs the three mouse buttons into Varvara's state mask.
func (w *Window) MouseButtons() byte {
	var mask byte
	if w.Pressed(pixelgl.MouseButtonLeft) {
		mask |= 1 << 0
	}
	if w.Pressed(pixelgl.MouseButtonRight) {
		mask |= 1 << 1
	}
	if w.Pressed(pixelgl.MouseButtonMiddle) {
		mask |= 1 << 2
	}
	return mask
}

// Draw blits out, a row-major RGBA frame, onto the window stretched to
// the window's current bounds.
func (w *Window) Draw(out varvara.Output) {
	w.frameWidth, w.frameHeight = out.Width, out.Height

	img := image.NewRGBA(image.Rect(0, 0, out.Width, out.Height))
	// Varvara's frame is top-left-origin row-major; pixel's coordinate
	// system is bottom-left, so rows are flipped on the way into the
	// image that backs the sprite.
	for y := 0; y < out.Height; y++ {
		srcRow := out.Frame[y*out.Width*4 : (y+1)*out.Width*4]
		dstY := out.Height - 1 - y
		copy(img.Pix[dstY*img.Stride:dstY*img.Stride+len(srcRow)], srcRow)
	}

	pic := pixel.PictureDataFromImage(img)
	sprite := pixel.NewSprite(pic, pic.Bounds())

	w.Window.Clear(colornames.Black)
	bounds := w.Window.Bounds()
	mat := pixel.IM.
		ScaledXY(pixel.ZV, pixel.V(bounds.W()/float64(out.Width), bounds.H()/float64(out.Height))).
		Moved(bounds.Center())
	sprite.Draw(w.Window, mat)

	// pixelgl exposes no direct cursor-hide toggle here; until the ROM
	// claims the mouse peripheral the OS cursor is simply left showing.
	_ = out.HideMouse

	w.Window.Update()
}
