package varvara

import "github.com/coldbrew/uxnvm/uxn"

const screenBase = 0x20

// Screen ports, offsets within the 0x20 slot.
const (
	scrVector = 0x00 // +0x01
	scrWidth  = 0x02 // +0x03
	scrHeight = 0x04 // +0x05
	scrAuto   = 0x06
	scrX      = 0x08 // +0x09
	scrY      = 0x0A // +0x0B
	scrAddr   = 0x0C // +0x0D
	scrPixel  = 0x0E
)

// pixel op bit layout (DEO of scrPixel, bit 7 clear).
const (
	pixColorMask = 0x03
	pixLayerBit  = 1 << 6
	pixAutoX     = 1 << 4
	pixAutoY     = 1 << 5
)

// sprite op bit layout (DEO of scrPixel, bit 7 selects sprite mode over
// pixel mode; bit 0 selects 2bpp source depth over 1bpp, since the
// color bits pixel mode uses at 0-1 have no meaning for a sprite draw).
// Unlike the pixel op, the sprite op's own bits carry no auto-increment
// request of their own (bits 4-5 are flip here, not auto); a sprite
// draw's x/y/address auto-increment is instead driven by the scrAuto
// port below.
const (
	sprOpBit    = 1 << 7
	sprTwoBpp   = 1 << 0
	sprFlipX    = 1 << 4
	sprFlipY    = 1 << 5
	sprLayerBit = 1 << 6
)

// scrAuto bit layout (port 0x06): controls sprite-draw auto-increment,
// since the sprite op byte's own bits 4-5 are already spoken for by
// the flip flags.
const (
	autoAddr = 1 << 0
	autoX    = 1 << 1
	autoY    = 1 << 2
)

// Screen implements slot 0x20: a background and a foreground layer of
// 2-bit palette indices, composited into an RGBA frame on each Update.
type Screen struct {
	width, height int
	bg, fg        []byte // one palette index (0-3) per pixel
	frame         []byte // RGBA, row-major, refreshed by composite
}

func newScreen(width, height int) Screen {
	s := Screen{width: width, height: height}
	s.resize(width, height)
	return s
}

func (s *Screen) size() (int, int) {
	return s.width, s.height
}

func (s *Screen) resize(width, height int) {
	s.width, s.height = width, height
	s.bg = make([]byte, width*height)
	s.fg = make([]byte, width*height)
	s.frame = make([]byte, width*height*4)
}

func (s *Screen) Dei(cpu *uxn.CPU, target byte) {
	switch target & 0x0F {
	case scrWidth:
		cpu.WriteDev16(screenBase|scrWidth, uint16(s.width))
	case scrHeight:
		cpu.WriteDev16(screenBase|scrHeight, uint16(s.height))
	}
}

func (s *Screen) Deo(cpu *uxn.CPU, target byte, q *eventQueue) {
	switch target & 0x0F {
	case scrWidth + 1:
		s.handleResize(cpu)
	case scrHeight + 1:
		s.handleResize(cpu)
	case scrPixel:
		s.runOp(cpu)
	}
}

// handleResize re-reads both width and height and rebuilds the layers
// unless they're unchanged, per the boundary behaviour that resizing to
// the same size must not clear pixels.
func (s *Screen) handleResize(cpu *uxn.CPU) {
	w := int(cpu.ReadDev16(screenBase | scrWidth))
	h := int(cpu.ReadDev16(screenBase | scrHeight))
	if w == s.width && h == s.height {
		return
	}
	if w == 0 {
		w = s.width
	}
	if h == 0 {
		h = s.height
	}
	s.resize(w, h)
}

func (s *Screen) runOp(cpu *uxn.CPU) {
	op := cpu.ReadDev(screenBase | scrPixel)
	if op&sprOpBit != 0 {
		s.drawSprite(cpu, op)
	} else {
		s.drawPixel(cpu, op)
	}
}

func (s *Screen) layerFor(fg bool) []byte {
	if fg {
		return s.fg
	}
	return s.bg
}

func (s *Screen) drawPixel(cpu *uxn.CPU, op byte) {
	x := int(cpu.ReadDev16(screenBase | scrX))
	y := int(cpu.ReadDev16(screenBase | scrY))
	color := op & pixColorMask
	layer := s.layerFor(op&pixLayerBit != 0)
	s.put(layer, x, y, color)

	if op&pixAutoX != 0 {
		x++
		cpu.WriteDev16(screenBase|scrX, uint16(x))
	}
	if op&pixAutoY != 0 {
		y++
		cpu.WriteDev16(screenBase|scrY, uint16(y))
	}
}

// drawSprite draws an 8x8 tile from main memory, 1bpp or 2bpp depending
// on op's sprTwoBpp bit; x/y/address auto-increment is driven by the
// scrAuto port rather than op, since op's own auto-shaped bits (4-5)
// are already spoken for by the flip flags.
func (s *Screen) drawSprite(cpu *uxn.CPU, op byte) {
	x := int(cpu.ReadDev16(screenBase | scrX))
	y := int(cpu.ReadDev16(screenBase | scrY))
	addr := cpu.ReadDev16(screenBase | scrAddr)
	layer := s.layerFor(op&sprLayerBit != 0)
	flipX := op&sprFlipX != 0
	flipY := op&sprFlipY != 0
	twoBpp := op&sprTwoBpp != 0

	advance := uint16(8)
	if twoBpp {
		advance = 16
	}

	for row := 0; row < 8; row++ {
		plane0 := cpu.Read8(addr + uint16(row))
		var plane1 byte
		if twoBpp {
			plane1 = cpu.Read8(addr + 8 + uint16(row))
		}
		for col := 0; col < 8; col++ {
			bit := uint(7 - col)
			lo := (plane0 >> bit) & 1
			hi := byte(0)
			if twoBpp {
				hi = (plane1 >> bit) & 1
			}
			color := hi<<1 | lo
			if color == 0 {
				continue // palette index 0 is transparent on a sprite draw
			}
			px, py := col, row
			if flipX {
				px = 7 - col
			}
			if flipY {
				py = 7 - row
			}
			s.put(layer, x+px, y+py, color)
		}
	}

	auto := cpu.ReadDev(screenBase | scrAuto)

	if auto&autoAddr != 0 {
		addr += advance
		cpu.WriteDev16(screenBase|scrAddr, addr)
	}

	if auto&autoX != 0 {
		x = (x + 8) % s.width
		cpu.WriteDev16(screenBase|scrX, uint16(x))
		if x == 0 && auto&autoY != 0 {
			y += 8
			cpu.WriteDev16(screenBase|scrY, uint16(y))
		}
	} else if auto&autoY != 0 {
		y += 8
		cpu.WriteDev16(screenBase|scrY, uint16(y))
	}
}

func (s *Screen) put(layer []byte, x, y int, color byte) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	layer[y*s.width+x] = color & 0x03
}

// vector reads the vblank vector port, without clearing anything — the
// host calls this once per frame via redraw.
func (s *Screen) vector(cpu *uxn.CPU) uint16 {
	return cpu.ReadDev16(screenBase | scrVector)
}

// composite resolves the background and foreground layers into the RGBA
// frame using the given four-colour palette: index 0 is transparent on
// the foreground (background shows through) and opaque on the
// background (it's simply the background's own colour 0).
func (s *Screen) composite(palette [4][3]byte) []byte {
	for i := 0; i < s.width*s.height; i++ {
		idx := s.bg[i]
		if fg := s.fg[i]; fg != 0 {
			idx = fg
		}
		rgb := palette[idx]
		o := i * 4
		s.frame[o+0] = rgb[0]
		s.frame[o+1] = rgb[1]
		s.frame[o+2] = rgb[2]
		s.frame[o+3] = 0xFF
	}
	return s.frame
}
