package varvara

import (
	"math"
	"sync"

	"github.com/coldbrew/uxnvm/uxn"
)

// audioBase is the slot of the first audio channel; the other three sit
// at 0x40/0x50/0x60, and the stream index (0-3) is resolved via
// audioIndex.
const audioBase = 0x30

// Audio ports, offsets within each of the four 16-byte slots.
const (
	audVector = 0x00 // +0x01
	audPos    = 0x02 // +0x03, read-only play head
	audADSR   = 0x04
	audLength = 0x05 // +0x06
	audAddr   = 0x0C // +0x0D
	audVolume = 0x0E
	audPitch  = 0x0F
)

const (
	pitchLoop = 1 << 7
	pitchNote = 0x7F
)

const sampleRate = 44100

// adsrPhase tracks where in attack/decay/sustain/release playback sits.
type adsrPhase int

const (
	phaseAttack adsrPhase = iota
	phaseDecay
	phaseSustain
	phaseRelease
	phaseDone
)

// StreamData is the shared, lock-guarded state for one audio channel.
// The CPU thread mutates it briefly on port access; the host audio
// thread locks it to pull rendered samples. Hold times on both sides
// must stay short so neither starves the other.
type StreamData struct {
	mu sync.Mutex

	addr   uint16
	length uint16
	pos    uint32 // fixed-point, 16.16
	step   uint32 // fixed-point playback rate per sample frame

	attack, decay, sustain, release byte
	phase                           adsrPhase
	phaseCounter                    uint32
	envelope                        byte // current amplitude, 0-255

	volume   byte
	loop     bool
	active   bool
	finished bool // set by render on natural end; polled and cleared by Audio.pollFinished
	cpu      *uxn.CPU
}

// Render fills buf (interleaved stereo, one sample pair per frame) by
// linearly interpolating from the CPU's main memory sample buffer,
// advancing the play head by step each frame. Returns true if the
// stream reached its natural end during this call. Called from the
// host audio thread; it locks internally.
func (s *StreamData) Render(buf [][2]float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || s.cpu == nil || s.length == 0 {
		for i := range buf {
			buf[i] = [2]float64{0, 0}
		}
		return false
	}

	finished := false
	for i := range buf {
		if !s.active {
			buf[i] = [2]float64{0, 0}
			continue
		}
		idx := s.pos >> 16
		frac := float64(s.pos&0xFFFF) / 65536.0
		if idx+1 >= uint32(s.length) {
			idx = uint32(s.length) - 1
			frac = 0
		}
		a := float64(int8(s.cpu.Read8(s.addr + uint16(idx))))
		b := a
		if idx+1 < uint32(s.length) {
			b = float64(int8(s.cpu.Read8(s.addr + uint16(idx) + 1)))
		}
		sample := (a + (b-a)*frac) / 128.0
		amp := float64(s.envelope) / 255.0 * float64(s.volume) / 255.0
		buf[i] = [2]float64{sample * amp, sample * amp}

		s.advanceEnvelope()
		s.pos += s.step
		if s.pos>>16 >= uint32(s.length) {
			if s.loop {
				s.pos = 0
			} else {
				s.active = false
				s.finished = true
				finished = true
			}
		}
	}
	return finished
}

// advanceEnvelope steps the ADSR state machine by one sample frame.
func (s *StreamData) advanceEnvelope() {
	switch s.phase {
	case phaseAttack:
		if s.attack == 0 {
			s.envelope = 255
			s.phase = phaseDecay
			s.phaseCounter = 0
			return
		}
		s.phaseCounter++
		step := uint32(s.attack) * 8
		if step == 0 {
			step = 1
		}
		s.envelope = byte(min32(255, s.phaseCounter*255/step))
		if s.phaseCounter >= step {
			s.phase = phaseDecay
			s.phaseCounter = 0
		}
	case phaseDecay:
		target := s.sustain
		if s.decay == 0 {
			s.envelope = target
			s.phase = phaseSustain
			return
		}
		s.phaseCounter++
		step := uint32(s.decay) * 8
		if step == 0 {
			step = 1
		}
		if s.phaseCounter >= step {
			s.envelope = target
			s.phase = phaseSustain
			s.phaseCounter = 0
			return
		}
		delta := 255 - int(target)
		s.envelope = byte(255 - delta*int(s.phaseCounter)/int(step))
	case phaseSustain:
		s.envelope = s.sustain
	case phaseRelease:
		if s.release == 0 {
			s.envelope = 0
			s.phase = phaseDone
			return
		}
		s.phaseCounter++
		step := uint32(s.release) * 8
		if step == 0 {
			step = 1
		}
		start := s.sustain
		if s.phaseCounter >= step {
			s.envelope = 0
			s.phase = phaseDone
			return
		}
		s.envelope = byte(int(start) - int(start)*int(s.phaseCounter)/int(step))
	case phaseDone:
		s.envelope = 0
	}
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// noteToRate converts a MIDI note number to a playback step relative to
// middle C (note 60) sampled at the source's native rate, expressed as
// a 16.16 fixed-point multiplier of one sample per output frame.
func noteToRate(note byte) uint32 {
	semitones := float64(int(note) - 60)
	ratio := math.Exp2(semitones / 12.0)
	return uint32(ratio * 65536.0)
}

// Audio owns the four independent channels.
type Audio struct {
	streams [4]StreamData
}

func newAudio() Audio {
	return Audio{}
}

func (a *Audio) stream(i int) *StreamData {
	return &a.streams[i]
}

// pollFinished checks every stream for a pending natural-end flag set
// by the audio thread's render call, clears it, and enqueues that
// stream's vector. Called once per host Update, since the audio thread
// itself must never touch the event queue or CPU directly.
func (a *Audio) pollFinished(cpu *uxn.CPU, q *eventQueue) {
	for i := range a.streams {
		s := &a.streams[i]
		s.mu.Lock()
		done := s.finished
		s.finished = false
		s.mu.Unlock()
		if done {
			q.pushVector(cpu.ReadDev16(a.base(i) | audVector))
		}
	}
}

func (a *Audio) base(i int) byte {
	switch i {
	case 0:
		return 0x30
	case 1:
		return 0x40
	case 2:
		return 0x50
	default:
		return 0x60
	}
}

func (a *Audio) Dei(cpu *uxn.CPU, target byte, i int) {
	s := &a.streams[i]
	switch target & 0x0F {
	case audPos:
		s.mu.Lock()
		pos := uint16(s.pos >> 16)
		s.mu.Unlock()
		cpu.WriteDev16(a.base(i)|audPos, pos)
	}
}

func (a *Audio) Deo(cpu *uxn.CPU, target byte, i int, q *eventQueue) {
	base := a.base(i)
	s := &a.streams[i]
	switch target & 0x0F {
	case audADSR:
		// The port packs all four ADSR stages into a single byte's two
		// nibbles (documented resolution of the same one-byte-for-many-
		// values underspecification as System.Palette): attack/decay
		// share the high nibble's value, sustain/release the low
		// nibble's, each scaled out to a full 0-255 stage length.
		s.mu.Lock()
		packed := cpu.ReadDev(base | audADSR)
		hi, lo := packed>>4, packed&0x0F
		s.attack = hi * 17
		s.decay = hi * 17
		s.sustain = lo * 17
		s.release = lo * 17
		s.mu.Unlock()
	case audLength + 1:
		length := cpu.ReadDev16(base | audLength)
		s.mu.Lock()
		s.length = length
		s.pos = 0
		s.mu.Unlock()
	case audPitch:
		a.keyOn(cpu, base, s, q)
	}
}

// keyOn starts or stops playback. DEO of the pitch port with a nonzero
// length begins a new note at the pitch-derived rate; a zero length
// stops the stream outright.
func (a *Audio) keyOn(cpu *uxn.CPU, base byte, s *StreamData, q *eventQueue) {
	pitch := cpu.ReadDev(base | audPitch)
	length := cpu.ReadDev16(base | audLength)
	addr := cpu.ReadDev16(base | audAddr)

	s.mu.Lock()
	if length == 0 {
		s.active = false
		s.mu.Unlock()
		q.pushVector(cpu.ReadDev16(base | audVector))
		return
	}
	s.addr = addr
	s.length = length
	s.pos = 0
	s.loop = pitch&pitchLoop != 0
	s.step = noteToRate(pitch & pitchNote)
	s.phase = phaseAttack
	s.phaseCounter = 0
	s.envelope = 0
	s.volume = cpu.ReadDev(base | audVolume)
	s.active = true
	s.cpu = cpu
	s.mu.Unlock()
}
