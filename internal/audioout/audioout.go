// Package audioout plays the four Varvara audio streams through
// faiface/beep's speaker. Grounded on the teacher's ManageAudio, which
// opens a decoded mp3 and hands it to speaker.Play on an event ping;
// here each of the four streams is instead a always-resident
// beep.Streamer pulling directly from its StreamData, since Varvara
// streams are ROM-driven sample buffers rather than a single bundled
// asset.
package audioout

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/coldbrew/uxnvm/varvara"
)

const sampleRate = beep.SampleRate(44100)

// streamer adapts one Varvara StreamData into a beep.Streamer.
type streamer struct {
	data *varvara.StreamData
}

func (s streamer) Stream(samples [][2]float64) (n int, ok bool) {
	s.data.Render(samples)
	return len(samples), true
}

func (s streamer) Err() error {
	return nil
}

// Start initializes the speaker and begins playing all four channels
// of v, mixed together. Returns a stop function.
func Start(v *varvara.Varvara) (stop func(), err error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/20)); err != nil {
		return nil, err
	}
	ctrl := &beep.Ctrl{Streamer: mixChannels(v), Paused: false}
	speaker.Play(ctrl)
	return func() {
		speaker.Lock()
		ctrl.Paused = true
		speaker.Unlock()
	}, nil
}

// mixChannels combines the four per-stream streamers into one.
func mixChannels(v *varvara.Varvara) beep.Streamer {
	streamers := make([]beep.Streamer, 4)
	for i := range streamers {
		streamers[i] = streamer{data: v.AudioStream(i)}
	}
	return &mixer{streamers: streamers}
}

// mixer sums the output of several streamers sample-by-sample, since
// beep.Mix expects streamers that each terminate, whereas Varvara's
// channel streamers run for the process lifetime.
type mixer struct {
	streamers []beep.Streamer
	buf       [][2]float64
}

func (m *mixer) Stream(samples [][2]float64) (n int, ok bool) {
	if len(m.buf) < len(samples) {
		m.buf = make([][2]float64, len(samples))
	}
	for i := range samples {
		samples[i] = [2]float64{0, 0}
	}
	for _, s := range m.streamers {
		buf := m.buf[:len(samples)]
		s.Stream(buf)
		for i := range samples {
			samples[i][0] += buf[i][0]
			samples[i][1] += buf[i][1]
		}
	}
	for i := range samples {
		samples[i][0] = clamp(samples[i][0])
		samples[i][1] = clamp(samples[i][1])
	}
	return len(samples), true
}

func (m *mixer) Err() error {
	return nil
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
