package retro

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// resampleQuality is the interpolation quality passed to beep.ResampleRatio.
const resampleQuality = 4

// BeepAudio is an AudioBackend built on gopxl/beep. Every channel is a chain
// of clip stream, resampler (pitch), volume and pause control feeding one
// mixer. The mixer only reaches the speaker once Start is called, so tests can
// pull samples from Streamer directly.
type BeepAudio struct {
	lock   sync.Locker
	rate   beep.SampleRate
	mixer  *beep.Mixer
	voices [MaxSoundChannels + 1]*voice
}

// voice is one playing clip.
type voice struct {
	src       beep.StreamSeeker
	clipRate  beep.SampleRate
	loop      bool
	done      bool
	resampler *beep.Resampler
	volume    *effects.Volume
	ctrl      *beep.Ctrl
}

// NewBeepAudio creates a backend that mixes at rate.
func NewBeepAudio(rate beep.SampleRate) *BeepAudio {
	return &BeepAudio{
		lock:  &sync.Mutex{},
		rate:  rate,
		mixer: &beep.Mixer{},
	}
}

// Start opens the speaker and plays the mixer through it. From then on the
// speaker's lock guards the channel state.
func (a *BeepAudio) Start() error {
	if err := speaker.Init(a.rate, a.rate.N(time.Second/10)); err != nil {
		return fmt.Errorf("retro: failed to open speaker: %w", err)
	}
	a.lock = speakerLock{}
	speaker.Play(a.mixer)
	return nil
}

type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// Streamer returns the mixed output. It is what Start hands to the speaker.
func (a *BeepAudio) Streamer() beep.Streamer {
	return lockedStreamer{a}
}

type lockedStreamer struct{ a *BeepAudio }

func (l lockedStreamer) Stream(samples [][2]float64) (int, bool) {
	l.a.lock.Lock()
	defer l.a.lock.Unlock()
	return l.a.mixer.Stream(samples)
}

func (l lockedStreamer) Err() error { return nil }

func (a *BeepAudio) validChannel(ch int) bool {
	return ch >= 0 && ch < len(a.voices)
}

// Play implements AudioBackend.
func (a *BeepAudio) Play(ch int, clip *SoundClip, volume, pitch float64, loop bool) error {
	if !a.validChannel(ch) {
		return fmt.Errorf("%w: audio channel %d", ErrSlotOutOfRange, ch)
	}
	if clip == nil || clip.Len() == 0 {
		return fmt.Errorf("retro: empty sound clip")
	}
	v := &voice{
		src:      clip.stream(),
		clipRate: clip.SampleRate(),
		loop:     loop,
	}
	v.resampler = beep.ResampleRatio(resampleQuality, a.ratio(v.clipRate, pitch), voiceStreamer{v})
	v.volume = &effects.Volume{Streamer: v.resampler, Base: 2}
	setVolume(v.volume, volume)
	v.ctrl = &beep.Ctrl{Streamer: v.volume}

	a.lock.Lock()
	defer a.lock.Unlock()
	if old := a.voices[ch]; old != nil {
		old.stop()
	}
	a.voices[ch] = v
	a.mixer.Add(v.ctrl)
	return nil
}

func (a *BeepAudio) ratio(clipRate beep.SampleRate, pitch float64) float64 {
	return pitch * float64(clipRate) / float64(a.rate)
}

// setVolume maps a linear 0-1 volume onto the log2 scale of effects.Volume.
func setVolume(vol *effects.Volume, v float64) {
	if v <= 0 {
		vol.Volume = 0
		vol.Silent = true
		return
	}
	vol.Volume = math.Log2(v)
	vol.Silent = false
}

// Stop implements AudioBackend.
func (a *BeepAudio) Stop(ch int) {
	if !a.validChannel(ch) {
		return
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	if v := a.voices[ch]; v != nil {
		v.stop()
		a.voices[ch] = nil
	}
}

// Playing implements AudioBackend.
func (a *BeepAudio) Playing(ch int) bool {
	if !a.validChannel(ch) {
		return false
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	v := a.voices[ch]
	return v != nil && !v.done
}

// SetVolume implements AudioBackend.
func (a *BeepAudio) SetVolume(ch int, volume float64) {
	a.withVoice(ch, func(v *voice) { setVolume(v.volume, volume) })
}

// SetPitch implements AudioBackend.
func (a *BeepAudio) SetPitch(ch int, pitch float64) {
	a.withVoice(ch, func(v *voice) { v.resampler.SetRatio(a.ratio(v.clipRate, pitch)) })
}

// SetLoop implements AudioBackend.
func (a *BeepAudio) SetLoop(ch int, loop bool) {
	a.withVoice(ch, func(v *voice) { v.loop = loop })
}

// Pause pauses or resumes every channel.
func (a *BeepAudio) Pause(paused bool) {
	a.lock.Lock()
	defer a.lock.Unlock()
	for _, v := range a.voices {
		if v != nil {
			v.ctrl.Paused = paused
		}
	}
}

func (a *BeepAudio) withVoice(ch int, fn func(v *voice)) {
	if !a.validChannel(ch) {
		return
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	if v := a.voices[ch]; v != nil && !v.done {
		fn(v)
	}
}

// stop detaches the voice from the mixer; a Ctrl without a streamer drains.
func (v *voice) stop() {
	v.done = true
	v.ctrl.Streamer = nil
}

// voiceStreamer reads the clip, rewinding at the end while the voice loops.
type voiceStreamer struct{ v *voice }

func (s voiceStreamer) Stream(samples [][2]float64) (int, bool) {
	v := s.v
	if v.done {
		return 0, false
	}
	filled := 0
	for filled < len(samples) {
		n, ok := v.src.Stream(samples[filled:])
		filled += n
		if ok && n > 0 {
			continue
		}
		if !v.loop || v.src.Len() == 0 {
			v.done = true
			break
		}
		if err := v.src.Seek(0); err != nil {
			v.done = true
			break
		}
	}
	return filled, filled > 0
}

func (s voiceStreamer) Err() error {
	return s.v.src.Err()
}
