package retro

import (
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/wav"
)

// DefaultSampleRate is the output rate of BeepAudio and of synthesized clips.
const DefaultSampleRate = beep.SampleRate(44100)

// musicChannel is the channel reserved for MusicPlay; sound effects never
// use it.
const musicChannel = MaxSoundChannels

// SoundClip is a decoded, in-memory sound.
type SoundClip struct {
	buf *beep.Buffer
}

// NewSoundClip builds a clip from stereo samples in [-1, 1].
func NewSoundClip(samples [][2]float64, rate beep.SampleRate) *SoundClip {
	buf := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	pos := 0
	buf.Append(beep.StreamerFunc(func(out [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := copy(out, samples[pos:])
		pos += n
		return n, true
	}))
	return &SoundClip{buf: buf}
}

// LoadWAV decodes a WAV stream into a clip.
func LoadWAV(r io.Reader) (*SoundClip, error) {
	s, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("retro: failed to decode wav: %w", err)
	}
	defer s.Close()
	buf := beep.NewBuffer(format)
	buf.Append(s)
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("retro: failed to read wav samples: %w", err)
	}
	return &SoundClip{buf: buf}, nil
}

// Waveform selects the oscillator used by NewToneClip.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveTriangle
	WaveSawtooth
)

// NewToneClip synthesizes a tone of the given frequency and length, for
// placeholder sound effects.
func NewToneClip(wave Waveform, freq float64, d time.Duration) (*SoundClip, error) {
	var (
		tone beep.Streamer
		err  error
	)
	switch wave {
	case WaveSine:
		tone, err = generators.SineTone(DefaultSampleRate, freq)
	case WaveSquare:
		tone, err = generators.SquareTone(DefaultSampleRate, freq)
	case WaveTriangle:
		tone, err = generators.TriangleTone(DefaultSampleRate, freq)
	case WaveSawtooth:
		tone, err = generators.SawtoothTone(DefaultSampleRate, freq)
	default:
		return nil, fmt.Errorf("retro: unknown waveform %d", wave)
	}
	if err != nil {
		return nil, fmt.Errorf("retro: failed to create tone: %w", err)
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: DefaultSampleRate, NumChannels: 2, Precision: 2})
	buf.Append(beep.Take(DefaultSampleRate.N(d), tone))
	return &SoundClip{buf: buf}, nil
}

// Len returns the clip length in samples.
func (c *SoundClip) Len() int {
	return c.buf.Len()
}

// SampleRate returns the rate the clip was recorded at.
func (c *SoundClip) SampleRate() beep.SampleRate {
	return c.buf.Format().SampleRate
}

// Duration returns the clip length.
func (c *SoundClip) Duration() time.Duration {
	return c.SampleRate().D(c.buf.Len())
}

// stream returns a seekable stream over the whole clip.
func (c *SoundClip) stream() beep.StreamSeeker {
	return c.buf.Streamer(0, c.buf.Len())
}

// AudioBackend plays clips on numbered channels. Channels 0 to
// MaxSoundChannels-1 carry sound effects and channel MaxSoundChannels carries
// music. Playing a clip on a busy channel replaces what was there.
type AudioBackend interface {
	Play(channel int, clip *SoundClip, volume, pitch float64, loop bool) error
	Stop(channel int)
	Playing(channel int) bool
	SetVolume(channel int, volume float64)
	SetPitch(channel int, pitch float64)
	SetLoop(channel int, loop bool)
}

// SoundReference identifies one playback of a sound. It stays valid only
// while its sequence is the live sequence of its channel and the channel is
// still playing; after that every operation treats it as stopped.
type SoundReference struct {
	Channel  int
	Sequence uint64
}

// Pitch limits.
const (
	MinPitch = 0.1
	MaxPitch = 4.0
)

// soundChannel is the session-side view of one audio channel.
type soundChannel struct {
	seq    uint64 // 0 when idle
	volume float64
	pitch  float64
	loop   bool
}

// soundBank tracks clip slots and channel generations.
type soundBank struct {
	audio    AudioBackend
	clips    [MaxSoundSlots]*SoundClip
	channels [MaxSoundChannels + 1]soundChannel
	nextSeq  uint64
}

func newSoundBank(audio AudioBackend) *soundBank {
	return &soundBank{audio: audio}
}

func (b *soundBank) setup(slot int, clip *SoundClip) bool {
	if slot < 0 || slot >= MaxSoundSlots {
		return false
	}
	b.clips[slot] = clip
	return true
}

func (b *soundBank) busy(ch int) bool {
	return b.channels[ch].seq != 0 && b.audio.Playing(ch)
}

// pickChannel returns the first idle sound effect channel, or the one whose
// sound started longest ago.
func (b *soundBank) pickChannel() int {
	oldest := 0
	for ch := 0; ch < MaxSoundChannels; ch++ {
		if !b.busy(ch) {
			return ch
		}
		if b.channels[ch].seq < b.channels[oldest].seq {
			oldest = ch
		}
	}
	return oldest
}

func clampVolume(v float64) float64 {
	return max(0, min(1, v))
}

func clampPitch(p float64) float64 {
	return max(MinPitch, min(MaxPitch, p))
}

// play starts slot on ch and returns the new reference. The channel is left
// idle if the backend refuses.
func (b *soundBank) play(ch, slot int, volume, pitch float64, loop bool) (SoundReference, error) {
	if b.audio == nil {
		return SoundReference{}, fmt.Errorf("retro: no audio backend")
	}
	if slot < 0 || slot >= MaxSoundSlots || b.clips[slot] == nil {
		return SoundReference{}, fmt.Errorf("%w: sound slot %d", ErrSlotOutOfRange, slot)
	}
	volume, pitch = clampVolume(volume), clampPitch(pitch)
	if err := b.audio.Play(ch, b.clips[slot], volume, pitch, loop); err != nil {
		b.channels[ch] = soundChannel{}
		return SoundReference{}, err
	}
	b.nextSeq++
	b.channels[ch] = soundChannel{seq: b.nextSeq, volume: volume, pitch: pitch, loop: loop}
	return SoundReference{Channel: ch, Sequence: b.nextSeq}, nil
}

// live reports whether ref still owns its channel.
func (b *soundBank) live(ref SoundReference) bool {
	if b.audio == nil || ref.Sequence == 0 || ref.Channel < 0 || ref.Channel > musicChannel {
		return false
	}
	return b.channels[ref.Channel].seq == ref.Sequence && b.audio.Playing(ref.Channel)
}

func (b *soundBank) stop(ref SoundReference) {
	if !b.live(ref) {
		return
	}
	b.audio.Stop(ref.Channel)
	b.channels[ref.Channel] = soundChannel{}
}

func (b *soundBank) stopAll() {
	if b.audio == nil {
		return
	}
	for ch := range b.channels {
		if b.channels[ch].seq != 0 {
			b.audio.Stop(ch)
		}
		b.channels[ch] = soundChannel{}
	}
}

func (b *soundBank) setVolume(ref SoundReference, v float64) {
	if !b.live(ref) {
		return
	}
	v = clampVolume(v)
	b.channels[ref.Channel].volume = v
	b.audio.SetVolume(ref.Channel, v)
}

func (b *soundBank) volume(ref SoundReference) float64 {
	if !b.live(ref) {
		return 0
	}
	return b.channels[ref.Channel].volume
}

func (b *soundBank) setPitch(ref SoundReference, p float64) {
	if !b.live(ref) {
		return
	}
	p = clampPitch(p)
	b.channels[ref.Channel].pitch = p
	b.audio.SetPitch(ref.Channel, p)
}

func (b *soundBank) pitch(ref SoundReference) float64 {
	if !b.live(ref) {
		return 0
	}
	return b.channels[ref.Channel].pitch
}

func (b *soundBank) setLoop(ref SoundReference, loop bool) {
	if !b.live(ref) {
		return
	}
	b.channels[ref.Channel].loop = loop
	b.audio.SetLoop(ref.Channel, loop)
}

// music returns the reference of the music channel, or the zero reference.
func (b *soundBank) music() SoundReference {
	return SoundReference{Channel: musicChannel, Sequence: b.channels[musicChannel].seq}
}
