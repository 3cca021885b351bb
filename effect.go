package retro

import (
	"fmt"
	"math"
)

// Effect selects one post-processing effect applied to the display.
type Effect int

const (
	EffectScanlines Effect = iota
	EffectNoise
	EffectDesaturation
	EffectCurvature
	EffectSlide
	EffectWipe
	EffectShake
	EffectZoom
	EffectRotation
	EffectColorFade
	EffectColorTint
	EffectNegative
	EffectPixelate
	EffectPinhole
	EffectInvertedPinhole
	EffectFizzle
	EffectChromaticAberration

	effectCount
)

var effectNames = [effectCount]string{
	"scanlines", "noise", "desaturation", "curvature", "slide", "wipe",
	"shake", "zoom", "rotation", "color_fade", "color_tint", "negative",
	"pixelate", "pinhole", "inverted_pinhole", "fizzle", "chromatic_aberration",
}

func (e Effect) String() string {
	if e.valid() {
		return effectNames[e]
	}
	return fmt.Sprintf("Effect(%d)", int(e))
}

func (e Effect) valid() bool {
	return e >= 0 && e < effectCount
}

// EffectParams is the configurable state of one effect. Intensity runs from
// 0 (off) to 1. Param is effect specific: the slide or wipe direction, the
// pinhole center, or the pixelate block size.
type EffectParams struct {
	Intensity float32
	Param     Vector2i
	Color     ColorValue
}

// EffectState is the state of the effect buffer.
type EffectState int

const (
	// EffectIdle means every effect is at its defaults.
	EffectIdle EffectState = iota
	// EffectConfigured means at least one effect was set since the last reset.
	EffectConfigured
)

func (s EffectState) String() string {
	if s == EffectConfigured {
		return "configured"
	}
	return "idle"
}

// ResolvedEffect is an effect with its color resolved to RGBA.
type ResolvedEffect struct {
	Intensity float32
	Param     Vector2i
	Color     ColorRGBA
}

// EffectComposite is the point-in-time snapshot handed to the backend when
// effects are applied. Shader is the custom post shader slot or -1.
type EffectComposite struct {
	Effects [effectCount]ResolvedEffect
	Shader  int
}

// Get returns the snapshot of one effect.
func (c EffectComposite) Get(e Effect) ResolvedEffect {
	if !e.valid() {
		return ResolvedEffect{}
	}
	return c.Effects[e]
}

// Active reports whether any effect or a custom shader would change the image.
func (c EffectComposite) Active() bool {
	if c.Shader >= 0 {
		return true
	}
	for _, e := range c.Effects {
		if e.Intensity > 0 {
			return true
		}
	}
	return false
}

// effectBuffer accumulates effect parameters across a frame. Each setter
// writes a single field; ApplyNow snapshots without clearing and only reset
// restores the defaults.
type effectBuffer struct {
	params  [effectCount]EffectParams
	touched bool
	shader  int
	mode    ColorMode
}

func newEffectBuffer(mode ColorMode) *effectBuffer {
	b := &effectBuffer{mode: mode}
	b.reset()
	return b
}

func (b *effectBuffer) defaultColor() ColorValue {
	if b.mode == ColorModeIndexed {
		return Index(0)
	}
	return RGBA(ColorBlack)
}

func (b *effectBuffer) reset() {
	for i := range b.params {
		b.params[i] = EffectParams{Color: b.defaultColor()}
	}
	b.touched = false
	b.shader = -1
}

func validIntensity(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clampIntensity(v float32) float32 {
	return max(0, min(1, v))
}

func (b *effectBuffer) setIntensity(e Effect, v float32) bool {
	if !e.valid() || !validIntensity(v) {
		return false
	}
	b.params[e].Intensity = clampIntensity(v)
	b.touched = true
	return true
}

func (b *effectBuffer) setParam(e Effect, p Vector2i) bool {
	if !e.valid() {
		return false
	}
	b.params[e].Param = p
	b.touched = true
	return true
}

// setColor expects c to be validated against the mode already.
func (b *effectBuffer) setColor(e Effect, c ColorValue) bool {
	if !e.valid() {
		return false
	}
	b.params[e].Color = c
	b.touched = true
	return true
}

func (b *effectBuffer) get(e Effect) EffectParams {
	if !e.valid() {
		return EffectParams{}
	}
	return b.params[e]
}

func (b *effectBuffer) state() EffectState {
	if b.touched || b.shader >= 0 {
		return EffectConfigured
	}
	return EffectIdle
}

// snapshot resolves every color with resolve and returns the composite.
func (b *effectBuffer) snapshot(resolve func(ColorValue) ColorRGBA) EffectComposite {
	c := EffectComposite{Shader: b.shader}
	for i, p := range b.params {
		c.Effects[i] = ResolvedEffect{
			Intensity: p.Intensity,
			Param:     p.Param,
			Color:     resolve(p.Color),
		}
	}
	return c
}
