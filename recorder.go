package retro

import (
	"fmt"
	"image"
)

// CommandKind identifies a recorded backend call.
type CommandKind uint8

const (
	CmdBeginFrame CommandKind = iota
	CmdSetTarget
	CmdClear
	CmdDrawQuad
	CmdApplyEffects
	CmdEndFrame
)

func (k CommandKind) String() string {
	switch k {
	case CmdBeginFrame:
		return "begin"
	case CmdSetTarget:
		return "target"
	case CmdClear:
		return "clear"
	case CmdDrawQuad:
		return "quad"
	case CmdApplyEffects:
		return "effects"
	case CmdEndFrame:
		return "end"
	}
	return fmt.Sprintf("CommandKind(%d)", uint8(k))
}

// Command is one recorded per-frame backend call. Only the field matching
// Kind is set.
type Command struct {
	Kind    CommandKind
	Target  Target
	Color   ColorRGBA
	Quad    Quad
	Effects EffectComposite
}

// Recorder is a Backend that draws nothing and records every call, for
// tests and tooling. Resource calls update its inspectable state; per-frame
// calls append to the command list.
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	Hardware   HardwareSettings
	Textures   map[TextureID]image.Image
	Offscreens map[int]Size2i
	Palette    []ColorRGBA
	Swaps      map[int][]int
	Shaders    map[int][]byte
	Uniforms   map[int]map[string]any

	// ShaderErr, when set, is returned by SetShader.
	ShaderErr error
	// InitErr, when set, is returned by Init.
	InitErr error

	commands  []Command
	lastFrame []Command
	frames    int
	target    Target
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Textures:   make(map[TextureID]image.Image),
		Offscreens: make(map[int]Size2i),
		Swaps:      make(map[int][]int),
		Shaders:    make(map[int][]byte),
		Uniforms:   make(map[int]map[string]any),
	}
}

func (r *Recorder) Init(hw HardwareSettings) error {
	if r.InitErr != nil {
		return r.InitErr
	}
	r.Hardware = hw
	return nil
}

func (r *Recorder) BeginFrame() {
	r.commands = r.commands[:0]
	r.target = DisplayTarget
	r.record(Command{Kind: CmdBeginFrame})
}

func (r *Recorder) SetTarget(t Target) {
	r.target = t
	r.record(Command{Kind: CmdSetTarget, Target: t})
}

func (r *Recorder) ClearTarget(c ColorRGBA) {
	r.record(Command{Kind: CmdClear, Target: r.target, Color: c})
}

func (r *Recorder) DrawQuad(q Quad) {
	r.record(Command{Kind: CmdDrawQuad, Target: r.target, Quad: q})
}

func (r *Recorder) ApplyEffects(c EffectComposite) {
	r.record(Command{Kind: CmdApplyEffects, Effects: c})
}

func (r *Recorder) EndFrame() {
	r.record(Command{Kind: CmdEndFrame})
	r.lastFrame = append(r.lastFrame[:0], r.commands...)
	r.frames++
}

func (r *Recorder) record(c Command) {
	r.commands = append(r.commands, c)
}

func (r *Recorder) SetTexture(id TextureID, img image.Image) {
	r.Textures[id] = img
}

func (r *Recorder) SetOffscreen(index int, size Size2i) {
	r.Offscreens[index] = size
}

func (r *Recorder) DeleteOffscreen(index int) {
	delete(r.Offscreens, index)
}

func (r *Recorder) SetPalette(colors []ColorRGBA) {
	r.Palette = append(r.Palette[:0], colors...)
}

func (r *Recorder) SetPaletteSwap(internal int, mapping []int) {
	r.Swaps[internal] = append([]int(nil), mapping...)
}

func (r *Recorder) SetShader(slot int, src []byte) error {
	if r.ShaderErr != nil {
		return r.ShaderErr
	}
	r.Shaders[slot] = src
	return nil
}

func (r *Recorder) SetShaderUniform(slot int, name string, value any) {
	if r.Uniforms[slot] == nil {
		r.Uniforms[slot] = make(map[string]any)
	}
	r.Uniforms[slot][name] = value
}

// Commands returns the calls recorded since the last BeginFrame, including
// calls made outside a frame.
func (r *Recorder) Commands() []Command {
	return r.commands
}

// Frame returns the commands of the last completed frame.
func (r *Recorder) Frame() []Command {
	return r.lastFrame
}

// Frames returns the number of completed frames.
func (r *Recorder) Frames() int {
	return r.frames
}

// Quads returns the quads recorded since the last BeginFrame.
func (r *Recorder) Quads() []Quad {
	var out []Quad
	for _, c := range r.commands {
		if c.Kind == CmdDrawQuad {
			out = append(out, c.Quad)
		}
	}
	return out
}

// Effects returns the effect composites recorded since the last BeginFrame.
func (r *Recorder) Effects() []EffectComposite {
	var out []EffectComposite
	for _, c := range r.commands {
		if c.Kind == CmdApplyEffects {
			out = append(out, c.Effects)
		}
	}
	return out
}

// Reset drops the recorded commands.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
}
