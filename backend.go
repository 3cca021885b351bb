package retro

import (
	"fmt"
	"image"
)

// TextureKind identifies which bank a texture lives in.
type TextureKind uint8

const (
	TextureSolid       TextureKind = iota // no texture; the quad is a flat color
	TextureSpriteSheet                    // sprite sheet slot
	TextureOffscreen                      // offscreen surface slot
	TextureFont                           // font glyph sheet slot
	TextureSystemFont                     // built-in font
)

func (k TextureKind) String() string {
	switch k {
	case TextureSolid:
		return "solid"
	case TextureSpriteSheet:
		return "spritesheet"
	case TextureOffscreen:
		return "offscreen"
	case TextureFont:
		return "font"
	case TextureSystemFont:
		return "systemfont"
	}
	return fmt.Sprintf("TextureKind(%d)", uint8(k))
}

// TextureID names a texture held by the backend.
type TextureID struct {
	Kind  TextureKind
	Index int
}

// SolidTexture is the TextureID of untextured quads.
var SolidTexture = TextureID{Kind: TextureSolid}

// Quad is the single draw primitive the session emits. Src is in texture
// pixels and Dst in target pixels; both are already clipped. Color tints
// the texture (or fills a solid quad) and carries the draw alpha.
//
// In indexed mode Swap is the internal palette swap index the texture is
// recolored with. Mask draws every opaque texel as Color instead, which is
// how text and tinted glyph sheets are drawn in both modes.
type Quad struct {
	Texture TextureID
	Src     Rect2i
	Dst     Rect2i
	Orient  Orientation
	Color   ColorRGBA
	Swap    int
	Mask    bool
	Shader  int // custom shader slot, -1 for none
}

// Target is a render target: the display or an offscreen slot.
type Target struct {
	Offscreen bool
	Index     int
}

// DisplayTarget is the onscreen target.
var DisplayTarget = Target{}

func (t Target) String() string {
	if t.Offscreen {
		return fmt.Sprintf("offscreen[%d]", t.Index)
	}
	return "display"
}

// Backend receives the validated, clipped output of a session. All calls
// happen on the session's goroutine.
type Backend interface {
	Init(hw HardwareSettings) error
	BeginFrame()
	SetTarget(t Target)
	ClearTarget(c ColorRGBA)
	DrawQuad(q Quad)
	ApplyEffects(c EffectComposite)
	EndFrame()

	// Indexed mode textures arrive as *image.Paletted whose indices refer
	// to the palette given by SetPalette.
	SetTexture(id TextureID, img image.Image)
	SetOffscreen(index int, size Size2i)
	DeleteOffscreen(index int)
	SetPalette(colors []ColorRGBA)
	SetPaletteSwap(internal int, mapping []int)
	SetShader(slot int, src []byte) error
	SetShaderUniform(slot int, name string, value any)
}
