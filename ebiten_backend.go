package retro

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenBackend draws sessions with Ebitengine. The display is a persistent
// canvas of the hardware resolution; Run scales it onto the window.
type EbitenBackend struct {
	hw       HardwareSettings
	display  *ebiten.Image
	target   *ebiten.Image
	white    *ebiten.Image
	pool     renderTexturePool
	offs     [MaxOffscreens]pooledImage
	textures map[TextureID]*backendTexture
	palette  []ColorRGBA
	swaps    [MaxPaletteSwaps + 1][]int
	shaders  [MaxShaders]*ebiten.Shader
	uniforms [MaxShaders]map[string]any
	frame    int
	rng      *rand.Rand

	verts    []ebiten.Vertex
	triOp    ebiten.DrawTrianglesOptions
	triSOp   ebiten.DrawTrianglesShaderOptions
	rectSOp  ebiten.DrawRectShaderOptions
	imageOp  ebiten.DrawImageOptions
	uniformM map[string]any

	// ScreenshotDir receives PNGs queued with Screenshot.
	ScreenshotDir string
	// Logger receives screenshot write failures. Nil discards them.
	Logger Logger

	screenshots []string
}

// backendTexture is an uploaded sheet with lazily built variants.
type backendTexture struct {
	src     image.Image
	base    *ebiten.Image
	mask    *ebiten.Image
	swapped map[int]*ebiten.Image
}

var quadIndices = []uint16{0, 1, 2, 1, 3, 2}

// NewEbitenBackend returns a backend ready for Session.Start.
func NewEbitenBackend() *EbitenBackend {
	b := &EbitenBackend{
		textures:      make(map[TextureID]*backendTexture),
		rng:           rand.New(rand.NewPCG(1, 2)),
		verts:         make([]ebiten.Vertex, 4),
		uniformM:      make(map[string]any, 24),
		ScreenshotDir: "screenshots",
	}
	b.triOp.ColorScaleMode = ebiten.ColorScaleModeStraightAlpha
	b.rectSOp.Blend = ebiten.BlendCopy
	return b
}

func (b *EbitenBackend) Init(hw HardwareSettings) error {
	if !hw.DisplaySize.Valid() {
		return fmt.Errorf("retro: ebiten backend: display size %v: %w", hw.DisplaySize, ErrInvalidHardware)
	}
	b.hw = hw
	b.display = ebiten.NewImage(hw.DisplaySize.Width, hw.DisplaySize.Height)
	b.display.Fill(color.Black)
	b.target = b.display
	b.white = ebiten.NewImage(1, 1)
	b.white.Fill(color.White)
	return nil
}

// Display returns the canvas the session draws to.
func (b *EbitenBackend) Display() *ebiten.Image {
	return b.display
}

func (b *EbitenBackend) BeginFrame() {
	b.frame++
	b.target = b.display
}

func (b *EbitenBackend) EndFrame() {
	b.flushScreenshots()
}

func (b *EbitenBackend) SetTarget(t Target) {
	if !t.Offscreen {
		b.target = b.display
		return
	}
	if t.Index < 0 || t.Index >= MaxOffscreens || b.offs[t.Index].view == nil {
		return
	}
	b.target = b.offs[t.Index].view
}

func (b *EbitenBackend) ClearTarget(c ColorRGBA) {
	if b.target != nil {
		b.target.Fill(c)
	}
}

func (b *EbitenBackend) SetOffscreen(index int, size Size2i) {
	if index < 0 || index >= MaxOffscreens || !size.Valid() {
		return
	}
	b.DeleteOffscreen(index)
	b.offs[index] = b.pool.acquire(size.Width, size.Height)
}

func (b *EbitenBackend) DeleteOffscreen(index int) {
	if index < 0 || index >= MaxOffscreens || b.offs[index].view == nil {
		return
	}
	if b.target == b.offs[index].view {
		b.target = b.display
	}
	b.pool.release(b.offs[index])
	b.offs[index] = pooledImage{}
}

func (b *EbitenBackend) SetTexture(id TextureID, img image.Image) {
	if old := b.textures[id]; old != nil {
		old.deallocate()
	}
	if img == nil {
		delete(b.textures, id)
		return
	}
	b.textures[id] = &backendTexture{src: img}
}

func (b *EbitenBackend) SetPalette(colors []ColorRGBA) {
	b.palette = append(b.palette[:0], colors...)
	for _, t := range b.textures {
		t.dropSwapped(-1)
	}
}

func (b *EbitenBackend) SetPaletteSwap(internal int, mapping []int) {
	if internal < 0 || internal > MaxPaletteSwaps {
		return
	}
	b.swaps[internal] = append([]int(nil), mapping...)
	for _, t := range b.textures {
		t.dropSwapped(internal)
	}
}

func (b *EbitenBackend) SetShader(slot int, src []byte) error {
	if slot < 0 || slot >= MaxShaders {
		return fmt.Errorf("retro: shader %d: %w", slot, ErrSlotOutOfRange)
	}
	s, err := ebiten.NewShader(src)
	if err != nil {
		return fmt.Errorf("retro: compile shader %d: %w", slot, err)
	}
	if b.shaders[slot] != nil {
		b.shaders[slot].Deallocate()
	}
	b.shaders[slot] = s
	b.uniforms[slot] = make(map[string]any)
	return nil
}

func (b *EbitenBackend) SetShaderUniform(slot int, name string, value any) {
	if slot < 0 || slot >= MaxShaders || b.uniforms[slot] == nil {
		return
	}
	b.uniforms[slot][name] = value
}

// DrawQuad draws one clipped quad as two triangles.
func (b *EbitenBackend) DrawQuad(q Quad) {
	if b.target == nil || q.Dst.Empty() {
		return
	}
	img, src := b.textureFor(q)
	if img == nil {
		return
	}
	origin := img.Bounds().Min
	quadVertices(b.verts, q.Dst, q.Orient.UV(src), q.Color, origin)

	if q.Shader >= 0 && q.Shader < MaxShaders && b.shaders[q.Shader] != nil {
		b.triSOp.Images[0] = img
		b.triSOp.Uniforms = b.uniforms[q.Shader]
		// Shader vertex colors are premultiplied.
		premultiplyVertices(b.verts)
		b.target.DrawTrianglesShader(b.verts, quadIndices, b.shaders[q.Shader], &b.triSOp)
		b.triSOp.Images[0] = nil
		return
	}
	b.target.DrawTriangles(b.verts, quadIndices, img, &b.triOp)
}

// textureFor picks the image variant a quad samples and its source rect.
func (b *EbitenBackend) textureFor(q Quad) (*ebiten.Image, Rect2i) {
	switch q.Texture.Kind {
	case TextureSolid:
		return b.white, R(0, 0, 1, 1)
	case TextureOffscreen:
		if q.Texture.Index < 0 || q.Texture.Index >= MaxOffscreens {
			return nil, q.Src
		}
		return b.offs[q.Texture.Index].view, q.Src
	}
	t := b.textures[q.Texture]
	if t == nil {
		return nil, q.Src
	}
	if q.Mask {
		return t.maskImage(), q.Src
	}
	if p, ok := t.src.(*image.Paletted); ok && b.hw.ColorMode == ColorModeIndexed {
		return t.swappedImage(q.Swap, p, b.palette, b.swaps), q.Src
	}
	return t.baseImage(), q.Src
}

// quadVertices fills v with the corners TL, TR, BL, BR of dst sampling uv.
func quadVertices(v []ebiten.Vertex, dst Rect2i, uv [4]Vector2i, c ColorRGBA, origin image.Point) {
	corners := [4]Vector2i{
		{dst.X, dst.Y},
		{dst.X + dst.Width, dst.Y},
		{dst.X, dst.Y + dst.Height},
		{dst.X + dst.Width, dst.Y + dst.Height},
	}
	r := float32(c.R) / 255
	g := float32(c.G) / 255
	bl := float32(c.B) / 255
	a := float32(c.A) / 255
	for i := range corners {
		v[i] = ebiten.Vertex{
			DstX:   float32(corners[i].X),
			DstY:   float32(corners[i].Y),
			SrcX:   float32(uv[i].X + origin.X),
			SrcY:   float32(uv[i].Y + origin.Y),
			ColorR: r,
			ColorG: g,
			ColorB: bl,
			ColorA: a,
		}
	}
}

func premultiplyVertices(v []ebiten.Vertex) {
	for i := range v {
		v[i].ColorR *= v[i].ColorA
		v[i].ColorG *= v[i].ColorA
		v[i].ColorB *= v[i].ColorA
	}
}

func (t *backendTexture) baseImage() *ebiten.Image {
	if t.base == nil {
		t.base = ebiten.NewImageFromImage(t.src)
	}
	return t.base
}

func (t *backendTexture) maskImage() *ebiten.Image {
	if t.mask == nil {
		t.mask = ebiten.NewImageFromImage(maskPixels(t.src))
	}
	return t.mask
}

func (t *backendTexture) swappedImage(swap int, p *image.Paletted, palette []ColorRGBA, swaps [MaxPaletteSwaps + 1][]int) *ebiten.Image {
	if img := t.swapped[swap]; img != nil {
		return img
	}
	var mapping []int
	if swap >= 0 && swap <= MaxPaletteSwaps {
		mapping = swaps[swap]
	}
	img := ebiten.NewImageFromImage(recolorPaletted(p, palette, mapping))
	if t.swapped == nil {
		t.swapped = make(map[int]*ebiten.Image)
	}
	t.swapped[swap] = img
	return img
}

// dropSwapped discards the recolored variant for one swap, or all of them
// when swap is negative.
func (t *backendTexture) dropSwapped(swap int) {
	for k, img := range t.swapped {
		if swap < 0 || k == swap {
			img.Deallocate()
			delete(t.swapped, k)
		}
	}
}

func (t *backendTexture) deallocate() {
	t.dropSwapped(-1)
	if t.base != nil {
		t.base.Deallocate()
	}
	if t.mask != nil {
		t.mask.Deallocate()
	}
}

// recolorPaletted resolves palette indices through mapping and palette.
// Indices outside either table become transparent.
func recolorPaletted(p *image.Paletted, palette []ColorRGBA, mapping []int) *image.NRGBA {
	b := p.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		start := p.PixOffset(b.Min.X, b.Min.Y+y)
		row := p.Pix[start : start+b.Dx()]
		for x, idx := range row {
			i := int(idx)
			if i < len(mapping) {
				i = mapping[i]
			}
			var c ColorRGBA
			if i >= 0 && i < len(palette) {
				c = palette[i]
			}
			o := y*out.Stride + x*4
			out.Pix[o+0] = c.R
			out.Pix[o+1] = c.G
			out.Pix[o+2] = c.B
			out.Pix[o+3] = c.A
		}
	}
	return out
}

// maskPixels turns every texel white, keeping its alpha.
func maskPixels(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			a := colorFromColor(img.At(b.Min.X+x, b.Min.Y+y)).A
			if a == 0 {
				continue
			}
			o := y*out.Stride + x*4
			out.Pix[o+0] = 255
			out.Pix[o+1] = 255
			out.Pix[o+2] = 255
			out.Pix[o+3] = a
		}
	}
	return out
}

// --- Effects ---

// ApplyEffects bakes c into the display. Geometric effects move the image
// while copying it to a scratch surface; the post shader then writes it back.
func (b *EbitenBackend) ApplyEffects(c EffectComposite) {
	if b.display == nil || !c.Active() {
		return
	}
	size := b.hw.DisplaySize
	scratch := b.pool.acquire(size.Width, size.Height)
	defer b.pool.release(scratch)

	scratch.view.Fill(color.Black)
	b.imageOp = ebiten.DrawImageOptions{}
	b.imageOp.GeoM = effectGeoM(c, size, b.jitter)
	scratch.view.DrawImage(b.display, &b.imageOp)

	b.rectSOp.Images[0] = scratch.view
	b.rectSOp.Uniforms = b.effectUniforms(c, size)
	b.display.DrawRectShader(size.Width, size.Height, ensurePostShader(), &b.rectSOp)
	b.rectSOp.Images[0] = nil

	if c.Shader < 0 || c.Shader >= MaxShaders || b.shaders[c.Shader] == nil {
		return
	}
	scratch.view.Clear()
	b.rectSOp.Images[0] = b.display
	b.rectSOp.Uniforms = b.uniforms[c.Shader]
	scratch.view.DrawRectShader(size.Width, size.Height, b.shaders[c.Shader], &b.rectSOp)
	b.rectSOp.Images[0] = nil
	b.imageOp = ebiten.DrawImageOptions{Blend: ebiten.BlendCopy}
	b.display.DrawImage(scratch.view, &b.imageOp)
}

// jitter returns a uniform value in [-1, 1].
func (b *EbitenBackend) jitter() float64 {
	return b.rng.Float64()*2 - 1
}

// Effect defaults used when Param is left at zero.
const (
	defaultShake      = 8
	defaultPixelBlock = 16
	defaultAberration = 4
)

// effectGeoM returns the transform for slide, shake, zoom and rotation.
// Slide moves the image by Param (a full slide, default one display width to
// the right) scaled by intensity. Shake offsets it randomly by up to Param
// pixels. Zoom scales up to 2x and rotation turns up to a full circle, both
// around the display center.
func effectGeoM(c EffectComposite, size Size2i, jitter func() float64) ebiten.GeoM {
	var m ebiten.GeoM
	cx, cy := float64(size.Width)/2, float64(size.Height)/2
	m.Translate(-cx, -cy)
	if z := c.Get(EffectZoom).Intensity; z > 0 {
		s := 1 + float64(z)
		m.Scale(s, s)
	}
	if r := c.Get(EffectRotation).Intensity; r > 0 {
		m.Rotate(float64(r) * 2 * math.Pi)
	}
	m.Translate(cx, cy)

	if sl := c.Get(EffectSlide); sl.Intensity > 0 {
		d := sl.Param
		if d == (Vector2i{}) {
			d = Vector2i{size.Width, 0}
		}
		m.Translate(math.Round(float64(d.X)*float64(sl.Intensity)), math.Round(float64(d.Y)*float64(sl.Intensity)))
	}
	if sh := c.Get(EffectShake); sh.Intensity > 0 {
		amp := sh.Param
		if amp == (Vector2i{}) {
			amp = Vector2i{defaultShake, defaultShake}
		}
		dx := math.Round(jitter() * float64(amp.X) * float64(sh.Intensity))
		dy := math.Round(jitter() * float64(amp.Y) * float64(sh.Intensity))
		m.Translate(dx, dy)
	}
	return m
}

// effectUniforms fills the post shader uniforms for c.
func (b *EbitenBackend) effectUniforms(c EffectComposite, size Size2i) map[string]any {
	u := b.uniformM
	for k, v := range postUniforms(c, size, float32(b.frame)/float32(max(1, b.hw.FPS))) {
		u[k] = v
	}
	return u
}

// postUniforms maps the composite onto the post shader's uniform names.
func postUniforms(c EffectComposite, size Size2i, seconds float32) map[string]any {
	center := []float32{float32(size.Width) / 2, float32(size.Height) / 2}
	pointOr := func(p Vector2i) []float32 {
		if p == (Vector2i{}) {
			return center
		}
		return []float32{float32(p.X), float32(p.Y)}
	}
	wipeDir := c.Get(EffectWipe).Param
	if wipeDir == (Vector2i{}) {
		wipeDir = Vector2i{1, 0}
	}
	pix := c.Get(EffectPixelate)
	block := pix.Param.X
	if block <= 1 {
		block = defaultPixelBlock
	}
	ab := c.Get(EffectChromaticAberration)
	shift := ab.Param.X
	if shift <= 0 {
		shift = defaultAberration
	}

	return map[string]any{
		"Time":             seconds,
		"Scanlines":        c.Get(EffectScanlines).Intensity,
		"Noise":            c.Get(EffectNoise).Intensity,
		"Desaturation":     c.Get(EffectDesaturation).Intensity,
		"Curvature":        c.Get(EffectCurvature).Intensity,
		"Wipe":             c.Get(EffectWipe).Intensity,
		"WipeDir":          []float32{float32(wipeDir.X), float32(wipeDir.Y)},
		"WipeColor":        premultiplied(c.Get(EffectWipe).Color),
		"Fade":             c.Get(EffectColorFade).Intensity,
		"FadeColor":        premultiplied(c.Get(EffectColorFade).Color),
		"Tint":             c.Get(EffectColorTint).Intensity,
		"TintColor":        premultiplied(c.Get(EffectColorTint).Color),
		"Negative":         c.Get(EffectNegative).Intensity,
		"Pixelate":         float32(math.Floor(1 + float64(pix.Intensity)*float64(block-1))),
		"Pinhole":          c.Get(EffectPinhole).Intensity,
		"PinholeCenter":    pointOr(c.Get(EffectPinhole).Param),
		"PinholeColor":     premultiplied(c.Get(EffectPinhole).Color),
		"InvPinhole":       c.Get(EffectInvertedPinhole).Intensity,
		"InvPinholeCenter": pointOr(c.Get(EffectInvertedPinhole).Param),
		"InvPinholeColor":  premultiplied(c.Get(EffectInvertedPinhole).Color),
		"Fizzle":           c.Get(EffectFizzle).Intensity,
		"FizzleColor":      premultiplied(c.Get(EffectFizzle).Color),
		"Aberration":       ab.Intensity * float32(shift),
	}
}

func premultiplied(c ColorRGBA) []float32 {
	a := float32(c.A) / 255
	return []float32{
		float32(c.R) / 255 * a,
		float32(c.G) / 255 * a,
		float32(c.B) / 255 * a,
		a,
	}
}
