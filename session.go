package retro

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/tanema/gween/ease"
)

// Game is implemented by the program a session runs.
type Game interface {
	// QueryHardware is called once, before anything else.
	QueryHardware() HardwareSettings
	// Initialize is called once after the hardware is provisioned. Returning
	// false aborts Start.
	Initialize(s *Session) bool
	// Update is called at the hardware FPS.
	Update()
	// Render is called once per displayed frame.
	Render()
}

// Setup errors. Start reports them loudly; nothing in the frame loop returns
// an error.
var (
	ErrNoBackend          = errors.New("retro: no backend")
	ErrAlreadyInitialized = errors.New("retro: session already initialized")
	ErrGameInitFailed     = errors.New("retro: game initialization failed")
	ErrSlotOutOfRange     = errors.New("retro: slot out of range")
	ErrNotStarted         = errors.New("retro: session not started")
)

type sessionState uint8

const (
	sessionNew sessionState = iota
	sessionInitializing
	sessionRunning
	sessionFailed
)

// spriteSheet is the session's record of a loaded sprite sheet.
type spriteSheet struct {
	size   Size2i
	sprite Size2i
}

func (s spriteSheet) loaded() bool {
	return s.size.Valid()
}

// Session is the per-game rendering context: hardware, render target,
// drawing state, effects and sounds. Create one with NewSession and drive it
// with Start, Update and Render (or hand it to Run).
//
// Calls that break the rules (wrong color mode, slot out of range, negative
// sizes, drawing outside Render) do nothing and log a warning once per call
// site. A Session is not safe for concurrent use.
type Session struct {
	backend Backend
	audio   AudioBackend
	logger  Logger
	diag    *Diagnostics
	debug   bool

	game  Game
	hw    HardwareSettings
	state sessionState

	target     Target
	targetSize Size2i
	camera     camera
	clip       Rect2i
	alpha      uint8
	tint       ColorRGBA
	shader     int

	palette      *paletteBank
	effects      *effectBuffer
	effectTweens [effectCount]*tweenGroup
	applied      bool
	inFrame      bool

	sounds *soundBank

	sheets     [MaxSpriteSheets]spriteSheet
	sheet      int
	offscreens [MaxOffscreens]Size2i
	fonts      [MaxFonts]Font
	font       int // -1 selects the system font
	systemFont Font
	shaders    [MaxShaders]bool
	ticks      uint64
	frames     uint64
	stats      frameStats
	last       frameStats
}

// Option configures a Session.
type Option func(*Session)

// WithAudio sets the audio backend. Without one every sound call is a no-op.
func WithAudio(a AudioBackend) Option {
	return func(s *Session) { s.audio = a }
}

// WithLogger replaces the default stderr logger.
func WithLogger(l Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithDebug enables per-second frame statistics at debug level.
func WithDebug(debug bool) Option {
	return func(s *Session) { s.debug = debug }
}

// NewSession creates a session drawing through backend.
func NewSession(backend Backend, opts ...Option) *Session {
	s := &Session{
		backend: backend,
		alpha:   255,
		tint:    ColorWhite,
		shader:  -1,
		font:    -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = NewDefaultLogger(s.debug)
	}
	s.diag = NewDiagnostics(s.logger)
	return s
}

// Start provisions the hardware the game asks for and initializes the game.
// Failures here are fatal: they are logged at error level and returned.
func (s *Session) Start(game Game) error {
	if err := s.start(game); err != nil {
		s.logger.Error("session start failed", "err", err)
		return err
	}
	return nil
}

func (s *Session) start(game Game) error {
	if s.state != sessionNew {
		return ErrAlreadyInitialized
	}
	if s.backend == nil {
		return ErrNoBackend
	}
	if game == nil {
		return fmt.Errorf("%w: nil game", ErrGameInitFailed)
	}
	hw := game.QueryHardware()
	if err := hw.Validate(); err != nil {
		return err
	}
	s.state = sessionInitializing
	s.game = game
	s.hw = hw

	s.palette = newPaletteBank(hw.PaletteColorCount)
	if hw.PaletteFile != "" {
		colors, err := LoadPaletteFile(hw.PaletteFile)
		if err != nil {
			s.state = sessionFailed
			return fmt.Errorf("%w: %w", ErrInvalidHardware, err)
		}
		s.palette.setColors(colors)
	}
	s.effects = newEffectBuffer(hw.ColorMode)
	s.sounds = newSoundBank(s.audio)
	s.camera.view = hw.DisplaySize

	if err := s.backend.Init(hw); err != nil {
		s.state = sessionFailed
		return fmt.Errorf("retro: backend init: %w", err)
	}
	s.systemFont = NewSystemFont()
	s.backend.SetTexture(TextureID{Kind: TextureSystemFont}, fontSheet(s.systemFont.Image()))
	if hw.ColorMode == ColorModeIndexed {
		s.backend.SetPalette(s.palette.colors)
		for i := range s.palette.swaps {
			s.backend.SetPaletteSwap(i, s.palette.mapping(i))
		}
	}
	s.setTarget(DisplayTarget)

	if !game.Initialize(s) {
		s.state = sessionFailed
		return ErrGameInitFailed
	}
	s.state = sessionRunning
	return nil
}

// Running reports whether Start succeeded.
func (s *Session) Running() bool {
	return s.state == sessionRunning
}

// Hardware returns the settings captured by Start.
func (s *Session) Hardware() HardwareSettings {
	return s.hw
}

// DisplaySize returns the display resolution.
func (s *Session) DisplaySize() Size2i {
	return s.hw.DisplaySize
}

// Ticks returns the number of Update calls so far.
func (s *Session) Ticks() uint64 {
	return s.ticks
}

// Diagnostics returns the session's rejected-call reporter.
func (s *Session) Diagnostics() *Diagnostics {
	return s.diag
}

// Update runs one fixed-rate step: tweens advance by 1/FPS and the game
// updates.
func (s *Session) Update() {
	if s.state != sessionRunning {
		return
	}
	s.ticks++
	dt := 1 / float32(s.hw.FPS)
	s.camera.update(dt)
	for e, tw := range s.effectTweens {
		if tw != nil && tw.update(dt) {
			s.effectTweens[e] = nil
		}
	}
	s.game.Update()
}

// Render draws one frame. Effects are applied at the end unless the game
// called EffectApplyNow itself.
func (s *Session) Render() {
	if s.state != sessionRunning {
		return
	}
	s.backend.BeginFrame()
	s.inFrame = true
	s.applied = false
	s.setTarget(DisplayTarget)
	s.game.Render()
	if !s.applied {
		s.EffectApplyNow()
	}
	s.inFrame = false
	s.backend.EndFrame()
	s.logStats()
}

// reject skips the current call and warns once for its call site.
func (s *Session) reject(msg string, keyvals ...any) {
	s.stats.rejected++
	s.diag.WarnOnce(callSite(), msg, keyvals...)
}

// ready reports whether the session accepts setup calls.
func (s *Session) ready() bool {
	if s.state == sessionInitializing || s.state == sessionRunning {
		return true
	}
	s.reject("session not started")
	return false
}

// drawing reports whether draw calls are accepted right now.
func (s *Session) drawing() bool {
	if !s.ready() {
		return false
	}
	if !s.inFrame {
		s.reject("draw call outside Render")
		return false
	}
	return true
}

// requireMode rejects the call unless the session runs in mode.
func (s *Session) requireMode(mode ColorMode, what string) bool {
	if s.hw.ColorMode != mode {
		s.reject("color mode mismatch", "call", what, "want", mode, "have", s.hw.ColorMode)
		return false
	}
	return true
}

// resolveColor checks c against the color mode and the palette size and
// returns the color it draws as.
func (s *Session) resolveColor(c ColorValue) (ColorRGBA, bool) {
	if c.Mode() != s.hw.ColorMode {
		s.reject("color mode mismatch", "color", c, "mode", s.hw.ColorMode)
		return ColorRGBA{}, false
	}
	if i, ok := c.PaletteIndex(); ok {
		if !s.palette.validIndex(i) {
			s.reject("palette index out of range", "index", i, "colors", s.palette.count())
			return ColorRGBA{}, false
		}
		return s.palette.resolve(i), true
	}
	rgba, _ := c.Color()
	return rgba, true
}

// resolveLenient resolves colors recorded earlier; invalid ones are black.
func (s *Session) resolveLenient(c ColorValue) ColorRGBA {
	if i, ok := c.PaletteIndex(); ok {
		if s.hw.ColorMode != ColorModeIndexed {
			return ColorBlack
		}
		return s.palette.resolve(i)
	}
	if s.hw.ColorMode != ColorModeRGB {
		return ColorBlack
	}
	rgba, _ := c.Color()
	return rgba
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}

// checkSlot rejects out-of-range slot indices.
func (s *Session) checkSlot(kind string, i, n int) bool {
	if !inRange(i, n) {
		s.reject("slot out of range", "kind", kind, "slot", i, "max", n-1)
		return false
	}
	return true
}

// --- Render targets ---

func (s *Session) setTarget(t Target) {
	s.target = t
	if t.Offscreen {
		s.targetSize = s.offscreens[t.Index]
	} else {
		s.targetSize = s.hw.DisplaySize
	}
	s.clip = RectAt(Vector2i{}, s.targetSize)
	if s.inFrame {
		s.stats.targetSwitches++
	}
	s.backend.SetTarget(t)
}

// OffscreenSetup creates or resizes offscreen surface i.
func (s *Session) OffscreenSetup(i int, size Size2i) {
	if !s.ready() || !s.checkSlot("offscreen", i, MaxOffscreens) {
		return
	}
	if !size.Valid() || size.Width > MaxDisplayDimension || size.Height > MaxDisplayDimension {
		s.reject("invalid offscreen size", "size", size)
		return
	}
	s.offscreens[i] = size
	s.backend.SetOffscreen(i, size)
	if s.target.Offscreen && s.target.Index == i {
		s.setTarget(s.target)
	}
}

// OffscreenDelete frees offscreen surface i. Drawing switches back to the
// display if it was the current target.
func (s *Session) OffscreenDelete(i int) {
	if !s.ready() || !s.checkSlot("offscreen", i, MaxOffscreens) {
		return
	}
	if !s.offscreens[i].Valid() {
		return
	}
	if s.target.Offscreen && s.target.Index == i {
		s.setTarget(DisplayTarget)
	}
	s.offscreens[i] = Size2i{}
	s.backend.DeleteOffscreen(i)
}

// Offscreen directs drawing to offscreen surface i. The clip rectangle
// resets to the whole surface.
func (s *Session) Offscreen(i int) {
	if !s.ready() || !s.checkSlot("offscreen", i, MaxOffscreens) {
		return
	}
	if !s.offscreens[i].Valid() {
		s.reject("offscreen not set up", "slot", i)
		return
	}
	s.setTarget(Target{Offscreen: true, Index: i})
}

// Onscreen directs drawing back to the display and resets the clip.
func (s *Session) Onscreen() {
	if !s.ready() {
		return
	}
	s.setTarget(DisplayTarget)
}

// CurrentTarget returns the active render target.
func (s *Session) CurrentTarget() Target {
	return s.target
}

// Clear fills the whole current target with c, ignoring camera and clip.
func (s *Session) Clear(c ColorValue) {
	if !s.drawing() {
		return
	}
	rgba, ok := s.resolveColor(c)
	if !ok {
		return
	}
	s.backend.ClearTarget(rgba)
}

// OffscreenClear clears the current offscreen surface to transparent.
func (s *Session) OffscreenClear() {
	if !s.drawing() {
		return
	}
	if !s.target.Offscreen {
		s.reject("OffscreenClear on the display")
		return
	}
	s.backend.ClearTarget(ColorTransparent)
}

// --- Drawing state ---

// CameraSet moves the camera; later draws are offset by -pos.
func (s *Session) CameraSet(pos Vector2i) {
	s.camera.set(pos)
}

// CameraReset returns the camera to the origin.
func (s *Session) CameraReset() {
	s.camera.reset()
}

// CameraGet returns the camera position.
func (s *Session) CameraGet() Vector2i {
	return s.camera.pos
}

// CameraScrollTo glides the camera to pos over seconds. A nil easing
// function is linear.
func (s *Session) CameraScrollTo(pos Vector2i, seconds float32, fn ease.TweenFunc) {
	s.camera.scrollTo(pos, seconds, fn)
}

// CameraScrolling reports whether a CameraScrollTo is in progress.
func (s *Session) CameraScrolling() bool {
	return s.camera.scrolling()
}

// CameraBoundsSet keeps the visible area inside bounds.
func (s *Session) CameraBoundsSet(bounds Rect2i) {
	if bounds.Width < 0 || bounds.Height < 0 {
		s.reject("invalid camera bounds", "bounds", bounds)
		return
	}
	s.camera.setBounds(bounds)
}

// CameraBoundsReset removes the camera bounds.
func (s *Session) CameraBoundsReset() {
	s.camera.clearBounds()
}

// ClipSet restricts drawing to r, in target pixels. The camera does not
// move the clip rectangle.
func (s *Session) ClipSet(r Rect2i) {
	if r.Width < 0 || r.Height < 0 {
		s.reject("negative clip size", "rect", r)
		return
	}
	s.clip = r
}

// ClipReset clips to the whole current target.
func (s *Session) ClipReset() {
	s.clip = RectAt(Vector2i{}, s.targetSize)
}

// ClipGet returns the clip rectangle.
func (s *Session) ClipGet() Rect2i {
	return s.clip
}

// AlphaSet sets the opacity of later draws, 0 to 255.
func (s *Session) AlphaSet(a uint8) {
	s.alpha = a
}

// AlphaReset makes later draws opaque.
func (s *Session) AlphaReset() {
	s.alpha = 255
}

// AlphaGet returns the draw opacity.
func (s *Session) AlphaGet() uint8 {
	return s.alpha
}

// TintColorSet tints later sprite draws. RGB mode only.
func (s *Session) TintColorSet(c ColorValue) {
	if !s.requireMode(ColorModeRGB, "TintColorSet") {
		return
	}
	rgba, ok := s.resolveColor(c)
	if !ok {
		return
	}
	s.tint = rgba
}

// TintColorReset removes the tint.
func (s *Session) TintColorReset() {
	s.tint = ColorWhite
}

// TintColorGet returns the tint.
func (s *Session) TintColorGet() ColorRGBA {
	return s.tint
}

// --- Palette ---

// PaletteColorSet changes palette entry i. Indexed mode only.
func (s *Session) PaletteColorSet(i int, c ColorRGBA) {
	if !s.ready() || !s.requireMode(ColorModeIndexed, "PaletteColorSet") {
		return
	}
	if !s.palette.setColor(i, c) {
		s.reject("palette index out of range", "index", i, "colors", s.palette.count())
		return
	}
	s.backend.SetPalette(s.palette.colors)
}

// PaletteColorGet returns palette entry i, ignoring swaps.
func (s *Session) PaletteColorGet(i int) ColorRGBA {
	if s.palette == nil || !s.palette.validIndex(i) {
		return ColorRGBA{}
	}
	return s.palette.colors[i]
}

// PaletteColors returns a copy of the palette.
func (s *Session) PaletteColors() []ColorRGBA {
	if s.palette == nil {
		return nil
	}
	return append([]ColorRGBA(nil), s.palette.colors...)
}

// PaletteSwapSetup configures swap slot 1 to MaxPaletteSwaps: mapping[i] is
// drawn wherever index i would be. Slot 0 is the unmodified palette and
// cannot be configured.
func (s *Session) PaletteSwapSetup(slot int, mapping []int) {
	if !s.ready() || !s.requireMode(ColorModeIndexed, "PaletteSwapSetup") {
		return
	}
	if !s.palette.setupSwap(slot, mapping) {
		s.reject("invalid palette swap", "slot", slot, "entries", len(mapping))
		return
	}
	internal := swapInternal(slot)
	s.backend.SetPaletteSwap(internal, s.palette.mapping(internal))
}

// PaletteSwapSet selects the swap used by later draws. Indexed mode only.
func (s *Session) PaletteSwapSet(slot int) {
	if !s.ready() || !s.requireMode(ColorModeIndexed, "PaletteSwapSet") {
		return
	}
	if !s.palette.setCurrent(slot) {
		s.reject("palette swap out of range", "slot", slot)
	}
}

// PaletteSwapReset selects the unmodified palette.
func (s *Session) PaletteSwapReset() {
	s.PaletteSwapSet(identitySwap)
}

// PaletteSwapGet returns the selected swap slot.
func (s *Session) PaletteSwapGet() int {
	if s.palette == nil {
		return identitySwap
	}
	return s.palette.currentExternal()
}

// --- Assets ---

// SpriteSheetSetup loads img into sprite sheet slot i, cut into sprites of
// spriteSize. In indexed mode a paletted image is used as is; any other
// image is mapped to the nearest palette colors.
func (s *Session) SpriteSheetSetup(i int, img image.Image, spriteSize Size2i) error {
	if s.state != sessionInitializing && s.state != sessionRunning {
		return ErrNotStarted
	}
	if !inRange(i, MaxSpriteSheets) {
		return fmt.Errorf("%w: sprite sheet %d", ErrSlotOutOfRange, i)
	}
	if img == nil {
		return fmt.Errorf("retro: sprite sheet %d: nil image", i)
	}
	b := img.Bounds()
	if !spriteSize.Valid() || spriteSize.Width > b.Dx() || spriteSize.Height > b.Dy() {
		return fmt.Errorf("retro: sprite sheet %d: invalid sprite size %v for %dx%d image", i, spriteSize, b.Dx(), b.Dy())
	}
	if s.hw.ColorMode == ColorModeIndexed {
		img = s.toPaletted(img)
	}
	s.sheets[i] = spriteSheet{size: Sz(b.Dx(), b.Dy()), sprite: spriteSize}
	s.backend.SetTexture(TextureID{Kind: TextureSpriteSheet, Index: i}, img)
	return nil
}

// toPaletted converts img to palette indices. Fully transparent pixels map
// to index 0.
func (s *Session) toPaletted(img image.Image) *image.Paletted {
	if p, ok := img.(*image.Paletted); ok && p.Bounds().Min == (image.Point{}) {
		return p
	}
	b := img.Bounds()
	out := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), colorPalette(s.palette.colors))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if _, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA(); a == 0 {
				out.SetColorIndex(x, y, 0)
			}
		}
	}
	return out
}

// SpriteSheetSet selects the sprite sheet later sprite draws use.
func (s *Session) SpriteSheetSet(i int) {
	if !s.checkSlot("spritesheet", i, MaxSpriteSheets) {
		return
	}
	if !s.sheets[i].loaded() {
		s.reject("sprite sheet not set up", "slot", i)
		return
	}
	s.sheet = i
}

// SpriteSheetGet returns the selected sprite sheet slot.
func (s *Session) SpriteSheetGet() int {
	return s.sheet
}

// SpriteIndex returns the index of the sprite at grid cell (col, row) of
// the selected sheet.
func (s *Session) SpriteIndex(col, row int) int {
	sh := s.sheets[s.sheet]
	if !sh.loaded() {
		return 0
	}
	return row*(sh.size.Width/sh.sprite.Width) + col
}

// spriteRect returns the source rectangle of sprite index on the selected
// sheet.
func (s *Session) spriteRect(index int) (Rect2i, bool) {
	sh := s.sheets[s.sheet]
	if !sh.loaded() {
		return Rect2i{}, false
	}
	cols := sh.size.Width / sh.sprite.Width
	rows := sh.size.Height / sh.sprite.Height
	if index < 0 || index >= cols*rows {
		return Rect2i{}, false
	}
	return Rect2i{
		X:      (index % cols) * sh.sprite.Width,
		Y:      (index / cols) * sh.sprite.Height,
		Width:  sh.sprite.Width,
		Height: sh.sprite.Height,
	}, true
}

// FontSetup installs f in font slot i.
func (s *Session) FontSetup(i int, f Font) error {
	if s.state != sessionInitializing && s.state != sessionRunning {
		return ErrNotStarted
	}
	if !inRange(i, MaxFonts) {
		return fmt.Errorf("%w: font %d", ErrSlotOutOfRange, i)
	}
	if f == nil || f.Image() == nil {
		return fmt.Errorf("retro: font %d: missing glyph sheet", i)
	}
	s.fonts[i] = f
	s.backend.SetTexture(TextureID{Kind: TextureFont, Index: i}, fontSheet(f.Image()))
	return nil
}

// FontSet selects the font later Print calls use.
func (s *Session) FontSet(i int) {
	if !s.checkSlot("font", i, MaxFonts) {
		return
	}
	if s.fonts[i] == nil {
		s.reject("font not set up", "slot", i)
		return
	}
	s.font = i
}

// FontReset selects the built-in system font.
func (s *Session) FontReset() {
	s.font = -1
}

// currentFont returns the selected font and its texture.
func (s *Session) currentFont() (Font, TextureID) {
	if s.font >= 0 && s.fonts[s.font] != nil {
		return s.fonts[s.font], TextureID{Kind: TextureFont, Index: s.font}
	}
	return s.systemFont, TextureID{Kind: TextureSystemFont}
}

// --- Shaders ---

// ShaderSetup compiles Kage source into shader slot i.
func (s *Session) ShaderSetup(i int, src []byte) error {
	if s.state != sessionInitializing && s.state != sessionRunning {
		return ErrNotStarted
	}
	if !inRange(i, MaxShaders) {
		return fmt.Errorf("%w: shader %d", ErrSlotOutOfRange, i)
	}
	if err := s.backend.SetShader(i, src); err != nil {
		return fmt.Errorf("retro: shader %d: %w", i, err)
	}
	s.shaders[i] = true
	return nil
}

func (s *Session) checkShader(i int) bool {
	if !s.checkSlot("shader", i, MaxShaders) {
		return false
	}
	if !s.shaders[i] {
		s.reject("shader not set up", "slot", i)
		return false
	}
	return true
}

// ShaderSet draws later sprites and copies through shader slot i.
func (s *Session) ShaderSet(i int) {
	if s.checkShader(i) {
		s.shader = i
	}
}

// ShaderReset draws without a custom shader.
func (s *Session) ShaderReset() {
	s.shader = -1
}

// ShaderFloatSet sets a float uniform of shader slot i.
func (s *Session) ShaderFloatSet(i int, name string, v float32) {
	if s.checkShader(i) {
		s.backend.SetShaderUniform(i, name, v)
	}
}

// ShaderColorSet sets a color uniform of shader slot i as four floats in
// [0, 1].
func (s *Session) ShaderColorSet(i int, name string, c ColorValue) {
	if !s.checkShader(i) {
		return
	}
	rgba, ok := s.resolveColor(c)
	if !ok {
		return
	}
	s.backend.SetShaderUniform(i, name, []float32{
		float32(rgba.R) / 255, float32(rgba.G) / 255, float32(rgba.B) / 255, float32(rgba.A) / 255,
	})
}

// --- Effects ---

// EffectSet sets the intensity of e, clamped to [0, 1].
func (s *Session) EffectSet(e Effect, intensity float32) {
	if !s.ready() {
		return
	}
	if !s.effects.setIntensity(e, intensity) {
		s.reject("invalid effect intensity", "effect", e, "intensity", intensity)
		return
	}
	s.effectTweens[e] = nil
}

// EffectSetParam sets the vector parameter of e.
func (s *Session) EffectSetParam(e Effect, p Vector2i) {
	if !s.ready() {
		return
	}
	if !s.effects.setParam(e, p) {
		s.reject("invalid effect", "effect", e)
	}
}

// EffectSetColor sets the color of e.
func (s *Session) EffectSetColor(e Effect, c ColorValue) {
	if !s.ready() {
		return
	}
	if _, ok := s.resolveColor(c); !ok {
		return
	}
	if !s.effects.setColor(e, c) {
		s.reject("invalid effect", "effect", e)
	}
}

// EffectSetAll sets every field of e at once.
func (s *Session) EffectSetAll(e Effect, intensity float32, p Vector2i, c ColorValue) {
	if !s.ready() {
		return
	}
	if !e.valid() || !validIntensity(intensity) {
		s.reject("invalid effect intensity", "effect", e, "intensity", intensity)
		return
	}
	if _, ok := s.resolveColor(c); !ok {
		return
	}
	s.effectTweens[e] = nil
	s.effects.setIntensity(e, intensity)
	s.effects.setParam(e, p)
	s.effects.setColor(e, c)
}

// EffectTween glides the intensity of e to target over seconds.
func (s *Session) EffectTween(e Effect, target float32, seconds float32, fn ease.TweenFunc) {
	if !s.ready() {
		return
	}
	if !e.valid() || !validIntensity(target) {
		s.reject("invalid effect intensity", "effect", e, "intensity", target)
		return
	}
	from := s.effects.get(e).Intensity
	s.effectTweens[e] = newTweenGroup([]float32{from}, []float32{clampIntensity(target)}, seconds, fn,
		func(v [4]float32) { s.effects.setIntensity(e, v[0]) })
}

// EffectGet returns the buffered parameters of e.
func (s *Session) EffectGet(e Effect) EffectParams {
	if s.effects == nil {
		return EffectParams{}
	}
	return s.effects.get(e)
}

// EffectState reports whether any effect is configured.
func (s *Session) EffectState() EffectState {
	if s.effects == nil {
		return EffectIdle
	}
	return s.effects.state()
}

// EffectShader post-processes the display with custom shader slot i in
// addition to the built-in effects.
func (s *Session) EffectShader(i int) {
	if s.checkShader(i) {
		s.effects.shader = i
	}
}

// EffectShaderReset removes the custom post shader.
func (s *Session) EffectShaderReset() {
	if s.effects != nil {
		s.effects.shader = -1
	}
}

// EffectApplyNow bakes the current effect parameters into what has been
// drawn so far. The parameters are kept, so a game can tweak one and apply
// again. Render calls it at the end of the frame unless the game did.
func (s *Session) EffectApplyNow() {
	if !s.drawing() {
		return
	}
	s.applied = true
	s.stats.effectApplies++
	s.backend.ApplyEffects(s.effects.snapshot(s.resolveLenient))
}

// EffectReset returns every effect to its defaults and stops effect tweens.
func (s *Session) EffectReset() {
	if s.effects == nil {
		return
	}
	s.effects.reset()
	s.effectTweens = [effectCount]*tweenGroup{}
}

// --- Sound ---

// SoundSetup stores clip in sound slot i.
func (s *Session) SoundSetup(i int, clip *SoundClip) error {
	if s.sounds == nil {
		return ErrNotStarted
	}
	if !s.sounds.setup(i, clip) {
		return fmt.Errorf("%w: sound %d", ErrSlotOutOfRange, i)
	}
	return nil
}

// SoundPlay plays sound slot i on a free channel, or on the channel whose
// sound started longest ago. volume runs from 0 to 1 and pitch from MinPitch
// to MaxPitch. A failed play returns the zero reference, which is never live.
func (s *Session) SoundPlay(i int, volume, pitch float64) SoundReference {
	if s.sounds == nil || s.audio == nil {
		return SoundReference{}
	}
	ref, err := s.sounds.play(s.sounds.pickChannel(), i, volume, pitch, false)
	if err != nil {
		s.reject("sound play failed", "slot", i, "err", err)
	}
	return ref
}

// SoundStop stops ref. Stale references are ignored.
func (s *Session) SoundStop(ref SoundReference) {
	if s.sounds != nil {
		s.sounds.stop(ref)
	}
}

// SoundStopAll stops every channel, music included.
func (s *Session) SoundStopAll() {
	if s.sounds != nil {
		s.sounds.stopAll()
	}
}

// SoundIsPlaying reports whether ref is still playing.
func (s *Session) SoundIsPlaying(ref SoundReference) bool {
	return s.sounds != nil && s.sounds.live(ref)
}

// SoundVolumeSet changes the volume of ref.
func (s *Session) SoundVolumeSet(ref SoundReference, volume float64) {
	if s.sounds != nil {
		s.sounds.setVolume(ref, volume)
	}
}

// SoundVolumeGet returns the volume of ref, or 0 once it has stopped.
func (s *Session) SoundVolumeGet(ref SoundReference) float64 {
	if s.sounds == nil {
		return 0
	}
	return s.sounds.volume(ref)
}

// SoundPitchSet changes the pitch of ref.
func (s *Session) SoundPitchSet(ref SoundReference, pitch float64) {
	if s.sounds != nil {
		s.sounds.setPitch(ref, pitch)
	}
}

// SoundPitchGet returns the pitch of ref, or 0 once it has stopped.
func (s *Session) SoundPitchGet(ref SoundReference) float64 {
	if s.sounds == nil {
		return 0
	}
	return s.sounds.pitch(ref)
}

// SoundLoopSet makes ref repeat until stopped.
func (s *Session) SoundLoopSet(ref SoundReference, loop bool) {
	if s.sounds != nil {
		s.sounds.setLoop(ref, loop)
	}
}

// MusicPlay loops sound slot i on the music channel, replacing any music.
func (s *Session) MusicPlay(i int) {
	if s.sounds == nil || s.audio == nil {
		return
	}
	if _, err := s.sounds.play(musicChannel, i, 1, 1, true); err != nil {
		s.reject("music play failed", "slot", i, "err", err)
	}
}

// MusicStop stops the music.
func (s *Session) MusicStop() {
	if s.sounds != nil {
		s.sounds.stop(s.sounds.music())
	}
}

// MusicVolumeSet changes the music volume.
func (s *Session) MusicVolumeSet(volume float64) {
	if s.sounds != nil {
		s.sounds.setVolume(s.sounds.music(), volume)
	}
}

// MusicPlaying reports whether music is playing.
func (s *Session) MusicPlaying() bool {
	return s.sounds != nil && s.sounds.live(s.sounds.music())
}
