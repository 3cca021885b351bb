package retro

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"
)

// --- Fixtures ---

// captureLogger records every message it receives.
type captureLogger struct {
	debug, warn, errs []string
}

func (l *captureLogger) Debug(msg any, _ ...any) { l.debug = append(l.debug, fmt.Sprint(msg)) }
func (l *captureLogger) Warn(msg any, _ ...any)  { l.warn = append(l.warn, fmt.Sprint(msg)) }
func (l *captureLogger) Error(msg any, _ ...any) { l.errs = append(l.errs, fmt.Sprint(msg)) }

// testGame is a Game whose callbacks are swappable per test.
type testGame struct {
	hw      HardwareSettings
	init    func(s *Session) bool
	update  func()
	render  func()
	updates int
	renders int
}

func (g *testGame) QueryHardware() HardwareSettings { return g.hw }

func (g *testGame) Initialize(s *Session) bool {
	if g.init != nil {
		return g.init(s)
	}
	return true
}

func (g *testGame) Update() {
	g.updates++
	if g.update != nil {
		g.update()
	}
}

func (g *testGame) Render() {
	g.renders++
	if g.render != nil {
		g.render()
	}
}

func testHardware(mode ColorMode) HardwareSettings {
	hw := DefaultHardwareSettings()
	hw.DisplaySize = Sz(320, 180)
	hw.ColorMode = mode
	hw.PaletteColorCount = 16
	hw.FPS = 60
	return hw
}

type fixture struct {
	s    *Session
	rec  *Recorder
	log  *captureLogger
	game *testGame
}

// startSession starts a session on a Recorder with the given hardware.
func startSession(t *testing.T, hw HardwareSettings, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{rec: NewRecorder(), log: &captureLogger{}, game: &testGame{hw: hw}}
	f.s = NewSession(f.rec, append([]Option{WithLogger(f.log)}, opts...)...)
	if err := f.s.Start(f.game); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return f
}

// frame renders one frame with draw as the game's Render and returns the
// quads it produced.
func (f *fixture) frame(draw func(s *Session)) []Quad {
	f.game.render = func() { draw(f.s) }
	f.s.Render()
	var out []Quad
	for _, c := range f.rec.Frame() {
		if c.Kind == CmdDrawQuad {
			out = append(out, c.Quad)
		}
	}
	return out
}

// checkerSheet returns a w x h opaque image.
func checkerSheet(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 8), uint8(y * 8), 255, 255})
		}
	}
	return img
}

// --- Start ---

func TestSessionStart_RGB(t *testing.T) {
	f := startSession(t, testHardware(ColorModeRGB))
	if !f.s.Running() {
		t.Fatal("session should be running")
	}
	if f.rec.Hardware.DisplaySize != Sz(320, 180) {
		t.Errorf("backend display = %v, want 320x180", f.rec.Hardware.DisplaySize)
	}
	if _, ok := f.rec.Textures[TextureID{Kind: TextureSystemFont}]; !ok {
		t.Error("system font texture not uploaded")
	}
	if len(f.rec.Palette) != 0 {
		t.Errorf("RGB mode uploaded a palette of %d colors", len(f.rec.Palette))
	}
}

func TestSessionStart_IndexedUploadsPaletteAndSwaps(t *testing.T) {
	f := startSession(t, testHardware(ColorModeIndexed))
	if len(f.rec.Palette) != 16 {
		t.Fatalf("palette len = %d, want 16", len(f.rec.Palette))
	}
	if len(f.rec.Swaps) != MaxPaletteSwaps+1 {
		t.Errorf("swaps uploaded = %d, want %d", len(f.rec.Swaps), MaxPaletteSwaps+1)
	}
}

func TestSessionStart_Errors(t *testing.T) {
	bad := testHardware(ColorModeRGB)
	bad.FPS = 1

	tests := []struct {
		name    string
		backend Backend
		game    Game
		want    error
	}{
		{"no backend", nil, &testGame{hw: testHardware(ColorModeRGB)}, ErrNoBackend},
		{"nil game", NewRecorder(), nil, ErrGameInitFailed},
		{"invalid hardware", NewRecorder(), &testGame{hw: bad}, ErrInvalidHardware},
		{"init returns false", NewRecorder(), &testGame{
			hw:   testHardware(ColorModeRGB),
			init: func(*Session) bool { return false },
		}, ErrGameInitFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &captureLogger{}
			s := NewSession(tt.backend, WithLogger(log))
			err := s.Start(tt.game)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Start error = %v, want %v", err, tt.want)
			}
			if len(log.errs) != 1 {
				t.Errorf("error logs = %d, want 1", len(log.errs))
			}
			if s.Running() {
				t.Error("session running after failed Start")
			}
		})
	}
}

func TestSessionStart_BackendInitError(t *testing.T) {
	rec := NewRecorder()
	rec.InitErr = errors.New("no gpu")
	s := NewSession(rec, WithLogger(&captureLogger{}))
	err := s.Start(&testGame{hw: testHardware(ColorModeRGB)})
	if err == nil || !errors.Is(err, rec.InitErr) {
		t.Fatalf("Start error = %v, want wrapped backend error", err)
	}
}

func TestSessionStart_Twice(t *testing.T) {
	f := startSession(t, testHardware(ColorModeRGB))
	if err := f.s.Start(f.game); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Start = %v, want ErrAlreadyInitialized", err)
	}
}

func TestSessionStart_SetupDuringInitialize(t *testing.T) {
	rec := NewRecorder()
	g := &testGame{hw: testHardware(ColorModeRGB)}
	g.init = func(s *Session) bool {
		return s.SpriteSheetSetup(0, checkerSheet(32, 32), Sz(16, 16)) == nil
	}
	s := NewSession(rec, WithLogger(&captureLogger{}))
	if err := s.Start(g); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, ok := rec.Textures[TextureID{Kind: TextureSpriteSheet}]; !ok {
		t.Error("sprite sheet set up in Initialize was not uploaded")
	}
}

// --- Frame loop ---

func TestSession_UpdateAndRenderAfterFailedStart(t *testing.T) {
	g := &testGame{hw: testHardware(ColorModeRGB), init: func(*Session) bool { return false }}
	s := NewSession(NewRecorder(), WithLogger(&captureLogger{}))
	_ = s.Start(g)
	s.Update()
	s.Render()
	if g.updates != 0 || g.renders != 0 || s.Ticks() != 0 {
		t.Error("frame calls ran before Start")
	}
}

func TestSession_RenderFrameShape(t *testing.T) {
	f := startSession(t, testHardware(ColorModeRGB))
	f.frame(func(s *Session) {})
	cmds := f.rec.Frame()
	kinds := make([]CommandKind, len(cmds))
	for i, c := range cmds {
		kinds[i] = c.Kind
	}
	want := []CommandKind{CmdBeginFrame, CmdSetTarget, CmdApplyEffects, CmdEndFrame}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Errorf("frame = %v, want %v", kinds, want)
	}
	if f.s.Frames() != 1 {
		t.Errorf("Frames = %d, want 1", f.s.Frames())
	}
}

func TestSession_ExplicitApplyNowSuppressesImplicit(t *testing.T) {
	f := startSession(t, testHardware(ColorModeRGB))
	f.frame(func(s *Session) {
		s.EffectSet(EffectNoise, 0.5)
		s.EffectApplyNow()
		s.EffectSet(EffectNoise, 0.25)
		s.EffectApplyNow()
	})
	effects := f.rec.Effects()
	if len(effects) != 2 {
		t.Fatalf("effect applies = %d, want 2", len(effects))
	}
	if got := effects[0].Get(EffectNoise).Intensity; got != 0.5 {
		t.Errorf("first apply noise = %v, want 0.5", got)
	}
	if got := effects[1].Get(EffectNoise).Intensity; got != 0.25 {
		t.Errorf("second apply noise = %v, want 0.25", got)
	}
}

func TestSession_UpdateTicks(t *testing.T) {
	f := startSession(t, testHardware(ColorModeRGB))
	for i := 0; i < 3; i++ {
		f.s.Update()
	}
	if f.s.Ticks() != 3 || f.game.updates != 3 {
		t.Errorf("ticks = %d updates = %d, want 3", f.s.Ticks(), f.game.updates)
	}
}

// --- Diagnostics ---

func TestSession_DrawOutsideRenderRejected(t *testing.T) {
	f := startSession(t, testHardware(ColorModeRGB))
	f.s.DrawRectFill(R(0, 0, 10, 10), RGB(255, 0, 0))
	if n := len(f.rec.Quads()); n != 0 {
		t.Errorf("quads = %d, want 0", n)
	}
	if len(f.log.warn) != 1 {
		t.Errorf("warnings = %d, want 1", len(f.log.warn))
	}
}

func TestSession_ModeMismatchWarnsOncePerSite(t *testing.T) {
	f := startSession(t, testHardware(ColorModeRGB))
	for i := 0; i < 5; i++ {
		quads := f.frame(func(s *Session) {
			s.DrawRectFill(R(0, 0, 10, 10), Index(3))
		})
		if len(quads) != 0 {
			t.Fatalf("frame %d: quads = %d, want 0", i, len(quads))
		}
	}
	if len(f.log.warn) != 1 {
		t.Errorf("warnings = %d, want 1 for a single call site", len(f.log.warn))
	}
	if f.s.Diagnostics().Count() != 1 {
		t.Errorf("reported sites = %d, want 1", f.s.Diagnostics().Count())
	}
}

func TestSession_ModeMismatchDistinctSites(t *testing.T) {
	f := startSession(t, testHardware(ColorModeIndexed))
	f.frame(func(s *Session) {
		s.DrawRectFill(R(0, 0, 10, 10), RGB(1, 2, 3))
		s.DrawPixel(V2(1, 1), RGB(1, 2, 3))
	})
	if len(f.log.warn) != 2 {
		t.Errorf("warnings = %d, want 2", len(f.log.warn))
	}
}

func TestSession_IndexOutOfPaletteRejected(t *testing.T) {
	f := startSession(t, testHardware(ColorModeIndexed))
	quads := f.frame(func(s *Session) {
		s.DrawPixel(V2(0, 0), Index(16))
		s.DrawPixel(V2(0, 0), Index(-1))
		s.DrawPixel(V2(0, 0), Index(15))
	})
	if len(quads) != 1 {
		t.Errorf("quads = %d, want 1", len(quads))
	}
}

func TestSession_TintRejectedInIndexedMode(t *testing.T) {
	f := startSession(t, testHardware(ColorModeIndexed))
	f.s.TintColorSet(RGB(255, 0, 0))
	if f.s.TintColorGet() != ColorWhite {
		t.Errorf("tint = %v, want unchanged white", f.s.TintColorGet())
	}
}

func TestSession_PaletteCallsRejectedInRGBMode(t *testing.T) {
	f := startSession(t, testHardware(ColorModeRGB))
	f.s.PaletteColorSet(1, ColorWhite)
	f.s.PaletteSwapSet(1)
	if f.s.PaletteSwapGet() != 0 {
		t.Errorf("swap = %d, want 0", f.s.PaletteSwapGet())
	}
	if len(f.rec.Palette) != 0 {
		t.Error("palette uploaded in RGB mode")
	}
}

func TestSession_PaletteColors(t *testing.T) {
	f := startSession(t, testHardware(ColorModeIndexed))
	f.s.PaletteColorSet(3, ColorWhite)
	f.s.PaletteColorSet(16, ColorWhite)
	if f.s.PaletteColorGet(3) != ColorWhite || f.rec.Palette[3] != ColorWhite {
		t.Errorf("color 3 = %v, uploaded %v", f.s.PaletteColorGet(3), f.rec.Palette[3])
	}
	if f.s.PaletteColorGet(16) != (ColorRGBA{}) {
		t.Error("out of range index returned a color")
	}
	if len(f.log.warn) != 1 {
		t.Errorf("warnings = %d, want 1", len(f.log.warn))
	}
	colors := f.s.PaletteColors()
	colors[3] = ColorBlack
	if f.s.PaletteColorGet(3) != ColorWhite {
		t.Error("PaletteColors returned the live slice")
	}
}

// --- Shaders ---

func TestSession_ShaderUniforms(t *testing.T) {
	f := startSession(t, testHardware(ColorModeRGB))
	if err := f.s.ShaderSetup(2, []byte("//kage:unit pixels\npackage main")); err != nil {
		t.Fatalf("ShaderSetup: %v", err)
	}
	f.s.ShaderFloatSet(2, "Amount", 0.5)
	f.s.ShaderColorSet(2, "Color", RGB(255, 0, 0))
	f.s.ShaderColorSet(2, "Bad", Index(1))
	f.s.ShaderFloatSet(3, "Amount", 1)

	u := f.rec.Uniforms
	if u[2]["Amount"] != float32(0.5) {
		t.Errorf("Amount = %v", u[2]["Amount"])
	}
	if c, _ := u[2]["Color"].([]float32); len(c) != 4 || c[0] != 1 || c[1] != 0 || c[3] != 1 {
		t.Errorf("Color = %v", u[2]["Color"])
	}
	if _, ok := u[2]["Bad"]; ok {
		t.Error("indexed color accepted in RGB mode")
	}
	if _, ok := u[3]; ok {
		t.Error("uniform set on a shader that was never set up")
	}
}

func TestSession_ShaderSetupErrors(t *testing.T) {
	f := startSession(t, testHardware(ColorModeRGB))
	if err := f.s.ShaderSetup(MaxShaders, nil); !errors.Is(err, ErrSlotOutOfRange) {
		t.Errorf("err = %v, want ErrSlotOutOfRange", err)
	}
	compile := errors.New("compile failed")
	f.rec.ShaderErr = compile
	if err := f.s.ShaderSetup(0, []byte("bad")); !errors.Is(err, compile) {
		t.Errorf("err = %v, want the backend error", err)
	}
	f.s.ShaderSet(0)
	if len(f.log.warn) != 1 {
		t.Errorf("warnings = %d, want 1 for selecting a failed shader", len(f.log.warn))
	}
}

func TestSession_ShaderAppliesToSprites(t *testing.T) {
	f := startSession(t, testHardware(ColorModeRGB))
	if err := f.s.ShaderSetup(1, []byte("//kage:unit pixels\npackage main")); err != nil {
		t.Fatal(err)
	}
	if err := f.s.SpriteSheetSetup(4, checkerSheet(16, 16), Sz(16, 16)); err != nil {
		t.Fatal(err)
	}
	f.s.SpriteSheetSet(4)
	if f.s.SpriteSheetGet() != 4 {
		t.Errorf("SpriteSheetGet = %d, want 4", f.s.SpriteSheetGet())
	}
	quads := f.frame(func(s *Session) {
		s.ShaderSet(1)
		s.DrawSprite(0, V2(0, 0), 0)
		s.ShaderReset()
		s.DrawSprite(0, V2(0, 0), 0)
	})
	if len(quads) != 2 || quads[0].Shader != 1 || quads[1].Shader != -1 {
		t.Errorf("quads = %+v", quads)
	}
}

// --- Clearing ---

func TestSession_ClearAndOffscreenClear(t *testing.T) {
	f := startSession(t, testHardware(ColorModeRGB))
	f.s.OffscreenSetup(1, Sz(8, 8))
	f.frame(func(s *Session) {
		s.Clear(RGB(1, 2, 3))
		s.OffscreenClear()
		s.Offscreen(1)
		s.OffscreenClear()
	})
	var clears []Command
	for _, c := range f.rec.Frame() {
		if c.Kind == CmdClear {
			clears = append(clears, c)
		}
	}
	if len(clears) != 2 {
		t.Fatalf("clears = %+v, want 2", clears)
	}
	if clears[0].Target != DisplayTarget || clears[0].Color != (ColorRGBA{1, 2, 3, 255}) {
		t.Errorf("display clear = %+v", clears[0])
	}
	if !clears[1].Target.Offscreen || clears[1].Color != ColorTransparent {
		t.Errorf("offscreen clear = %+v", clears[1])
	}
	if len(f.log.warn) != 1 {
		t.Errorf("warnings = %d, want 1 for clearing the display as an offscreen", len(f.log.warn))
	}
}

func TestSession_PaletteSwapRoundTrip(t *testing.T) {
	f := startSession(t, testHardware(ColorModeIndexed))
	for n := 0; n <= MaxPaletteSwaps; n++ {
		f.s.PaletteSwapSet(n)
		if got := f.s.PaletteSwapGet(); got != n {
			t.Errorf("PaletteSwapSet(%d): PaletteSwapGet = %d", n, got)
		}
	}

	f.s.PaletteSwapSet(3)
	for _, bad := range []int{-1, MaxPaletteSwaps + 1} {
		f.s.PaletteSwapSet(bad)
		if got := f.s.PaletteSwapGet(); got != 3 {
			t.Errorf("PaletteSwapSet(%d) changed the swap to %d", bad, got)
		}
	}
	f.s.PaletteSwapReset()
	if got := f.s.PaletteSwapGet(); got != 0 {
		t.Errorf("after reset swap = %d, want 0", got)
	}
}
