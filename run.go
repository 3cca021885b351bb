package retro

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const defaultWindowScale = 3

// RunOptions configures Run.
type RunOptions struct {
	// Title is the window title. Empty means "retro".
	Title string
	// Scale multiplies the window size on top of the pixel style. Zero means 3.
	Scale int
	// Debug logs frame statistics once per second.
	Debug bool
	// ShowFPS overlays the measured FPS, TPS and quad count.
	ShowFPS bool
	// NoAudio skips opening the speaker.
	NoAudio bool
	// Logger replaces the default stderr logger.
	Logger Logger
	// ScreenshotDir is where captures are written. Empty means "screenshots".
	ScreenshotDir string
	// ScreenshotFrame captures the display once after that many frames.
	// Zero disables it.
	ScreenshotFrame uint64
}

// Run opens a window sized for the game's hardware and drives the session
// until the window is closed. Audio failures are logged and the game runs
// silently.
func Run(game Game, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = NewDefaultLogger(opts.Debug)
	}

	backend := NewEbitenBackend()
	backend.Logger = logger
	if opts.ScreenshotDir != "" {
		backend.ScreenshotDir = opts.ScreenshotDir
	}

	sessOpts := []Option{WithLogger(logger), WithDebug(opts.Debug)}
	var audio *BeepAudio
	if !opts.NoAudio {
		audio = NewBeepAudio(DefaultSampleRate)
		if err := audio.Start(); err != nil {
			logger.Warn("audio unavailable, continuing without sound", "err", err)
			audio = nil
		} else {
			sessOpts = append(sessOpts, WithAudio(audio))
		}
	}

	s := NewSession(backend, sessOpts...)
	if err := s.Start(game); err != nil {
		return err
	}

	hw := s.Hardware()
	sx, sy := hw.PixelStyle.Scale()
	scale := opts.Scale
	if scale <= 0 {
		scale = defaultWindowScale
	}
	title := opts.Title
	if title == "" {
		title = "retro"
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(hw.DisplaySize.Width*sx*scale, hw.DisplaySize.Height*sy*scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(hw.FPS)

	r := &runner{session: s, backend: backend, audio: audio, opts: opts, sx: sx, sy: sy}
	if err := ebiten.RunGame(r); err != nil {
		return fmt.Errorf("retro: run: %w", err)
	}
	return nil
}

// runner adapts a Session to ebiten.Game.
type runner struct {
	session *Session
	backend *EbitenBackend
	audio   *BeepAudio
	opts    RunOptions
	sx, sy  int
	paused  bool
	op      ebiten.DrawImageOptions
}

func (r *runner) Update() error {
	if r.audio != nil {
		if focused := ebiten.IsFocused(); focused == r.paused {
			r.paused = !focused
			r.audio.Pause(r.paused)
		}
	}
	r.session.Update()
	return nil
}

func (r *runner) Draw(screen *ebiten.Image) {
	if r.opts.ScreenshotFrame > 0 && r.session.Frames()+1 == r.opts.ScreenshotFrame {
		r.backend.Screenshot(fmt.Sprintf("frame-%d", r.opts.ScreenshotFrame))
	}
	r.session.Render()

	r.op.GeoM.Reset()
	r.op.GeoM.Scale(float64(r.sx), float64(r.sy))
	screen.DrawImage(r.backend.Display(), &r.op)

	if r.opts.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nQuads: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), r.session.FrameQuads()))
	}
}

func (r *runner) Layout(_, _ int) (int, int) {
	size := r.session.DisplaySize()
	return size.Width * r.sx, size.Height * r.sy
}
