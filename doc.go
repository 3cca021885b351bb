// Package retro is an immediate-mode 2D rendering API for retro-styled games
// built on [Ebitengine].
//
// A game declares the hardware it wants (display resolution, color mode,
// palette size, frame rate) and then draws every frame through a [Session]:
// primitives, sprites from sprite sheets, nine-slice panels and bitmap text,
// onto the display or offscreen surfaces, followed by full-screen effects.
//
// # Quick start
//
// Implement [Game] and hand it to [Run]:
//
//	type demo struct{ s *retro.Session }
//
//	func (d *demo) QueryHardware() retro.HardwareSettings {
//		hw := retro.DefaultHardwareSettings()
//		hw.DisplaySize = retro.Sz(320, 180)
//		return hw
//	}
//
//	func (d *demo) Initialize(s *retro.Session) bool { d.s = s; return true }
//	func (d *demo) Update()                          {}
//	func (d *demo) Render() {
//		d.s.Clear(retro.RGB(16, 16, 32))
//		d.s.Print(retro.V2(8, 8), retro.RGB(255, 255, 255), "hello")
//	}
//
//	retro.Run(&demo{}, retro.RunOptions{Title: "demo"})
//
// For tests and tools, drive a Session yourself with a [Recorder] backend
// and call [Session.Update] and [Session.Render] directly.
//
// # Color modes
//
// In [ColorModeRGB] colors are [RGBA] values. In [ColorModeIndexed] they are
// [Index] values into the palette, and sprites are recolored through the
// current palette swap. Passing the wrong kind of color skips the call and
// logs a warning once for that call site.
//
// # Orientation
//
// Draw calls take [Flags]: [FlipH], [FlipV] and [Rot90CW] combine into the
// eight symmetries of a rectangle, represented as [Orientation].
//
// # Text
//
// [Session.PrintRect] lays text out in a rectangle with alignment, word wrap
// and clipping. Inline color escapes switch the color mid-string: "@123" sets
// palette index 123 in indexed mode, "@FF8000" sets an RGB color, and "@-"
// restores the color passed to the call. [Session.PrintMeasure] returns the
// size a string will occupy.
//
// # Errors
//
// Setup calls ([Session.Start], asset loaders) return errors. Calls made
// during the frame never fail: invalid arguments are dropped and reported
// through [Diagnostics].
//
// [Ebitengine]: https://ebitengine.org
package retro
