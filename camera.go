package retro

import (
	"math"

	"github.com/tanema/gween/ease"
)

// camera is the session's view offset: draws land at their world position
// minus pos. It can glide with a scroll tween and be kept inside bounds.
type camera struct {
	pos    Vector2i
	scroll *tweenGroup

	boundsEnabled bool
	bounds        Rect2i
	view          Size2i
}

func (c *camera) set(p Vector2i) {
	c.scroll = nil
	c.pos = p
	c.clamp()
}

func (c *camera) reset() {
	c.set(Vector2i{})
}

// scrollTo starts a tween from the current position to p.
func (c *camera) scrollTo(p Vector2i, duration float32, fn ease.TweenFunc) {
	from := []float32{float32(c.pos.X), float32(c.pos.Y)}
	to := []float32{float32(p.X), float32(p.Y)}
	c.scroll = newTweenGroup(from, to, duration, fn, func(v [4]float32) {
		c.pos = Vector2i{int(math.Round(float64(v[0]))), int(math.Round(float64(v[1])))}
	})
}

func (c *camera) scrolling() bool {
	return c.scroll != nil
}

// update advances the scroll tween by dt seconds.
func (c *camera) update(dt float32) {
	if c.scroll != nil && c.scroll.update(dt) {
		c.scroll = nil
	}
	c.clamp()
}

func (c *camera) setBounds(b Rect2i) {
	c.boundsEnabled = true
	c.bounds = b
	c.clamp()
}

func (c *camera) clearBounds() {
	c.boundsEnabled = false
}

// clamp keeps the visible area inside bounds. A bounds rectangle smaller than
// the view centers the view on it instead.
func (c *camera) clamp() {
	if !c.boundsEnabled {
		return
	}
	c.pos.X = clampAxis(c.pos.X, c.bounds.X, c.bounds.Width, c.view.Width)
	c.pos.Y = clampAxis(c.pos.Y, c.bounds.Y, c.bounds.Height, c.view.Height)
}

func clampAxis(p, lo, span, view int) int {
	hi := lo + span - view
	if hi < lo {
		return lo + (span-view)/2
	}
	return max(lo, min(p, hi))
}
