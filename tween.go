package retro

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// tweenGroup animates up to 4 values at once and hands the current values to
// apply after every step. Sessions advance their groups by 1/FPS per Update.
type tweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	apply  func(vals [4]float32)
	done   bool
}

// newTweenGroup starts a tween from each from[i] to to[i]. A nil easing
// function means linear. A non-positive duration jumps straight to the end
// on the first update.
func newTweenGroup(from, to []float32, duration float32, fn ease.TweenFunc, apply func([4]float32)) *tweenGroup {
	if fn == nil {
		fn = ease.Linear
	}
	if duration < 0 {
		duration = 0
	}
	g := &tweenGroup{count: min(len(from), len(to), 4), apply: apply}
	for i := 0; i < g.count; i++ {
		g.tweens[i] = gween.New(from[i], to[i], duration, fn)
	}
	return g
}

// update advances all tweens by dt seconds and reports whether every tween
// has finished.
func (g *tweenGroup) update(dt float32) bool {
	if g.done {
		return true
	}
	var vals [4]float32
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		vals[i] = val
		if !finished {
			allDone = false
		}
	}
	g.done = allDone
	if g.apply != nil {
		g.apply(vals)
	}
	return allDone
}
