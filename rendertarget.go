package retro

import (
	"image"
	"math/bits"

	"github.com/hajimehoshi/ebiten/v2"
)

// renderTexturePool recycles GPU surfaces keyed by power-of-two dimensions.
// Offscreen slots and the effect scratch surface are carved out of pooled
// images with SubImage so resizing a slot rarely allocates.
type renderTexturePool struct {
	buckets map[uint64][]*ebiten.Image
}

// pooledImage is a view of exactly the requested size together with the
// power-of-two surface that backs it.
type pooledImage struct {
	view    *ebiten.Image
	backing *ebiten.Image
}

func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// acquire returns a cleared image of exactly (w, h) pixels.
func (p *renderTexturePool) acquire(w, h int) pooledImage {
	pw, ph := nextPowerOfTwo(w), nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	var img *ebiten.Image
	if stack := p.buckets[key]; len(stack) > 0 {
		img = stack[len(stack)-1]
		p.buckets[key] = stack[:len(stack)-1]
		img.Clear()
	} else {
		img = ebiten.NewImageWithOptions(
			image.Rect(0, 0, pw, ph),
			&ebiten.NewImageOptions{Unmanaged: true},
		)
	}
	out := pooledImage{view: img, backing: img}
	if pw != w || ph != h {
		out.view = img.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image)
	}
	return out
}

// release hands the backing surface back to the pool. It is cleared on the
// next acquire, not here.
func (p *renderTexturePool) release(img pooledImage) {
	if img.backing == nil {
		return
	}
	b := img.backing.Bounds()
	key := poolKey(b.Dx(), b.Dy())
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img.backing)
}

// drain deallocates every pooled surface.
func (p *renderTexturePool) drain() {
	for key, stack := range p.buckets {
		for _, img := range stack {
			img.Deallocate()
		}
		delete(p.buckets, key)
	}
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
