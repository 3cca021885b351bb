package retro

import "github.com/hajimehoshi/ebiten/v2"

// Ebitengine uses premultiplied alpha; the post shader works on the display,
// which is opaque once cleared, so colors are mixed without un-premultiplying.

const postShaderSrc = `//kage:unit pixels
package main

var Time float
var Scanlines float
var Noise float
var Desaturation float
var Curvature float
var Wipe float
var WipeDir vec2
var WipeColor vec4
var Fade float
var FadeColor vec4
var Tint float
var TintColor vec4
var Negative float
var Pixelate float
var Pinhole float
var PinholeCenter vec2
var PinholeColor vec4
var InvPinhole float
var InvPinholeCenter vec2
var InvPinholeColor vec4
var Fizzle float
var FizzleColor vec4
var Aberration float

func hash(p vec2) float {
	return fract(sin(dot(p, vec2(12.9898, 78.233))) * 43758.5453)
}

func sample(pos vec2) vec4 {
	origin := imageSrc0Origin()
	size := imageSrc0Size()
	if pos.x < origin.x || pos.y < origin.y || pos.x >= origin.x+size.x || pos.y >= origin.y+size.y {
		return vec4(0, 0, 0, 1)
	}
	return imageSrc0UnsafeAt(pos)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	origin := imageSrc0Origin()
	size := imageSrc0Size()
	local := src - origin

	if Curvature > 0 {
		uv := local/size*2 - 1
		uv *= 1 + Curvature*0.25*dot(uv.yx, uv.yx)
		if abs(uv.x) > 1 || abs(uv.y) > 1 {
			return vec4(0, 0, 0, 1)
		}
		local = (uv + 1) / 2 * size
	}
	if Pixelate > 1 {
		local = floor(local/Pixelate)*Pixelate + 0.5
	}

	pos := origin + local
	c := sample(pos)
	if Aberration > 0 {
		c.r = sample(pos + vec2(Aberration, 0)).r
		c.b = sample(pos - vec2(Aberration, 0)).b
	}

	gray := dot(c.rgb, vec3(0.299, 0.587, 0.114))
	c.rgb = mix(c.rgb, vec3(gray), Desaturation)
	c.rgb = mix(c.rgb, vec3(c.a)-c.rgb, Negative)
	c.rgb = mix(c.rgb, c.rgb*TintColor.rgb, Tint)
	c = mix(c, FadeColor, Fade)

	if Scanlines > 0 && mod(floor(local.y), 2) >= 1 {
		c.rgb *= 1 - Scanlines
	}
	if Noise > 0 {
		n := hash(floor(local) + vec2(Time*13, Time*7))
		c.rgb = mix(c.rgb, vec3(n)*c.a, Noise*0.5)
	}
	if Fizzle > 0 && hash(floor(local)) < Fizzle {
		c = FizzleColor
	}
	if Pinhole > 0 && length(local-PinholeCenter) > (1-Pinhole)*length(size) {
		c = PinholeColor
	}
	if InvPinhole > 0 && length(local-InvPinholeCenter) < InvPinhole*length(size) {
		c = InvPinholeColor
	}
	if Wipe > 0 {
		span := abs(WipeDir.x) + abs(WipeDir.y)
		t := dot(local/size-0.5, WipeDir)/span + 0.5
		if t < Wipe {
			c = WipeColor
		}
	}
	return c
}
`

// --- Lazy shader compilation (single-threaded, like the session) ---

var postShader *ebiten.Shader

func ensurePostShader() *ebiten.Shader {
	if postShader == nil {
		s, err := ebiten.NewShader([]byte(postShaderSrc))
		if err != nil {
			panic("retro: failed to compile post-effect shader: " + err.Error())
		}
		postShader = s
	}
	return postShader
}
