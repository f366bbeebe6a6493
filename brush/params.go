package brush

import "github.com/gogpu/pixpaint"

// Params are the tool parameters of a paint or erase interaction.
type Params struct {
	Shape        Shape
	Size         int
	Color        pixpaint.RGBA8
	Blend        pixpaint.BlendMode
	PixelPerfect bool

	// Sprite is required when Shape is Custom.
	Sprite *Sprite
}

// DefaultParams returns a 1 pixel opaque black circle under alpha blending.
func DefaultParams() Params {
	return Params{
		Shape: Circle,
		Size:  1,
		Color: pixpaint.Black,
		Blend: pixpaint.BlendAlpha,
	}
}

// Eraser returns p converted to an eraser: the same mask written with
// transparent paint in Replace mode.
func (p Params) Eraser() Params {
	p.Color = pixpaint.Transparent
	p.Blend = pixpaint.BlendReplace
	return p
}
