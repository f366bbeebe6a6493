// Package brush generates the stamp masks applied by the stroke rasterizer.
//
// A brush is a shape and a size, plus a sprite for custom brushes. Generate
// turns those into a [pixpaint.Stamp] whose alpha channel is coverage and
// whose RGB is the brush's intrinsic color: white for circle and square
// brushes, the sampled sprite color for custom brushes. The paint color is
// multiplied in when the stamp is composited.
//
// Stamps are immutable once generated. A [Cache] keeps them keyed by
// (shape, size, sprite identity) so a stroke reuses one mask for every step.
package brush
