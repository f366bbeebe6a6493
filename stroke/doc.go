// Package stroke rasterizes brush strokes onto a PixelBuffer.
//
// A [Rasterizer] runs one interaction at a time: Begin on pointer-down,
// MoveTo for every reported pixel coordinate, End on pointer-up. Between two
// coordinates it walks every integer pixel with Bresenham's algorithm and
// stamps the brush at each one, clipped to the buffer's clip rectangle.
// Steps whose stamp cannot reach the clip are skipped without being walked.
//
// Alpha-blended strokes accumulate into a private layer with per-channel
// max, so overlapping stamps of one drag never darken each other. The layer
// is composited over the pre-stroke pixels once per change, and a final
// time when the stroke ends.
//
// With pixel-perfect enabled, one-pixel L corners are removed as they
// appear: when the last three visited pixels form a right angle of unit
// steps, the middle pixel is restored and the newest pixel re-stamped.
//
// When a [pixpaint.Accelerator] is registered, the stroke is mirrored into a
// staging texture for preview: direct stamps as they land, alpha strokes as
// the layer composited over the pre-stroke pixels, so the preview equals
// what End commits. The CPU buffer stays authoritative and is settled
// before End returns; any GPU error drops the stroke back to the CPU path.
package stroke
