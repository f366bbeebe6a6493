// Package pixpaint is a pixel-accurate raster paint engine for sprite editors.
//
// # Overview
//
// pixpaint draws brush strokes, fills regions and reverses any edit directly
// against an addressable RGBA pixel buffer backing a texture. The editor
// around it (toolbars, palettes, file import/export) stays outside: it hands
// the engine target buffers, pointer-to-pixel mappings and tool parameters,
// and receives "texture changed" and "save requested" notifications.
//
// # Architecture
//
// The library is organized into:
//   - Public API: PixelBuffer, RGBA8, Stamp, BlendMode, StagingTexture
//   - brush: circle, square and custom-sprite stamp generation
//   - stroke: Bresenham stroke rasterizer with pixel-perfect correction
//   - fill: contiguous and global flood fill with per-channel tolerance
//   - undo: capped transaction log keyed to host undo groups
//   - editor: host glue wrapping every edit in an undo transaction
//   - gpu: optional staging accelerator for live stroke preview
//   - Internal: blend (compositing), color (sRGB LUTs), parallel (worker pool)
//
// # Coordinate System
//
// Pixel coordinates are integers with the origin at the top-left of the
// buffer; X grows right and Y grows down. Every write is checked against
// the buffer bounds and the buffer's clip ("sprite") rectangle.
//
// # Pixel Format
//
// Buffers hold straight (non-premultiplied) RGBA8. The RGB channels are
// interpreted in the buffer's declared ColorSpace; alpha is always linear.
package pixpaint
