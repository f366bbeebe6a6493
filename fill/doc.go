// Package fill implements the bucket fill tool.
//
// Contiguous fill floods breadth-first from a seed pixel through neighbors
// whose original color matches the seed's within a per-channel tolerance.
// Global fill repaints every matching pixel inside the clip rectangle
// regardless of adjacency. Two fully transparent pixels always match.
//
// Matching only ever reads colors captured before the first write, so the
// result does not depend on traversal order.
package fill
