// Package analysis provides the legality checks used by the parallel-region
// rewrites: effect classification, use containment, and ancestry queries.
//
// All checks are plain recursive walks over the region tree; none of them
// caches results, so they stay correct across rewrites.
package analysis
