// Package ir provides the block/region intermediate representation rewritten
// by the parallel-region optimizer.
//
// A Func owns four arenas (ops, blocks, regions, values). Entities are named
// by small generation-tagged handles rather than pointers: releasing a slot
// bumps its generation, so a handle kept past an erase is detected instead of
// silently aliasing whatever reuses the slot.
//
// # Structure
//
//	Func
//	└── Region (body)
//	    └── Block (entry, args = params)
//	        ├── Op
//	        │   └── Region ... (owned, strictly nested)
//	        └── Op (terminator, always last)
//
// Ownership is a strict tree. Value uses are non-owning back-references kept
// consistent by every mutation in this package.
//
// # Mutation
//
// All structural edits go through Func methods (Create, InsertBefore,
// MoveBefore, Clone, SplitBlock, MergeBlocks, MergeBlockBefore,
// ReplaceAllUsesWith, Erase). A Listener installed with SetListener observes
// insertions, modifications, and erasures; the rewrite driver uses it to keep
// its worklist free of erased ops.
//
// Violating an invariant through the mutation API (erasing an op whose
// results are still used, moving an op into its own subtree, using a stale
// handle) panics: these are programming errors, not input errors.
package ir
