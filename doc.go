// Package ompoptroot documents the layout of the ompopt module: a pass that
// coarsens fork-join parallelism in a block/region IR by merging adjacent
// parallel regions and hoisting them out of loops and conditionals.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	ompopt/              Module root (this documentation only)
//	├── ir/              Arena IR: ops, blocks, regions, values, effects, verifier
//	├── irtext/          S-expression text format: parser and canonical printer
//	├── rewrite/         Worklist greedy pattern driver with dead-op erasure
//	├── ompopt/          The pass: CombineParallel and the two interchanges
//	├── sim/             Fork-join simulator for checking rewritten IR
//	├── errors/          Structured error types for debugging
//	└── cmd/ompopt/      Command line front end
//
// # Quick Start
//
// Optimize a function written in the text format:
//
//	f, err := irtext.ParseFunc(src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := ompopt.Run(f, ompopt.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(irtext.Format(f))
//	fmt.Println(res.ByPattern) // map[combine-parallel:1]
//
// # Rewrites
//
//   - combine-parallel: two parallel regions separated only by read-only
//     ops become one region with a barrier between the two bodies.
//   - parallel-for-interchange: a loop whose body is a single parallel
//     region becomes a parallel region around the loop, with a barrier at
//     the end of each iteration.
//   - parallel-if-interchange: the same for a conditional without an else
//     branch; no barrier is needed.
//
// # Thread Safety
//
// A Func is not safe for concurrent use. Distinct functions may be
// optimized from different goroutines.
package ompoptroot
