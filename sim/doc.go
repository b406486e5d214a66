// Package sim interprets IR functions with a team of logical workers.
//
// Every top-level omp.parallel forks Config.Workers workers. Each worker is
// a coroutine (iter.Pull) that runs the region body until it reaches an
// omp.barrier; once every worker waits, the phase ends and all resume.
// Workers never run at the same time: the scheduler steps them round-robin,
// so race-free programs produce the same memory on every run. Parallel
// regions nested in another run inline on the worker that reaches them.
//
// Values are int64. A memref value names a buffer; load and store address
// cells of it by their first index operand. Calls and generic ops are not
// interpreted.
//
// Comparing a function before and after the pass checks that final memory
// matches and shows how many fork-join regions and barriers each version
// pays for.
package sim
