// Package irtext provides the S-expression text format of the IR.
//
// Parse builds ir.Func values from source; Format prints them back in
// canonical form. The syntax follows the shape of WebAssembly text:
//
//	(func $name (param %buf %n)
//		(arith.constant (result %c) 4)
//		(omp.parallel
//			(memref.store %c %buf %c))
//		(scf.for %lb %n %step (args %i)
//			(omp.parallel
//				(omp.barrier)))
//		(scf.if %cond
//			(then (omp.parallel))
//			(else (test.op)))
//		(test.op (result %x) %buf (effects read write:heap alloc@%x) (recursive)
//			(region
//				(block (args %y)
//					(test.use %y)))))
//
// Op forms:
//   - The head is a mnemonic; unknown mnemonics become generic ops
//   - %names are operands, resolved in the enclosing scopes
//   - An integer literal is the attribute, a string the callee of func.call
//   - (result ...) names results, (effects ...) and (recursive) override the
//     effect metadata implied by the kind
//   - Nested op forms, optionally preceded by (args ...), form the single
//     region of the op; (region ...) forms spell regions out, with
//     (block (args ...) ...) for explicit blocks
//   - scf.if takes (then ...) and an optional (else ...)
//
// Terminators may be omitted: each block without one gets the terminator
// its parent implies (func.return, omp.terminator or scf.yield).
// Comments: line (;;) and block (; ;). A file may hold several functions,
// optionally wrapped in (module ...).
package irtext
