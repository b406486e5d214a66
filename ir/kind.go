package ir

// Kind identifies the operation variant. The set is closed: anything the
// text format does not recognize is a KindGeneric op carrying its mnemonic.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindParallel
	KindTerminator
	KindBarrier
	KindThreadNum
	KindFor
	KindIf
	KindExecute
	KindYield
	KindReturn
	KindConstant
	KindAdd
	KindSub
	KindMul
	KindCmpLT
	KindLoad
	KindStore
	KindAlloc
	KindDealloc
	KindCall
	KindGeneric
	numKinds
)

// variadic marks a kind whose region or result count is set per op.
const variadic = -1

type kindInfo struct {
	name       string
	regions    int
	results    int
	terminator bool
	pure       bool // declares an empty effect list
	recursive  bool // effects include nested ops
}

var kinds = [numKinds]kindInfo{
	KindInvalid:    {name: "<invalid>"},
	KindParallel:   {name: "omp.parallel", regions: 1, results: 0},
	KindTerminator: {name: "omp.terminator", terminator: true, pure: true},
	KindBarrier:    {name: "omp.barrier"},
	KindThreadNum:  {name: "omp.thread_num", results: 1, pure: true},
	KindFor:        {name: "scf.for", regions: 1, results: variadic, pure: true, recursive: true},
	KindIf:         {name: "scf.if", regions: 2, results: variadic, pure: true, recursive: true},
	KindExecute:    {name: "scf.execute_region", regions: 1, results: variadic, pure: true, recursive: true},
	KindYield:      {name: "scf.yield", terminator: true, pure: true},
	KindReturn:     {name: "func.return", terminator: true, pure: true},
	KindConstant:   {name: "arith.constant", results: 1, pure: true},
	KindAdd:        {name: "arith.addi", results: 1, pure: true},
	KindSub:        {name: "arith.subi", results: 1, pure: true},
	KindMul:        {name: "arith.muli", results: 1, pure: true},
	KindCmpLT:      {name: "arith.cmpi_slt", results: 1, pure: true},
	KindLoad:       {name: "memref.load", results: 1},
	KindStore:      {name: "memref.store"},
	KindAlloc:      {name: "memref.alloc", results: 1},
	KindDealloc:    {name: "memref.dealloc"},
	KindCall:       {name: "func.call", results: variadic},
	KindGeneric:    {name: "<generic>", regions: variadic, results: variadic},
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, numKinds)
	for k := KindParallel; k < KindGeneric; k++ {
		m[kinds[k].name] = k
	}
	return m
}()

// KindByName resolves a mnemonic. Unknown mnemonics report false; callers
// treat them as KindGeneric.
func KindByName(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

func (k Kind) String() string {
	if k >= numKinds {
		return "<invalid>"
	}
	return kinds[k].name
}

// IsTerminator returns true for kinds that may only appear last in a block.
func (k Kind) IsTerminator() bool {
	return k < numKinds && kinds[k].terminator
}

// NumRegions returns the fixed region count of the kind, or -1 if it varies.
func (k Kind) NumRegions() int {
	if k >= numKinds {
		return 0
	}
	return kinds[k].regions
}

// NumResults returns the fixed result count of the kind, or -1 if it varies.
func (k Kind) NumResults() int {
	if k >= numKinds {
		return 0
	}
	return kinds[k].results
}

// DefaultTerminator returns the terminator kind closing blocks owned by an
// op of kind k. KindInvalid stands for the function body.
func (k Kind) DefaultTerminator() (Kind, bool) {
	switch k {
	case KindInvalid:
		return KindReturn, true
	case KindParallel:
		return KindTerminator, true
	case KindFor, KindIf, KindExecute:
		return KindYield, true
	}
	return KindInvalid, false
}
