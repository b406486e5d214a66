package ir

import "fmt"

// Op is a generation-tagged handle to an operation.
type Op struct{ idx, gen uint32 }

// Block is a generation-tagged handle to a block.
type Block struct{ idx, gen uint32 }

// Region is a generation-tagged handle to a region.
type Region struct{ idx, gen uint32 }

// Value is a generation-tagged handle to an SSA value.
type Value struct{ idx, gen uint32 }

// IsNil returns true for the zero handle.
func (o Op) IsNil() bool     { return o.idx == 0 }
func (b Block) IsNil() bool  { return b.idx == 0 }
func (r Region) IsNil() bool { return r.idx == 0 }
func (v Value) IsNil() bool  { return v.idx == 0 }

// Index returns the arena slot of the handle. Slots are reused after an
// erase, so the index alone does not identify an entity over time.
func (o Op) Index() uint32    { return o.idx }
func (v Value) Index() uint32 { return v.idx }

func (o Op) String() string     { return fmt.Sprintf("op#%d.%d", o.idx, o.gen) }
func (b Block) String() string  { return fmt.Sprintf("block#%d.%d", b.idx, b.gen) }
func (r Region) String() string { return fmt.Sprintf("region#%d.%d", r.idx, r.gen) }
func (v Value) String() string  { return fmt.Sprintf("value#%d.%d", v.idx, v.gen) }

// Use is one operand slot referring to a value.
type Use struct {
	User  Op
	Index int
}
