package ir

import "slices"

// EffectKind is the kind of a declared memory effect.
type EffectKind uint8

const (
	EffectRead EffectKind = iota + 1
	EffectWrite
	EffectAllocate
	EffectFree
)

// DefaultResource is the resource effects apply to when none is named.
const DefaultResource = "default"

var effectNames = map[EffectKind]string{
	EffectRead:     "read",
	EffectWrite:    "write",
	EffectAllocate: "alloc",
	EffectFree:     "free",
}

func (k EffectKind) String() string {
	if s, ok := effectNames[k]; ok {
		return s
	}
	return "<effect?>"
}

// EffectKindByName resolves "read", "write", "alloc" or "free".
func EffectKindByName(name string) (EffectKind, bool) {
	for k, s := range effectNames {
		if s == name {
			return k, true
		}
	}
	return 0, false
}

// Effect is one declared memory effect. On is the value the effect applies
// to, when known.
type Effect struct {
	On       Value
	Resource string
	Kind     EffectKind
}

// EffectInfo is the memory-effect metadata of an op.
//
// Declared means the op characterizes its own effects; an op that does not
// declare effects may do anything. Recursive means the effects of ops nested
// in its regions are part of the op's effects.
type EffectInfo struct {
	Effects   []Effect
	Declared  bool
	Recursive bool
}

func (e EffectInfo) clone() EffectInfo {
	e.Effects = slices.Clone(e.Effects)
	return e
}

// defaultEffects derives the effect metadata of a known kind.
func defaultEffects(k Kind, operands, results []Value) EffectInfo {
	info := kinds[k]
	switch k {
	case KindLoad:
		return EffectInfo{Declared: true, Effects: []Effect{effectOn(EffectRead, operands, 0)}}
	case KindStore:
		return EffectInfo{Declared: true, Effects: []Effect{effectOn(EffectWrite, operands, 1)}}
	case KindAlloc:
		return EffectInfo{Declared: true, Effects: []Effect{effectOn(EffectAllocate, results, 0)}}
	case KindDealloc:
		return EffectInfo{Declared: true, Effects: []Effect{effectOn(EffectFree, operands, 0)}}
	}
	return EffectInfo{Declared: info.pure, Recursive: info.recursive}
}

func effectOn(kind EffectKind, vals []Value, i int) Effect {
	e := Effect{Kind: kind, Resource: DefaultResource}
	if i < len(vals) {
		e.On = vals[i]
	}
	return e
}

// SetEffects replaces the effect metadata of o.
func (f *Func) SetEffects(o Op, info EffectInfo) {
	f.op(o).effects = info.clone()
	f.notifyModified(o)
}

// HasDefaultEffects reports whether o carries the effects its kind implies.
func (f *Func) HasDefaultEffects(o Op) bool {
	n := f.op(o)
	def := defaultEffects(n.kind, n.operands, n.results)
	return def.Declared == n.effects.Declared &&
		def.Recursive == n.effects.Recursive &&
		slices.Equal(def.Effects, n.effects.Effects)
}
