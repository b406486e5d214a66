package irtext

import (
	"strconv"
	"strings"

	"github.com/wippyai/ompopt/ir"
	"github.com/wippyai/ompopt/irtext/internal/parser"
)

// Format prints f in canonical form: parameters are named %argN, every other
// value %N in order of definition, and implicit terminators are omitted.
// Equal trees print byte-identical text, and the output parses back to an
// equal tree.
func Format(f *ir.Func) string {
	p := &printer{f: f, names: make(map[ir.Value]string)}
	p.sb.WriteString("(func")
	if f.Name != "" {
		p.sb.WriteString(" $" + f.Name)
	}
	if params := f.Params(); len(params) > 0 {
		p.sb.WriteString(" (param")
		for i, v := range params {
			name := "%arg" + strconv.Itoa(i)
			p.names[v] = name
			p.sb.WriteString(" " + name)
		}
		p.sb.WriteString(")")
	}
	p.blockOps(f.Entry(), ir.KindInvalid, 1)
	p.sb.WriteString(")\n")
	return p.sb.String()
}

// FormatAll prints every function, separated by a blank line.
func FormatAll(funcs []*ir.Func) string {
	parts := make([]string, len(funcs))
	for i, f := range funcs {
		parts[i] = Format(f)
	}
	return strings.Join(parts, "\n")
}

type printer struct {
	f     *ir.Func
	names map[ir.Value]string
	sb    strings.Builder
	next  int
}

func (p *printer) define(v ir.Value) string {
	name := "%" + strconv.Itoa(p.next)
	p.next++
	p.names[v] = name
	return name
}

func (p *printer) name(v ir.Value) string {
	if name, ok := p.names[v]; ok {
		return name
	}
	return "%undef"
}

func (p *printer) newline(depth int) {
	p.sb.WriteByte('\n')
	p.sb.WriteString(strings.Repeat("  ", depth))
}

// blockOps prints the ops of b, each on its own line at depth.
func (p *printer) blockOps(b ir.Block, owner ir.Kind, depth int) {
	for _, o := range p.visibleOps(b, owner) {
		p.newline(depth)
		p.op(o, depth)
	}
}

// visibleOps returns the ops of b without a trailing implicit terminator.
func (p *printer) visibleOps(b ir.Block, owner ir.Kind) []ir.Op {
	f := p.f
	ops := f.BlockOps(b)
	if n := len(ops); n > 0 {
		last := ops[n-1]
		if f.Kind(last) == parser.ImplicitTerminator(owner) &&
			f.NumOperands(last) == 0 && f.NumResults(last) == 0 && f.HasDefaultEffects(last) {
			ops = ops[:n-1]
		}
	}
	return ops
}

func (p *printer) op(o ir.Op, depth int) {
	f := p.f
	kind := f.Kind(o)
	p.sb.WriteString("(" + f.OpName(o))

	if results := f.Results(o); len(results) > 0 {
		p.sb.WriteString(" (result")
		for _, r := range results {
			p.sb.WriteString(" " + p.define(r))
		}
		p.sb.WriteString(")")
	}
	for _, v := range f.Operands(o) {
		p.sb.WriteString(" " + p.name(v))
	}
	if attr := f.Attr(o); attr != 0 || kind == ir.KindConstant {
		p.sb.WriteString(" " + strconv.FormatInt(attr, 10))
	}
	if kind == ir.KindCall {
		p.sb.WriteString(" " + strconv.Quote(f.Symbol(o)))
	}
	if !f.HasDefaultEffects(o) {
		p.effects(f.Effects(o))
	}

	if kind == ir.KindIf {
		p.container("then", f.Region(o, 0), kind, depth+1)
		if f.NumBlocks(f.Region(o, 1)) > 0 {
			p.container("else", f.Region(o, 1), kind, depth+1)
		}
	} else if p.inline(o) {
		b := f.Front(f.Region(o, 0))
		p.args(b)
		p.blockOps(b, kind, depth+1)
	} else {
		for _, r := range f.Regions(o) {
			p.container("region", r, kind, depth+1)
		}
	}
	p.sb.WriteString(")")
}

func (p *printer) effects(info ir.EffectInfo) {
	if info.Declared {
		p.sb.WriteString(" (effects")
		for _, e := range info.Effects {
			p.sb.WriteString(" " + e.Kind.String())
			if e.Resource != ir.DefaultResource && e.Resource != "" {
				p.sb.WriteString(":" + e.Resource)
			}
			if !e.On.IsNil() {
				p.sb.WriteString("@" + p.name(e.On))
			}
		}
		p.sb.WriteString(")")
	}
	if info.Recursive {
		p.sb.WriteString(" (recursive)")
	}
}

// inline reports whether the single region of o is printed as nested ops
// directly inside the op form.
func (p *printer) inline(o ir.Op) bool {
	f := p.f
	regions := f.Regions(o)
	if len(regions) != 1 {
		return false
	}
	r := regions[0]
	if f.NumBlocks(r) != 1 {
		return false
	}
	if f.Kind(o).NumRegions() == 1 {
		return true
	}
	b := f.Front(r)
	return len(f.BlockArgs(b)) > 0 || len(p.visibleOps(b, f.Kind(o))) > 0
}

func (p *printer) args(b ir.Block) {
	args := p.f.BlockArgs(b)
	if len(args) == 0 {
		return
	}
	p.sb.WriteString(" (args")
	for _, a := range args {
		p.sb.WriteString(" " + p.define(a))
	}
	p.sb.WriteString(")")
}

// container prints (kw ...) holding the blocks of r. A single block without
// arguments prints its ops directly.
func (p *printer) container(kw string, r ir.Region, owner ir.Kind, depth int) {
	f := p.f
	p.newline(depth)
	p.sb.WriteString("(" + kw)
	blocks := f.Blocks(r)
	if len(blocks) == 1 && len(f.BlockArgs(blocks[0])) == 0 && kw != "region" {
		p.blockOps(blocks[0], owner, depth+1)
	} else {
		for _, b := range blocks {
			p.newline(depth + 1)
			p.sb.WriteString("(block")
			p.args(b)
			p.blockOps(b, owner, depth+2)
			p.sb.WriteString(")")
		}
	}
	p.sb.WriteString(")")
}
