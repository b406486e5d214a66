package parser

import (
	"strconv"
	"strings"

	"github.com/wippyai/ompopt/errors"
	"github.com/wippyai/ompopt/ir"
	"github.com/wippyai/ompopt/irtext/internal/token"
)

// opForm is the header of an op form. Region contents are only located
// during the header scan and parsed once the op exists.
type opForm struct {
	name      string
	symbol    string
	operands  []ir.Value
	results   []token.Token
	effects   []effectForm
	args      []token.Token
	body      []int // nested op forms of the implicit region
	regions   []int // (region ...) forms
	then      int   // (then ...) form, -1 if absent
	els       int   // (else ...) form, -1 if absent
	end       int
	line      int
	attr      int64
	kind      ir.Kind
	hasAttr   bool
	declared  bool
	recursive bool
	hasArgs   bool
}

type effectForm struct {
	on       *token.Token
	resource string
	kind     ir.EffectKind
}

// parseOp parses one op form and appends the op to b.
func (p *Parser) parseOp(b ir.Block) error {
	form, err := p.parseHeader()
	if err != nil {
		return err
	}

	numRegions, err := p.countRegions(form)
	if err != nil {
		return err
	}
	numResults := len(form.results)
	if want := form.kind.NumResults(); want >= 0 {
		switch {
		case len(form.results) == 0:
			numResults = want
		case len(form.results) != want:
			return p.structural(form, "expects %d results, got %d", want, len(form.results))
		}
	}

	f := p.f
	o := f.Create(ir.OpSpec{
		Kind:     form.kind,
		Symbol:   form.symbol,
		Operands: form.operands,
		Attr:     form.attr,
		Results:  numResults,
		Regions:  numRegions,
	})
	f.InsertAtEnd(o, b)

	if form.declared || form.recursive {
		info, err := p.resolveEffects(form, o)
		if err != nil {
			return err
		}
		f.SetEffects(o, info)
	}

	if err := p.parseRegions(form, o); err != nil {
		return err
	}
	p.pos = form.end

	for i, name := range form.results {
		if err := p.define(name, f.Result(o, i)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) structural(form *opForm, format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidStructure).
		Line(form.line).
		Op(form.name).
		Detail(format, args...).
		Build()
}

// parseHeader scans an op form, resolving operands and recording the
// positions of nested forms.
func (p *Parser) parseHeader() (*opForm, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	head, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	form := &opForm{name: head.Value, line: head.Line, then: -1, els: -1}
	if k, ok := ir.KindByName(head.Value); ok {
		form.kind = k
	} else {
		form.kind = ir.KindGeneric
		form.symbol = head.Value
	}

	for {
		t := p.peek()
		if t == nil {
			return nil, errors.Syntax(head.Line, "unclosed op %s", head.Value)
		}
		switch {
		case t.Type == token.RParen:
			p.next()
			form.end = p.pos
			return form, nil

		case t.IsValue():
			p.next()
			v, err := p.lookup(*t)
			if err != nil {
				return nil, err
			}
			form.operands = append(form.operands, v)

		case t.Type == token.Number:
			p.next()
			if form.hasAttr {
				return nil, errors.Syntax(t.Line, "%s has more than one attribute", head.Value)
			}
			n, err := strconv.ParseInt(strings.ReplaceAll(t.Value, "_", ""), 0, 64)
			if err != nil {
				return nil, errors.Syntax(t.Line, "invalid integer %q", t.Value)
			}
			form.attr, form.hasAttr = n, true

		case t.Type == token.String:
			p.next()
			if form.kind != ir.KindCall {
				return nil, errors.Syntax(t.Line, "%s takes no symbol", head.Value)
			}
			form.symbol = t.Value

		case t.Type == token.LParen:
			if err := p.parseHeaderForm(form); err != nil {
				return nil, err
			}

		default:
			return nil, errors.Syntax(t.Line, "unexpected %q in %s", t.Value, head.Value)
		}
	}
}

// parseHeaderForm handles one parenthesized item of an op form.
func (p *Parser) parseHeaderForm(form *opForm) error {
	start := p.pos
	kw := p.tokens[start+1:]
	if len(kw) == 0 || kw[0].Type != token.Ident {
		return errors.Syntax(p.tokens[start].Line, "expected keyword or op after '(', got %s", describe(p.peekAt(start+1)))
	}
	line := kw[0].Line

	switch kw[0].Value {
	case "result":
		p.pos += 2
		names, err := p.parseNames("result")
		if err != nil {
			return err
		}
		form.results = append(form.results, names...)

	case "args":
		p.pos += 2
		names, err := p.parseNames("args")
		if err != nil {
			return err
		}
		form.args, form.hasArgs = names, true

	case "effects":
		p.pos += 2
		form.declared = true
		for {
			t := p.next()
			if t == nil {
				return errors.Syntax(line, "unclosed (effects ...)")
			}
			if t.Type == token.RParen {
				break
			}
			e, err := parseEffect(t)
			if err != nil {
				return err
			}
			form.effects = append(form.effects, e)
		}

	case "recursive":
		p.pos += 2
		if _, err := p.expect(token.RParen); err != nil {
			return err
		}
		form.recursive = true

	case "region":
		form.regions = append(form.regions, start)
		return p.skipForm()

	case "then", "else":
		if form.kind != ir.KindIf {
			return errors.Syntax(line, "(%s ...) only applies to scf.if", kw[0].Value)
		}
		if kw[0].Value == "then" {
			if form.then >= 0 {
				return errors.Syntax(line, "duplicate (then ...)")
			}
			form.then = start
		} else {
			if form.els >= 0 {
				return errors.Syntax(line, "duplicate (else ...)")
			}
			form.els = start
		}
		return p.skipForm()

	case "block", "param", "func", "module":
		return errors.Syntax(line, "unexpected (%s ...) in op %s", kw[0].Value, form.name)

	default:
		form.body = append(form.body, start)
		return p.skipForm()
	}
	return nil
}

func (p *Parser) peekAt(i int) *token.Token {
	if i >= len(p.tokens) {
		return nil
	}
	return &p.tokens[i]
}

// parseEffect reads kind[:resource][@%value].
func parseEffect(t *token.Token) (effectForm, error) {
	if t.Type != token.Ident {
		return effectForm{}, errors.Syntax(t.Line, "expected effect, got %q", t.Value)
	}
	spec := t.Value
	var e effectForm
	if before, after, ok := strings.Cut(spec, "@"); ok {
		on := token.Token{Value: after, Type: token.Ident, Line: t.Line}
		if !on.IsValue() {
			return effectForm{}, errors.Syntax(t.Line, "invalid effect target in %q", spec)
		}
		e.on = &on
		spec = before
	}
	name, resource, _ := strings.Cut(spec, ":")
	kind, ok := ir.EffectKindByName(name)
	if !ok {
		return effectForm{}, errors.Syntax(t.Line, "unknown effect %q", name)
	}
	e.kind = kind
	e.resource = resource
	if e.resource == "" {
		e.resource = ir.DefaultResource
	}
	return e, nil
}

// resolveEffects builds the effect metadata of o. Effect targets may name
// operands in scope or the op's own results.
func (p *Parser) resolveEffects(form *opForm, o ir.Op) (ir.EffectInfo, error) {
	info := ir.EffectInfo{Declared: form.declared, Recursive: form.recursive}
	for _, e := range form.effects {
		eff := ir.Effect{Kind: e.kind, Resource: e.resource}
		if e.on != nil {
			v, found := ir.Value{}, false
			for i, name := range form.results {
				if name.Value == e.on.Value {
					v, found = p.f.Result(o, i), true
				}
			}
			if !found {
				var err error
				if v, err = p.lookup(*e.on); err != nil {
					return ir.EffectInfo{}, err
				}
			}
			eff.On = v
		}
		info.Effects = append(info.Effects, eff)
	}
	return info, nil
}

func (p *Parser) countRegions(form *opForm) (int, error) {
	want := form.kind.NumRegions()
	if form.kind == ir.KindIf {
		if len(form.body) > 0 || len(form.regions) > 0 || form.hasArgs {
			return 0, p.structural(form, "regions of scf.if are written as (then ...) and (else ...)")
		}
		return want, nil
	}
	implicit := len(form.body) > 0 || form.hasArgs
	if implicit && len(form.regions) > 0 {
		return 0, p.structural(form, "cannot mix nested ops with (region ...) forms")
	}
	n := len(form.regions)
	if implicit {
		n = 1
	}
	if want < 0 {
		return n, nil
	}
	if n == 0 {
		return want, nil
	}
	if n != want {
		return 0, p.structural(form, "expects %d regions, got %d", want, n)
	}
	return n, nil
}

// Regions

func (p *Parser) parseRegions(form *opForm, o ir.Op) error {
	f := p.f
	if form.kind == ir.KindIf {
		if form.then >= 0 {
			if err := p.parseContainer(f.Region(o, 0), form.kind, form.then, 0); err != nil {
				return err
			}
		} else {
			p.emptyBlock(f.Region(o, 0), form.kind, 0)
		}
		if form.els >= 0 {
			return p.parseContainer(f.Region(o, 1), form.kind, form.els, 0)
		}
		return nil
	}

	nargs := 0
	if form.kind == ir.KindFor && len(form.operands) >= 3 {
		nargs = len(form.operands) - 2
	}

	switch {
	case len(form.regions) > 0:
		for i, pos := range form.regions {
			if err := p.parseContainer(f.Region(o, i), form.kind, pos, nargs); err != nil {
				return err
			}
		}
	case len(form.body) > 0 || form.hasArgs:
		return p.parseBlock(f.Region(o, 0), form.kind, form.args, nargs, form.body, form.line)
	default:
		for _, r := range f.Regions(o) {
			p.emptyBlock(r, form.kind, nargs)
		}
	}
	return nil
}

// emptyBlock adds a block holding only the implicit terminator.
func (p *Parser) emptyBlock(r ir.Region, owner ir.Kind, nargs int) {
	p.terminate(p.f.AddBlock(r, nargs), owner)
}

// parseContainer parses (region ...), (then ...) or (else ...) at pos. The
// contents are either (block ...) forms or the ops of a single block. An
// empty (region) has no blocks.
func (p *Parser) parseContainer(r ir.Region, owner ir.Kind, pos, nargs int) error {
	p.pos = pos + 2
	kw := p.tokens[pos+1]

	var items []int
	blocks := 0
	for {
		t := p.peek()
		if t == nil {
			return errors.Syntax(kw.Line, "unclosed (%s ...)", kw.Value)
		}
		if t.Type == token.RParen {
			break
		}
		if t.Type != token.LParen {
			return errors.Syntax(t.Line, "expected op or block in (%s ...), got %q", kw.Value, t.Value)
		}
		if p.peekKeyword("block") {
			blocks++
		}
		items = append(items, p.pos)
		if err := p.skipForm(); err != nil {
			return err
		}
	}

	switch {
	case blocks > 0 && blocks != len(items):
		return errors.Syntax(kw.Line, "cannot mix blocks and ops in (%s ...)", kw.Value)
	case blocks > 0:
		for _, pos := range items {
			if err := p.parseBlockForm(r, owner, pos); err != nil {
				return err
			}
		}
		return nil
	case len(items) == 0 && kw.Value == "region":
		return nil
	default:
		return p.parseBlock(r, owner, nil, nargs, items, kw.Line)
	}
}

// parseBlockForm parses (block (args ...)? ops...) at pos.
func (p *Parser) parseBlockForm(r ir.Region, owner ir.Kind, pos int) error {
	p.pos = pos + 2
	line := p.tokens[pos].Line
	var args []token.Token
	hasArgs := false
	if p.peekKeyword("args") {
		p.pos += 2
		var err error
		if args, err = p.parseNames("args"); err != nil {
			return err
		}
		hasArgs = true
	}
	var items []int
	for {
		t := p.peek()
		if t == nil {
			return errors.Syntax(line, "unclosed (block ...)")
		}
		if t.Type == token.RParen {
			break
		}
		items = append(items, p.pos)
		if err := p.skipForm(); err != nil {
			return err
		}
	}
	nargs := 0
	if hasArgs {
		nargs = len(args)
	}
	return p.parseBlock(r, owner, args, nargs, items, line)
}

// parseBlock appends a block to r and parses the op forms at items into
// it. Named arguments override the implicit argument count.
func (p *Parser) parseBlock(r ir.Region, owner ir.Kind, args []token.Token, nargs int, items []int, line int) error {
	if args != nil {
		if nargs != 0 && len(args) != nargs {
			return errors.New(errors.PhaseParse, errors.KindInvalidStructure).
				Line(line).
				Op(owner.String()).
				Detail("block expects %d arguments, got %d", nargs, len(args)).
				Build()
		}
		nargs = len(args)
	}
	b := p.f.AddBlock(r, nargs)
	p.pushScope()
	defer p.popScope()
	for i, name := range args {
		if err := p.define(name, p.f.BlockArgs(b)[i]); err != nil {
			return err
		}
	}
	for _, pos := range items {
		p.pos = pos
		if err := p.parseOp(b); err != nil {
			return err
		}
	}
	p.terminate(b, owner)
	return nil
}
