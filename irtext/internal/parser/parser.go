package parser

import (
	"fmt"
	"strings"

	"github.com/wippyai/ompopt/errors"
	"github.com/wippyai/ompopt/ir"
	"github.com/wippyai/ompopt/irtext/internal/token"
)

type Parser struct {
	f       *ir.Func
	defined map[string]bool
	tokens  []token.Token
	scopes  []map[string]ir.Value
	pos     int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse reads a sequence of functions, optionally wrapped in (module ...).
func (p *Parser) Parse() ([]*ir.Func, error) {
	var funcs []*ir.Func
	wrapped := false
	if p.peekKeyword("module") {
		p.pos += 2
		wrapped = true
	}
	for {
		t := p.peek()
		if t == nil {
			if wrapped {
				return nil, errors.Syntax(p.lastLine(), "unexpected end of input, expected ')'")
			}
			return funcs, nil
		}
		if wrapped && t.Type == token.RParen {
			p.next()
			if extra := p.peek(); extra != nil {
				return nil, errors.Syntax(extra.Line, "unexpected %q after module", extra.Value)
			}
			return funcs, nil
		}
		f, err := p.parseFunc()
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, f)
	}
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, errors.Syntax(p.lastLine(), "unexpected end of input, expected %v", typ)
	}
	if t.Type != typ {
		return nil, errors.Syntax(t.Line, "expected %v, got %q", typ, t.Value)
	}
	return t, nil
}

// peekKeyword reports whether the next tokens are '(' followed by kw.
func (p *Parser) peekKeyword(kw string) bool {
	if p.pos+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.pos].Type == token.LParen &&
		p.tokens[p.pos+1].Type == token.Ident && p.tokens[p.pos+1].Value == kw
}

func (p *Parser) lastLine() int {
	if len(p.tokens) == 0 {
		return 1
	}
	return p.tokens[len(p.tokens)-1].Line
}

// skipForm advances past the parenthesized form starting at the current
// position.
func (p *Parser) skipForm() error {
	open, err := p.expect(token.LParen)
	if err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		t := p.next()
		if t == nil {
			return errors.Syntax(open.Line, "unclosed '('")
		}
		switch t.Type {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
		}
	}
	return nil
}

// parseNames reads value names up to the closing paren of a form whose
// keyword was already consumed.
func (p *Parser) parseNames(form string) ([]token.Token, error) {
	var names []token.Token
	for {
		t := p.next()
		if t == nil {
			return nil, errors.Syntax(p.lastLine(), "unexpected end of input in (%s ...)", form)
		}
		if t.Type == token.RParen {
			return names, nil
		}
		if !t.IsValue() {
			return nil, errors.Syntax(t.Line, "expected value name in (%s ...), got %q", form, t.Value)
		}
		names = append(names, *t)
	}
}

// Scopes

func (p *Parser) pushScope() {
	p.scopes = append(p.scopes, make(map[string]ir.Value))
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *Parser) define(name token.Token, v ir.Value) error {
	if p.defined[name.Value] {
		return errors.RedefinedValue(name.Line, name.Value)
	}
	p.defined[name.Value] = true
	p.scopes[len(p.scopes)-1][name.Value] = v
	return nil
}

func (p *Parser) lookup(name token.Token) (ir.Value, error) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if v, ok := p.scopes[i][name.Value]; ok {
			return v, nil
		}
	}
	return ir.Value{}, errors.UndefinedValue(name.Line, name.Value)
}

// Functions

func (p *Parser) parseFunc() (*ir.Func, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	kw, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if kw.Value != "func" {
		return nil, errors.Syntax(kw.Line, "expected func, got %q", kw.Value)
	}

	name := ""
	if t := p.peek(); t != nil && t.Type == token.Ident && strings.HasPrefix(t.Value, "$") {
		name = strings.TrimPrefix(t.Value, "$")
		p.next()
	}
	var params []token.Token
	if p.peekKeyword("param") {
		p.pos += 2
		if params, err = p.parseNames("param"); err != nil {
			return nil, err
		}
	}

	p.f = ir.NewFunc(name, len(params))
	p.defined = make(map[string]bool)
	p.scopes = nil
	p.pushScope()
	defer p.popScope()
	for i, param := range params {
		if err := p.define(param, p.f.Params()[i]); err != nil {
			return nil, err
		}
	}

	entry := p.f.Entry()
	for {
		t := p.peek()
		if t == nil {
			return nil, errors.Syntax(kw.Line, "unclosed func %s", name)
		}
		if t.Type == token.RParen {
			p.next()
			break
		}
		if err := p.parseOp(entry); err != nil {
			return nil, err
		}
	}
	p.terminate(entry, ir.KindInvalid)
	return p.f, nil
}

// terminate appends the implicit terminator of a block owned by an op of
// kind owner when the block does not end with one.
func (p *Parser) terminate(b ir.Block, owner ir.Kind) {
	if last := p.f.LastOp(b); !last.IsNil() && p.f.Kind(last).IsTerminator() {
		return
	}
	p.f.InsertAtEnd(p.f.Create(ir.OpSpec{Kind: ImplicitTerminator(owner)}), b)
}

// ImplicitTerminator returns the terminator the text format appends to
// blocks of an op of kind owner. Ops without a fixed terminator get
// scf.yield.
func ImplicitTerminator(owner ir.Kind) ir.Kind {
	if k, ok := owner.DefaultTerminator(); ok {
		return k
	}
	return ir.KindYield
}

func describe(t *token.Token) string {
	if t == nil {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Value)
}
