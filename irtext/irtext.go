package irtext

import (
	"fmt"

	"github.com/wippyai/ompopt/errors"
	"github.com/wippyai/ompopt/ir"
	"github.com/wippyai/ompopt/irtext/internal/parser"
	"github.com/wippyai/ompopt/irtext/internal/token"
)

// Parse reads every function in source. The result is not verified; run
// ir.Verify to check structural invariants.
func Parse(source string) ([]*ir.Func, error) {
	tokens := token.Tokenize(source)
	p := parser.New(tokens)
	return p.Parse()
}

// ParseFunc reads a source holding exactly one function.
func ParseFunc(source string) (*ir.Func, error) {
	funcs, err := Parse(source)
	if err != nil {
		return nil, err
	}
	if len(funcs) != 1 {
		return nil, errors.InvalidInput(errors.PhaseParse, fmt.Sprintf("expected exactly one function, got %d", len(funcs)))
	}
	return funcs[0], nil
}

// MustParseFunc is like ParseFunc but panics on error. Intended for tests
// and fixed inputs.
func MustParseFunc(source string) *ir.Func {
	f, err := ParseFunc(source)
	if err != nil {
		panic(err)
	}
	return f
}
