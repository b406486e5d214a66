package rewrite

import (
	"go.uber.org/zap"

	"github.com/wippyai/ompopt/ir"
)

// DefaultMaxIterations bounds the outer iterations of a driver run when the
// config does not set a limit.
const DefaultMaxIterations = 10

// Config controls a driver run.
type Config struct {
	// MaxIterations bounds the number of outer iterations. Values <= 0
	// select DefaultMaxIterations.
	MaxIterations int
	// MaxRewrites bounds the total number of successful rewrites; 0 means
	// unlimited.
	MaxRewrites int
	// EraseDeadOps erases trivially dead ops before patterns are tried.
	EraseDeadOps bool
}

// Result summarizes a driver run.
type Result struct {
	ByPattern  map[string]int
	Iterations int
	Rewrites   int
	Erased     int
	// Converged is true when the last iteration changed nothing. Hitting a
	// bound leaves it false; the IR keeps every rewrite applied so far.
	Converged bool
}

// Driver applies an ordered list of patterns to a function until no
// pattern applies.
//
// Each outer iteration queues every live op so that ops pop in post-order.
// For each popped op the driver first erases it if trivially dead, then
// tries the patterns in order; the first success wins. Edits re-queue the
// ops they touch: inserted and modified ops with their parent op, and the
// operand definers of erased ops. Erased ops leave the queue at once.
type Driver struct {
	observer Observer
	patterns []Pattern
	cfg      Config
}

// NewDriver creates a driver for patterns, tried in the given order.
func NewDriver(cfg Config, patterns ...Pattern) *Driver {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return &Driver{cfg: cfg, patterns: patterns}
}

// OnRewrite installs an observer called after every successful rewrite.
func (d *Driver) OnRewrite(obs Observer) *Driver {
	d.observer = obs
	return d
}

// Config returns the effective configuration.
func (d *Driver) Config() Config {
	return d.cfg
}

type run struct {
	d   *Driver
	f   *ir.Func
	wl  *worklist
	rw  *Rewriter
	res Result
}

// Run rewrites f in place.
func (d *Driver) Run(f *ir.Func) Result {
	r := &run{
		d:   d,
		f:   f,
		wl:  newWorklist(f),
		res: Result{ByPattern: make(map[string]int)},
	}
	r.rw = &Rewriter{Func: f}
	prev := f.SetListener(r)
	defer f.SetListener(prev)

	log := Logger().With(zap.String("func", f.Name))
	for r.res.Iterations < d.cfg.MaxIterations {
		r.res.Iterations++
		changed, stop := r.iterate()
		if !changed {
			r.res.Converged = true
			break
		}
		if stop {
			log.Debug("rewrite limit reached", zap.Int("limit", d.cfg.MaxRewrites))
			break
		}
	}

	log.Info("rewrite driver finished",
		zap.Int("iterations", r.res.Iterations),
		zap.Int("rewrites", r.res.Rewrites),
		zap.Int("erased", r.res.Erased),
		zap.Bool("converged", r.res.Converged))
	return r.res
}

// iterate runs one outer iteration. stop reports that MaxRewrites was hit.
func (r *run) iterate() (changed, stop bool) {
	r.wl.reset()
	order := r.f.PostOrder()
	for i := len(order) - 1; i >= 0; i-- {
		r.wl.push(order[i])
	}

	for {
		o, ok := r.wl.pop()
		if !ok {
			return changed, false
		}
		if r.d.cfg.EraseDeadOps && IsTriviallyDead(r.f, o) {
			Logger().Debug("erasing dead op",
				zap.String("op", r.f.OpName(o)),
				zap.Int("iteration", r.res.Iterations))
			r.f.Erase(o)
			r.res.Erased++
			changed = true
			continue
		}
		if r.apply(o) {
			changed = true
			if r.d.cfg.MaxRewrites > 0 && r.res.Rewrites >= r.d.cfg.MaxRewrites {
				return true, true
			}
		}
	}
}

// apply tries every pattern on o and reports whether one succeeded.
func (r *run) apply(o ir.Op) bool {
	kind := r.f.Kind(o)
	for _, p := range r.d.patterns {
		if root := p.Root(); root != ir.KindInvalid && root != kind {
			continue
		}
		before := r.rw.edits
		if !p.MatchAndRewrite(o, r.rw) {
			if r.rw.edits != before {
				Logger().Warn("pattern mutated the IR without reporting success",
					zap.String("pattern", p.Name()))
				return true
			}
			continue
		}
		r.res.Rewrites++
		r.res.ByPattern[p.Name()]++
		Logger().Debug("applied pattern",
			zap.String("pattern", p.Name()),
			zap.String("op", kind.String()),
			zap.Int("iteration", r.res.Iterations))
		if r.d.observer != nil {
			r.d.observer(r.f, Event{
				Pattern:   p.Name(),
				Root:      kind,
				Iteration: r.res.Iterations,
				Rewrites:  r.res.Rewrites,
			})
		}
		return true
	}
	return false
}

// Listener hooks.

func (r *run) OpInserted(o ir.Op) {
	r.rw.edits++
	r.wl.push(o)
	r.wl.push(r.f.ParentOp(o))
}

func (r *run) OpModified(o ir.Op) {
	r.rw.edits++
	r.wl.push(o)
}

func (r *run) OpErased(o ir.Op) {
	r.rw.edits++
	r.wl.remove(o)
	for _, v := range r.f.Operands(o) {
		if !r.f.ValueLive(v) {
			continue
		}
		if def := r.f.DefiningOp(v); !def.IsNil() {
			r.wl.push(def)
		}
	}
}
