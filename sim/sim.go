package sim

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/ompopt/errors"
	"github.com/wippyai/ompopt/ir"
)

const (
	DefaultWorkers  = 4
	DefaultMaxSteps = 1_000_000
)

// Config controls a simulation.
type Config struct {
	// Workers is the team size of each parallel region.
	Workers int
	// MaxSteps bounds the number of ops executed across all workers.
	MaxSteps int
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	return c
}

// Cell addresses one memory slot.
type Cell struct {
	Buf   int64
	Index int64
}

func (c Cell) String() string {
	return fmt.Sprintf("%d[%d]", c.Buf, c.Index)
}

// EventKind classifies trace events.
type EventKind uint8

const (
	EventFork EventKind = iota + 1
	EventBarrier
	EventJoin
)

func (k EventKind) String() string {
	switch k {
	case EventFork:
		return "fork"
	case EventBarrier:
		return "barrier"
	case EventJoin:
		return "join"
	}
	return "unknown"
}

// Event is one step of the phase trace. Region numbers parallel region
// entries from 1; Phase counts the phases completed in that region.
type Event struct {
	Kind   EventKind
	Region int
	Phase  int
}

// Result is the observable outcome of a simulation.
type Result struct {
	Memory  map[Cell]int64
	Returns []int64
	Trace   []Event
	// Regions counts top-level parallel region entries.
	Regions int
	// Barriers counts completed team-wide barriers.
	Barriers int
	// Phases counts barrier-separated phases over all regions.
	Phases int
	Steps  int
}

// Cells returns the written cells in buffer, then index order.
func (r *Result) Cells() []Cell {
	cells := slices.Collect(maps.Keys(r.Memory))
	slices.SortFunc(cells, func(a, b Cell) int {
		if c := cmp.Compare(a.Buf, b.Buf); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return cells
}

// allocBase is the first buffer id handed out by memref.alloc, above any
// id a caller is likely to pass as an argument.
const allocBase = 1 << 32

type machine struct {
	f     *ir.Func
	mem   map[Cell]int64
	freed map[int64]bool
	res   *Result
	cfg   Config
	next  int64
}

// Run interprets f with args bound to its parameters.
func Run(f *ir.Func, cfg Config, args ...int64) (*Result, error) {
	cfg = cfg.withDefaults()
	params := f.Params()
	if len(args) != len(params) {
		return nil, errors.InvalidInput(errors.PhaseSimulate,
			fmt.Sprintf("func %s takes %d arguments, got %d", f.Name, len(params), len(args)))
	}
	m := &machine{
		f:     f,
		cfg:   cfg,
		mem:   make(map[Cell]int64),
		freed: make(map[int64]bool),
		res:   &Result{},
		next:  allocBase,
	}
	m.res.Memory = m.mem

	w := &worker{m: m, env: make(map[ir.Value]int64)}
	for i, p := range params {
		w.env[p] = args[i]
	}
	rets, err := w.region(f.Body())
	if err != nil {
		return nil, err
	}
	m.res.Returns = rets
	return m.res, nil
}

func (m *machine) step() error {
	m.res.Steps++
	if m.res.Steps > m.cfg.MaxSteps {
		return errors.Limit(errors.PhaseSimulate, "steps", m.cfg.MaxSteps)
	}
	return nil
}

func (m *machine) event(ev Event) {
	m.res.Trace = append(m.res.Trace, ev)
	Logger().Debug("sim event",
		zap.Stringer("kind", ev.Kind),
		zap.Int("region", ev.Region),
		zap.Int("phase", ev.Phase))
}

// fork runs the body of a top-level parallel region with a full team.
func (m *machine) fork(p ir.Op, env map[ir.Value]int64) error {
	body, err := singleBlock(m.f, m.f.Region(p, 0))
	if err != nil || body.IsNil() {
		return err
	}
	m.res.Regions++
	region := m.res.Regions
	m.event(Event{Kind: EventFork, Region: region})

	team := make([]*member, m.cfg.Workers)
	for i := range team {
		team[i] = newMember(&worker{m: m, env: maps.Clone(env), id: i}, body)
	}
	defer func() {
		for _, mb := range team {
			mb.stop()
		}
	}()

	phase := 0
	for {
		waiting, finished := 0, 0
		for _, mb := range team {
			if mb.done {
				finished++
				continue
			}
			_, ok := mb.next()
			if mb.w.err != nil {
				return mb.w.err
			}
			if ok {
				waiting++
			} else {
				mb.done = true
				finished++
			}
		}
		if waiting == 0 {
			break
		}
		if finished > 0 {
			return errors.New(errors.PhaseSimulate, errors.KindInvariant).
				Op(m.f.OpName(p)).
				Detail("barrier reached by %d of %d workers in region %d", waiting, len(team), region).
				Build()
		}
		phase++
		m.res.Barriers++
		m.event(Event{Kind: EventBarrier, Region: region, Phase: phase})
	}
	m.res.Phases += phase + 1
	m.event(Event{Kind: EventJoin, Region: region, Phase: phase + 1})
	return nil
}

func singleBlock(f *ir.Func, r ir.Region) (ir.Block, error) {
	switch f.NumBlocks(r) {
	case 0:
		return ir.Block{}, nil
	case 1:
		return f.Front(r), nil
	}
	return ir.Block{}, errors.Unsupported(errors.PhaseSimulate, "regions with more than one block")
}
