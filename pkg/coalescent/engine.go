package coalescent

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coalsim/pkg/errors"
	"github.com/matzehuels/coalsim/pkg/lineage"
)

// EventKind distinguishes the two competing events of the simulation loop.
type EventKind int

const (
	// EventCoalescence merges two active lineages.
	EventCoalescence EventKind = iota
	// EventMutation records a mutation on one active lineage.
	EventMutation
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	if k == EventMutation {
		return "mutation"
	}
	return "coalescence"
}

// Event describes one iteration of the simulation loop.
type Event struct {
	Kind    EventKind
	Time    float64        // Clock value after the event
	Active  int            // Active lineages before the event
	Lineage lineage.NodeID // New parent (coalescence) or mutated lineage
	Index   int            // Mutation index; -1 for coalescence events
}

// Result is the outcome of one simulation.
type Result struct {
	// Tree is the finished genealogy. Its root is the MRCA of the sample.
	Tree *lineage.Tree

	// Mutations is the number of mutation events. Indices 0..Mutations-1
	// each appear on exactly one lineage.
	Mutations int

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Root returns the handle of the MRCA.
func (r *Result) Root() lineage.NodeID { return r.Tree.Root() }

// Engine runs coalescent simulations with one random source.
//
// An Engine is not safe for concurrent use because its Source is not.
// Independent runs in parallel each need their own Engine.
type Engine struct {
	src     Source
	logger  *log.Logger
	onEvent func(Event)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEventHook registers fn to be called after every loop iteration.
func WithEventHook(fn func(Event)) Option {
	return func(e *Engine) { e.onEvent = fn }
}

// New creates an engine drawing variates from src.
func New(src Source, opts ...Option) *Engine {
	e := &Engine{src: src, logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Simulate runs the coalescent for cfg.N sampled individuals until a single
// lineage remains and returns the genealogy together with the mutation count.
//
// Each iteration samples a candidate pair, draws a candidate coalescence time
// and, when a mutation model is configured, a competing mutation time. The
// earlier event wins. A mutation leaves the population size unchanged; a
// coalescence replaces the pair with their common ancestor.
func (e *Engine) Simulate(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	tree := lineage.NewTree(2*cfg.N - 1)
	active := make([]lineage.NodeID, cfg.N)
	for i := range active {
		active[i] = tree.AddLeaf()
	}

	prev := 0.0
	mutations := 0
	for len(active) > 1 {
		k := len(active)
		li, ri := e.samplePair(k)

		candidate, err := CoalescenceTime(e.src, prev, k, cfg.T0)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "coalescence time with %d lineages", k)
		}

		if cfg.Theta != nil {
			mutTime, err := MutationTime(e.src, prev, *cfg.Theta, k)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "mutation time with %d lineages", k)
			}
			if mutTime < candidate {
				target := active[e.src.IntN(k)]
				if err := tree.RecordMutation(target, mutations); err != nil {
					return nil, errors.Wrap(errors.ErrCodeInternal, err, "record mutation %d", mutations)
				}
				prev = mutTime
				e.emit(Event{Kind: EventMutation, Time: prev, Active: k, Lineage: target, Index: mutations})
				mutations++
				continue
			}
		}

		parent, err := tree.Coalesce(candidate, active[li], active[ri])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "coalesce at %g", candidate)
		}
		active = removePair(active, li, ri)
		active = append(active, parent)
		prev = candidate
		e.emit(Event{Kind: EventCoalescence, Time: prev, Active: k, Lineage: parent, Index: -1})
	}

	if err := tree.SetRoot(active[0]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "set root")
	}

	res := &Result{Tree: tree, Mutations: mutations, Elapsed: time.Since(start)}
	e.logger.Debug("simulation complete",
		"config", cfg.String(),
		"tmrca", fmt.Sprintf("%.6g", tree.Time(tree.Root())),
		"mutations", mutations,
		"duration", res.Elapsed)
	return res, nil
}

// samplePair draws two distinct positions in [0, k) uniformly.
func (e *Engine) samplePair(k int) (int, int) {
	i := e.src.IntN(k)
	j := e.src.IntN(k - 1)
	if j >= i {
		j++
	}
	return i, j
}

func (e *Engine) emit(ev Event) {
	if e.onEvent != nil {
		e.onEvent(ev)
	}
}

// removePair deletes positions i and j (i != j) from active by swapping with
// the tail. Handles, not values, identify the removed lineages.
func removePair(active []lineage.NodeID, i, j int) []lineage.NodeID {
	if i < j {
		i, j = j, i
	}
	last := len(active) - 1
	active[i] = active[last]
	active = active[:last]
	last--
	active[j] = active[last]
	return active[:last]
}

// Simulate is a convenience wrapper that runs one simulation with a fresh
// engine over src.
func Simulate(src Source, cfg Config) (*Result, error) {
	return New(src).Simulate(cfg)
}
