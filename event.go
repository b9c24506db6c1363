package phasebus

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/phasebus/internal/phasegraph"
)

// InvokerFactory builds one combined callable from an ordered listener
// sequence. The factory runs on every rebuild and must accept an empty
// slice: an event with no listeners still yields a working invoker.
type InvokerFactory[T any] func(listeners []T) T

// Event is a typed extension point with phase-ordered listeners.
//
// Create one Event per logical event type and keep it for the life of the
// process (or test). Listeners append to a phase and are never removed;
// ordering constraints accumulate in the owned phase graph.
//
// Thread-safety model:
//   - Invoker() and calling the returned value: safe from any goroutine
//   - Register/RegisterIn/AddPhaseOrdering: safe from any goroutine,
//     serialized by the event's mutex
//   - A caller racing a mutation observes either the fully-old or the
//     fully-new invoker, never a partial rebuild
type Event[T any] struct {
	factory InvokerFactory[T]
	logger  *slog.Logger

	mu        sync.Mutex        // guards graph, listeners, and rebuilds
	graph     *phasegraph.Graph // phases and must-run-before constraints
	listeners map[ID][]T        // per-phase listeners in registration order

	invoker atomic.Pointer[T] // last published combined invoker
	dirty   atomic.Bool       // set on mutation, cleared by rebuild
}

// New creates an event with the single implicit default phase.
func New[T any](factory InvokerFactory[T], opts ...Option) *Event[T] {
	return NewWithPhases(factory, []ID{DefaultPhase}, opts...)
}

// NewWithPhases creates an event whose initial phases carry a baseline
// relative order: phases[0] runs before phases[1], which runs before
// phases[2], and so on, regardless of their id ordering. Callers layer
// further constraints on top with AddPhaseOrdering.
//
// The default phase joins the chain only when listed; otherwise it is
// created lazily by the first Register call, unconstrained relative to the
// chain.
//
// Panics if factory is nil, phases is empty, or an id repeats: these are
// construction-time programmer errors.
func NewWithPhases[T any](factory InvokerFactory[T], phases []ID, opts ...Option) *Event[T] {
	if factory == nil {
		panic("phasebus: nil invoker factory")
	}
	if len(phases) == 0 {
		panic("phasebus: at least one initial phase required")
	}

	cfg := eventConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	ev := &Event[T]{
		factory:   factory,
		logger:    cfg.logger,
		graph:     phasegraph.New(),
		listeners: make(map[ID][]T),
	}

	seen := make(map[ID]struct{}, len(phases))
	var prev ID
	for i, raw := range phases {
		id := normalizeID(raw)
		if _, dup := seen[id]; dup {
			panic(fmt.Sprintf("phasebus: duplicate initial phase %q", id))
		}
		seen[id] = struct{}{}
		ev.graph.AddPhase(string(id))
		if i > 0 {
			if err := ev.graph.AddEdge(string(prev), string(id)); err != nil {
				panic(fmt.Sprintf("phasebus: initial phases: %v", err))
			}
		}
		prev = id
	}

	ev.dirty.Store(true)
	return ev
}

// Register appends listener to the default phase. The same listener value
// registered twice fires twice.
func (e *Event[T]) Register(listener T) {
	e.RegisterIn(DefaultPhase, listener)
}

// RegisterIn appends listener to the given phase, creating the phase on
// first reference. Listeners within one phase fire in registration order.
func (e *Event[T]) RegisterIn(phase ID, listener T) {
	id := normalizeID(phase)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph.AddPhase(string(id))
	e.listeners[id] = append(e.listeners[id], listener)
	e.dirty.Store(true)
}

// AddPhaseOrdering constrains before to run earlier than after. Both
// phases are created if absent; duplicate constraints collapse.
//
// The only rejected constraint is a self-referential one, returned as
// *InvalidConstraintError with no state changed. Constraints that close a
// cycle are accepted; the next rebuild collapses the cycle and logs a
// diagnostic.
func (e *Event[T]) AddPhaseOrdering(before, after ID) error {
	b := normalizeID(before)
	a := normalizeID(after)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.graph.AddEdge(string(b), string(a)); err != nil {
		return &InvalidConstraintError{Before: b, After: a}
	}
	e.dirty.Store(true)
	return nil
}

// Invoker returns the combined callable that fires every registered
// listener in phase order, rebuilding it first if listeners or constraints
// changed since the last build. Repeated calls without interleaved
// mutation return the same cached value.
func (e *Event[T]) Invoker() T {
	if !e.dirty.Load() {
		if inv := e.invoker.Load(); inv != nil {
			return *inv
		}
	}
	return e.rebuild()
}

// PhaseOrder returns the resolved phase sequence for the current graph.
// Used for testing and introspection; tooling renders it without going
// through a dispatch.
func (e *Event[T]) PhaseOrder() []ID {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, _ := e.graph.Sort()
	out := make([]ID, len(order))
	for i, id := range order {
		out[i] = ID(id)
	}
	return out
}

// rebuild sorts the graph, flattens listeners phase by phase, runs the
// factory, and publishes the result. The invoker pointer is stored before
// the dirty flag clears, so a reader that observes a clean flag always
// loads a fully built invoker.
func (e *Event[T]) rebuild() T {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Another caller may have rebuilt while this one waited on the lock.
	if !e.dirty.Load() {
		if inv := e.invoker.Load(); inv != nil {
			return *inv
		}
	}

	order, warnings := e.graph.Sort()
	e.logCycles(warnings)

	total := 0
	for _, ls := range e.listeners {
		total += len(ls)
	}
	flat := make([]T, 0, total)
	for _, id := range order {
		flat = append(flat, e.listeners[ID(id)]...)
	}

	combined := e.factory(flat)
	e.invoker.Store(&combined)
	e.dirty.Store(false)
	return combined
}

// logCycles emits one diagnostic line per collapsed cycle unless the
// global toggle suppresses them.
func (e *Event[T]) logCycles(warnings []phasegraph.CycleWarning) {
	if len(warnings) == 0 || !CycleWarningsEnabled() {
		return
	}
	for _, w := range warnings {
		e.logger.Warn("phase ordering cycle collapsed",
			"phases", w.Members,
			"detail", w.Message,
		)
	}
}
