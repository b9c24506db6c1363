// Package phasebus dispatches events to listeners grouped into ordered
// phases.
//
// An Event is a typed extension point: callers register listeners against
// it, optionally into a named phase, and declare that one phase must run
// before another. The event flattens all listeners into one combined
// invoker that fires them in a deterministic, dependency-respecting order.
//
//	var onTick = phasebus.New(func(listeners []func(int)) func(int) {
//		return func(tick int) {
//			for _, l := range listeners {
//				l(tick)
//			}
//		}
//	})
//
//	onTick.RegisterIn("early", countFrames)
//	onTick.Register(updateWorld)
//	_ = onTick.AddPhaseOrdering("early", phasebus.DefaultPhase)
//
//	onTick.Invoker()(42)
//
// ARCHITECTURE:
//
// Ordering:
// Phases and constraints form a directed graph owned by the event. The
// graph is sorted by internal/phasegraph: strongly connected components
// collapse deterministically (smallest member id first), the condensed DAG
// topologically sorts with id-based tie-breaking, and the result depends
// only on which phases and constraints exist, never on insertion order.
// Cycles are collapsed and logged, never fatal; the one rejected input is
// a phase ordered against itself.
//
// Dispatch:
// The combined invoker is cached behind an atomic pointer with a dirty
// flag. Registration and constraint changes mark the cache dirty; the next
// Invoker call rebuilds under the event's mutex and republishes. Calling
// the invoker does no graph work and takes no locks.
package phasebus
