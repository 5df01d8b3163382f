package ecs

import "fmt"

// StateHandle identifies one family of host phases. Several families can live
// in the same world; each keeps its own current value and transition count.
type StateHandle[S comparable] struct {
	res ResourceHandle[*stateCell[S]]
}

type stateCell[S comparable] struct {
	current    S
	next       S
	pending    bool
	generation uint64
}

func NewState[S comparable]() StateHandle[S] {
	return StateHandle[S]{res: NewResource[*stateCell[S]]()}
}

// ID identifies the family within its world.
func (h StateHandle[S]) ID() ResourceID {
	return h.res.ID()
}

// Name is the Go type name of the phase family.
func (h StateHandle[S]) Name() string {
	var zero S
	return fmt.Sprintf("%T", zero)
}

// Init installs the family with an initial phase. Entering the initial phase
// counts as the first transition.
func (h StateHandle[S]) Init(w *World, initial S) error {
	return Insert(w, h.res, &stateCell[S]{current: initial, generation: 1})
}

// Current returns the active phase.
func (h StateHandle[S]) Current(w *World) (S, bool) {
	cell, ok := Get(w, h.res)
	if !ok {
		var zero S
		return zero, false
	}
	return cell.current, true
}

// Generation increments every time a transition is applied, including
// transitions into the phase that is already active.
func (h StateHandle[S]) Generation(w *World) uint64 {
	cell, ok := Get(w, h.res)
	if !ok {
		return 0
	}
	return cell.generation
}

// Set requests a transition. The last request of a tick wins and is applied
// once every system of that tick has run.
func (h StateHandle[S]) Set(w *World, next S) bool {
	cell, ok := Get(w, h.res)
	if !ok {
		return false
	}
	cell.next = next
	if cell.pending {
		return true
	}
	cell.pending = true
	w.queueTransition(func() {
		if !cell.pending {
			return
		}
		cell.current = cell.next
		cell.pending = false
		cell.generation++
	})
	return true
}

// Pending returns the transition requested during the current tick, if any.
func (h StateHandle[S]) Pending(w *World) (S, bool) {
	cell, ok := Get(w, h.res)
	if !ok || !cell.pending {
		var zero S
		return zero, false
	}
	return cell.next, true
}
