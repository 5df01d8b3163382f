package ecs

// World owns host resources, phase state families and system order.
type World struct {
	resources map[ResourceID]any
	scheduler Scheduler
	events    EventQueue

	// transitions queued by StateHandle.Set, applied after all systems ran.
	transitions []func()
	tick        uint64
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{resources: make(map[ResourceID]any)}
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil {
		return
	}
	w.scheduler.Add(s)
}

// Update runs all systems once, then applies queued state transitions.
func (w *World) Update() {
	if w == nil {
		return
	}
	w.tick++
	w.scheduler.Update(w)
	w.applyTransitions()
	w.events.flush()
}

// Tick returns the number of completed or running updates.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// Events returns the world event queue. Events live until the end of the
// update that pushed them.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// View returns a read-only view over the world resources.
func (w *World) View() View {
	return View{w: w}
}

// RemoveResource drops a resource by id, regardless of its type.
func (w *World) RemoveResource(id ResourceID) bool {
	if w == nil || w.resources == nil {
		return false
	}
	if _, ok := w.resources[id]; !ok {
		return false
	}
	delete(w.resources, id)
	return true
}

func (w *World) setResource(id ResourceID, value any) {
	if w.resources == nil {
		w.resources = make(map[ResourceID]any)
	}
	w.resources[id] = value
}

func (w *World) resource(id ResourceID) (any, bool) {
	if w == nil || w.resources == nil {
		return nil, false
	}
	v, ok := w.resources[id]
	return v, ok
}

func (w *World) queueTransition(apply func()) {
	w.transitions = append(w.transitions, apply)
}

func (w *World) applyTransitions() {
	if len(w.transitions) == 0 {
		return
	}
	pending := w.transitions
	w.transitions = nil
	for _, apply := range pending {
		apply()
	}
}
