package loading

import (
	"fmt"

	"github.com/milk9111/assetloader/ecs"
)

// Initializer builds a world resource after every collection of a phase is
// installed.
type Initializer struct {
	name  string
	apply func(w *ecs.World) error
	undo  func(w *ecs.World)
}

func (i Initializer) Name() string {
	return i.name
}

// InitResource registers fn to build the resource behind handle. fn sees the
// collections of the phase and the resources of earlier initializers.
func InitResource[T any](handle ecs.ResourceHandle[T], fn func(ecs.View) (T, error)) Initializer {
	return Initializer{
		name: handle.Name(),
		apply: func(w *ecs.World) error {
			v, err := fn(w.View())
			if err != nil {
				return fmt.Errorf("loading: init %s: %w", handle.Name(), err)
			}
			return ecs.Insert(w, handle, v)
		},
		undo: func(w *ecs.World) {
			ecs.Remove(w, handle)
		},
	}
}
