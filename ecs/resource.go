package ecs

import (
	"errors"
	"reflect"
	"sync/atomic"
)

var (
	ErrInvalidResource = errors.New("ecs: invalid resource handle")
	ErrNilWorld        = errors.New("ecs: world is nil")
)

type ResourceID uint32

var nextResourceID atomic.Uint32

// ResourceHandle identifies one typed world resource. Handles are meant to be
// declared once as package variables, like
//
//	var ImageAssetsResource = ecs.NewResource[ImageAssets]()
type ResourceHandle[T any] struct {
	id   ResourceID
	name string
}

func NewResource[T any]() ResourceHandle[T] {
	return ResourceHandle[T]{
		id:   ResourceID(nextResourceID.Add(1)),
		name: reflect.TypeFor[T]().String(),
	}
}

func (h ResourceHandle[T]) ID() ResourceID {
	return h.id
}

// Name is the Go type name of the resource, used in logs and errors.
func (h ResourceHandle[T]) Name() string {
	return h.name
}

func (h ResourceHandle[T]) Valid() bool {
	return h.id != 0
}

func Insert[T any](w *World, handle ResourceHandle[T], value T) error {
	if w == nil {
		return ErrNilWorld
	}
	if !handle.Valid() {
		return ErrInvalidResource
	}
	w.setResource(handle.id, value)
	return nil
}

func Remove[T any](w *World, handle ResourceHandle[T]) bool {
	return w.RemoveResource(handle.id)
}

func Has[T any](w *World, handle ResourceHandle[T]) bool {
	_, ok := w.resource(handle.id)
	return ok
}

func Get[T any](w *World, handle ResourceHandle[T]) (T, bool) {
	var zero T
	value, ok := w.resource(handle.id)
	if !ok {
		return zero, false
	}
	cast, ok := value.(T)
	if !ok {
		return zero, false
	}
	return cast, true
}

// View is a read-only window on world resources, handed to code that builds
// values after assets are ready.
type View struct {
	w *World
}

func Lookup[T any](v View, handle ResourceHandle[T]) (T, bool) {
	return Get(v.w, handle)
}

func (v View) Tick() uint64 {
	return v.w.Tick()
}
