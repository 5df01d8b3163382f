package collection

import "github.com/milk9111/assetloader/asset"

// Value is one resolved field. Which members are set depends on the field:
// Handle for single fields, Handles (and Mapped) for lists, Derived for
// derived fields. Empty marks an optional key that was absent.
type Value struct {
	Handle  asset.Handle
	Handles []asset.Handle
	Mapped  map[string]asset.Handle
	Derived any
	Empty   bool
}

// Fields hands resolved values to a schema's assemble function.
type Fields struct {
	store  asset.Store
	values map[string]Value
}

func (f Fields) Get(name string) (Value, bool) {
	v, ok := f.values[name]
	return v, ok
}

func (f Fields) Handle(name string) asset.Handle {
	return f.values[name].Handle
}

func (f Fields) Handles(name string) []asset.Handle {
	return f.values[name].Handles
}

func (f Fields) Mapped(name string) map[string]asset.Handle {
	return f.values[name].Mapped
}

func (f Fields) Derived(name string) any {
	return f.values[name].Derived
}

func (f Fields) Empty(name string) bool {
	return f.values[name].Empty
}

// Store is the store the handles belong to.
func (f Fields) Store() asset.Store {
	return f.store
}

// Asset returns the loaded value of a single field.
func Asset[T any](f Fields, name string) (T, bool) {
	return asset.Typed[T](f.store, f.Handle(name))
}
